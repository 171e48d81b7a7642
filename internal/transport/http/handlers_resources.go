package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"aegis/internal/authz"
	"aegis/internal/platform/middleware"
	"aegis/internal/resource"
	dErrors "aegis/pkg/domain-errors"
	"aegis/pkg/platform/httputil"
)

// ResourceHandler serves ownable resources behind the authorization guards.
// Every read goes through the access guard and every mutation through the
// matching mutation guard, so handlers never re-implement policy.
type ResourceHandler struct {
	store  resource.Store
	access authz.Guard
	modify authz.Guard
	remove authz.Guard
}

func NewResourceHandler(store resource.Store, engine *authz.Engine) *ResourceHandler {
	lookup := resource.Lookup(store)
	return &ResourceHandler{
		store:  store,
		access: engine.RequireAccess(lookup),
		modify: engine.RequireModification(lookup),
		remove: engine.RequireDeletion(lookup),
	}
}

type resourceResponse struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
}

type updateResourceRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

func (h *ResourceHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "principal missing from context"))
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := h.access(r.Context(), principal, id); err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "load resource"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resourceResponse{
		ID:      res.ID,
		OwnerID: res.OwnerID,
		Name:    res.Name,
	})
}

func (h *ResourceHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "principal missing from context"))
		return
	}

	var req updateResourceRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := h.modify(r.Context(), principal, id); err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "load resource"))
		return
	}
	res.Name = req.Name
	if err := h.store.Save(r.Context(), res); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "save resource"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resourceResponse{
		ID:      res.ID,
		OwnerID: res.OwnerID,
		Name:    res.Name,
	})
}

func (h *ResourceHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "principal missing from context"))
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := h.remove(r.Context(), principal, id); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "delete resource"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
