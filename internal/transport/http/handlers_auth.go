package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"aegis/internal/identity"
	"aegis/internal/platform/middleware"
	dErrors "aegis/pkg/domain-errors"
	"aegis/pkg/platform/httputil"
)

var validate = validator.New()

// IdentityService is the slice of the identity layer the auth endpoints need.
type IdentityService interface {
	Login(ctx context.Context, username, password string) (identity.TokenPair, error)
}

// TokenRefresher exchanges a refresh token for a fresh access token.
type TokenRefresher interface {
	Refresh(refreshToken string) (string, error)
}

type AuthHandler struct {
	identity IdentityService
	tokens   TokenRefresher
}

func NewAuthHandler(identity IdentityService, tokens TokenRefresher) *AuthHandler {
	return &AuthHandler{identity: identity, tokens: tokens}
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=1024"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	pair, err := h.identity.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pair)
}

func (h *AuthHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	accessToken, err := h.tokens.Refresh(req.RefreshToken)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, refreshResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})
}

type meResponse struct {
	ID     string `json:"id"`
	Role   string `json:"role"`
	Active bool   `json:"active"`
}

// handleMe echoes the authenticated principal. It sits behind RequireAuth,
// so a missing principal means broken middleware wiring, not a user error.
func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "principal missing from context"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, meResponse{
		ID:     principal.ID,
		Role:   string(principal.Role),
		Active: principal.Active,
	})
}

// decodeJSON parses and validates a request body into dst. Validation tags on
// dst decide what counts as well-formed.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request payload")
	}
	return nil
}
