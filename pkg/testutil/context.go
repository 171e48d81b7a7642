package testutil

import (
	"net/http"

	"aegis/internal/authz"
	"aegis/internal/platform/middleware"
)

// WithPrincipal injects an authenticated principal into the request context,
// simulating what the auth middleware does for authenticated requests.
func WithPrincipal(req *http.Request, p authz.Principal) *http.Request {
	return req.WithContext(middleware.WithPrincipal(req.Context(), p))
}

// WithActivePrincipal is WithPrincipal for the common case of an active
// account with the given role.
func WithActivePrincipal(req *http.Request, id string, role authz.Role) *http.Request {
	return WithPrincipal(req, authz.Principal{ID: id, Role: role, Active: true})
}

// WithClientMetadata injects client IP and user agent into the request
// context the way the metadata middleware does.
func WithClientMetadata(req *http.Request, clientIP, userAgent string) *http.Request {
	return req.WithContext(middleware.WithClientMetadata(req.Context(), clientIP, userAgent))
}
