package middleware

import (
	"context"
	"net/http"
	"strings"

	"aegis/internal/authz"
	"aegis/internal/platform/metrics"
	"aegis/internal/token"
	dErrors "aegis/pkg/domain-errors"
	"aegis/pkg/platform/httputil"
)

type principalKey struct{}

// SubjectResolver turns a bearer token into an authenticated principal.
// The token service extracts the subject and the identity service resolves it.
type SubjectResolver interface {
	ExtractSubject(accessToken string) (string, error)
	ResolvePrincipal(ctx context.Context, subjectID string) (authz.Principal, error)
}

// AuthAuditLogger records requests rejected before authentication completed.
type AuthAuditLogger interface {
	UnauthorizedAccessAttempt(ctx context.Context, reason string)
}

// Auth authenticates requests via the Authorization header and injects the
// resolved principal into the request context. Rejections share a single
// response body so callers cannot distinguish failure causes.
type Auth struct {
	resolver SubjectResolver
	audit    AuthAuditLogger
	metrics  *metrics.Metrics
}

func NewAuth(resolver SubjectResolver, audit AuthAuditLogger, m *metrics.Metrics) *Auth {
	return &Auth{resolver: resolver, audit: audit, metrics: m}
}

// RequireAuth rejects requests without a valid bearer token.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			a.reject(w, r, "missing_bearer_token", nil)
			return
		}

		subject, err := a.resolver.ExtractSubject(raw)
		if err != nil {
			a.reject(w, r, token.KindOf(err), err)
			return
		}

		principal, err := a.resolver.ResolvePrincipal(r.Context(), subject)
		if err != nil {
			a.reject(w, r, "unknown_subject", err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

func (a *Auth) reject(w http.ResponseWriter, r *http.Request, reason string, err error) {
	if a.audit != nil {
		a.audit.UnauthorizedAccessAttempt(r.Context(), reason)
	}
	if a.metrics != nil {
		a.metrics.IncTokenVerifyFailure(reason)
		a.metrics.IncUnauthorizedRequests()
	}
	if err == nil {
		err = dErrors.New(dErrors.CodeUnauthorized, "could not validate credentials")
	}
	httputil.WriteError(w, err)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, value, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || value == "" {
		return "", false
	}
	return value, true
}

// WithPrincipal stores the authenticated principal in ctx.
func WithPrincipal(ctx context.Context, p authz.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// GetPrincipal returns the authenticated principal, if the request passed
// through RequireAuth.
func GetPrincipal(ctx context.Context) (authz.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(authz.Principal)
	return p, ok
}
