// Package token issues, verifies, and refreshes signed bearer tokens. Tokens
// are self-contained HS256 JWTs; validity is determined entirely by the exp
// claim plus signature verification, with no server-side session state.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "aegis/pkg/domain-errors"
)

// Token types. A refresh token must never be accepted where an access token
// is required, and vice versa.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Validation failure kinds. All are surfaced to callers inside a uniform
// unauthorized domain error so responses cannot be used as an oracle; they
// stay distinct internally for audit and logging via errors.Is.
var (
	ErrExpired          = errors.New("token expired")
	ErrMalformed        = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrMissingClaim     = errors.New("missing required claim")
	ErrWrongType        = errors.New("wrong token type")

	// ErrSigning indicates the cryptographic subsystem itself failed. This is
	// an alerting condition, not a user error.
	ErrSigning = errors.New("token signing failure")
)

// reservedClaims cannot be overridden through extra claims.
var reservedClaims = map[string]struct{}{
	"sub": {}, "iat": {}, "exp": {}, "type": {}, "jti": {},
}

// Claims is the verified claim set of a token.
type Claims struct {
	Subject   string
	Type      string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Extra     map[string]any
}

// Service signs and verifies tokens with a process-wide immutable secret.
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	clock      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New constructs a token Service. The secret is injected once at process
// start; it is never read lazily from the environment at call sites.
func New(secret string, accessTTL, refreshTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueOption adjusts a single token issuance.
type IssueOption func(*issueParams)

type issueParams struct {
	ttl   time.Duration
	extra map[string]any
}

// WithTTL overrides the configured access-token lifetime for one issuance.
func WithTTL(ttl time.Duration) IssueOption {
	return func(p *issueParams) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// WithExtraClaims attaches additional claims. Reserved claims are ignored so
// callers cannot clobber sub, exp, or type.
func WithExtraClaims(extra map[string]any) IssueOption {
	return func(p *issueParams) {
		p.extra = extra
	}
}

// IssueAccessToken mints a short-lived access token for subject.
func (s *Service) IssueAccessToken(subject string, opts ...IssueOption) (string, error) {
	params := issueParams{ttl: s.accessTTL}
	for _, opt := range opts {
		opt(&params)
	}
	return s.sign(subject, TypeAccess, params.ttl, params.extra)
}

// IssueRefreshToken mints a refresh token for subject. Refresh tokens carry
// minimal information: no extra claims, reducing their replay value.
func (s *Service) IssueRefreshToken(subject string) (string, error) {
	return s.sign(subject, TypeRefresh, s.refreshTTL, nil)
}

func (s *Service) sign(subject, tokenType string, ttl time.Duration, extra map[string]any) (string, error) {
	now := s.clock()
	claims := jwt.MapClaims{
		"sub":  subject,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
		"type": tokenType,
		"jti":  uuid.NewString(),
	}
	for k, v := range extra {
		if _, reserved := reservedClaims[k]; !reserved {
			claims[k] = v
		}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", dErrors.Wrap(errors.Join(ErrSigning, err), dErrors.CodeInternal, "could not sign token")
	}
	return signed, nil
}

// Verify parses and validates a token of either type, returning its claims.
// Expired, malformed, and badly signed tokens each fail with their own
// internal kind wrapped in a uniform unauthorized error.
func (s *Service) Verify(tokenString string) (Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.secret, nil
	},
		jwt.WithTimeFunc(s.clock),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, unauthorized(classifyParseError(err))
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, unauthorized(ErrMalformed)
	}
	return claimsFromMap(mapClaims), nil
}

// Refresh validates a refresh token and mints a fresh access token for the
// same subject. The refresh token's own lifetime is never extended.
func (s *Service) Refresh(refreshToken string) (string, error) {
	claims, err := s.Verify(refreshToken)
	if err != nil {
		return "", err
	}
	if claims.Type != TypeRefresh {
		return "", unauthorized(ErrWrongType)
	}
	if claims.Subject == "" {
		return "", unauthorized(ErrMissingClaim)
	}
	return s.IssueAccessToken(claims.Subject)
}

// ExtractSubject validates an access token and returns its subject.
func (s *Service) ExtractSubject(accessToken string) (string, error) {
	claims, err := s.Verify(accessToken)
	if err != nil {
		return "", err
	}
	if claims.Type != TypeAccess {
		return "", unauthorized(ErrWrongType)
	}
	if claims.Subject == "" {
		return "", unauthorized(ErrMissingClaim)
	}
	return claims.Subject, nil
}

// classifyParseError folds golang-jwt errors into this package's kinds so raw
// library errors never escape the service boundary.
func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return ErrMissingClaim
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	default:
		return ErrMalformed
	}
}

// unauthorized wraps a kind in the uniform credential failure shown to
// callers. The kind remains reachable via errors.Is for internal use.
func unauthorized(kind error) error {
	return dErrors.Wrap(kind, dErrors.CodeUnauthorized, "could not validate credentials")
}

// KindOf names the internal failure kind of a verification error, for audit
// metadata. Returns an empty string for non-token errors.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrWrongType):
		return "wrong_type"
	case errors.Is(err, ErrMissingClaim):
		return "missing_claim"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrSigning):
		return "signing_failure"
	default:
		return ""
	}
}

func claimsFromMap(m jwt.MapClaims) Claims {
	claims := Claims{Extra: map[string]any{}}
	for k, v := range m {
		switch k {
		case "sub":
			if sub, ok := v.(string); ok {
				claims.Subject = sub
			}
		case "type":
			if typ, ok := v.(string); ok {
				claims.Type = typ
			}
		case "iat":
			claims.IssuedAt = numericTime(v)
		case "exp":
			claims.ExpiresAt = numericTime(v)
		default:
			claims.Extra[k] = v
		}
	}
	return claims
}

func numericTime(v any) time.Time {
	if f, ok := v.(float64); ok {
		return time.Unix(int64(f), 0)
	}
	return time.Time{}
}
