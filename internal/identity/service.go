package identity

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"aegis/internal/authz"
	"aegis/internal/password"
	"aegis/internal/token"
	dErrors "aegis/pkg/domain-errors"
	"aegis/pkg/platform/sentinel"
)

// AuditLogger is the slice of the audit surface the identity service needs.
type AuditLogger interface {
	LoginSuccess(ctx context.Context, actorID, actorRole string)
	LoginFailure(ctx context.Context, actorID, reason string)
}

// TokenPair is the credential set returned by a successful login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Service validates credentials and resolves subjects to principals.
type Service struct {
	users     Store
	passwords *password.Service
	tokens    *token.Service
	audit     AuditLogger
	logger    *slog.Logger
	accessTTL time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for internal diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService constructs an identity Service.
func NewService(users Store, passwords *password.Service, tokens *token.Service, audit AuditLogger, accessTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		audit:     audit,
		logger:    slog.Default(),
		accessTTL: accessTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// errInvalidCredentials is the uniform login failure: unknown user, inactive
// account, and wrong password are indistinguishable to the caller.
func errInvalidCredentials() error {
	return dErrors.New(dErrors.CodeUnauthorized, "could not validate credentials")
}

// Authenticate validates username/password credentials and returns the user.
// Every attempt emits exactly one login event.
func (s *Service) Authenticate(ctx context.Context, username, plainPassword string) (*User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.audit.LoginFailure(ctx, username, "unknown_user")
			return nil, errInvalidCredentials()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not look up user")
	}
	if !user.Active {
		s.audit.LoginFailure(ctx, user.ID, "inactive_account")
		return nil, errInvalidCredentials()
	}
	if !s.passwords.Verify(plainPassword, user.PasswordHash) {
		s.audit.LoginFailure(ctx, user.ID, "invalid_password")
		return nil, errInvalidCredentials()
	}

	s.audit.LoginSuccess(ctx, user.ID, string(user.Role))
	return user, nil
}

// Login authenticates and issues an access/refresh token pair.
func (s *Service) Login(ctx context.Context, username, plainPassword string) (TokenPair, error) {
	user, err := s.Authenticate(ctx, username, plainPassword)
	if err != nil {
		return TokenPair{}, err
	}

	accessToken, err := s.tokens.IssueAccessToken(user.ID, token.WithExtraClaims(map[string]any{
		"role": string(user.Role),
	}))
	if err != nil {
		return TokenPair{}, err
	}
	refreshToken, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// ResolvePrincipal maps a verified token subject to a Principal. An unknown
// subject is an authentication failure: the token may be valid but the
// account behind it is gone.
func (s *Service) ResolvePrincipal(ctx context.Context, subjectID string) (authz.Principal, error) {
	user, err := s.users.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return authz.Principal{}, errInvalidCredentials()
		}
		return authz.Principal{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not look up user")
	}
	return user.Principal(), nil
}
