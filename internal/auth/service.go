// Package auth issues and validates the short-lived access tokens cashiers
// and admins use at the terminal. Accounts sign in with a username and a
// numeric PIN stored as an argon2id hash.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/yusapos/backend-pos/internal/common"
	"github.com/yusapos/backend-pos/internal/store"
)

const defaultAccessTTL = 8 * time.Hour

// claim names carried beside the registered claims.
const (
	claimName = "name"
	claimRole = "role"
)

// Service coordinates PIN verification and access token handling.
type Service struct {
	store     store.Gateway
	secret    []byte
	accessTTL time.Duration
	issuer    string
	audience  string
	clockSkew time.Duration
	now       func() time.Time
	signer    jwa.SignatureAlgorithm
}

// Config configures the auth service.
type Config struct {
	Store          store.Gateway
	Secret         string
	AccessTokenTTL time.Duration
	Issuer         string
	Audience       string
	ClockSkew      time.Duration
}

// SafeUser is the subset of the account model returned to clients.
type SafeUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// LoginResult bundles the token material returned after a successful login.
type LoginResult struct {
	User        SafeUser  `json:"user"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// NewService constructs a Service instance with sane defaults.
func NewService(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("auth: store is required")
	}
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("auth: secret is required")
	}
	accessTTL := cfg.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = "backend-pos"
	}
	audience := strings.TrimSpace(cfg.Audience)
	if audience == "" {
		audience = "pos-terminal"
	}
	clockSkew := cfg.ClockSkew
	if clockSkew < 0 {
		clockSkew = 0
	}
	return &Service{
		store:     cfg.Store,
		secret:    []byte(secret),
		accessTTL: accessTTL,
		issuer:    issuer,
		audience:  audience,
		clockSkew: clockSkew,
		now:       time.Now,
		signer:    jwa.HS256,
	}, nil
}

// WithNow overrides the clock. Test hook.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func invalidCredentials() *common.AppError {
	return common.NewAppError("INVALID_CREDENTIALS", "invalid username or pin", http.StatusUnauthorized, nil)
}

// Login verifies the username and PIN and issues an access token.
func (s *Service) Login(ctx context.Context, username, pin string) (LoginResult, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	if username == "" || pin == "" {
		return LoginResult{}, invalidCredentials()
	}
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		// uniform rejection, never reveal whether the account exists
		return LoginResult{}, invalidCredentials()
	}
	ok, err := argon2id.ComparePasswordAndHash(pin, user.PINHash)
	if err != nil || !ok {
		return LoginResult{}, invalidCredentials()
	}
	safe := SafeUser{ID: user.ID, Username: user.Username, FullName: user.FullName, Role: user.Role}
	token, expiresAt, err := s.signAccessToken(safe)
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign access token: %w", err)
	}
	return LoginResult{User: safe, AccessToken: token, ExpiresAt: expiresAt}, nil
}

// Me returns the account behind an authenticated identity.
func (s *Service) Me(ctx context.Context, userID string) (SafeUser, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return SafeUser{}, common.NewAppError(common.CodeNotFound, "account not found", http.StatusNotFound, err)
		}
		return SafeUser{}, err
	}
	return SafeUser{ID: user.ID, Username: user.Username, FullName: user.FullName, Role: user.Role}, nil
}

// ParseAccessToken validates an access token and returns the identity it carries.
func (s *Service) ParseAccessToken(token string) (common.Identity, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return common.Identity{}, common.NewAppError(common.CodeUnauthorized, "missing token", http.StatusUnauthorized, nil)
	}
	algorithm, err := extractTokenAlgorithm(trimmed)
	if err != nil {
		return common.Identity{}, common.NewAppError(common.CodeUnauthorized, "invalid token", http.StatusUnauthorized, err)
	}
	if algorithm != s.signer {
		return common.Identity{}, common.NewAppError(common.CodeUnauthorized, "invalid token", http.StatusUnauthorized, fmt.Errorf("unexpected token algorithm %s", algorithm))
	}
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(algorithm, s.secret))
	if err != nil {
		return common.Identity{}, common.NewAppError(common.CodeUnauthorized, "invalid token", http.StatusUnauthorized, err)
	}
	if err := s.validate(parsed); err != nil {
		return common.Identity{}, common.NewAppError(common.CodeUnauthorized, "invalid token", http.StatusUnauthorized, err)
	}
	identity := common.Identity{ID: parsed.Subject()}
	if v, ok := parsed.Get(claimName); ok {
		if name, ok := v.(string); ok {
			identity.Name = name
		}
	}
	if v, ok := parsed.Get(claimRole); ok {
		if role, ok := v.(string); ok {
			identity.Role = role
		}
	}
	return identity, nil
}

func (s *Service) validate(tok jwt.Token) error {
	now := s.now()
	options := []jwt.ValidateOption{
		jwt.WithClock(jwt.ClockFunc(func() time.Time { return now })),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
	}
	if s.clockSkew > 0 {
		options = append(options, jwt.WithAcceptableSkew(s.clockSkew))
	}
	return jwt.Validate(tok, options...)
}

func extractTokenAlgorithm(token string) (jwa.SignatureAlgorithm, error) {
	message, err := jws.ParseString(token)
	if err != nil {
		return "", err
	}
	signatures := message.Signatures()
	if len(signatures) == 0 {
		return "", errors.New("auth: token contains no signatures")
	}
	var algorithm jwa.SignatureAlgorithm
	for _, sig := range signatures {
		headers := sig.ProtectedHeaders()
		if headers == nil {
			return "", errors.New("auth: token missing protected headers")
		}
		alg := headers.Algorithm()
		if alg == "" {
			return "", errors.New("auth: token missing algorithm")
		}
		if alg == jwa.NoSignature {
			return "", errors.New("auth: token uses none algorithm")
		}
		if algorithm == "" {
			algorithm = alg
		} else if algorithm != alg {
			return "", errors.New("auth: mixed token algorithms detected")
		}
	}
	return algorithm, nil
}

func (s *Service) signAccessToken(user SafeUser) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.accessTTL)
	builder := jwt.NewBuilder().
		Subject(user.ID).
		Issuer(s.issuer).
		Audience([]string{s.audience}).
		IssuedAt(now).
		NotBefore(now.Add(-s.clockSkew)).
		Expiration(expiresAt).
		Claim(claimName, user.FullName).
		Claim(claimRole, user.Role)
	token, err := builder.Build()
	if err != nil {
		return "", time.Time{}, err
	}
	signed, err := jwt.Sign(token, jwt.WithKey(s.signer, s.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return string(signed), expiresAt, nil
}

// HashPIN hashes a PIN for storage, used by account provisioning.
func HashPIN(pin string) (string, error) {
	return argon2id.CreateHash(pin, argon2id.DefaultParams)
}
