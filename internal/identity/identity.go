// Package identity issues and verifies signed bearer tokens that carry the
// authenticated user id. A request without a token is anonymous.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/JaimeStill/legal-lab/internal/config"
	"github.com/JaimeStill/legal-lab/pkg/handlers"
)

var (
	ErrInvalidToken = errors.New("identity: invalid token")
	ErrDisabled     = errors.New("identity: authentication disabled")
	ErrEmptyUser    = errors.New("identity: user id required")
)

type ctxKey struct{}

// Claims are the token claims. Subject holds the user id.
type Claims struct {
	jwt.RegisteredClaims
}

// Authority signs and verifies tokens with a shared HMAC secret.
type Authority struct {
	enabled bool
	secret  []byte
	issuer  string
	ttl     time.Duration
	logger  *slog.Logger
}

func New(cfg *config.AuthConfig, logger *slog.Logger) *Authority {
	return &Authority{
		enabled: cfg.Enabled,
		secret:  []byte(cfg.Secret),
		issuer:  cfg.Issuer,
		ttl:     cfg.TokenTTLDuration(),
		logger:  logger.With("system", "identity"),
	}
}

func (a *Authority) Enabled() bool {
	return a.enabled
}

// Issue returns a signed HS256 token for userID.
func (a *Authority) Issue(userID string) (string, error) {
	if !a.enabled {
		return "", ErrDisabled
	}
	if strings.TrimSpace(userID) == "" {
		return "", ErrEmptyUser
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, issuer, and expiry and returns the user id.
func (a *Authority) Verify(raw string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// Middleware resolves the bearer token into a user id on the request context.
// Missing tokens leave the request anonymous; malformed or invalid tokens are rejected.
func (a *Authority) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !a.enabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				handlers.RespondError(w, a.logger, http.StatusUnauthorized, ErrInvalidToken)
				return
			}

			userID, err := a.Verify(strings.TrimSpace(raw))
			if err != nil {
				handlers.RespondError(w, a.logger, http.StatusUnauthorized, ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID)))
		})
	}
}

// WithUser returns a context carrying userID.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// FromContext returns the user id, or "" for anonymous requests.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
