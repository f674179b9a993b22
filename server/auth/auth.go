// Package auth validates bearer tokens and resolves them to store users.
// Identity lives in the external issuer; a user row is created on first
// contact so the rest of the system can assume the user exists.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/hrygo/gourmet/store"
)

var (
	ErrNoCredentials      = errors.New("no credentials provided")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrExpiredCredentials = errors.New("expired credentials")
)

type contextKey int

// userIDContextKey carries the authenticated subject through the request
// context.
const userIDContextKey contextKey = iota

// Authenticator validates HS256 bearer tokens and maps the token subject to a
// user row.
type Authenticator struct {
	store  *store.Store
	secret []byte
}

// NewAuthenticator creates an authenticator over the given store.
func NewAuthenticator(store *store.Store, secret string) *Authenticator {
	return &Authenticator{store: store, secret: []byte(secret)}
}

// Authenticate extracts and validates the bearer token, then loads or creates
// the user named by the token subject.
func (a *Authenticator) Authenticate(ctx context.Context, r *http.Request) (*store.User, error) {
	tokenStr := extractToken(r)
	if tokenStr == "" {
		return nil, ErrNoCredentials
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredCredentials
		}
		return nil, ErrInvalidCredentials
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := a.store.GetOrCreateUser(ctx, claims.Subject)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve user")
	}
	return user, nil
}

// extractToken extracts the bearer token from the Authorization header.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// SetUserIDInContext stores the authenticated subject in the context.
func SetUserIDInContext(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext returns the authenticated subject, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	return userID, ok
}
