// Package session carries the authenticated identity in a signed cookie and
// exposes it through the request context. There is no server-side session
// table: the cookie holds an HS256-signed token with the user id.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	cookieName = "session"
	// Token lifetime. There is no idle-timeout or refresh logic in scope.
	tokenTTL = 168 * time.Hour
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated principal attached to a request.
type Identity struct {
	UserID   int64
	Username string
}

var ErrNoSession = errors.New("no session")

// Manager issues, parses, and clears session cookies.
type Manager struct {
	secret []byte
	secure bool
}

// NewManager requires a non-empty signing secret; there is deliberately no
// built-in default.
func NewManager(secret string, secureCookies bool) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("session secret must not be empty")
	}
	return &Manager{secret: []byte(secret), secure: secureCookies}, nil
}

// Issue signs a token for the user and sets the session cookie.
func (m *Manager) Issue(w http.ResponseWriter, id Identity) error {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  id.UserID,
		"username": id.Username,
		"exp":      time.Now().Add(tokenTTL).Unix(),
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("sign session token: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(tokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie. Safe to call when anonymous.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Parse extracts the identity from the request cookie.
func (m *Manager) Parse(r *http.Request) (Identity, error) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return Identity{}, ErrNoSession
	}
	token, err := jwt.Parse(c.Value, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Method.Alg())
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrNoSession
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrNoSession
	}
	uid, ok := claims["user_id"].(float64)
	if !ok || uid <= 0 {
		return Identity{}, ErrNoSession
	}
	username, _ := claims["username"].(string)
	return Identity{UserID: int64(uid), Username: username}, nil
}

// Middleware places the optional identity into the request context. Requests
// without a valid session pass through anonymous; handlers decide whether
// authentication is required.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, err := m.Parse(r); err == nil {
			r = r.WithContext(context.WithValue(r.Context(), identityKey, id))
		}
		next.ServeHTTP(w, r)
	})
}

// FromContext returns the authenticated identity, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
