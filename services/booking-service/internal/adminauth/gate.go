// Package adminauth guards the admin routes with a single shared token whose
// bcrypt hash is configured on the service.
package adminauth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/golfbay/libs/httpx"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidHash = errors.New("adminauth: ADMIN_TOKEN_BCRYPT is not a bcrypt hash")

type Gate struct {
	hash []byte
}

// NewGate accepts an empty hash, which leaves the gate closed with 503.
func NewGate(hash string) (*Gate, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return &Gate{}, nil
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, ErrInvalidHash
	}
	return &Gate{hash: []byte(hash)}, nil
}

func (g *Gate) Enabled() bool {
	return g != nil && len(g.hash) > 0
}

func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Enabled() {
			httpx.WriteError(w, http.StatusServiceUnavailable, "admin_disabled", "admin access is not configured")
			return
		}
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") || len(strings.TrimSpace(authHeader)) <= len("Bearer ") {
			w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid Authorization header")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if err := bcrypt.CompareHashAndPassword(g.hash, []byte(token)); err != nil {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
