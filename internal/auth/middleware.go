package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// RoleHeader carries the advisory role when no JWT secret is configured.
const RoleHeader = "X-User-Role"

// Middleware validates JWTs and enforces RBAC. With an empty secret it runs
// in advisory mode: the role header is recorded but never enforced.
type Middleware struct {
	Secret []byte
	Policy Policy
}

// NewMiddleware constructs an auth middleware.
func NewMiddleware(secret []byte, policy Policy) *Middleware {
	return &Middleware{Secret: secret, Policy: policy}
}

// Enforced reports whether tokens are verified.
func (m *Middleware) Enforced() bool {
	return m != nil && len(m.Secret) > 0
}

// Wrap applies auth and RBAC to the handler.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Policy.IsExempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		if !m.Enforced() {
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), advisoryIdentity(r))))
			return
		}

		required, ok := m.Policy.RequiredRole(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := m.Authorize(r, required)
		switch {
		case errors.Is(err, ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		case err != nil:
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// Authorize verifies the bearer token of r against the required role.
// It returns ErrUnauthorized for a missing or invalid token and
// ErrForbidden when the role is too low.
func (m *Middleware) Authorize(r *http.Request, required Role) (Identity, error) {
	claims, err := ParseJWT(extractBearer(r), m.Secret)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	role, _ := NormalizeRole(claims.Role)
	if !RoleAtLeast(role, required) {
		return Identity{}, fmt.Errorf("%w: role %s below %s", ErrForbidden, role, required)
	}
	return Identity{Subject: claims.Subject, Role: role, Verified: true}, nil
}

func advisoryIdentity(r *http.Request) Identity {
	role, ok := NormalizeRole(r.Header.Get(RoleHeader))
	if !ok {
		role = RoleAnonymous
	}
	return Identity{Role: role}
}

func extractBearer(r *http.Request) string {
	if r == nil {
		return ""
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
