package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func okHandler(seen *Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen, _ = IdentityFromContext(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_NoToken(t *testing.T) {
	mw := NewMiddleware([]byte("test-secret"), NewDefaultPolicy(nil, nil))
	handler := mw.Wrap(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics/overview", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthMiddleware_InvestorForbiddenUpload(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "investor", time.Hour)
	handler := NewMiddleware(secret, NewDefaultPolicy(nil, nil)).Wrap(okHandler(nil))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload/budget", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestAuthMiddleware_CFOCanUpload(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "cfo", time.Hour)
	var seen Identity
	handler := NewMiddleware(secret, NewDefaultPolicy(nil, nil)).Wrap(okHandler(&seen))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload/budget", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if seen.Role != RoleCFO || !seen.Verified || seen.Subject != "user-1" {
		t.Fatalf("unexpected identity: %+v", seen)
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "admin", -time.Minute)
	handler := NewMiddleware(secret, NewDefaultPolicy(nil, nil)).Wrap(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthMiddleware_ExemptPath(t *testing.T) {
	handler := NewMiddleware([]byte("test-secret"), NewDefaultPolicy([]string{"/healthz"}, nil)).Wrap(okHandler(nil))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestAuthMiddleware_AdvisoryMode(t *testing.T) {
	var seen Identity
	mw := NewMiddleware(nil, NewDefaultPolicy(nil, nil))
	if mw.Enforced() {
		t.Fatalf("expected advisory mode without secret")
	}
	handler := mw.Wrap(okHandler(&seen))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload/budget", nil)
	req.Header.Set(RoleHeader, "Investor")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("advisory mode must not block, got %d", resp.Code)
	}
	if seen.Role != RoleInvestor || seen.Verified {
		t.Fatalf("unexpected identity: %+v", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/metrics/overview", nil)
	req.Header.Set(RoleHeader, "superuser")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen.Role != RoleAnonymous {
		t.Fatalf("expected anonymous for unknown role, got %s", seen.Role)
	}
}

func TestRoleAtLeast(t *testing.T) {
	cases := []struct {
		role, required Role
		want           bool
	}{
		{RoleInvestor, RoleInvestor, true},
		{RoleInvestor, RoleProducer, false},
		{RoleLegal, RoleProducer, true},
		{RoleCFO, RoleProducer, true},
		{RoleAdmin, RoleCFO, true},
		{RoleAnonymous, RoleInvestor, false},
	}
	for _, tc := range cases {
		if got := RoleAtLeast(tc.role, tc.required); got != tc.want {
			t.Fatalf("RoleAtLeast(%s, %s) = %v, want %v", tc.role, tc.required, got, tc.want)
		}
	}
}

func TestIssueJWTRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	token, err := IssueJWT(secret, "ops", RoleProducer, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := ParseJWT(token, secret)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "ops" || claims.Role != "producer" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, err := ParseJWT(token, []byte("other-secret")); err == nil {
		t.Fatalf("expected signature failure")
	}
}

func TestAuthorizeErrors(t *testing.T) {
	secret := []byte("test-secret")
	mw := NewMiddleware(secret, NewDefaultPolicy(nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload/budget", nil)
	if _, err := mw.Authorize(req, RoleProducer); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized without token, got %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+mustToken(t, secret, "investor", time.Hour))
	if _, err := mw.Authorize(req, RoleProducer); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for investor upload, got %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+mustToken(t, secret, "producer", time.Hour))
	identity, err := mw.Authorize(req, RoleProducer)
	if err != nil {
		t.Fatalf("authorize producer: %v", err)
	}
	if identity.Role != RoleProducer || !identity.Verified {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestIdentityContextAccessors(t *testing.T) {
	ctx := context.Background()
	if RoleFromContext(ctx) != RoleAnonymous || SubjectFromContext(ctx) != "" {
		t.Fatalf("expected anonymous identity on empty context")
	}
	ctx = WithIdentity(ctx, Identity{Subject: "ops", Role: RoleCFO, Verified: true})
	if RoleFromContext(ctx) != RoleCFO || SubjectFromContext(ctx) != "ops" {
		t.Fatalf("unexpected identity from context")
	}
}

func mustToken(t *testing.T, secret []byte, role string, ttl time.Duration) string {
	t.Helper()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
