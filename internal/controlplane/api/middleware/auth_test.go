package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marmos91/dittomds/internal/controlplane/api/auth"
)

func createTestJWTService(t *testing.T) *auth.JWTService {
	t.Helper()
	cfg := auth.JWTConfig{
		Secret: "test-secret-key-that-is-at-least-32-characters-long",
		Issuer: "test",
	}
	svc, err := auth.NewJWTService(cfg)
	if err != nil {
		t.Fatalf("failed to create JWT service: %v", err)
	}
	return svc
}

func TestGetClaimsFromContext(t *testing.T) {
	t.Run("no claims in context", func(t *testing.T) {
		if claims := GetClaimsFromContext(context.Background()); claims != nil {
			t.Error("expected nil claims for empty context")
		}
	})

	t.Run("claims present in context", func(t *testing.T) {
		expected := &auth.Claims{Role: auth.RolePool}
		expected.Subject = "pool-a"
		ctx := context.WithValue(context.Background(), claimsContextKey, expected)

		claims := GetClaimsFromContext(ctx)
		if claims == nil {
			t.Fatal("expected claims to be present")
		}
		if claims.Subject != "pool-a" {
			t.Errorf("expected subject %q, got %q", "pool-a", claims.Subject)
		}
	})

	t.Run("wrong type in context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), claimsContextKey, "not-claims")
		if claims := GetClaimsFromContext(ctx); claims != nil {
			t.Error("expected nil claims for wrong type")
		}
	})
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name        string
		authHeader  string
		wantToken   string
		wantSuccess bool
	}{
		{"empty header", "", "", false},
		{"bearer token", "Bearer abc123", "abc123", true},
		{"bearer lowercase", "bearer abc123", "abc123", true},
		{"BEARER uppercase", "BEARER abc123", "abc123", true},
		{"missing token", "Bearer", "", false},
		{"wrong scheme", "Basic abc123", "", false},
		{"no space", "Bearerabc123", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			token, ok := extractBearerToken(req)
			if ok != tt.wantSuccess {
				t.Errorf("extractBearerToken() success = %v, want %v", ok, tt.wantSuccess)
			}
			if token != tt.wantToken {
				t.Errorf("extractBearerToken() token = %q, want %q", token, tt.wantToken)
			}
		})
	}
}

func TestJWTAuth(t *testing.T) {
	jwtService := createTestJWTService(t)

	token, _, err := jwtService.GenerateToken("pool-a", auth.RolePool, 0)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	t.Run("missing authorization header", func(t *testing.T) {
		handler := JWTAuth(jwtService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called")
		}))

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
			t.Errorf("expected problem+json content type, got %q", ct)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		handler := JWTAuth(jwtService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called")
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		var captured *auth.Claims
		handler := JWTAuth(jwtService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured = GetClaimsFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rr.Code)
		}
		if captured == nil {
			t.Fatal("expected claims to be set in context")
		}
		if captured.Subject != "pool-a" {
			t.Errorf("expected subject %q, got %q", "pool-a", captured.Subject)
		}
	})
}

func serveWithClaims(t *testing.T, mw func(http.Handler) http.Handler, claims *auth.Claims) (int, bool) {
	t.Helper()

	called := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if claims != nil {
		req = req.WithContext(context.WithValue(req.Context(), claimsContextKey, claims))
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr.Code, called
}

func TestRequireAdmin(t *testing.T) {
	if code, called := serveWithClaims(t, RequireAdmin(), nil); code != http.StatusUnauthorized || called {
		t.Errorf("no claims: expected 401 without calling handler, got %d (called=%v)", code, called)
	}

	if code, called := serveWithClaims(t, RequireAdmin(), &auth.Claims{Role: auth.RolePool}); code != http.StatusForbidden || called {
		t.Errorf("pool token: expected 403 without calling handler, got %d (called=%v)", code, called)
	}

	if code, called := serveWithClaims(t, RequireAdmin(), &auth.Claims{Role: auth.RoleAdmin}); code != http.StatusOK || !called {
		t.Errorf("admin token: expected 200 and handler call, got %d (called=%v)", code, called)
	}
}

func TestRequireRole(t *testing.T) {
	mw := RequireRole(auth.RoleAdmin, auth.RolePool)

	for _, role := range []string{auth.RoleAdmin, auth.RolePool} {
		if code, called := serveWithClaims(t, mw, &auth.Claims{Role: role}); code != http.StatusOK || !called {
			t.Errorf("role %q: expected 200, got %d (called=%v)", role, code, called)
		}
	}

	if code, _ := serveWithClaims(t, mw, &auth.Claims{Role: "user"}); code != http.StatusForbidden {
		t.Errorf("unknown role: expected 403, got %d", code)
	}
}
