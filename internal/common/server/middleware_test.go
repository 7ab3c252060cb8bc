package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mistamayor/berrymart-v1/internal/common/auth"
	"github.com/mistamayor/berrymart-v1/internal/common/config"
	"github.com/mistamayor/berrymart-v1/internal/rbac"
)

func TestJWTAuthMiddlewareAndRequireRoles(t *testing.T) {
	authCfg := config.AuthConfig{
		Enabled:     true,
		JWTSecret:   "test-secret",
		Issuer:      "berrymart",
		Audience:    "berrymart",
		PublicPaths: []string{"/healthz", "/api/login"},
	}

	managerToken, _, err := auth.GenerateAccessToken(authCfg, auth.Identity{
		Subject: "3", Username: "mary_manager", FullName: "Mary Manager", Role: "Manager",
	}, time.Hour)
	if err != nil {
		t.Fatalf("sign manager token: %v", err)
	}
	salesToken, _, err := auth.GenerateAccessToken(authCfg, auth.Identity{
		Subject: "2", Username: "john_sales", Role: "Sales",
	}, time.Hour)
	if err != nil {
		t.Fatalf("sign sales token: %v", err)
	}

	handler := RequireRoles(rbac.OrderApproveRoles...)(func(w http.ResponseWriter, r *http.Request) {
		ai, ok := AuthFromContext(r.Context())
		if !ok {
			t.Fatalf("missing auth info in ctx")
		}
		if ai.Username == "" || !ai.Role.Valid() {
			t.Fatalf("auth info incomplete: %+v", ai)
		}
		if ai.DisplayName() != "Mary Manager" {
			t.Fatalf("expected display name from token, got %q", ai.DisplayName())
		}
		w.WriteHeader(http.StatusNoContent)
	})
	wrapped := JWTAuthMiddleware(authCfg, nil)(http.HandlerFunc(handler))

	// Manager 可以审批
	req := httptest.NewRequest(http.MethodPost, "/api/orders/1/approve", nil)
	req.Header.Set("Authorization", "Bearer "+managerToken)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for Manager, got %d (%s)", rec.Code, rec.Body.String())
	}

	// Sales 不在审批角色集合内
	req2 := httptest.NewRequest(http.MethodPost, "/api/orders/1/approve", nil)
	req2.Header.Set("Authorization", "Bearer "+salesToken)
	rec2 := httptest.NewRecorder()
	wrapped.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for Sales, got %d", rec2.Code)
	}

	// 缺 token 直接 401
	req3 := httptest.NewRequest(http.MethodPost, "/api/orders/1/approve", nil)
	rec3 := httptest.NewRecorder()
	wrapped.ServeHTTP(rec3, req3)
	if rec3.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec3.Code)
	}

	// 公开路径放行
	public := JWTAuthMiddleware(authCfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req4 := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	rec4 := httptest.NewRecorder()
	public.ServeHTTP(rec4, req4)
	if rec4.Code != http.StatusOK {
		t.Fatalf("expected public path to pass, got %d", rec4.Code)
	}
}

func TestTokenBucketAllow(t *testing.T) {
	tb := NewTokenBucket(2, 1)
	if !tb.Allow() || !tb.Allow() {
		t.Fatalf("expected first two requests allowed")
	}
	if tb.Allow() {
		t.Fatalf("expected third request rejected")
	}
}
