package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/KevinRuanSoares/serasa-test-api/internal/infra/config"
	"github.com/KevinRuanSoares/serasa-test-api/internal/usecase"
)

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.AppConfig{}
	cfg.App.Env = "test"

	return Register(Dependencies{
		Config: cfg,
		Services: ServiceSet{
			Auth: usecase.NewAuthService(cfg, nil, nil, nil, nil),
		},
	})
}

func TestRegisterExposesExpectedRoutes(t *testing.T) {
	engine := newTestEngine()

	expected := map[string]string{
		"GET /healthz":                    "",
		"GET /readyz":                     "",
		"GET /metrics":                    "",
		"POST /api/v1/auth/login":         "",
		"POST /api/v1/auth/refresh":       "",
		"POST /api/v1/auth/logout":        "",
		"POST /api/v1/auth/recover-password": "",
		"POST /api/v1/auth/validate-code":    "",
		"POST /api/v1/auth/change-password":  "",
		"GET /api/v1/profile":                "",
		"PATCH /api/v1/profile":              "",
		"GET /api/v1/users":                  "",
		"POST /api/v1/users":                 "",
		"PATCH /api/v1/users/:id":            "",
		"DELETE /api/v1/users/:id":           "",
		"GET /api/v1/producers":              "",
		"POST /api/v1/producers":             "",
		"GET /api/v1/farms":                  "",
		"GET /api/v1/crops":                  "",
		"GET /api/v1/harvests":               "",
		"GET /api/v1/planted-crops":          "",
		"GET /api/v1/dashboard":              "",
	}

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for key := range expected {
		if !registered[key] {
			t.Errorf("expected route %q to be registered", key)
		}
	}
}

func TestHealthzResponds(t *testing.T) {
	engine := newTestEngine()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	engine := newTestEngine()

	for _, path := range []string{"/api/v1/producers", "/api/v1/dashboard", "/api/v1/profile"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		engine.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401 without a token, got %d", path, rr.Code)
		}
	}
}
