package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/thinkfashz/osart/internal/config"
	"github.com/thinkfashz/osart/internal/models"
	"github.com/thinkfashz/osart/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const routerTestSecret = "router-secret"

func setupTestRouter(t *testing.T) (*gin.Engine, *provider.Container) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := models.OpenDB("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name), models.DBPoolConfig{MaxOpenConns: 1}, false)
	if err != nil {
		t.Fatalf("open db failed: %v", err)
	}
	t.Cleanup(func() { _ = models.CloseDB(db) })
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Server.Mode = "debug"
	cfg.AdminAuth.Secret = routerTestSecret
	c := provider.NewContainer(cfg, db)
	t.Cleanup(c.Close)
	return SetupRouter(cfg, c), c
}

func routerRequest(t *testing.T, r *gin.Engine, method, target, token string) (int, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v body=%s", err, w.Body.String())
	}
	return w.Code, body
}

func TestSetupRouterHealth(t *testing.T) {
	r, _ := setupTestRouter(t)
	code, body := routerRequest(t, r, http.MethodGet, "/health", "")
	if code != http.StatusOK {
		t.Fatalf("status want 200 got %d", code)
	}
	if body["status"] != "ok" || body["redis"] != "disabled" {
		t.Fatalf("unexpected health body: %v", body)
	}
}

func TestSetupRouterPublicPrice(t *testing.T) {
	r, c := setupTestRouter(t)
	product := &models.Product{CategoryID: 1, Slug: "chair", Title: "Chair", PriceAmount: models.NewMoneyFromInt(40), IsActive: true}
	if err := c.DB.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	_, body := routerRequest(t, r, http.MethodGet, fmt.Sprintf("/api/v1/public/products/%d/price?quantity=2", product.ID), "")
	if body["status_code"] != float64(0) {
		t.Fatalf("status_code want 0 got %v", body["status_code"])
	}
	data, ok := body["data"].(map[string]interface{})
	if !ok || data["final_price"] != "40.00" {
		t.Fatalf("unexpected quote: %v", body["data"])
	}
}

func TestSetupRouterAdminRequiresToken(t *testing.T) {
	r, _ := setupTestRouter(t)
	_, body := routerRequest(t, r, http.MethodGet, "/api/v1/admin/pricing-rules", "")
	if body["status_code"] != float64(401) {
		t.Fatalf("status_code want 401 got %v", body["status_code"])
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "ops",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(routerTestSecret))
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	_, body = routerRequest(t, r, http.MethodGet, "/api/v1/admin/pricing-rules", signed)
	if body["status_code"] != float64(0) {
		t.Fatalf("status_code want 0 got %v (%v)", body["status_code"], body["msg"])
	}

	_, body = routerRequest(t, r, http.MethodGet, "/api/v1/admin/routes", signed)
	items, ok := body["data"].([]interface{})
	if !ok || len(items) != 10 {
		t.Fatalf("route catalog want 10 items got %v", body["data"])
	}
	first := items[0].(map[string]interface{})
	if first["module"] != "pricing-rules" {
		t.Fatalf("catalog should be sorted by module, got %v", first)
	}
}

func TestDeriveAdminRouteModule(t *testing.T) {
	cases := map[string]string{
		"/api/v1/admin/promotions/:id/status": "promotions",
		"/api/v1/admin/pricing-rules":         "pricing-rules",
		"/api/v1/admin/":                      "system",
	}
	for path, want := range cases {
		if got := deriveAdminRouteModule(path); got != want {
			t.Fatalf("%s: module want %s got %s", path, want, got)
		}
	}
}
