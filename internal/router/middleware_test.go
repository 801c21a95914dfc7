package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/thinkfashz/osart/internal/config"
	"github.com/thinkfashz/osart/internal/constants"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func TestOriginPolicyResolve(t *testing.T) {
	cases := []struct {
		name        string
		allowed     []string
		credentials bool
		origin      string
		want        string
	}{
		{name: "wildcard", allowed: []string{"*"}, origin: "https://example.com", want: "*"},
		{name: "empty list is wildcard", origin: "https://example.com", want: "*"},
		{name: "wildcard echoes with credentials", allowed: []string{"*"}, credentials: true, origin: "https://example.com", want: "https://example.com"},
		{name: "allow list match", allowed: []string{"https://a.example.com", "https://b.example.com"}, origin: "https://a.example.com", want: "https://a.example.com"},
		{name: "allow list is case insensitive", allowed: []string{"https://A.example.com"}, origin: "https://a.example.com", want: "https://a.example.com"},
		{name: "unmatched", allowed: []string{"https://a.example.com"}, origin: "https://x.example.com", want: ""},
		{name: "no origin header", allowed: []string{"https://a.example.com"}, origin: "", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := newOriginPolicy(tc.allowed, tc.credentials).resolve(tc.origin)
			if got != tc.want {
				t.Fatalf("want %q got %q", tc.want, got)
			}
		})
	}
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CORSMiddleware(config.CORSConfig{AllowedOrigins: []string{"https://shop.example.com"}, MaxAge: 600}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status want 204 got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example.com" {
		t.Fatalf("allow origin want echo got %q", got)
	}
	if got := w.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Fatalf("max age want 600 got %q", got)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), requestIDHeader) {
		t.Fatalf("default headers should include %s", requestIDHeader)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	generated := w2.Header().Get(requestIDHeader)
	if generated == "" {
		t.Fatalf("generated request id should not be empty")
	}
	if resp := strings.TrimSpace(generated); resp == "" {
		t.Fatalf("generated request id should not be blank")
	}
}

func adminTokenTestRouter(secret, issuer string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AdminTokenMiddleware(secret, issuer))
	r.GET("/admin/ping", func(c *gin.Context) {
		subject, _ := c.Get(constants.ContextKeyAdminSubject)
		c.JSON(http.StatusOK, gin.H{"status_code": 0, "subject": subject})
	})
	return r
}

func signTestToken(t *testing.T, secret string, claims jwt.RegisteredClaims, method jwt.SigningMethod) string {
	t.Helper()
	token := jwt.NewWithClaims(method, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	return signed
}

func adminPing(t *testing.T, r *gin.Engine, authHeader string) (int, string) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	var resp struct {
		StatusCode int    `json:"status_code"`
		Subject    string `json:"subject"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp.StatusCode, resp.Subject
}

func TestAdminTokenMiddlewareMissingSecret(t *testing.T) {
	r := adminTokenTestRouter("", "")
	if code, _ := adminPing(t, r, "Bearer anything"); code != 401 {
		t.Fatalf("status_code want 401 got %d", code)
	}
}

func TestAdminTokenMiddleware(t *testing.T) {
	const secret = "test-secret"
	r := adminTokenTestRouter(secret, "osart")
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	valid := signTestToken(t, secret, jwt.RegisteredClaims{
		Subject:   "ops@example.com",
		Issuer:    "osart",
		ExpiresAt: future,
	}, jwt.SigningMethodHS256)
	code, subject := adminPing(t, r, "Bearer "+valid)
	if code != 0 || subject != "ops@example.com" {
		t.Fatalf("valid token want 0/ops@example.com got %d/%s", code, subject)
	}

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic " + valid,
		"wrong secret": "Bearer " + signTestToken(t, "other", jwt.RegisteredClaims{
			Subject: "ops", Issuer: "osart", ExpiresAt: future,
		}, jwt.SigningMethodHS256),
		"no subject": "Bearer " + signTestToken(t, secret, jwt.RegisteredClaims{
			Issuer: "osart", ExpiresAt: future,
		}, jwt.SigningMethodHS256),
		"expired": "Bearer " + signTestToken(t, secret, jwt.RegisteredClaims{
			Subject: "ops", Issuer: "osart", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		}, jwt.SigningMethodHS256),
		"no expiry": "Bearer " + signTestToken(t, secret, jwt.RegisteredClaims{
			Subject: "ops", Issuer: "osart",
		}, jwt.SigningMethodHS256),
		"wrong issuer": "Bearer " + signTestToken(t, secret, jwt.RegisteredClaims{
			Subject: "ops", Issuer: "someone-else", ExpiresAt: future,
		}, jwt.SigningMethodHS256),
		"wrong alg": "Bearer " + signTestToken(t, secret, jwt.RegisteredClaims{
			Subject: "ops", Issuer: "osart", ExpiresAt: future,
		}, jwt.SigningMethodHS512),
	}
	for name, header := range cases {
		if code, _ := adminPing(t, r, header); code != 401 {
			t.Fatalf("%s: status_code want 401 got %d", name, code)
		}
	}
}
