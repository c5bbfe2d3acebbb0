package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"school-cafe-api/auth"
	"school-cafe-api/logger"
	"school-cafe-api/models"

	"github.com/gin-gonic/gin"
)

func newRouter(creds auth.Credentials) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(logger.Discard()))
	protected := r.Group("/", AuthRequired(creds))
	protected.GET("/me", func(c *gin.Context) {
		p, _ := GetPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"user_id": p.UserID, "role": p.Role})
	})
	protected.GET("/kitchen", RoleRequired(models.RoleCook), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthRequired(t *testing.T) {
	creds := auth.NewJWT("secret", time.Hour)
	r := newRouter(creds)
	token, _ := creds.Issue(&models.User{ID: 3, Username: "anna", Role: models.RoleStudent})

	tests := []struct {
		name   string
		header string
		path   string
		status int
		kind   string
	}{
		{"no header", "", "/me", http.StatusUnauthorized, "unauthenticated"},
		{"not bearer", "Basic abc", "/me", http.StatusUnauthorized, "unauthenticated"},
		{"bad token", "Bearer nope", "/me", http.StatusUnauthorized, "unauthenticated"},
		{"valid", "Bearer " + token, "/me", http.StatusOK, ""},
		{"wrong role", "Bearer " + token, "/kitchen", http.StatusForbidden, "forbidden"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if tt.kind != "" {
				var body map[string]string
				json.Unmarshal(w.Body.Bytes(), &body)
				if body["kind"] != tt.kind || body["error"] == "" {
					t.Errorf("body = %v", body)
				}
			}
			if w.Header().Get(RequestIDHeader) == "" {
				t.Error("request id header missing")
			}
		})
	}
}

func TestRequestLogger_PropagatesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(logger.New(logger.Config{Level: "info", Format: "json", Output: &buf})))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "req-42" {
		t.Errorf("response request id = %q", got)
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("access log is not JSON: %v", err)
	}
	if entry["request_id"] != "req-42" || entry["path"] != "/ping" || entry["status"] != float64(200) {
		t.Errorf("entry = %v", entry)
	}
}
