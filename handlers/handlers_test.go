package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"school-cafe-api/auth"
	"school-cafe-api/handlers"
	"school-cafe-api/logger"
	"school-cafe-api/routes"
	"school-cafe-api/service"
	"school-cafe-api/store/storetest"

	"github.com/gin-gonic/gin"
)

type api struct {
	t *testing.T
	r *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	creds := auth.NewJWT("test-secret", time.Hour)
	svc := service.New(service.Deps{
		Store:       storetest.New(t),
		Credentials: creds,
		Log:         logger.Discard(),
	})
	r := gin.New()
	routes.SetupRoutes(r, handlers.New(svc, logger.Discard()), creds)
	return &api{t: t, r: r}
}

func (a *api) do(method, path, token string, body any) (int, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			a.t.Fatalf("%s %s: response is not JSON: %s", method, path, w.Body.String())
		}
	}
	return w.Code, out
}

func (a *api) register(username, role string) string {
	a.t.Helper()
	status, body := a.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username":   username,
		"password":   "password123",
		"full_name":  "User " + username,
		"role":       role,
		"class_name": "9A",
	})
	if status != http.StatusCreated {
		a.t.Fatalf("register %s: %d %v", username, status, body)
	}
	return body["token"].(string)
}

func expect(t *testing.T, status int, body map[string]any, wantStatus int, wantKind string) {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status = %d, want %d (%v)", status, wantStatus, body)
	}
	if wantKind != "" && body["kind"] != wantKind {
		t.Fatalf("kind = %v, want %s (%v)", body["kind"], wantKind, body)
	}
}

func TestOrderScenario(t *testing.T) {
	a := newAPI(t)
	student := a.register("student1", "student")
	cook := a.register("cook1", "cook")
	admin := a.register("admin1", "admin")

	status, body := a.do(http.MethodPost, "/api/dishes", admin, gin.H{
		"name": "Borscht", "category": "lunch", "price": 150, "quantity": 5,
	})
	expect(t, status, body, http.StatusCreated, "")
	dish := body["dish"].(map[string]any)
	dishID := uint(dish["id"].(float64))
	if dish["price"] != 150.0 || dish["is_available"] != true {
		t.Fatalf("dish = %v", dish)
	}

	status, body = a.do(http.MethodPost, "/api/balance/topup", student, gin.H{"amount": 15000})
	expect(t, status, body, http.StatusBadRequest, "validation_error")

	status, body = a.do(http.MethodPost, "/api/balance/topup", student, gin.H{"amount": 1000})
	expect(t, status, body, http.StatusOK, "")
	if body["balance"] != 1000.0 {
		t.Fatalf("balance = %v", body["balance"])
	}

	status, body = a.do(http.MethodPost, "/api/orders", student, gin.H{"dish_id": dishID})
	expect(t, status, body, http.StatusCreated, "")
	order := body["order"].(map[string]any)
	orderID := uint(order["id"].(float64))
	if order["status"] != "pending" || order["price"] != 150.0 {
		t.Fatalf("order = %v", order)
	}

	status, body = a.do(http.MethodGet, "/api/user/profile", student, nil)
	expect(t, status, body, http.StatusOK, "")
	if bal := body["user"].(map[string]any)["balance"]; bal != 850.0 {
		t.Errorf("balance after order = %v", bal)
	}

	status, body = a.do(http.MethodGet, "/api/orders/my", cook, nil)
	expect(t, status, body, http.StatusOK, "")
	if body["count"] != 1.0 {
		t.Errorf("cook queue = %v", body)
	}

	status, body = a.do(http.MethodPost, fmt.Sprintf("/api/orders/%d/serve", orderID), cook, nil)
	expect(t, status, body, http.StatusOK, "")
	if body["order"].(map[string]any)["status"] != "served" {
		t.Errorf("served = %v", body)
	}

	status, body = a.do(http.MethodPost, fmt.Sprintf("/api/orders/%d/cancel", orderID), student, nil)
	expect(t, status, body, http.StatusConflict, "invalid_state")

	status, body = a.do(http.MethodGet, "/api/menu?category=lunch", "", nil)
	expect(t, status, body, http.StatusOK, "")
	if menu := body["dishes"].([]any); len(menu) != 1 || menu[0].(map[string]any)["quantity"] != 4.0 {
		t.Errorf("menu = %v", body["dishes"])
	}
}

func TestInsufficientFunds(t *testing.T) {
	a := newAPI(t)
	student := a.register("student1", "")
	admin := a.register("admin1", "admin")

	_, body := a.do(http.MethodPost, "/api/dishes", admin, gin.H{"name": "Borscht", "category": "lunch", "price": "150.50", "quantity": 5})
	dishID := body["dish"].(map[string]any)["id"]

	status, body := a.do(http.MethodPost, "/api/orders", student, gin.H{"dish_id": dishID})
	expect(t, status, body, http.StatusPaymentRequired, "insufficient_funds")
}

func TestAuthorization(t *testing.T) {
	a := newAPI(t)
	student := a.register("student1", "student")
	cook := a.register("cook1", "cook")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
		kind   string
	}{
		{"no token", http.MethodGet, "/api/orders/my", "", http.StatusUnauthorized, "unauthenticated"},
		{"garbage token", http.MethodGet, "/api/orders/my", "abc", http.StatusUnauthorized, "unauthenticated"},
		{"student creates dish", http.MethodPost, "/api/dishes", student, http.StatusForbidden, "forbidden"},
		{"cook orders", http.MethodPost, "/api/orders", cook, http.StatusForbidden, "forbidden"},
		{"student serves", http.MethodPost, "/api/orders/1/serve", student, http.StatusForbidden, "forbidden"},
		{"student lists purchases", http.MethodGet, "/api/purchases", student, http.StatusForbidden, "forbidden"},
		{"cook reads reports", http.MethodGet, "/api/reports/summary", cook, http.StatusForbidden, "forbidden"},
		{"cancel missing order", http.MethodPost, "/api/orders/77/cancel", student, http.StatusNotFound, "not_found"},
		{"bad id", http.MethodPost, "/api/orders/abc/cancel", student, http.StatusBadRequest, "validation_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := a.do(tt.method, tt.path, tt.token, gin.H{})
			expect(t, status, body, tt.status, tt.kind)
		})
	}
}

func TestValidationMessages(t *testing.T) {
	a := newAPI(t)
	student := a.register("student1", "student")

	status, body := a.do(http.MethodPost, "/api/orders", student, gin.H{"meal_type": "dinner"})
	expect(t, status, body, http.StatusBadRequest, "validation_error")
	if body["error"] != "dish_id is required; meal_type must be one of: breakfast, lunch" {
		t.Errorf("error = %v", body["error"])
	}

	status, body = a.do(http.MethodPost, "/api/balance/topup", student, gin.H{"amount": 10.005})
	expect(t, status, body, http.StatusBadRequest, "validation_error")

	// Wraps to 500.00 if truncated to int64.
	status, body = a.do(http.MethodPost, "/api/balance/topup", student, gin.H{"amount": json.RawMessage("184467440737096016.16")})
	expect(t, status, body, http.StatusBadRequest, "validation_error")
	if body["error"] != "Amount is out of range" {
		t.Errorf("error = %v", body["error"])
	}
	_, body = a.do(http.MethodGet, "/api/user/profile", student, nil)
	if bal := body["user"].(map[string]any)["balance"]; bal != 0.0 {
		t.Errorf("balance after rejected top-up = %v", bal)
	}

	status, body = a.do(http.MethodPost, "/api/auth/register", "", gin.H{"username": "x", "password": "123", "full_name": "X"})
	expect(t, status, body, http.StatusBadRequest, "validation_error")

	status, body = a.do(http.MethodPost, "/api/auth/register", "", gin.H{"username": "student1", "password": "123456", "full_name": "X"})
	expect(t, status, body, http.StatusConflict, "conflict")

	status, body = a.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "student1", "password": "nope"})
	expect(t, status, body, http.StatusUnauthorized, "unauthenticated")
}

func TestPurchaseFlow(t *testing.T) {
	a := newAPI(t)
	cook := a.register("cook1", "cook")
	admin := a.register("admin1", "admin")

	_, body := a.do(http.MethodPost, "/api/dishes", admin, gin.H{"name": "Compote", "category": "drink", "price": 40})
	dishID := body["dish"].(map[string]any)["id"]

	status, body := a.do(http.MethodPost, "/api/purchases", cook, gin.H{"dish_id": dishID, "quantity": json.RawMessage("9000000000000000000")})
	expect(t, status, body, http.StatusBadRequest, "validation_error")
	if body["error"] != "quantity must be at most 100000" {
		t.Errorf("error = %v", body["error"])
	}

	status, body = a.do(http.MethodPost, "/api/purchases", cook, gin.H{"dish_id": dishID, "quantity": 12, "reason": "empty"})
	expect(t, status, body, http.StatusCreated, "")
	prID := uint(body["purchase_request"].(map[string]any)["id"].(float64))

	status, body = a.do(http.MethodPost, fmt.Sprintf("/api/purchases/%d/approve", prID), admin, gin.H{"comment": "go"})
	expect(t, status, body, http.StatusOK, "")
	if body["purchase_request"].(map[string]any)["status"] != "approved" {
		t.Errorf("approve = %v", body)
	}

	// No body at all is accepted as an empty comment.
	status, body = a.do(http.MethodPost, fmt.Sprintf("/api/purchases/%d/reject", prID), admin, nil)
	expect(t, status, body, http.StatusConflict, "invalid_state")

	status, body = a.do(http.MethodGet, "/api/dishes", admin, nil)
	expect(t, status, body, http.StatusOK, "")
	if q := body["dishes"].([]any)[0].(map[string]any)["quantity"]; q != 12.0 {
		t.Errorf("quantity after approve = %v", q)
	}

	status, body = a.do(http.MethodGet, "/api/purchases", cook, nil)
	expect(t, status, body, http.StatusOK, "")
	if body["count"] != 1.0 {
		t.Errorf("cook purchases = %v", body)
	}
}

func TestPublicEndpoints(t *testing.T) {
	a := newAPI(t)

	status, body := a.do(http.MethodGet, "/api/health", "", nil)
	expect(t, status, body, http.StatusOK, "")
	if body["status"] != "healthy" {
		t.Errorf("health = %v", body)
	}

	status, body = a.do(http.MethodGet, "/api/state-machine", "", nil)
	expect(t, status, body, http.StatusOK, "")
	orders := body["orders"].(map[string]any)
	if len(orders["transitions"].([]any)) != 4 {
		t.Errorf("order transitions = %v", orders["transitions"])
	}
}
