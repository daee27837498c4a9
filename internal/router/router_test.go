package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"kopilka/internal/events"
	"kopilka/internal/logger"
	"kopilka/internal/ratelimit"
	"kopilka/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
}

type client struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func (c *client) do(method, path, body string) (int, map[string]interface{}) {
	c.t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			c.t.Fatalf("%s %s: invalid JSON %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code, out
}

func (c *client) mustDo(method, path, body string, want int) map[string]interface{} {
	c.t.Helper()
	code, out := c.do(method, path, body)
	if code != want {
		c.t.Fatalf("%s %s: expected %d, got %d: %v", method, path, want, code, out)
	}
	return out
}

func object(t *testing.T, v interface{}, key string) map[string]interface{} {
	t.Helper()
	m, ok := v.(map[string]interface{})
	if !ok {
		t.Fatalf("expected object, got %T", v)
	}
	obj, ok := m[key].(map[string]interface{})
	if !ok {
		t.Fatalf("expected object at %q, got %v", key, m[key])
	}
	return obj
}

func money(t *testing.T, v interface{}) decimal.Decimal {
	t.Helper()
	s, ok := v.(string)
	if !ok {
		t.Fatalf("expected decimal string, got %T %v", v, v)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid decimal %q: %v", s, err)
	}
	return d
}

func newTestRouter(t *testing.T, limiter ratelimit.Limiter) *gin.Engine {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	return New(Options{
		DB:             db,
		AuthLimiter:    limiter,
		Publisher:      events.Nop{},
		AllowedOrigins: []string{"*"},
	})
}

func TestHealth(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t, nil)}
	out := c.mustDo(http.MethodGet, "/api/health", "", http.StatusOK)
	if out["status"] != "ok" {
		t.Errorf("unexpected body %v", out)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t, nil)}

	for _, path := range []string{"/api/v1/profile", "/api/v1/budgets", "/api/v1/goals", "/api/v1/dashboard"} {
		code, _ := c.do(http.MethodGet, path, "")
		if code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, code)
		}
	}
}

func TestAuthRateLimit(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t, ratelimit.NewMemory(2))}
	body := `{"email":"nobody@example.com","password":"password123"}`

	for i := 0; i < 2; i++ {
		code, _ := c.do(http.MethodPost, "/api/v1/auth/login", body)
		if code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, code)
		}
	}

	code, out := c.do(http.MethodPost, "/api/v1/auth/login", body)
	if code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
	if object(t, out, "error")["code"] != "RATE_LIMITED" {
		t.Errorf("unexpected body %v", out)
	}
}

func TestFinanceFlow(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t, ratelimit.NewMemory(100))}
	now := time.Now().UTC()

	// Register and use the issued token.
	out := c.mustDo(http.MethodPost, "/api/v1/auth/register",
		`{"email":"anna@example.com","password":"password123","name":"Anna","currency":"BYN"}`, http.StatusCreated)
	token, _ := out["access_token"].(string)
	if token == "" {
		t.Fatalf("missing access token: %v", out)
	}
	c.token = token

	profile := object(t, c.mustDo(http.MethodGet, "/api/v1/profile", "", http.StatusOK), "user")
	if profile["email"] != "anna@example.com" || profile["currency"] != "BYN" {
		t.Errorf("unexpected profile %v", profile)
	}

	// Budget with one category.
	out = c.mustDo(http.MethodPost, "/api/v1/budgets", fmt.Sprintf(
		`{"month":%d,"year":%d,"total_amount":"1500.50","categories":[{"name":"Food","color":"#ff0000","budget_amount":"400"}]}`,
		int(now.Month()), now.Year()), http.StatusCreated)
	budget := object(t, out, "budget")
	budgetID := budget["id"].(string)
	categories := budget["categories"].([]interface{})
	if len(categories) != 1 {
		t.Fatalf("expected 1 category, got %v", categories)
	}
	foodID := categories[0].(map[string]interface{})["id"].(string)

	out = c.mustDo(http.MethodPost, "/api/v1/budgets/"+budgetID+"/categories",
		`{"name":"Transport","budget_amount":"100"}`, http.StatusCreated)
	transportID := object(t, out, "category")["id"].(string)

	// Expense in the food category.
	c.mustDo(http.MethodPost, "/api/v1/transactions", fmt.Sprintf(
		`{"category_id":%q,"type":"EXPENSE","amount":"120.25","description":"Groceries"}`, foodID), http.StatusCreated)

	out = c.mustDo(http.MethodGet, fmt.Sprintf("/api/v1/budgets?month=%d&year=%d", int(now.Month()), now.Year()), "", http.StatusOK)
	for _, raw := range object(t, out, "budget")["categories"].([]interface{}) {
		cat := raw.(map[string]interface{})
		if cat["id"] == foodID && !money(t, cat["spent"]).Equal(decimal.RequireFromString("120.25")) {
			t.Errorf("expected food spent 120.25, got %v", cat["spent"])
		}
	}

	// Correct spent directly.
	out = c.mustDo(http.MethodPatch, "/api/v1/categories/"+foodID, `{"spent":"100"}`, http.StatusOK)
	if got := money(t, object(t, out, "category")["spent"]); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected spent 100 after correction, got %s", got)
	}

	c.mustDo(http.MethodDelete, "/api/v1/categories/"+transportID, "", http.StatusOK)
	code, _ := c.do(http.MethodGet, "/api/v1/categories/"+transportID, "")
	if code != http.StatusNotFound {
		t.Errorf("deleted category: expected 404, got %d", code)
	}

	out = c.mustDo(http.MethodGet, "/api/v1/transactions", "", http.StatusOK)
	if out["total_items"] == nil {
		t.Errorf("expected paginated transactions, got %v", out)
	}

	// Goal reaching its milestones over two contributions.
	out = c.mustDo(http.MethodPost, "/api/v1/goals", `{"name":"Bike","target_amount":"1000","priority":2}`, http.StatusCreated)
	goalID := object(t, out, "goal")["id"].(string)

	code, out = c.do(http.MethodPost, "/api/v1/goals/"+goalID+"/contributions", `{"amount":"0.004"}`)
	if code != http.StatusBadRequest || object(t, out, "error")["code"] != "INVALID_INPUT" {
		t.Errorf("sub-cent contribution: expected 400 INVALID_INPUT, got %d %v", code, out)
	}

	out = c.mustDo(http.MethodPost, "/api/v1/goals/"+goalID+"/contributions", `{"amount":"600"}`, http.StatusOK)
	assertMilestones(t, out, 20, 50)
	if got := object(t, out, "goal")["percentage"]; got != float64(60) {
		t.Errorf("expected 60%%, got %v", got)
	}

	out = c.mustDo(http.MethodPost, "/api/v1/goals/"+goalID+"/contributions", `{"amount":"400","source":"FROM_SAVINGS"}`, http.StatusOK)
	assertMilestones(t, out, 80, 100)
	if got := object(t, out, "goal")["status"]; got != "COMPLETED" {
		t.Errorf("expected COMPLETED, got %v", got)
	}

	out = c.mustDo(http.MethodGet, "/api/v1/goals/"+goalID+"/notifications", "", http.StatusOK)
	if n := out["notifications"].([]interface{}); len(n) != 4 {
		t.Errorf("expected 4 notifications, got %d", len(n))
	}

	// Savings.
	out = c.mustDo(http.MethodPost, "/api/v1/savings", `{"currency":"USD","initial_amount":"200"}`, http.StatusOK)
	savingsID := object(t, out, "savings")["id"].(string)

	out = c.mustDo(http.MethodPatch, "/api/v1/savings/"+savingsID, `{"amount":"50","type":"SUBTRACT"}`, http.StatusOK)
	if got := money(t, object(t, out, "savings")["amount"]); !got.Equal(decimal.NewFromInt(150)) {
		t.Errorf("expected 150, got %s", got)
	}

	code, out = c.do(http.MethodPatch, "/api/v1/savings/"+savingsID, `{"amount":"10.005","type":"ADD"}`)
	if code != http.StatusBadRequest || object(t, out, "error")["code"] != "INVALID_INPUT" {
		t.Errorf("sub-cent savings update: expected 400 INVALID_INPUT, got %d %v", code, out)
	}

	code, out = c.do(http.MethodPatch, "/api/v1/savings/"+savingsID, `{"amount":"500","type":"SUBTRACT"}`)
	if code != http.StatusBadRequest || object(t, out, "error")["code"] != "INSUFFICIENT_FUNDS" {
		t.Errorf("overdraw: expected 400 INSUFFICIENT_FUNDS, got %d %v", code, out)
	}

	// Dashboard pulls it together.
	out = c.mustDo(http.MethodGet, "/api/v1/dashboard", "", http.StatusOK)
	if out["budget"] == nil {
		t.Error("expected budget on dashboard")
	}
	if savings := out["savings"].([]interface{}); len(savings) != 1 {
		t.Errorf("expected 1 savings balance, got %d", len(savings))
	}
}

func assertMilestones(t *testing.T, out map[string]interface{}, want ...int) {
	t.Helper()
	got, ok := out["milestones"].([]interface{})
	if !ok || len(got) != len(want) {
		t.Fatalf("expected milestones %v, got %v", want, out["milestones"])
	}
	for i, m := range want {
		if got[i] != float64(m) {
			t.Errorf("milestone %d: expected %d, got %v", i, m, got[i])
		}
	}
}
