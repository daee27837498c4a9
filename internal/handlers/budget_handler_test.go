package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/models"
	"kopilka/internal/services"
)

const testBudgetID = "01920000-0000-7000-8000-0000000000b1"

// --- mock budget service ---

type mockBudgetService struct {
	getBudgetFn         func(userID string, month, year int) (*models.Budget, error)
	createBudgetFn      func(userID string, month, year int, total decimal.Decimal, categories []services.BudgetCategoryInput) (*models.Budget, error)
	updateBudgetTotalFn func(userID, budgetID string, total decimal.Decimal) (*models.Budget, error)
}

func (m *mockBudgetService) GetBudget(userID string, month, year int) (*models.Budget, error) {
	if m.getBudgetFn != nil {
		return m.getBudgetFn(userID, month, year)
	}
	return nil, nil
}

func (m *mockBudgetService) CreateBudget(userID string, month, year int, total decimal.Decimal, categories []services.BudgetCategoryInput) (*models.Budget, error) {
	if m.createBudgetFn != nil {
		return m.createBudgetFn(userID, month, year, total, categories)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) UpdateBudgetTotal(userID, budgetID string, total decimal.Decimal) (*models.Budget, error) {
	if m.updateBudgetTotalFn != nil {
		return m.updateBudgetTotalFn(userID, budgetID, total)
	}
	return &models.Budget{}, nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

func setupBudgetRouter(handler *BudgetHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.GET("/budgets", handler.GetBudget)
	auth.POST("/budgets", handler.CreateBudget)
	auth.PATCH("/budgets/:id", handler.UpdateBudget)
	return r
}

func TestBudgetHandler_GetBudget(t *testing.T) {
	t.Run("defaults to the current month", func(t *testing.T) {
		var gotMonth, gotYear int
		svc := &mockBudgetService{
			getBudgetFn: func(_ string, month, year int) (*models.Budget, error) {
				gotMonth, gotYear = month, year
				return nil, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/budgets", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		now := time.Now()
		if gotMonth != int(now.Month()) || gotYear != now.Year() {
			t.Errorf("expected current period, got %d/%d", gotMonth, gotYear)
		}
		result := parseJSON(t, rec)
		if v, ok := result["budget"]; !ok || v != nil {
			t.Errorf("expected null budget, got %v", v)
		}
	})

	t.Run("returns categories with spent", func(t *testing.T) {
		svc := &mockBudgetService{
			getBudgetFn: func(userID string, month, year int) (*models.Budget, error) {
				return &models.Budget{
					Base:        models.Base{ID: testBudgetID},
					UserID:      userID,
					Month:       month,
					Year:        year,
					TotalAmount: decimal.NewFromInt(1000),
					Categories: []models.Category{
						{Name: "Food", BudgetAmount: decimal.NewFromInt(300), Spent: decimal.NewFromInt(120)},
					},
				}, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/budgets?month=3&year=2025", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		budget := parseJSON(t, rec)["budget"].(map[string]interface{})
		if budget["month"].(float64) != 3 || budget["year"].(float64) != 2025 {
			t.Errorf("unexpected period %v/%v", budget["month"], budget["year"])
		}
		categories := budget["categories"].([]interface{})
		if spent := categories[0].(map[string]interface{})["spent"]; spent != "120" {
			t.Errorf("expected spent 120, got %v", spent)
		}
	})

	t.Run("returns 400 on invalid month", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/budgets?month=13", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestBudgetHandler_CreateBudget(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var gotCategories []services.BudgetCategoryInput
		svc := &mockBudgetService{
			createBudgetFn: func(userID string, month, year int, total decimal.Decimal, categories []services.BudgetCategoryInput) (*models.Budget, error) {
				gotCategories = categories
				return &models.Budget{
					Base:        models.Base{ID: testBudgetID},
					UserID:      userID,
					Month:       month,
					Year:        year,
					TotalAmount: total,
				}, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/budgets",
			`{"month":5,"year":2025,"total_amount":"1500.50","categories":[{"name":"Food","icon":"cart","color":"#22c55e","budget_amount":400}]}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		budget := parseJSON(t, rec)["budget"].(map[string]interface{})
		if budget["total_amount"] != "1500.5" {
			t.Errorf("expected total 1500.5, got %v", budget["total_amount"])
		}
		if len(gotCategories) != 1 || gotCategories[0].Name != "Food" || !gotCategories[0].BudgetAmount.Equal(decimal.NewFromInt(400)) {
			t.Errorf("unexpected categories %+v", gotCategories)
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{"missing month", `{"year":2025,"total_amount":100}`},
		{"month out of range", `{"month":13,"year":2025,"total_amount":100}`},
		{"zero total", `{"month":1,"year":2025,"total_amount":0}`},
		{"negative category amount", `{"month":1,"year":2025,"total_amount":100,"categories":[{"name":"Food","budget_amount":-5}]}`},
		{"bad color", `{"month":1,"year":2025,"total_amount":100,"categories":[{"name":"Food","color":"green","budget_amount":5}]}`},
	}
	for _, tt := range tests {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

			rec := doRequest(r, "POST", "/budgets", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		})
	}
}

func TestBudgetHandler_UpdateBudget(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		svc := &mockBudgetService{
			updateBudgetTotalFn: func(_, budgetID string, total decimal.Decimal) (*models.Budget, error) {
				return &models.Budget{Base: models.Base{ID: budgetID}, TotalAmount: total}, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PATCH", "/budgets/"+testBudgetID, `{"total_amount":2000}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		budget := parseJSON(t, rec)["budget"].(map[string]interface{})
		if budget["total_amount"] != "2000" {
			t.Errorf("expected 2000, got %v", budget["total_amount"])
		}
	})

	t.Run("returns 400 on invalid id", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

		rec := doRequest(r, "PATCH", "/budgets/42", `{"total_amount":2000}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockBudgetService{
			updateBudgetTotalFn: func(_, _ string, _ decimal.Decimal) (*models.Budget, error) {
				return nil, apperrors.ErrBudgetNotFound
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PATCH", "/budgets/"+testBudgetID, `{"total_amount":2000}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BUDGET_NOT_FOUND")
	})
}
