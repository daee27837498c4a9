package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/models"
	"kopilka/internal/services"
)

const testCategoryID = "01920000-0000-7000-8000-0000000000c1"

// --- mock category service ---

type mockCategoryService struct {
	addCategoryFn     func(userID, budgetID, name, icon, color string, amount decimal.Decimal) (*models.Category, error)
	getCategoryByIDFn func(userID, categoryID string) (*models.Category, error)
	updateCategoryFn  func(userID, categoryID string, update services.CategoryUpdate) (*models.Category, error)
	deleteCategoryFn  func(userID, categoryID string) error
}

func (m *mockCategoryService) AddCategory(userID, budgetID, name, icon, color string, amount decimal.Decimal) (*models.Category, error) {
	if m.addCategoryFn != nil {
		return m.addCategoryFn(userID, budgetID, name, icon, color, amount)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	if m.getCategoryByIDFn != nil {
		return m.getCategoryByIDFn(userID, categoryID)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) UpdateCategory(userID, categoryID string, update services.CategoryUpdate) (*models.Category, error) {
	if m.updateCategoryFn != nil {
		return m.updateCategoryFn(userID, categoryID, update)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) DeleteCategory(userID, categoryID string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(userID, categoryID)
	}
	return nil
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

func setupCategoryRouter(handler *CategoryHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/budgets/:id/categories", handler.AddCategory)
	auth.GET("/categories/:id", handler.GetCategory)
	auth.PATCH("/categories/:id", handler.UpdateCategory)
	auth.DELETE("/categories/:id", handler.DeleteCategory)
	return r
}

func TestCategoryHandler_AddCategory(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var gotBudgetID string
		svc := &mockCategoryService{
			addCategoryFn: func(_, budgetID, name, icon, color string, amount decimal.Decimal) (*models.Category, error) {
				gotBudgetID = budgetID
				return &models.Category{
					Base:         models.Base{ID: testCategoryID},
					BudgetID:     budgetID,
					Name:         name,
					Icon:         icon,
					Color:        color,
					BudgetAmount: amount,
				}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/budgets/"+testBudgetID+"/categories",
			`{"name":"Transport","icon":"bus","color":"#3b82f6","budget_amount":"150.25"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotBudgetID != testBudgetID {
			t.Errorf("expected budget %s, got %s", testBudgetID, gotBudgetID)
		}
		category := parseJSON(t, rec)["category"].(map[string]interface{})
		if category["budget_amount"] != "150.25" {
			t.Errorf("expected 150.25, got %v", category["budget_amount"])
		}
	})

	t.Run("returns 400 on zero amount", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/budgets/"+testBudgetID+"/categories", `{"name":"Transport","budget_amount":0}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 for foreign budget", func(t *testing.T) {
		svc := &mockCategoryService{
			addCategoryFn: func(_, _, _, _, _ string, _ decimal.Decimal) (*models.Category, error) {
				return nil, apperrors.ErrBudgetNotFound
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/budgets/"+testBudgetID+"/categories", `{"name":"Transport","budget_amount":10}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BUDGET_NOT_FOUND")
	})
}

func TestCategoryHandler_UpdateCategory(t *testing.T) {
	t.Run("passes only provided fields", func(t *testing.T) {
		var got services.CategoryUpdate
		svc := &mockCategoryService{
			updateCategoryFn: func(_, categoryID string, update services.CategoryUpdate) (*models.Category, error) {
				got = update
				return &models.Category{Base: models.Base{ID: categoryID}, Spent: *update.Spent}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PATCH", "/categories/"+testCategoryID, `{"spent":"0"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.BudgetAmount != nil {
			t.Errorf("expected no budget amount, got %s", got.BudgetAmount)
		}
		if got.Spent == nil || !got.Spent.IsZero() {
			t.Errorf("expected spent 0, got %v", got.Spent)
		}
		category := parseJSON(t, rec)["category"].(map[string]interface{})
		if category["spent"] != "0" {
			t.Errorf("expected spent 0 in response, got %v", category["spent"])
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{"negative spent", `{"spent":-1}`},
		{"zero budget amount", `{"budget_amount":0}`},
	}
	for _, tt := range tests {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

			rec := doRequest(r, "PATCH", "/categories/"+testCategoryID, tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockCategoryService{
			updateCategoryFn: func(_, _ string, _ services.CategoryUpdate) (*models.Category, error) {
				return nil, apperrors.ErrCategoryNotFound
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PATCH", "/categories/"+testCategoryID, `{"budget_amount":10}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_NOT_FOUND")
	})
}

func TestCategoryHandler_GetCategory(t *testing.T) {
	svc := &mockCategoryService{
		getCategoryByIDFn: func(_, categoryID string) (*models.Category, error) {
			return &models.Category{Base: models.Base{ID: categoryID}, Name: "Food", Spent: decimal.NewFromInt(50)}, nil
		},
	}
	r := setupCategoryRouter(NewCategoryHandler(svc, &mockAuditService{}))

	rec := doRequest(r, "GET", "/categories/"+testCategoryID, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	category := parseJSON(t, rec)["category"].(map[string]interface{})
	if category["spent"] != "50" {
		t.Errorf("expected spent 50, got %v", category["spent"])
	}
}

func TestCategoryHandler_DeleteCategory(t *testing.T) {
	t.Run("returns success flag", func(t *testing.T) {
		var deleted string
		svc := &mockCategoryService{
			deleteCategoryFn: func(_, categoryID string) error {
				deleted = categoryID
				return nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/categories/"+testCategoryID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if parseJSON(t, rec)["success"] != true {
			t.Error("expected success true")
		}
		if deleted != testCategoryID {
			t.Errorf("expected %s deleted, got %s", testCategoryID, deleted)
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockCategoryService{
			deleteCategoryFn: func(_, _ string) error { return apperrors.ErrCategoryNotFound },
		}
		r := setupCategoryRouter(NewCategoryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/categories/"+testCategoryID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
