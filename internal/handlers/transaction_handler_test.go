package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/models"
	"kopilka/internal/pagination"
	"kopilka/internal/services"
)

const testTransactionID = "01920000-0000-7000-8000-0000000000d1"

// --- mock transaction service ---

type mockTransactionService struct {
	createTransactionFn   func(userID string, categoryID *string, txType models.TransactionType, amount decimal.Decimal, description string, date time.Time) (*models.Transaction, error)
	getUserTransactionsFn func(userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	getTransactionByIDFn  func(userID, transactionID string) (*models.Transaction, error)
	deleteTransactionFn   func(userID, transactionID string) error
}

func (m *mockTransactionService) CreateTransaction(userID string, categoryID *string, txType models.TransactionType, amount decimal.Decimal, description string, date time.Time) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(userID, categoryID, txType, amount, description, date)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.getUserTransactionsFn != nil {
		return m.getUserTransactionsFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(userID, transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(userID, transactionID string) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(userID, transactionID)
	}
	return nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/transactions", handler.CreateTransaction)
	auth.GET("/transactions", handler.GetUserTransactions)
	auth.GET("/transactions/:id", handler.GetTransactionByID)
	auth.DELETE("/transactions/:id", handler.DeleteTransaction)
	return r
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var gotCategory *string
		var gotDate time.Time
		svc := &mockTransactionService{
			createTransactionFn: func(userID string, categoryID *string, txType models.TransactionType, amount decimal.Decimal, description string, date time.Time) (*models.Transaction, error) {
				gotCategory = categoryID
				gotDate = date
				return &models.Transaction{
					Base:        models.Base{ID: testTransactionID},
					UserID:      userID,
					CategoryID:  categoryID,
					Type:        txType,
					Amount:      amount,
					Description: description,
					Date:        date,
				}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions",
			`{"category_id":"`+testCategoryID+`","type":"EXPENSE","amount":"12.30","description":"Lunch","date":"2025-03-14"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotCategory == nil || *gotCategory != testCategoryID {
			t.Errorf("expected category %s, got %v", testCategoryID, gotCategory)
		}
		if !gotDate.Equal(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected date %v", gotDate)
		}
		tx := parseJSON(t, rec)["transaction"].(map[string]interface{})
		if tx["amount"] != "12.3" || tx["type"] != "EXPENSE" {
			t.Errorf("unexpected transaction %v", tx)
		}
	})

	t.Run("category is optional", func(t *testing.T) {
		called := false
		svc := &mockTransactionService{
			createTransactionFn: func(_ string, categoryID *string, _ models.TransactionType, _ decimal.Decimal, _ string, _ time.Time) (*models.Transaction, error) {
				called = true
				if categoryID != nil {
					t.Errorf("expected nil category, got %s", *categoryID)
				}
				return &models.Transaction{Base: models.Base{ID: testTransactionID}}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions", `{"type":"INCOME","amount":100}`)

		if rec.Code != http.StatusCreated || !called {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{"lowercase type", `{"type":"expense","amount":10}`},
		{"zero amount", `{"type":"EXPENSE","amount":0}`},
		{"negative amount", `{"type":"EXPENSE","amount":-3}`},
		{"bad category id", `{"type":"EXPENSE","amount":10,"category_id":"7"}`},
		{"bad date", `{"type":"EXPENSE","amount":10,"date":"14.03.2025"}`},
	}
	for _, tt := range tests {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

			rec := doRequest(r, "POST", "/transactions", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		})
	}
}

func TestTransactionHandler_GetUserTransactions(t *testing.T) {
	t.Run("parses filters and pagination", func(t *testing.T) {
		var gotPage pagination.PageRequest
		var gotFilter services.TransactionFilter
		svc := &mockTransactionService{
			getUserTransactionsFn: func(_ string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				gotPage, gotFilter = page, filter
				resp := pagination.NewPageResponse([]models.Transaction{{Base: models.Base{ID: testTransactionID}}}, 2, 10, 11)
				return &resp, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions?month=3&year=2025&type=INCOME&category_id="+testCategoryID+"&page=2&page_size=10", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotPage.Page != 2 || gotPage.PageSize != 10 {
			t.Errorf("unexpected page %+v", gotPage)
		}
		if *gotFilter.Month != 3 || *gotFilter.Year != 2025 || *gotFilter.Type != models.TransactionTypeIncome || *gotFilter.CategoryID != testCategoryID {
			t.Errorf("unexpected filter %+v", gotFilter)
		}
		result := parseJSON(t, rec)
		if result["total_pages"].(float64) != 2 {
			t.Errorf("expected 2 pages, got %v", result["total_pages"])
		}
	})

	tests := []struct {
		name  string
		query string
	}{
		{"bad type", "?type=TRANSFER"},
		{"bad month", "?month=0&year=2025"},
		{"bad category", "?category_id=abc"},
		{"page size too large", "?page_size=1000"},
	}
	for _, tt := range tests {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

			rec := doRequest(r, "GET", "/transactions"+tt.query, "")

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestTransactionHandler_GetTransactionByID(t *testing.T) {
	t.Run("returns 404 for foreign transaction", func(t *testing.T) {
		svc := &mockTransactionService{
			getTransactionByIDFn: func(_, _ string) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions/"+testTransactionID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
	})

	t.Run("returns 400 on invalid id", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions/abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_DeleteTransaction(t *testing.T) {
	var deleted string
	svc := &mockTransactionService{
		deleteTransactionFn: func(_, transactionID string) error {
			deleted = transactionID
			return nil
		},
	}
	r := setupTransactionRouter(NewTransactionHandler(svc, &mockAuditService{}))

	rec := doRequest(r, "DELETE", "/transactions/"+testTransactionID, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if deleted != testTransactionID {
		t.Errorf("expected %s deleted, got %s", testTransactionID, deleted)
	}
}
