package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/models"
	"kopilka/internal/services"
)

// BudgetHandler handles monthly budget requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// BudgetCategoryRequest describes one category of a new budget.
type BudgetCategoryRequest struct {
	Name         string          `json:"name" binding:"required,min=1,max=100"`
	Icon         string          `json:"icon" binding:"max=50"`
	Color        string          `json:"color" binding:"omitempty,hex_color"`
	BudgetAmount decimal.Decimal `json:"budget_amount" swaggertype:"string" binding:"gt=0"`
}

// CreateBudgetRequest represents the request payload for creating or
// replacing the budget of a month.
type CreateBudgetRequest struct {
	Month       int                     `json:"month" binding:"required,min=1,max=12"`
	Year        int                     `json:"year" binding:"required,min=1970,max=9999"`
	TotalAmount decimal.Decimal         `json:"total_amount" swaggertype:"string" binding:"gt=0"`
	Categories  []BudgetCategoryRequest `json:"categories" binding:"omitempty,dive"`
}

// UpdateBudgetRequest represents the request payload for changing a budget total.
type UpdateBudgetRequest struct {
	TotalAmount decimal.Decimal `json:"total_amount" swaggertype:"string" binding:"gt=0"`
}

// GetBudget handles retrieving the budget of a month.
// @Summary     Get budget for a month
// @Description Get the budget of a month with its categories and their spending. The budget is null when the month has none.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       month query int false "Month 1-12 (default current)"
// @Param       year  query int false "Year (default current)"
// @Success     200 {object} map[string]models.Budget "Budget"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, year, err := parsePeriod(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudget(userID, month, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// CreateBudget handles creating the budget of a month, replacing any
// existing one.
// @Summary     Create a budget
// @Description Create the budget of a month with its categories. An existing budget for the month is replaced.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	categories := make([]services.BudgetCategoryInput, 0, len(req.Categories))
	for _, cat := range req.Categories {
		categories = append(categories, services.BudgetCategoryInput{
			Name:         cat.Name,
			Icon:         cat.Icon,
			Color:        cat.Color,
			BudgetAmount: cat.BudgetAmount,
		})
	}

	budget, err := h.budgetService.CreateBudget(userID, req.Month, req.Year, req.TotalAmount, categories)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditCreateBudget, models.AuditResourceBudget, budget.ID, c.ClientIP(),
		map[string]interface{}{"month": req.Month, "year": req.Year, "total_amount": req.TotalAmount.String()})

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// UpdateBudget handles changing a budget total.
// @Summary     Update budget total
// @Description Change the total amount of a budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Budget ID"
// @Param       request body UpdateBudgetRequest true "New total"
// @Success     200 {object} models.Budget "Budget updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [patch]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.UpdateBudgetTotal(userID, budgetID, req.TotalAmount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditUpdateBudget, models.AuditResourceBudget, budget.ID, c.ClientIP(),
		map[string]interface{}{"total_amount": req.TotalAmount.String()})

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}
