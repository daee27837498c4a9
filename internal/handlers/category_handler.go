package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/models"
	"kopilka/internal/services"
)

// CategoryHandler handles budget category requests.
type CategoryHandler struct {
	categoryService services.CategoryServicer
	auditService    services.AuditServicer
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryService services.CategoryServicer, auditService services.AuditServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, auditService: auditService}
}

// AddCategoryRequest represents the request payload for adding a category to a budget.
type AddCategoryRequest struct {
	Name         string          `json:"name" binding:"required,min=1,max=100"`
	Icon         string          `json:"icon" binding:"max=50"`
	Color        string          `json:"color" binding:"omitempty,hex_color"`
	BudgetAmount decimal.Decimal `json:"budget_amount" swaggertype:"string" binding:"gt=0"`
}

// UpdateCategoryRequest represents the request payload for updating a
// category. Spent is the desired spending total of the category.
type UpdateCategoryRequest struct {
	BudgetAmount *decimal.Decimal `json:"budget_amount" swaggertype:"string" binding:"omitempty,gt=0"`
	Spent        *decimal.Decimal `json:"spent" swaggertype:"string" binding:"omitempty,gte=0"`
}

// AddCategory handles adding a category to a budget.
// @Summary     Add a category
// @Description Add a spending category to a budget
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Budget ID"
// @Param       request body AddCategoryRequest true "Category details"
// @Success     201 {object} models.Category "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/categories [post]
func (h *CategoryHandler) AddCategory(c *gin.Context) {
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

	var req AddCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.AddCategory(userID, budgetID, req.Name, req.Icon, req.Color, req.BudgetAmount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditCreateCategory, models.AuditResourceCategory, category.ID, c.ClientIP(),
		map[string]interface{}{"budget_id": budgetID, "name": req.Name, "budget_amount": req.BudgetAmount.String()})

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// GetCategory handles retrieving a category with its spending.
// @Summary     Get category by ID
// @Description Get a category with the amount spent in it
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Success     200 {object} models.Category "Category details"
// @Failure     400 {object} ErrorResponse "Invalid category ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.GetCategoryByID(userID, categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// UpdateCategory handles changing a category's budget amount or its spending
// total. A spending change is recorded as a correcting transaction.
// @Summary     Update a category
// @Description Change the budget amount and/or the spent total of a category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Category ID"
// @Param       request body UpdateCategoryRequest true "Fields to update"
// @Success     200 {object} models.Category "Category updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id} [patch]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.UpdateCategory(userID, categoryID, services.CategoryUpdate{
		BudgetAmount: req.BudgetAmount,
		Spent:        req.Spent,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]interface{}{}
	if req.BudgetAmount != nil {
		changes["budget_amount"] = req.BudgetAmount.String()
	}
	if req.Spent != nil {
		changes["spent"] = req.Spent.String()
	}
	h.auditService.Log(userID, models.AuditUpdateCategory, models.AuditResourceCategory, category.ID, c.ClientIP(), changes)

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory handles deleting a category. Its transactions are kept
// without a category.
// @Summary     Delete a category
// @Description Delete a category; its transactions become uncategorized
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Success     200 {object} map[string]bool "Category deleted"
// @Failure     400 {object} ErrorResponse "Invalid category ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.categoryService.DeleteCategory(userID, categoryID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditDeleteCategory, models.AuditResourceCategory, categoryID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"success": true})
}
