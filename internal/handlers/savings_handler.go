package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/models"
	"kopilka/internal/pagination"
	"kopilka/internal/services"
)

// SavingsHandler handles savings balance requests.
type SavingsHandler struct {
	savingsService services.SavingsServicer
	auditService   services.AuditServicer
}

// NewSavingsHandler creates a new SavingsHandler.
func NewSavingsHandler(savingsService services.SavingsServicer, auditService services.AuditServicer) *SavingsHandler {
	return &SavingsHandler{savingsService: savingsService, auditService: auditService}
}

// CreateSavingsRequest represents the request payload for opening a balance.
type CreateSavingsRequest struct {
	Currency      string          `json:"currency" binding:"required,iso4217"`
	InitialAmount decimal.Decimal `json:"initial_amount" swaggertype:"string" binding:"gte=0"`
}

// UpdateSavingsRequest represents the request payload for changing a balance.
type UpdateSavingsRequest struct {
	Amount      decimal.Decimal         `json:"amount" swaggertype:"string" binding:"gt=0"`
	Type        models.SavingsOperation `json:"type" binding:"required,savings_operation"`
	Description string                  `json:"description" binding:"max=255"`
}

// GetSavings handles listing the user's balances.
// @Summary     Get savings
// @Description List the user's savings balances with their history
// @Tags        savings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]models.Savings "Savings"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /savings [get]
func (h *SavingsHandler) GetSavings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	savings, err := h.savingsService.GetUserSavings(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"savings": savings})
}

// CreateSavings handles opening a balance in a currency. An existing balance
// in that currency is returned unchanged.
// @Summary     Get or create savings
// @Description Return the balance in a currency, creating it when missing
// @Tags        savings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateSavingsRequest true "Currency and optional initial amount"
// @Success     200 {object} models.Savings "Savings balance"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /savings [post]
func (h *SavingsHandler) CreateSavings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSavingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	savings, err := h.savingsService.GetOrCreateSavings(userID, req.Currency, req.InitialAmount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditCreateSavings, models.AuditResourceSavings, savings.ID, c.ClientIP(),
		map[string]interface{}{"currency": savings.Currency, "initial_amount": req.InitialAmount.String()})

	c.JSON(http.StatusOK, gin.H{"savings": savings})
}

// UpdateSavings handles adding to or subtracting from a balance.
// @Summary     Update savings
// @Description Add to or subtract from a savings balance
// @Tags        savings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Savings ID"
// @Param       request body UpdateSavingsRequest true "Operation"
// @Success     200 {object} models.Savings "Updated balance"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient funds"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Savings not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /savings/{id} [patch]
func (h *SavingsHandler) UpdateSavings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	savingsID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSavingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	savings, err := h.savingsService.UpdateSavings(userID, savingsID, req.Amount, req.Type, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditUpdateSavings, models.AuditResourceSavings, savings.ID, c.ClientIP(),
		map[string]interface{}{"type": req.Type, "amount": req.Amount.String()})

	c.JSON(http.StatusOK, gin.H{"savings": savings})
}

// GetSavingsTransactions handles listing a balance's history.
// @Summary     Get savings history
// @Description Get a paginated list of a balance's operations, newest first
// @Tags        savings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "Savings ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.SavingsTransaction] "Paginated history"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Savings not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /savings/{id}/transactions [get]
func (h *SavingsHandler) GetSavingsTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	savingsID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.savingsService.GetSavingsTransactions(userID, savingsID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
