package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/events"
	"kopilka/internal/logger"
	"kopilka/internal/models"
	"kopilka/internal/services"
)

// GoalHandler handles savings goal requests.
type GoalHandler struct {
	goalService  services.GoalServicer
	auditService services.AuditServicer
	publisher    events.Publisher
}

// NewGoalHandler creates a new GoalHandler. Milestones reached through
// contributions are announced on publisher.
func NewGoalHandler(goalService services.GoalServicer, auditService services.AuditServicer, publisher events.Publisher) *GoalHandler {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &GoalHandler{goalService: goalService, auditService: auditService, publisher: publisher}
}

// CreateGoalRequest represents the request payload for creating a goal.
type CreateGoalRequest struct {
	Name         string          `json:"name" binding:"required,min=1,max=100"`
	TargetAmount decimal.Decimal `json:"target_amount" swaggertype:"string" binding:"gt=0"`
	Priority     int             `json:"priority" binding:"omitempty,min=1,max=3"`
	Deadline     *string         `json:"deadline"`
	ImageURL     string          `json:"image_url" binding:"omitempty,url,max=500"`
}

// ContributeRequest represents a top-up (positive amount) or a withdrawal
// (negative amount).
type ContributeRequest struct {
	Amount decimal.Decimal   `json:"amount" swaggertype:"string" binding:"nonzero_decimal"`
	Source models.GoalSource `json:"source" binding:"omitempty,goal_source"`
	Note   string            `json:"note" binding:"max=255"`
}

// CreateGoal handles the creation of a savings goal.
// @Summary     Create a goal
// @Description Create a savings goal
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateGoalRequest true "Goal details"
// @Success     201 {object} models.Goal "Goal created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals [post]
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var deadline *time.Time
	if req.Deadline != nil && *req.Deadline != "" {
		parsed, parseErr := parseFlexibleTime(*req.Deadline)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		deadline = &parsed
	}

	goal, err := h.goalService.CreateGoal(userID, req.Name, req.TargetAmount, req.Priority, deadline, req.ImageURL)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditCreateGoal, models.AuditResourceGoal, goal.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "target_amount": req.TargetAmount.String()})

	c.JSON(http.StatusCreated, gin.H{"goal": goal})
}

// GetGoals handles listing goals by status.
// @Summary     Get goals
// @Description List the user's goals with their history, most important first
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       status query string false "ACTIVE (default) or COMPLETED"
// @Success     200 {object} map[string][]models.Goal "Goals"
// @Failure     400 {object} ErrorResponse "Invalid status"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals [get]
func (h *GoalHandler) GetGoals(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goals, err := h.goalService.GetUserGoals(userID, models.GoalStatus(c.Query("status")))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

// GetGoal handles retrieving a goal.
// @Summary     Get goal by ID
// @Description Get a goal with its contribution history
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} models.Goal "Goal details"
// @Failure     400 {object} ErrorResponse "Invalid goal ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/{id} [get]
func (h *GoalHandler) GetGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.GetGoalByID(userID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// Contribute handles a top-up or withdrawal on a goal.
// @Summary     Contribute to a goal
// @Description Add (positive amount) or withdraw (negative amount) money. Returns the milestones crossed by this contribution.
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Goal ID"
// @Param       request body ContributeRequest true "Contribution"
// @Success     200 {object} services.ContributionResult "Updated goal and crossed milestones"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient funds"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/{id}/contributions [post]
func (h *GoalHandler) Contribute(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.goalService.Contribute(userID, goalID, req.Amount, req.Source, req.Note)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditContributeGoal, models.AuditResourceGoal, goalID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount.String(), "source": req.Source, "milestones": result.Milestones})

	h.publishMilestones(c, userID, result)

	c.JSON(http.StatusOK, result)
}

// publishMilestones announces milestones reached for the first time. The
// contribution is already committed, so failures are only logged.
func (h *GoalHandler) publishMilestones(c *gin.Context, userID string, result *services.ContributionResult) {
	now := time.Now().UTC()
	for _, m := range result.Notified {
		event := events.MilestoneReached{
			UserID:     userID,
			GoalID:     result.Goal.ID,
			GoalName:   result.Goal.Name,
			Milestone:  m,
			Completed:  m == 100,
			OccurredAt: now,
		}
		if err := h.publisher.PublishMilestone(c.Request.Context(), event); err != nil {
			logger.Get().Warnw("failed to publish milestone",
				"error", err,
				"goal_id", event.GoalID,
				"milestone", m,
			)
		}
	}
}

// DeleteGoal handles deleting a goal with its history.
// @Summary     Delete a goal
// @Description Delete a goal together with its contributions and notifications
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} map[string]bool "Goal deleted"
// @Failure     400 {object} ErrorResponse "Invalid goal ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/{id} [delete]
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.goalService.DeleteGoal(userID, goalID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditDeleteGoal, models.AuditResourceGoal, goalID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetGoalNotifications handles listing the milestones a goal has reached.
// @Summary     Get goal notifications
// @Description List the milestones reached by a goal
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} map[string][]models.GoalNotification "Notifications"
// @Failure     400 {object} ErrorResponse "Invalid goal ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/{id}/notifications [get]
func (h *GoalHandler) GetGoalNotifications(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	notifications, err := h.goalService.GetGoalNotifications(userID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}
