package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "tracker/internal/errors"
	"tracker/internal/models"
	"tracker/internal/services"
)

// GoalHandler handles goal-related requests
type GoalHandler struct {
	goalService services.GoalServicer
}

// NewGoalHandler creates a new GoalHandler
func NewGoalHandler(goalService services.GoalServicer) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

// CreateGoalRequest represents the request body for creating a goal
type CreateGoalRequest struct {
	Name         string              `json:"name" binding:"required,min=1,max=100"`
	Type         models.GoalType     `json:"type" binding:"required,goal_type"`
	ReferenceID  string              `json:"referenceId" binding:"max=64"`
	Target       float64             `json:"target" binding:"required,gt=0"`
	Period       models.GoalPeriod   `json:"period" binding:"required,goal_period"`
	TrackingType models.TrackingType `json:"trackingType" binding:"omitempty,tracking_type"`
	StartDate    string              `json:"startDate" binding:"omitempty,iso_date"`
	EndDate      string              `json:"endDate" binding:"omitempty,iso_date"`
	Unit         string              `json:"unit" binding:"max=20"`
}

// UpdateGoalRequest represents the request body for editing a goal
type UpdateGoalRequest struct {
	Name         *string              `json:"name" binding:"omitempty,min=1,max=100"`
	Type         *models.GoalType     `json:"type" binding:"omitempty,goal_type"`
	ReferenceID  *string              `json:"referenceId" binding:"omitempty,max=64"`
	Target       *float64             `json:"target" binding:"omitempty,gt=0"`
	Period       *models.GoalPeriod   `json:"period" binding:"omitempty,goal_period"`
	TrackingType *models.TrackingType `json:"trackingType" binding:"omitempty,tracking_type"`
	Status       *models.GoalStatus   `json:"status" binding:"omitempty,goal_status"`
	StartDate    *string              `json:"startDate" binding:"omitempty,iso_date"`
	EndDate      *string              `json:"endDate"`
	Unit         *string              `json:"unit" binding:"omitempty,max=20"`
}

// GoalProgressRequest represents a new current value for a goal
type GoalProgressRequest struct {
	Current *float64 `json:"current" binding:"required"`
}

// ListGoals returns goals, optionally filtered by status
// @Summary     List goals
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       status query string false "Filter by status (active, completed, failed)"
// @Success     200 {object} map[string][]models.Goal "Goals"
// @Failure     400 {object} ErrorResponse "Invalid status"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals [get]
func (h *GoalHandler) ListGoals(c *gin.Context) {
	var status *models.GoalStatus
	if v := c.Query("status"); v != "" {
		s := models.GoalStatus(v)
		switch s {
		case models.GoalStatusActive, models.GoalStatusCompleted, models.GoalStatusFailed:
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid status"))
			return
		}
		status = &s
	}

	goals, err := h.goalService.ListGoals(c.Request.Context(), status)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

// CreateGoal handles the creation of a new goal
// @Summary     Create goal
// @Description Create an active goal with no progress
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateGoalRequest true "Goal data"
// @Success     201 {object} map[string]models.Goal "Goal created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals [post]
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	goal, err := h.goalService.AddGoal(c.Request.Context(), services.GoalInput{
		Name:         req.Name,
		Type:         req.Type,
		ReferenceID:  req.ReferenceID,
		Target:       req.Target,
		Period:       req.Period,
		TrackingType: req.TrackingType,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Unit:         req.Unit,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"goal": goal})
}

// GetGoal returns a single goal
// @Summary     Get goal
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} map[string]models.Goal "Goal"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/{id} [get]
func (h *GoalHandler) GetGoal(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.GetGoal(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// UpdateGoal edits a goal by hand
// @Summary     Update goal
// @Description Change goal fields; setting status here is the only way to mark a goal failed
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Param       request body UpdateGoalRequest true "Fields to change"
// @Success     200 {object} map[string]models.Goal "Goal updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/{id} [put]
func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	goal, err := h.goalService.UpdateGoal(c.Request.Context(), id, services.GoalUpdate{
		Name:         req.Name,
		Type:         req.Type,
		ReferenceID:  req.ReferenceID,
		Target:       req.Target,
		Period:       req.Period,
		TrackingType: req.TrackingType,
		Status:       req.Status,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Unit:         req.Unit,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// UpdateProgress sets a goal's current value
// @Summary     Update goal progress
// @Description Set the current value; the goal completes once it reaches the target
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Param       request body GoalProgressRequest true "Current value"
// @Success     200 {object} map[string]models.Goal "Goal updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/{id}/progress [put]
func (h *GoalHandler) UpdateProgress(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req GoalProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	goal, err := h.goalService.UpdateProgress(c.Request.Context(), id, *req.Current)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if goal == nil {
		respondWithError(c, apperrors.ErrGoalNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// DeleteGoal removes a goal
// @Summary     Delete goal
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} MessageResponse "Goal deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/{id} [delete]
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.goalService.DeleteGoal(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Goal deleted successfully"})
}
