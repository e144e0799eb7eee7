package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tracker/internal/dates"
	apperrors "tracker/internal/errors"
	"tracker/internal/models"
	"tracker/internal/services"
)

// HabitHandler handles habit-related requests
type HabitHandler struct {
	habitService services.HabitServicer
}

// NewHabitHandler creates a new HabitHandler
func NewHabitHandler(habitService services.HabitServicer) *HabitHandler {
	return &HabitHandler{habitService: habitService}
}

// CreateHabitRequest represents the request body for creating a habit
type CreateHabitRequest struct {
	Name      string               `json:"name" binding:"required,min=1,max=100"`
	Category  models.HabitCategory `json:"category" binding:"required,habit_category"`
	GoalValue float64              `json:"goalValue" binding:"required,gt=0"`
	Type      models.HabitType     `json:"type" binding:"required,habit_type"`
	Unit      string               `json:"unit" binding:"max=20"`
	Period    models.HabitPeriod   `json:"period" binding:"omitempty,habit_period"`
	Active    *bool                `json:"active"`
}

// UpdateHabitRequest represents the request body for updating a habit
type UpdateHabitRequest struct {
	Name      *string               `json:"name" binding:"omitempty,min=1,max=100"`
	Category  *models.HabitCategory `json:"category" binding:"omitempty,habit_category"`
	GoalValue *float64              `json:"goalValue" binding:"omitempty,gt=0"`
	Type      *models.HabitType     `json:"type" binding:"omitempty,habit_type"`
	Unit      *string               `json:"unit" binding:"omitempty,max=20"`
	Period    *models.HabitPeriod   `json:"period" binding:"omitempty,habit_period"`
	Active    *bool                 `json:"active"`
}

// ToggleEntryRequest represents the request body for ticking a habit on a date
type ToggleEntryRequest struct {
	Date string `json:"date" binding:"required,iso_date"`
}

// SetValueRequest represents the request body for logging a numeric habit value
type SetValueRequest struct {
	Date  string   `json:"date" binding:"required,iso_date"`
	Value *float64 `json:"value" binding:"required,gte=0"`
}

// SelectMonthRequest represents the request body for switching the displayed month
type SelectMonthRequest struct {
	Month string `json:"month" binding:"required,month"`
}

// ListHabits returns every habit in display order
// @Summary     List habits
// @Description Get all habits ordered by their display order
// @Tags        habits
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]models.Habit "Habits"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /habits [get]
func (h *HabitHandler) ListHabits(c *gin.Context) {
	habits, err := h.habitService.ListHabits(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habits": habits})
}

// CreateHabit handles the creation of a new habit
// @Summary     Create habit
// @Description Create a new habit; it is placed after all existing habits
// @Tags        habits
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateHabitRequest true "Habit data"
// @Success     201 {object} map[string]models.Habit "Habit created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /habits [post]
func (h *HabitHandler) CreateHabit(c *gin.Context) {
	var req CreateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	habit, err := h.habitService.AddHabit(c.Request.Context(), services.HabitInput{
		Name:      req.Name,
		Category:  req.Category,
		GoalValue: req.GoalValue,
		Type:      req.Type,
		Unit:      req.Unit,
		Period:    req.Period,
		Active:    active,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"habit": habit})
}

// GetHabit returns a single habit
// @Summary     Get habit
// @Description Get a habit by ID
// @Tags        habits
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Habit ID"
// @Success     200 {object} map[string]models.Habit "Habit"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Habit not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /habits/{id} [get]
func (h *HabitHandler) GetHabit(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	habit, err := h.habitService.GetHabit(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habit": habit})
}

// UpdateHabit handles partial habit updates
// @Summary     Update habit
// @Description Change any of a habit's fields
// @Tags        habits
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Habit ID"
// @Param       request body UpdateHabitRequest true "Fields to change"
// @Success     200 {object} map[string]models.Habit "Habit updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Habit not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /habits/{id} [put]
func (h *HabitHandler) UpdateHabit(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	habit, err := h.habitService.UpdateHabit(c.Request.Context(), id, services.HabitUpdate{
		Name:      req.Name,
		Category:  req.Category,
		GoalValue: req.GoalValue,
		Type:      req.Type,
		Unit:      req.Unit,
		Period:    req.Period,
		Active:    req.Active,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habit": habit})
}

// DeleteHabit removes a habit together with its entries
// @Summary     Delete habit
// @Description Delete a habit and every entry logged against it
// @Tags        habits
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Habit ID"
// @Success     200 {object} MessageResponse "Habit deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /habits/{id} [delete]
func (h *HabitHandler) DeleteHabit(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.habitService.DeleteHabit(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Habit deleted successfully"})
}

// GetSelectedMonth returns the month the habit views currently show
// @Summary     Get selected month
// @Description Returns the selected month with the previous and next months for navigation
// @Tags        habits
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]string "Selected month"
// @Router      /habits/month [get]
func (h *HabitHandler) GetSelectedMonth(c *gin.Context) {
	c.JSON(http.StatusOK, monthNavigation(h.habitService.SelectedMonth()))
}

// SelectMonth switches the month the habit views show
// @Summary     Select month
// @Description Switch the displayed month and load its entries
// @Tags        habits
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SelectMonthRequest true "Month as YYYY-MM"
// @Success     200 {object} map[string]string "Selected month"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /habits/month [put]
func (h *HabitHandler) SelectMonth(c *gin.Context) {
	var req SelectMonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	month, err := dates.ParseMonth(req.Month)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInvalidMonth, err))
		return
	}
	if err := h.habitService.SelectMonth(c.Request.Context(), month); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, monthNavigation(month))
}

func monthNavigation(m dates.Month) gin.H {
	return gin.H{
		"month":    m.String(),
		"previous": m.Prev().String(),
		"next":     m.Next().String(),
	}
}

// ListEntries returns the entries logged in the selected month
// @Summary     List month entries
// @Tags        habits
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month as YYYY-MM; switches the selected month"
// @Success     200 {object} map[string]interface{} "Entries"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /habits/entries [get]
func (h *HabitHandler) ListEntries(c *gin.Context) {
	if err := applyMonthQuery(c, h.habitService); err != nil {
		respondWithError(c, err)
		return
	}

	entries, err := h.habitService.MonthEntries(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"month":   h.habitService.SelectedMonth().String(),
		"entries": entries,
	})
}

// ToggleEntry ticks or unticks a habit on a date
// @Summary     Toggle entry
// @Description Create the entry for the date if absent, otherwise remove it
// @Tags        habits
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Habit ID"
// @Param       request body ToggleEntryRequest true "Date"
// @Success     200 {object} map[string]interface{} "Entry after the toggle; null when removed"
// @Failure     400 {object} ErrorResponse "Invalid date"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /habits/{id}/toggle [post]
func (h *HabitHandler) ToggleEntry(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ToggleEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	entry, err := h.habitService.ToggleEntry(c.Request.Context(), id, req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry, "done": entry != nil})
}

// SetValue logs a numeric habit value for a date
// @Summary     Set numeric value
// @Description Store a value for the date; zero removes the entry
// @Tags        habits
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Habit ID"
// @Param       request body SetValueRequest true "Date and value"
// @Success     200 {object} map[string]interface{} "Entry after the change; null when removed"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /habits/{id}/value [put]
func (h *HabitHandler) SetValue(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	entry, err := h.habitService.SetNumericValue(c.Request.Context(), id, req.Date, *req.Value)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// GetProgress returns one habit's progress for the selected month
// @Summary     Habit progress
// @Tags        habits
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Habit ID"
// @Param       month query string false "Month as YYYY-MM; switches the selected month"
// @Success     200 {object} map[string]interface{} "Progress percentage"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /habits/{id}/progress [get]
func (h *HabitHandler) GetProgress(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := applyMonthQuery(c, h.habitService); err != nil {
		respondWithError(c, err)
		return
	}

	progress, err := h.habitService.Progress(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habitId": id, "progress": progress})
}
