package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tracker/internal/cache"
	"tracker/internal/dates"
	apperrors "tracker/internal/errors"
	"tracker/internal/services"
)

const (
	defaultTopHabits = 5
	maxTopHabits     = 50
)

// DashboardHandler serves the derived habit metrics and the combined
// overview. Every payload is cached until the records behind it change.
type DashboardHandler struct {
	habitService     services.HabitServicer
	financeService   services.FinanceServicer
	portfolioService services.PortfolioServicer
	cache            cache.Cache
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(habitService services.HabitServicer, financeService services.FinanceServicer, portfolioService services.PortfolioServicer, store cache.Cache) *DashboardHandler {
	return &DashboardHandler{
		habitService:     habitService,
		financeService:   financeService,
		portfolioService: portfolioService,
		cache:            store,
	}
}

// ProgressResponse lists per-habit progress for a month.
type ProgressResponse struct {
	Month  string                   `json:"month"`
	Habits []services.HabitProgress `json:"habits"`
}

// WeeklyResponse lists per-week completion for a month.
type WeeklyResponse struct {
	Month string                  `json:"month"`
	Weeks []services.WeekProgress `json:"weeks"`
}

// DailyResponse is the completion of a single date.
type DailyResponse struct {
	Date       string  `json:"date"`
	Completion float64 `json:"completion"`
}

// SeriesResponse lists per-day completion for a month.
type SeriesResponse struct {
	Month string                 `json:"month"`
	Days  []services.DayProgress `json:"days"`
}

// MonthlyResponse is the overall completion of a month.
type MonthlyResponse struct {
	Month    string  `json:"month"`
	Progress float64 `json:"progress"`
}

// OverviewResponse gathers the headline figures for the home screen.
type OverviewResponse struct {
	Month           string                     `json:"month"`
	MonthlyProgress float64                    `json:"monthlyProgress"`
	TodayCompletion float64                    `json:"todayCompletion"`
	TopHabits       []services.HabitProgress   `json:"topHabits"`
	Finance         *services.FinanceSummary   `json:"finance"`
	Portfolio       *services.PortfolioSummary `json:"portfolio"`
}

// monthKey applies ?month= and returns the cache key for the selected month.
func (h *DashboardHandler) monthKey(c *gin.Context, parts ...string) (string, dates.Month, error) {
	if err := applyMonthQuery(c, h.habitService); err != nil {
		return "", dates.Month{}, err
	}
	month := h.habitService.SelectedMonth()
	return cache.Key(cache.GroupDashboard, append([]string{month.String()}, parts...)...), month, nil
}

// GetProgress returns each active habit's progress
// @Summary     Habit progress
// @Description Uncapped progress of every active habit for the selected month. A month query switches the month selected for the habit views and stays selected for later requests
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month as YYYY-MM; switches the selected month"
// @Success     200 {object} ProgressResponse "Progress per habit"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/progress [get]
func (h *DashboardHandler) GetProgress(c *gin.Context) {
	key, month, err := h.monthKey(c, "progress")
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp, err := loadCached(c, h.cache, key, func(ctx context.Context) (ProgressResponse, error) {
		habits, err := h.habitService.AllProgress(ctx)
		return ProgressResponse{Month: month.String(), Habits: habits}, err
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetWeekly returns per-week completion
// @Summary     Weekly completion
// @Description Completion of each calendar week of the selected month. A month query switches the month selected for the habit views and stays selected for later requests
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month as YYYY-MM; switches the selected month"
// @Success     200 {object} WeeklyResponse "Weekly completion"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/weekly [get]
func (h *DashboardHandler) GetWeekly(c *gin.Context) {
	key, month, err := h.monthKey(c, "weekly")
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp, err := loadCached(c, h.cache, key, func(ctx context.Context) (WeeklyResponse, error) {
		weeks, err := h.habitService.WeeklyProgress(ctx)
		return WeeklyResponse{Month: month.String(), Weeks: weeks}, err
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetDaily returns the completion of a single date
// @Summary     Daily completion
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       date query string false "Date as YYYY-MM-DD; defaults to today"
// @Success     200 {object} DailyResponse "Daily completion"
// @Failure     400 {object} ErrorResponse "Invalid date"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/daily [get]
func (h *DashboardHandler) GetDaily(c *gin.Context) {
	date := c.DefaultQuery("date", dates.Today())
	if !dates.Valid(date) {
		respondWithError(c, apperrors.ErrInvalidDate)
		return
	}

	key := cache.Key(cache.GroupDashboard, date, "daily")
	resp, err := loadCached(c, h.cache, key, func(ctx context.Context) (DailyResponse, error) {
		completion, err := h.habitService.DailyCompletion(ctx, date)
		return DailyResponse{Date: date, Completion: completion}, err
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetSeries returns per-day completion
// @Summary     Daily series
// @Description Completion of every day of the selected month, for charting. A month query switches the month selected for the habit views and stays selected for later requests
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month as YYYY-MM; switches the selected month"
// @Success     200 {object} SeriesResponse "Daily series"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/series [get]
func (h *DashboardHandler) GetSeries(c *gin.Context) {
	key, month, err := h.monthKey(c, "series")
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp, err := loadCached(c, h.cache, key, func(ctx context.Context) (SeriesResponse, error) {
		days, err := h.habitService.DailySeries(ctx)
		return SeriesResponse{Month: month.String(), Days: days}, err
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetMonthly returns the overall completion of the month
// @Summary     Monthly completion
// @Description Completion of the selected month. A month query switches the month selected for the habit views and stays selected for later requests
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month as YYYY-MM; switches the selected month"
// @Success     200 {object} MonthlyResponse "Monthly completion"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/monthly [get]
func (h *DashboardHandler) GetMonthly(c *gin.Context) {
	key, month, err := h.monthKey(c, "monthly")
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp, err := loadCached(c, h.cache, key, func(ctx context.Context) (MonthlyResponse, error) {
		progress, err := h.habitService.MonthlyProgress(ctx)
		return MonthlyResponse{Month: month.String(), Progress: progress}, err
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetTopHabits returns the best performing habits
// @Summary     Top habits
// @Description Habits ranked by progress capped at 100 for the selected month. A month query switches the month selected for the habit views and stays selected for later requests
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month as YYYY-MM; switches the selected month"
// @Param       limit query int false "Number of habits (default 5)"
// @Success     200 {object} ProgressResponse "Top habits"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/top [get]
func (h *DashboardHandler) GetTopHabits(c *gin.Context) {
	limit := defaultTopHabits
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxTopHabits {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit must be between 1 and 50"))
			return
		}
		limit = n
	}

	key, month, err := h.monthKey(c, "top", strconv.Itoa(limit))
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp, err := loadCached(c, h.cache, key, func(ctx context.Context) (ProgressResponse, error) {
		habits, err := h.habitService.TopHabits(ctx, limit)
		return ProgressResponse{Month: month.String(), Habits: habits}, err
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetOverview returns the headline habit, finance and portfolio figures
// @Summary     Dashboard overview
// @Description Monthly habit completion, today's completion, the top habits, the month's finance summary and the portfolio summary. A month query switches the month selected for both the habit and the finance views and stays selected for later requests, including /habits and /transactions
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month as YYYY-MM; switches the selected month"
// @Success     200 {object} OverviewResponse "Overview"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/overview [get]
func (h *DashboardHandler) GetOverview(c *gin.Context) {
	key, month, err := h.monthKey(c, "overview")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if h.financeService.SelectedMonth() != month {
		if err := h.financeService.SelectMonth(c.Request.Context(), month); err != nil {
			respondWithError(c, err)
			return
		}
	}

	today := dates.Today()
	resp, err := loadCached(c, h.cache, key+":"+today, func(ctx context.Context) (OverviewResponse, error) {
		out := OverviewResponse{Month: month.String()}
		var err error
		if out.MonthlyProgress, err = h.habitService.MonthlyProgress(ctx); err != nil {
			return out, err
		}
		if out.TodayCompletion, err = h.habitService.DailyCompletion(ctx, today); err != nil {
			return out, err
		}
		if out.TopHabits, err = h.habitService.TopHabits(ctx, defaultTopHabits); err != nil {
			return out, err
		}
		if out.Finance, err = h.financeService.Summary(ctx); err != nil {
			return out, err
		}
		out.Portfolio, err = h.portfolioService.Summary(ctx)
		return out, err
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
