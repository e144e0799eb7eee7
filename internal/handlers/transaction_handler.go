package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"tracker/internal/cache"
	apperrors "tracker/internal/errors"
	"tracker/internal/models"
	"tracker/internal/pagination"
	"tracker/internal/services"
)

// TransactionHandler handles transaction-related requests
type TransactionHandler struct {
	financeService services.FinanceServicer
	cache          cache.Cache
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(financeService services.FinanceServicer, store cache.Cache) *TransactionHandler {
	return &TransactionHandler{
		financeService: financeService,
		cache:          store,
	}
}

// CreateTransactionRequest represents the request body for creating a transaction
type CreateTransactionRequest struct {
	Type        models.TransactionType `json:"type" binding:"required,transaction_type"`
	Category    string                 `json:"category" binding:"required,max=50"`
	Description string                 `json:"description" binding:"max=500"`
	Amount      float64                `json:"amount" binding:"required,gt=0"`
	Date        string                 `json:"date" binding:"omitempty,iso_date"`
}

// UpdateTransactionRequest represents the request body for updating a transaction
type UpdateTransactionRequest struct {
	Type        *models.TransactionType `json:"type" binding:"omitempty,transaction_type"`
	Category    *string                 `json:"category" binding:"omitempty,min=1,max=50"`
	Description *string                 `json:"description" binding:"omitempty,max=500"`
	Amount      *float64                `json:"amount" binding:"omitempty,gt=0"`
	Date        *string                 `json:"date" binding:"omitempty,iso_date"`
}

// CategoriesResponse lists the fixed categories per transaction type.
type CategoriesResponse struct {
	Income  []string `json:"income"`
	Expense []string `json:"expense"`
}

// CategoryTotalsResponse lists category totals for one type and month.
type CategoryTotalsResponse struct {
	Month  string                   `json:"month"`
	Type   models.TransactionType   `json:"type"`
	Totals []services.CategoryTotal `json:"totals"`
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create transaction
// @Description Record an income or expense; the date defaults to today
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction data"
// @Success     201 {object} map[string]models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.financeService.AddTransaction(c.Request.Context(), services.TransactionInput{
		Type:        req.Type,
		Category:    req.Category,
		Description: req.Description,
		Amount:      req.Amount,
		Date:        req.Date,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// ListTransactions returns the selected month's transactions, newest first
// @Summary     List transactions
// @Description Get a paginated, optionally filtered list of the month's transactions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month as YYYY-MM; switches the selected month"
// @Param       type query string false "Filter by type (income, expense)"
// @Param       category query string false "Filter by category"
// @Param       page query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	page.Defaults()

	var filter services.TransactionFilter
	if v := c.Query("type"); v != "" {
		t := models.TransactionType(v)
		filter.Type = &t
	}
	if v := c.Query("category"); v != "" {
		filter.Category = &v
	}

	if err := applyMonthQuery(c, h.financeService); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.financeService.ListTransactions(c.Request.Context(), filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetTransaction returns a single transaction
// @Summary     Get transaction
// @Description Get a transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} map[string]models.Transaction "Transaction"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.financeService.GetTransaction(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransaction handles partial transaction updates
// @Summary     Update transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to change"
// @Success     200 {object} map[string]models.Transaction "Transaction updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.financeService.UpdateTransaction(c.Request.Context(), id, services.TransactionUpdate{
		Type:        req.Type,
		Category:    req.Category,
		Description: req.Description,
		Amount:      req.Amount,
		Date:        req.Date,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles the deletion of a transaction
// @Summary     Delete transaction
// @Description Delete a transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.financeService.DeleteTransaction(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

// GetSummary returns the month's totals
// @Summary     Finance summary
// @Description Income, expenses, net savings and category breakdowns for the selected month
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month as YYYY-MM; switches the selected month"
// @Success     200 {object} services.FinanceSummary "Summary"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/summary [get]
func (h *TransactionHandler) GetSummary(c *gin.Context) {
	if err := applyMonthQuery(c, h.financeService); err != nil {
		respondWithError(c, err)
		return
	}

	key := cache.Key(cache.GroupFinance, h.financeService.SelectedMonth().String(), "summary")
	summary, err := loadCached(c, h.cache, key, func(ctx context.Context) (*services.FinanceSummary, error) {
		return h.financeService.Summary(ctx)
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetCategoryTotals returns per-category totals for one type
// @Summary     Category totals
// @Description Totals per category in first-seen order; categories with no spend are omitted
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       type query string false "Transaction type (income, expense; default expense)"
// @Param       month query string false "Month as YYYY-MM; switches the selected month"
// @Success     200 {object} CategoryTotalsResponse "Category totals"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/category-totals [get]
func (h *TransactionHandler) GetCategoryTotals(c *gin.Context) {
	txType := models.TransactionType(c.DefaultQuery("type", string(models.TransactionTypeExpense)))
	if err := applyMonthQuery(c, h.financeService); err != nil {
		respondWithError(c, err)
		return
	}

	month := h.financeService.SelectedMonth().String()
	key := cache.Key(cache.GroupFinance, month, "categories", string(txType))
	resp, err := loadCached(c, h.cache, key, func(ctx context.Context) (CategoryTotalsResponse, error) {
		totals, err := h.financeService.CategoryTotals(ctx, txType)
		return CategoryTotalsResponse{Month: month, Type: txType, Totals: totals}, err
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListCategories returns the fixed category lists
// @Summary     List categories
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} CategoriesResponse "Categories"
// @Router      /transactions/categories [get]
func (h *TransactionHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, CategoriesResponse{
		Income:  models.IncomeCategories,
		Expense: models.ExpenseCategories,
	})
}
