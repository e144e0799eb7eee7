package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"tracker/internal/cache"
	apperrors "tracker/internal/errors"
	"tracker/internal/services"
)

// StockHandler handles portfolio position requests
type StockHandler struct {
	portfolioService services.PortfolioServicer
	cache            cache.Cache
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(portfolioService services.PortfolioServicer, store cache.Cache) *StockHandler {
	return &StockHandler{
		portfolioService: portfolioService,
		cache:            store,
	}
}

// CreateStockRequest represents the request body for opening a position.
// currentPrice falls back to avgBuyPrice only when omitted.
type CreateStockRequest struct {
	Symbol       string   `json:"symbol" binding:"required,max=20"`
	Name         string   `json:"name" binding:"max=100"`
	Quantity     float64  `json:"quantity"`
	AvgBuyPrice  float64  `json:"avgBuyPrice" binding:"gte=0"`
	CurrentPrice *float64 `json:"currentPrice" binding:"omitempty,gte=0"`
}

// UpdateStockRequest represents the request body for editing a position by hand
type UpdateStockRequest struct {
	Symbol       *string  `json:"symbol" binding:"omitempty,min=1,max=20"`
	Name         *string  `json:"name" binding:"omitempty,max=100"`
	Quantity     *float64 `json:"quantity"`
	AvgBuyPrice  *float64 `json:"avgBuyPrice" binding:"omitempty,gte=0"`
	CurrentPrice *float64 `json:"currentPrice" binding:"omitempty,gte=0"`
}

// TradeRequest represents a buy or sell of shares at a price
type TradeRequest struct {
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price" binding:"gte=0"`
}

// PriceRequest represents a new market price
type PriceRequest struct {
	Price *float64 `json:"price" binding:"required,gte=0"`
}

// ListStocks returns every position
// @Summary     List stocks
// @Tags        stocks
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]models.Stock "Positions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /stocks [get]
func (h *StockHandler) ListStocks(c *gin.Context) {
	stocks, err := h.portfolioService.ListStocks(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stocks": stocks})
}

// CreateStock opens a new position
// @Summary     Create stock
// @Description Open a position; the current price defaults to the buy price when omitted
// @Tags        stocks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateStockRequest true "Position data"
// @Success     201 {object} map[string]models.Stock "Position created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /stocks [post]
func (h *StockHandler) CreateStock(c *gin.Context) {
	var req CreateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	stock, err := h.portfolioService.AddStock(c.Request.Context(), services.StockInput{
		Symbol:       req.Symbol,
		Name:         req.Name,
		Quantity:     req.Quantity,
		AvgBuyPrice:  req.AvgBuyPrice,
		CurrentPrice: req.CurrentPrice,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"stock": stock})
}

// GetStock returns a single position
// @Summary     Get stock
// @Tags        stocks
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Stock ID"
// @Success     200 {object} map[string]models.Stock "Position"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Stock not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /stocks/{id} [get]
func (h *StockHandler) GetStock(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	stock, err := h.portfolioService.GetStock(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stock": stock})
}

// UpdateStock edits a position by hand
// @Summary     Update stock
// @Description Overwrite position fields without any averaging
// @Tags        stocks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Stock ID"
// @Param       request body UpdateStockRequest true "Fields to change"
// @Success     200 {object} map[string]models.Stock "Position updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Stock not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /stocks/{id} [put]
func (h *StockHandler) UpdateStock(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	stock, err := h.portfolioService.UpdateStock(c.Request.Context(), id, services.StockUpdate{
		Symbol:       req.Symbol,
		Name:         req.Name,
		Quantity:     req.Quantity,
		AvgBuyPrice:  req.AvgBuyPrice,
		CurrentPrice: req.CurrentPrice,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stock": stock})
}

// DeleteStock removes a position
// @Summary     Delete stock
// @Tags        stocks
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Stock ID"
// @Success     200 {object} MessageResponse "Position deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /stocks/{id} [delete]
func (h *StockHandler) DeleteStock(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.portfolioService.DeleteStock(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock deleted successfully"})
}

// AverageIn buys more shares of an existing position
// @Summary     Average in
// @Description Add shares bought at a price; the average cost becomes the weighted mean
// @Tags        stocks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Stock ID"
// @Param       request body TradeRequest true "Shares and price"
// @Success     200 {object} map[string]models.Stock "Position updated"
// @Failure     400 {object} ErrorResponse "Invalid quantity"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Stock not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /stocks/{id}/average [post]
func (h *StockHandler) AverageIn(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	stock, err := h.portfolioService.AverageIn(c.Request.Context(), id, req.Quantity, req.Price)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if stock == nil {
		respondWithError(c, apperrors.ErrStockNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stock": stock})
}

// Sell sells shares of a position
// @Summary     Sell shares
// @Description Sell shares at a price; the average cost of the rest is unchanged
// @Tags        stocks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Stock ID"
// @Param       request body TradeRequest true "Shares and price"
// @Success     200 {object} services.SaleResult "Sale result with realized profit or loss"
// @Failure     400 {object} ErrorResponse "Invalid or insufficient quantity"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Stock not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /stocks/{id}/sell [post]
func (h *StockHandler) Sell(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.portfolioService.Sell(c.Request.Context(), id, req.Quantity, req.Price)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if result == nil {
		respondWithError(c, apperrors.ErrStockNotFound)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdatePrice records a new market price
// @Summary     Update price
// @Tags        stocks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Stock ID"
// @Param       request body PriceRequest true "New price"
// @Success     200 {object} map[string]models.Stock "Position updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Stock not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /stocks/{id}/price [put]
func (h *StockHandler) UpdatePrice(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	stock, err := h.portfolioService.UpdatePrice(c.Request.Context(), id, *req.Price)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if stock == nil {
		respondWithError(c, apperrors.ErrStockNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stock": stock})
}

// GetSummary returns portfolio totals
// @Summary     Portfolio summary
// @Description Invested, value and profit or loss for every position and in total
// @Tags        stocks
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.PortfolioSummary "Summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /stocks/summary [get]
func (h *StockHandler) GetSummary(c *gin.Context) {
	key := cache.Key(cache.GroupPortfolio, "summary")
	summary, err := loadCached(c, h.cache, key, func(ctx context.Context) (*services.PortfolioSummary, error) {
		return h.portfolioService.Summary(ctx)
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
