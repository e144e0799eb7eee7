package services

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tracker/internal/dates"
	apperrors "tracker/internal/errors"
	"tracker/internal/logger"
	"tracker/internal/models"
	"tracker/internal/store"
)

// StockInput holds the fields supplied when opening a position.
// A nil CurrentPrice defaults to AvgBuyPrice; an explicit 0 is kept.
type StockInput struct {
	Symbol       string
	Name         string
	Quantity     float64
	AvgBuyPrice  float64
	CurrentPrice *float64
}

// StockUpdate holds optional fields for a manual position edit.
type StockUpdate struct {
	Symbol       *string
	Name         *string
	Quantity     *float64
	AvgBuyPrice  *float64
	CurrentPrice *float64
}

// PositionSummary is one position with its derived figures.
type PositionSummary struct {
	Stock     models.Stock `json:"stock"`
	Invested  float64      `json:"invested"`
	Value     float64      `json:"value"`
	PL        float64      `json:"pl"`
	PLPercent float64      `json:"plPercent"`
}

// PortfolioSummary aggregates every position.
type PortfolioSummary struct {
	TotalInvested  float64           `json:"totalInvested"`
	TotalValue     float64           `json:"totalValue"`
	TotalPL        float64           `json:"totalPL"`
	TotalPLPercent float64           `json:"totalPLPercent"`
	Positions      []PositionSummary `json:"positions"`
}

// SaleResult reports the outcome of a sale.
type SaleResult struct {
	Stock      models.Stock `json:"stock"`
	RealizedPL float64      `json:"realizedPL"`
}

// portfolioService handles stock positions. It keeps every position in memory.
type portfolioService struct {
	mu    sync.Mutex
	store *store.Store
	log   *zap.SugaredLogger

	loaded bool
	stocks []models.Stock
}

// NewPortfolioService creates a new PortfolioServicer over st.
func NewPortfolioService(st *store.Store) PortfolioServicer {
	return &portfolioService{
		store: st,
		log:   logger.Named("portfolio"),
	}
}

// Reload discards the working set and reads it again from the store.
func (s *portfolioService) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reload(ctx)
}

func (s *portfolioService) reload(ctx context.Context) error {
	stocks, err := s.store.Stocks.All(ctx)
	if err != nil {
		return err
	}
	s.stocks = stocks
	s.loaded = true
	return nil
}

func (s *portfolioService) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.reload(ctx)
}

func (s *portfolioService) find(id string) *models.Stock {
	for i := range s.stocks {
		if s.stocks[i].ID == id {
			st := s.stocks[i]
			return &st
		}
	}
	return nil
}

// ListStocks returns every position in creation order.
func (s *portfolioService) ListStocks(ctx context.Context) ([]models.Stock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	out := make([]models.Stock, len(s.stocks))
	copy(out, s.stocks)
	return out, nil
}

// GetStock returns a single position.
func (s *portfolioService) GetStock(ctx context.Context, id string) (*models.Stock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	st := s.find(id)
	if st == nil {
		return nil, apperrors.ErrStockNotFound
	}
	return st, nil
}

// AddStock opens a position as given. No averaging happens since there is
// no prior position.
func (s *portfolioService) AddStock(ctx context.Context, in StockInput) (*models.Stock, error) {
	in.Symbol = strings.ToUpper(strings.TrimSpace(in.Symbol))
	if in.Symbol == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "symbol is required")
	}
	if in.Quantity <= 0 {
		return nil, apperrors.ErrInvalidQuantity
	}
	currentPrice := in.AvgBuyPrice
	if in.CurrentPrice != nil {
		currentPrice = *in.CurrentPrice
	}
	if in.AvgBuyPrice < 0 || currentPrice < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "prices cannot be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stock := &models.Stock{
		Symbol:       in.Symbol,
		Name:         strings.TrimSpace(in.Name),
		Quantity:     in.Quantity,
		AvgBuyPrice:  in.AvgBuyPrice,
		CurrentPrice: currentPrice,
		LastUpdated:  dates.Now(),
	}
	if err := s.store.Stocks.Add(ctx, stock); err != nil {
		s.log.Errorw("failed to add stock", "symbol", in.Symbol, "error", err)
		return nil, err
	}
	if err := s.reload(ctx); err != nil {
		return nil, err
	}
	s.log.Debugw("stock added", "stock_id", stock.ID, "symbol", stock.Symbol)
	return stock, nil
}

// AverageIn adds qty shares bought at price and moves the average cost to
// the weighted mean of the old and new lots. The current price is left
// alone. A missing position is a no-op and returns nil.
func (s *portfolioService) AverageIn(ctx context.Context, id string, qty, price float64) (*models.Stock, error) {
	if qty <= 0 {
		return nil, apperrors.ErrInvalidQuantity
	}
	if price < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "price cannot be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	stock := s.find(id)
	if stock == nil {
		return nil, nil
	}

	newQty, newAvg := averageIn(stock.Quantity, stock.AvgBuyPrice, qty, price)
	fields := map[string]interface{}{
		"quantity":      newQty,
		"avg_buy_price": newAvg,
	}
	if _, err := s.store.Stocks.Update(ctx, id, fields); err != nil {
		s.log.Errorw("failed to average in", "stock_id", id, "error", err)
		return nil, err
	}
	if err := s.reload(ctx); err != nil {
		return nil, err
	}
	s.log.Debugw("averaged in", "stock_id", id, "quantity", newQty, "avg_buy_price", newAvg)
	return s.find(id), nil
}

// Sell removes qty shares at price and returns the realized P&L against the
// average cost, which stays unchanged. Selling everything keeps a
// zero-quantity position. A missing position is a no-op and returns nil.
func (s *portfolioService) Sell(ctx context.Context, id string, qty, price float64) (*SaleResult, error) {
	if qty <= 0 {
		return nil, apperrors.ErrInvalidQuantity
	}
	if price < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "price cannot be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	stock := s.find(id)
	if stock == nil {
		return nil, nil
	}
	if qty > stock.Quantity {
		return nil, apperrors.ErrInsufficientShares
	}

	remaining, realized := sell(stock.Quantity, stock.AvgBuyPrice, qty, price)
	if _, err := s.store.Stocks.Update(ctx, id, map[string]interface{}{"quantity": remaining}); err != nil {
		s.log.Errorw("failed to sell", "stock_id", id, "error", err)
		return nil, err
	}
	if err := s.reload(ctx); err != nil {
		return nil, err
	}
	s.log.Debugw("sold", "stock_id", id, "quantity", qty, "realized_pl", realized)
	return &SaleResult{Stock: *s.find(id), RealizedPL: realized}, nil
}

// UpdatePrice sets the current market price. A missing position is a no-op
// and returns nil.
func (s *portfolioService) UpdatePrice(ctx context.Context, id string, price float64) (*models.Stock, error) {
	if price < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "price cannot be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	if s.find(id) == nil {
		return nil, nil
	}

	fields := map[string]interface{}{
		"current_price": price,
		"last_updated":  dates.Now(),
	}
	if _, err := s.store.Stocks.Update(ctx, id, fields); err != nil {
		s.log.Errorw("failed to update price", "stock_id", id, "error", err)
		return nil, err
	}
	if err := s.reload(ctx); err != nil {
		return nil, err
	}
	return s.find(id), nil
}

// UpdateStock applies a manual edit to a position.
func (s *portfolioService) UpdateStock(ctx context.Context, id string, upd StockUpdate) (*models.Stock, error) {
	fields := map[string]interface{}{}
	if upd.Symbol != nil {
		symbol := strings.ToUpper(strings.TrimSpace(*upd.Symbol))
		if symbol == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "symbol cannot be empty")
		}
		fields["symbol"] = symbol
	}
	if upd.Name != nil {
		fields["name"] = strings.TrimSpace(*upd.Name)
	}
	if upd.Quantity != nil {
		if *upd.Quantity < 0 {
			return nil, apperrors.ErrInvalidQuantity
		}
		fields["quantity"] = *upd.Quantity
	}
	if upd.AvgBuyPrice != nil {
		if *upd.AvgBuyPrice < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "prices cannot be negative")
		}
		fields["avg_buy_price"] = *upd.AvgBuyPrice
	}
	if upd.CurrentPrice != nil {
		if *upd.CurrentPrice < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "prices cannot be negative")
		}
		fields["current_price"] = *upd.CurrentPrice
	}
	fields["last_updated"] = dates.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	if s.find(id) == nil {
		return nil, apperrors.ErrStockNotFound
	}
	if _, err := s.store.Stocks.Update(ctx, id, fields); err != nil {
		s.log.Errorw("failed to update stock", "stock_id", id, "error", err)
		return nil, err
	}
	if err := s.reload(ctx); err != nil {
		return nil, err
	}
	return s.find(id), nil
}

// DeleteStock removes a position. A missing id is not an error.
func (s *portfolioService) DeleteStock(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Stocks.Delete(ctx, id); err != nil {
		s.log.Errorw("failed to delete stock", "stock_id", id, "error", err)
		return err
	}
	return s.reload(ctx)
}

// Summary returns portfolio totals and per-position figures.
func (s *portfolioService) Summary(ctx context.Context) (*PortfolioSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return Summarize(s.stocks), nil
}

// averageIn returns the quantity and weighted average cost after buying
// addQty more shares at price.
func averageIn(qty, avg, addQty, price float64) (float64, float64) {
	oldQty := decimal.NewFromFloat(qty)
	add := decimal.NewFromFloat(addQty)
	newQty := oldQty.Add(add)

	cost := oldQty.Mul(decimal.NewFromFloat(avg)).Add(add.Mul(decimal.NewFromFloat(price)))
	newAvg := cost.DivRound(newQty, 16)
	return newQty.InexactFloat64(), newAvg.InexactFloat64()
}

// sell returns the remaining quantity and the realized P&L of selling
// sellQty shares at price against the average cost.
func sell(qty, avg, sellQty, price float64) (float64, float64) {
	sold := decimal.NewFromFloat(sellQty)
	remaining := decimal.NewFromFloat(qty).Sub(sold)
	realized := decimal.NewFromFloat(price).Sub(decimal.NewFromFloat(avg)).Mul(sold)
	return remaining.InexactFloat64(), realized.InexactFloat64()
}

// Summarize computes portfolio totals. The P&L percentage is 0 when
// nothing is invested.
func Summarize(stocks []models.Stock) *PortfolioSummary {
	totalInvested := decimal.Zero
	totalValue := decimal.Zero
	positions := make([]PositionSummary, 0, len(stocks))

	for _, st := range stocks {
		invested := st.Invested()
		value := st.Value()
		pl := value.Sub(invested)

		totalInvested = totalInvested.Add(invested)
		totalValue = totalValue.Add(value)
		positions = append(positions, PositionSummary{
			Stock:     st,
			Invested:  invested.InexactFloat64(),
			Value:     value.InexactFloat64(),
			PL:        pl.InexactFloat64(),
			PLPercent: percentOf(pl, invested),
		})
	}

	totalPL := totalValue.Sub(totalInvested)
	return &PortfolioSummary{
		TotalInvested:  totalInvested.InexactFloat64(),
		TotalValue:     totalValue.InexactFloat64(),
		TotalPL:        totalPL.InexactFloat64(),
		TotalPLPercent: percentOf(totalPL, totalInvested),
		Positions:      positions,
	}
}

func percentOf(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Mul(decimal.NewFromInt(100)).DivRound(whole, 16).InexactFloat64()
}
