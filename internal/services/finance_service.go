package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tracker/internal/dates"
	apperrors "tracker/internal/errors"
	"tracker/internal/logger"
	"tracker/internal/models"
	"tracker/internal/pagination"
	"tracker/internal/store"
)

// TransactionInput holds the fields supplied when recording a transaction.
type TransactionInput struct {
	Type        models.TransactionType
	Category    string
	Description string
	Amount      float64
	Date        string
}

// TransactionUpdate holds optional fields for a partial transaction update.
type TransactionUpdate struct {
	Type        *models.TransactionType
	Category    *string
	Description *string
	Amount      *float64
	Date        *string
}

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	Type     *models.TransactionType
	Category *string
}

// CategoryTotal is the summed amount of one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// FinanceSummary holds the month's headline figures.
type FinanceSummary struct {
	Month             string          `json:"month"`
	TotalIncome       float64         `json:"totalIncome"`
	TotalExpenses     float64         `json:"totalExpenses"`
	NetSavings        float64         `json:"netSavings"`
	ExpenseByCategory []CategoryTotal `json:"expenseByCategory"`
	IncomeByCategory  []CategoryTotal `json:"incomeByCategory"`
	TransactionCount  int             `json:"transactionCount"`
}

// financeService handles transactions and the selected month's totals.
type financeService struct {
	mu    sync.Mutex
	store *store.Store
	log   *zap.SugaredLogger

	loaded       bool
	month        dates.Month
	transactions []models.Transaction
}

// NewFinanceService creates a new FinanceServicer over st, showing the current month.
func NewFinanceService(st *store.Store) FinanceServicer {
	return &financeService{
		store: st,
		log:   logger.Named("finance"),
		month: dates.CurrentMonth(),
	}
}

// Reload discards the working set and reads it again from the store.
func (s *financeService) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reload(ctx)
}

func (s *financeService) reload(ctx context.Context) error {
	txs, err := s.store.Transactions.RangeByField(ctx, "date", s.month.FirstDay(), s.month.LastDay(), true)
	if err != nil {
		return err
	}
	s.transactions = txs
	s.loaded = true
	return nil
}

func (s *financeService) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.reload(ctx)
}

// SelectMonth changes the month whose transactions are loaded.
func (s *financeService) SelectMonth(ctx context.Context, month dates.Month) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded && s.month == month {
		return nil
	}
	s.month = month
	return s.reload(ctx)
}

// SelectedMonth returns the month whose transactions are loaded.
func (s *financeService) SelectedMonth() dates.Month {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.month
}

func checkTransactionType(t models.TransactionType) error {
	if t != models.TransactionTypeIncome && t != models.TransactionTypeExpense {
		return apperrors.ErrInvalidTransactionType
	}
	return nil
}

// AddTransaction records an income or expense. The category is stored as
// given; only the amount, type and date are checked.
func (s *financeService) AddTransaction(ctx context.Context, in TransactionInput) (*models.Transaction, error) {
	if err := checkTransactionType(in.Type); err != nil {
		return nil, err
	}
	if in.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if in.Date == "" {
		in.Date = dates.Today()
	}
	if !dates.Valid(in.Date) {
		return nil, apperrors.ErrInvalidDate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &models.Transaction{
		Type:        in.Type,
		Category:    strings.TrimSpace(in.Category),
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Date:        in.Date,
	}
	if err := s.store.Transactions.Add(ctx, tx); err != nil {
		s.log.Errorw("failed to add transaction", "error", err)
		return nil, err
	}
	if err := s.reload(ctx); err != nil {
		return nil, err
	}
	s.log.Debugw("transaction added", "transaction_id", tx.ID, "type", tx.Type, "date", tx.Date)
	return tx, nil
}

// GetTransaction returns a single transaction from any month.
func (s *financeService) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	tx, err := s.store.Transactions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, apperrors.ErrTransactionNotFound
	}
	return tx, nil
}

// UpdateTransaction applies a partial update to a transaction.
func (s *financeService) UpdateTransaction(ctx context.Context, id string, upd TransactionUpdate) (*models.Transaction, error) {
	fields := map[string]interface{}{}
	if upd.Type != nil {
		if err := checkTransactionType(*upd.Type); err != nil {
			return nil, err
		}
		fields["type"] = *upd.Type
	}
	if upd.Category != nil {
		fields["category"] = strings.TrimSpace(*upd.Category)
	}
	if upd.Description != nil {
		fields["description"] = strings.TrimSpace(*upd.Description)
	}
	if upd.Amount != nil {
		if *upd.Amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		fields["amount"] = *upd.Amount
	}
	if upd.Date != nil {
		if !dates.Valid(*upd.Date) {
			return nil, apperrors.ErrInvalidDate
		}
		fields["date"] = *upd.Date
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	found, err := s.store.Transactions.Update(ctx, id, fields)
	if err != nil {
		s.log.Errorw("failed to update transaction", "transaction_id", id, "error", err)
		return nil, err
	}
	if !found && len(fields) > 0 {
		return nil, apperrors.ErrTransactionNotFound
	}

	tx, err := s.store.Transactions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, apperrors.ErrTransactionNotFound
	}
	if err := s.reload(ctx); err != nil {
		return nil, err
	}
	return tx, nil
}

// DeleteTransaction removes a transaction. A missing id is not an error.
func (s *financeService) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Transactions.Delete(ctx, id); err != nil {
		s.log.Errorw("failed to delete transaction", "transaction_id", id, "error", err)
		return err
	}
	return s.reload(ctx)
}

// ListTransactions returns a page of the selected month's transactions,
// newest date first.
func (s *financeService) ListTransactions(ctx context.Context, filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	matched := make([]models.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		if filter.Type != nil && t.Type != *filter.Type {
			continue
		}
		if filter.Category != nil && t.Category != *filter.Category {
			continue
		}
		matched = append(matched, t)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Date != matched[j].Date {
			return matched[i].Date > matched[j].Date
		}
		return matched[i].CreatedAt > matched[j].CreatedAt
	})

	resp := pagination.Paginate(matched, page)
	return &resp, nil
}

// TotalByType sums the selected month's transactions of type t.
func (s *financeService) TotalByType(ctx context.Context, t models.TransactionType) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return 0, err
	}
	return totalByType(s.transactions, t).InexactFloat64(), nil
}

// NetSavings is income minus expenses for the selected month.
func (s *financeService) NetSavings(ctx context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return 0, err
	}
	return netSavings(s.transactions).InexactFloat64(), nil
}

// CategoryTotals sums the selected month's transactions of type t per category.
func (s *financeService) CategoryTotals(ctx context.Context, t models.TransactionType) ([]CategoryTotal, error) {
	if err := checkTransactionType(t); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return CategoryTotals(s.transactions, t), nil
}

// Summary returns the headline figures for the selected month.
func (s *financeService) Summary(ctx context.Context) (*FinanceSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return &FinanceSummary{
		Month:             s.month.String(),
		TotalIncome:       totalByType(s.transactions, models.TransactionTypeIncome).InexactFloat64(),
		TotalExpenses:     totalByType(s.transactions, models.TransactionTypeExpense).InexactFloat64(),
		NetSavings:        netSavings(s.transactions).InexactFloat64(),
		ExpenseByCategory: CategoryTotals(s.transactions, models.TransactionTypeExpense),
		IncomeByCategory:  CategoryTotals(s.transactions, models.TransactionTypeIncome),
		TransactionCount:  len(s.transactions),
	}, nil
}

func totalByType(txs []models.Transaction, t models.TransactionType) decimal.Decimal {
	total := decimal.Zero
	for i := range txs {
		if txs[i].Type == t {
			total = total.Add(decimal.NewFromFloat(txs[i].Amount))
		}
	}
	return total
}

func netSavings(txs []models.Transaction) decimal.Decimal {
	return totalByType(txs, models.TransactionTypeIncome).Sub(totalByType(txs, models.TransactionTypeExpense))
}

// CategoryTotals sums txs of type t for each category in that type's fixed
// list. The result follows the list order and leaves out zero totals;
// categories outside the list are not reported.
func CategoryTotals(txs []models.Transaction, t models.TransactionType) []CategoryTotal {
	sums := make(map[string]decimal.Decimal)
	for i := range txs {
		if txs[i].Type == t {
			sums[txs[i].Category] = sums[txs[i].Category].Add(decimal.NewFromFloat(txs[i].Amount))
		}
	}

	out := []CategoryTotal{}
	for _, category := range models.CategoriesFor(t) {
		total, ok := sums[category]
		if !ok || !total.IsPositive() {
			continue
		}
		out = append(out, CategoryTotal{Category: category, Total: total.InexactFloat64()})
	}
	return out
}
