package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"tracker/internal/cache"
	"tracker/internal/dates"
	apperrors "tracker/internal/errors"
	"tracker/internal/models"
	"tracker/internal/pagination"
	"tracker/internal/services"
)

// --- mock finance service ---

type mockFinanceService struct {
	month dates.Month

	addTransactionFn    func(in services.TransactionInput) (*models.Transaction, error)
	getTransactionFn    func(id string) (*models.Transaction, error)
	updateTransactionFn func(id string, upd services.TransactionUpdate) (*models.Transaction, error)
	deleteTransactionFn func(id string) error
	listTransactionsFn  func(filter services.TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	categoryTotalsFn    func(t models.TransactionType) ([]services.CategoryTotal, error)
	summaryFn           func() (*services.FinanceSummary, error)
}

func (m *mockFinanceService) Reload(context.Context) error { return nil }

func (m *mockFinanceService) SelectMonth(_ context.Context, month dates.Month) error {
	m.month = month
	return nil
}

func (m *mockFinanceService) SelectedMonth() dates.Month { return m.month }

func (m *mockFinanceService) AddTransaction(_ context.Context, in services.TransactionInput) (*models.Transaction, error) {
	if m.addTransactionFn != nil {
		return m.addTransactionFn(in)
	}
	return &models.Transaction{}, nil
}

func (m *mockFinanceService) GetTransaction(_ context.Context, id string) (*models.Transaction, error) {
	if m.getTransactionFn != nil {
		return m.getTransactionFn(id)
	}
	return &models.Transaction{}, nil
}

func (m *mockFinanceService) UpdateTransaction(_ context.Context, id string, upd services.TransactionUpdate) (*models.Transaction, error) {
	if m.updateTransactionFn != nil {
		return m.updateTransactionFn(id, upd)
	}
	return &models.Transaction{}, nil
}

func (m *mockFinanceService) DeleteTransaction(_ context.Context, id string) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(id)
	}
	return nil
}

func (m *mockFinanceService) ListTransactions(_ context.Context, filter services.TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if m.listTransactionsFn != nil {
		return m.listTransactionsFn(filter, page)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockFinanceService) TotalByType(context.Context, models.TransactionType) (float64, error) {
	return 0, nil
}

func (m *mockFinanceService) NetSavings(context.Context) (float64, error) { return 0, nil }

func (m *mockFinanceService) CategoryTotals(_ context.Context, t models.TransactionType) ([]services.CategoryTotal, error) {
	if m.categoryTotalsFn != nil {
		return m.categoryTotalsFn(t)
	}
	return []services.CategoryTotal{}, nil
}

func (m *mockFinanceService) Summary(context.Context) (*services.FinanceSummary, error) {
	if m.summaryFn != nil {
		return m.summaryFn()
	}
	return &services.FinanceSummary{Month: m.month.String()}, nil
}

var _ services.FinanceServicer = (*mockFinanceService)(nil)

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	r.POST("/transactions", handler.CreateTransaction)
	r.GET("/transactions", handler.ListTransactions)
	r.GET("/transactions/summary", handler.GetSummary)
	r.GET("/transactions/categories", handler.ListCategories)
	r.GET("/transactions/category-totals", handler.GetCategoryTotals)
	r.GET("/transactions/:id", handler.GetTransaction)
	r.PUT("/transactions/:id", handler.UpdateTransaction)
	r.DELETE("/transactions/:id", handler.DeleteTransaction)
	return r
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockFinanceService{
			addTransactionFn: func(in services.TransactionInput) (*models.Transaction, error) {
				return &models.Transaction{
					Base:     models.Base{ID: "t1"},
					Type:     in.Type,
					Category: in.Category,
					Amount:   in.Amount,
					Date:     in.Date,
				}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc, cache.NewNoop()))

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"expense","category":"Food & Dining","amount":1450.75,"date":"2024-01-03"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		tx := parseJSON(t, rec)["transaction"].(map[string]interface{})
		if tx["amount"].(float64) != 1450.75 {
			t.Errorf("expected amount 1450.75, got %v", tx["amount"])
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{"unsupported type", `{"type":"transfer","category":"Other","amount":10}`},
		{"zero amount", `{"type":"income","category":"Salary","amount":0}`},
		{"negative amount", `{"type":"income","category":"Salary","amount":-5}`},
		{"missing category", `{"type":"income","amount":5}`},
		{"malformed date", `{"type":"income","category":"Salary","amount":5,"date":"2024/01/01"}`},
	}
	for _, tt := range tests {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			r := setupTransactionRouter(NewTransactionHandler(&mockFinanceService{}, cache.NewNoop()))
			rec := doRequest(r, "POST", "/transactions", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestTransactionHandler_ListTransactions(t *testing.T) {
	t.Run("passes filters, page and month", func(t *testing.T) {
		var gotFilter services.TransactionFilter
		var gotPage pagination.PageRequest
		svc := &mockFinanceService{
			listTransactionsFn: func(filter services.TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
				gotFilter = filter
				gotPage = page
				resp := pagination.NewPageResponse([]models.Transaction{{Base: models.Base{ID: "t1"}}}, page.Page, page.PageSize, 1)
				return &resp, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc, cache.NewNoop()))

		rec := doRequest(r, "GET", "/transactions?type=expense&category=Transport&page=2&page_size=5&month=2024-03", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotFilter.Type == nil || *gotFilter.Type != models.TransactionTypeExpense {
			t.Errorf("expected expense filter, got %v", gotFilter.Type)
		}
		if gotFilter.Category == nil || *gotFilter.Category != "Transport" {
			t.Errorf("expected Transport filter, got %v", gotFilter.Category)
		}
		if gotPage.Page != 2 || gotPage.PageSize != 5 {
			t.Errorf("expected page 2 size 5, got %+v", gotPage)
		}
		if svc.month.String() != "2024-03" {
			t.Errorf("expected month 2024-03, got %s", svc.month)
		}
	})

	t.Run("returns 400 on oversized page", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockFinanceService{}, cache.NewNoop()))
		rec := doRequest(r, "GET", "/transactions?page_size=500", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_GetUpdateDelete(t *testing.T) {
	t.Run("get returns 404 when missing", func(t *testing.T) {
		svc := &mockFinanceService{
			getTransactionFn: func(string) (*models.Transaction, error) { return nil, apperrors.ErrTransactionNotFound },
		}
		r := setupTransactionRouter(NewTransactionHandler(svc, cache.NewNoop()))

		rec := doRequest(r, "GET", "/transactions/t404", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
	})

	t.Run("update forwards supplied fields", func(t *testing.T) {
		var got services.TransactionUpdate
		svc := &mockFinanceService{
			updateTransactionFn: func(_ string, upd services.TransactionUpdate) (*models.Transaction, error) {
				got = upd
				return &models.Transaction{}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc, cache.NewNoop()))

		rec := doRequest(r, "PUT", "/transactions/t1", `{"amount":99.5}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Amount == nil || *got.Amount != 99.5 || got.Type != nil {
			t.Errorf("unexpected update %+v", got)
		}
	})

	t.Run("delete returns 200", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockFinanceService{}, cache.NewNoop()))
		rec := doRequest(r, "DELETE", "/transactions/t1", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_GetSummary(t *testing.T) {
	calls := 0
	svc := &mockFinanceService{
		summaryFn: func() (*services.FinanceSummary, error) {
			calls++
			return &services.FinanceSummary{Month: "2024-01", TotalIncome: 1000, TotalExpenses: 400, NetSavings: 600}, nil
		},
	}
	store := newMemoryCache()
	r := setupTransactionRouter(NewTransactionHandler(svc, store))

	for i := 0; i < 2; i++ {
		rec := doRequest(r, "GET", "/transactions/summary?month=2024-01", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := parseJSON(t, rec)["netSavings"]; got != 600.0 {
			t.Errorf("expected 600, got %v", got)
		}
	}
	if calls != 1 {
		t.Errorf("expected summary computed once, got %d", calls)
	}
	if !store.has(cache.Key(cache.GroupFinance, "2024-01", "summary")) {
		t.Error("expected summary to be cached")
	}
}

func TestTransactionHandler_GetCategoryTotals(t *testing.T) {
	t.Run("defaults to expenses", func(t *testing.T) {
		var gotType models.TransactionType
		svc := &mockFinanceService{
			categoryTotalsFn: func(tt models.TransactionType) ([]services.CategoryTotal, error) {
				gotType = tt
				return []services.CategoryTotal{{Category: "Transport", Total: 50}}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc, cache.NewNoop()))

		rec := doRequest(r, "GET", "/transactions/category-totals", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotType != models.TransactionTypeExpense {
			t.Errorf("expected expense, got %q", gotType)
		}
	})

	t.Run("surfaces invalid type from the service", func(t *testing.T) {
		svc := &mockFinanceService{
			categoryTotalsFn: func(models.TransactionType) ([]services.CategoryTotal, error) {
				return nil, apperrors.ErrInvalidTransactionType
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc, cache.NewNoop()))

		rec := doRequest(r, "GET", "/transactions/category-totals?type=gift", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_TRANSACTION_TYPE")
	})
}

func TestTransactionHandler_ListCategories(t *testing.T) {
	r := setupTransactionRouter(NewTransactionHandler(&mockFinanceService{}, cache.NewNoop()))

	rec := doRequest(r, "GET", "/transactions/categories", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	result := parseJSON(t, rec)
	if n := len(result["expense"].([]interface{})); n != len(models.ExpenseCategories) {
		t.Errorf("expected %d expense categories, got %d", len(models.ExpenseCategories), n)
	}
}
