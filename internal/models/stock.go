package models

import "github.com/shopspring/decimal"

// Stock represents a position in a single listed company.
// AvgBuyPrice is the weighted average cost per share; it only moves when
// shares are averaged in.
type Stock struct {
	Base
	Symbol       string  `gorm:"not null;index" json:"symbol"`
	Name         string  `gorm:"not null" json:"name"`
	Quantity     float64 `gorm:"not null" json:"quantity"`
	AvgBuyPrice  float64 `gorm:"not null" json:"avgBuyPrice"`
	CurrentPrice float64 `gorm:"not null" json:"currentPrice"`
	LastUpdated  string  `gorm:"not null" json:"lastUpdated"`
}

// Invested returns the position's cost basis.
func (s *Stock) Invested() decimal.Decimal {
	return decimal.NewFromFloat(s.Quantity).Mul(decimal.NewFromFloat(s.AvgBuyPrice))
}

// Value returns the position's market value at the last entered price.
func (s *Stock) Value() decimal.Decimal {
	return decimal.NewFromFloat(s.Quantity).Mul(decimal.NewFromFloat(s.CurrentPrice))
}
