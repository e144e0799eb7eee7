package models

import (
	"tracker/internal/dates"
	"tracker/internal/uuid"

	"gorm.io/gorm"
)

// Base contains the columns shared by every record. Timestamps are kept as
// RFC 3339 strings so records survive a backup round-trip unchanged.
type Base struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt string `gorm:"not null" json:"createdAt"`
}

// BeforeCreate hook fills in the id and creation time for new records.
// Imported records keep the values they arrive with.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	if b.CreatedAt == "" {
		b.CreatedAt = dates.Now()
	}
	return nil
}
