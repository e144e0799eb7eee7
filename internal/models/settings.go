package models

// SettingsID is the fixed id of the singleton settings record.
const SettingsID = "default"

// DefaultCurrency is the only supported currency.
const DefaultCurrency = "LKR"

// AppSettings holds user preferences. Exactly one record exists, created on
// first load.
type AppSettings struct {
	Base
	UserName      string `gorm:"not null" json:"userName"`
	Currency      string `gorm:"not null" json:"currency"`
	MonthStartDay int    `gorm:"not null" json:"monthStartDay"`
	UpdatedAt     string `gorm:"not null" json:"updatedAt"`
}

// TableName keeps the collection name aligned with the backup format.
func (AppSettings) TableName() string {
	return "settings"
}

// All lists every record type in the store.
var All = []interface{}{
	&Habit{},
	&HabitEntry{},
	&Goal{},
	&Stock{},
	&Transaction{},
	&AppSettings{},
}
