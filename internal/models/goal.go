package models

// GoalType tags what a goal is about. It is informational only.
type GoalType string

const (
	GoalTypeHabit     GoalType = "habit"
	GoalTypeFinance   GoalType = "finance"
	GoalTypePortfolio GoalType = "portfolio"
)

// GoalPeriod represents the period a goal is measured over.
type GoalPeriod string

const (
	GoalPeriodDaily   GoalPeriod = "daily"
	GoalPeriodWeekly  GoalPeriod = "weekly"
	GoalPeriodMonthly GoalPeriod = "monthly"
	GoalPeriodYearly  GoalPeriod = "yearly"
)

// TrackingType says whether the target applies to each period or to the running total.
type TrackingType string

const (
	TrackingPerPeriod  TrackingType = "per-period"
	TrackingCumulative TrackingType = "cumulative"
)

// GoalStatus is the lifecycle state of a goal.
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusFailed    GoalStatus = "failed"
)

// Goal represents a target the user updates progress against by hand.
type Goal struct {
	Base
	Name         string       `gorm:"not null" json:"name"`
	Type         GoalType     `gorm:"not null;index" json:"type"`
	ReferenceID  string       `gorm:"index" json:"referenceId,omitempty"`
	Target       float64      `gorm:"not null" json:"target"`
	Current      float64      `gorm:"not null" json:"current"`
	Period       GoalPeriod   `gorm:"not null" json:"period"`
	TrackingType TrackingType `gorm:"not null" json:"trackingType"`
	Status       GoalStatus   `gorm:"not null;index" json:"status"`
	StartDate    string       `gorm:"not null" json:"startDate"`
	EndDate      string       `json:"endDate,omitempty"`
	Unit         string       `json:"unit,omitempty"`
}

// StatusFor returns the status implied by a progress value.
func (g *Goal) StatusFor(current float64) GoalStatus {
	if current >= g.Target {
		return GoalStatusCompleted
	}
	return GoalStatusActive
}
