package models

import "time"

// RuleType represents the kind of forecast rule
type RuleType string

const (
	RuleTypeRecurring   RuleType = "recurring"
	RuleTypeOneOff      RuleType = "one_off"
	RuleTypeInstallment RuleType = "installment"
	RuleTypeBudget      RuleType = "budget"
)

// FrequencyMonthly is the only supported recurring frequency.
const FrequencyMonthly = "monthly"

// ForecastRule is a declarative template for future cash movement. Rules are
// never hard-deleted: deactivating keeps realized history consistent and
// stops further generation.
type ForecastRule struct {
	Base
	Name                string     `gorm:"not null" json:"name"`
	Type                RuleType   `gorm:"not null;index" json:"type"`
	Amount              float64    `gorm:"not null" json:"amount"`
	Currency            string     `gorm:"not null;default:'EUR'" json:"currency"`
	AccountID           string     `gorm:"type:uuid" json:"account_id"`
	Category            string     `gorm:"index" json:"category"`
	StartDate           time.Time  `gorm:"not null" json:"start_date"`
	EndDate             *time.Time `json:"end_date,omitempty"`
	Frequency           string     `json:"frequency"`
	DayOfMonth          int        `json:"day_of_month"`
	InstallmentsCount   *int       `json:"installments_count,omitempty"`
	IsActive            bool       `gorm:"default:true;index" json:"is_active"`
	SourceTransactionID *string    `gorm:"type:uuid;index" json:"source_transaction_id,omitempty"`

	// Relationships
	Instances []ForecastInstance `gorm:"foreignKey:RuleID" json:"instances,omitempty"`
}
