package models

import "time"

// InstanceStatus represents the lifecycle state of a forecast instance
type InstanceStatus string

const (
	InstanceStatusProjected InstanceStatus = "projected"
	InstanceStatusRealized  InstanceStatus = "realized"
	InstanceStatusSkipped   InstanceStatus = "skipped"
)

// ForecastInstance is one dated projection materialized from a rule. The
// (rule_id, date) pair is the idempotency key for generation; remainder
// instances created by partial settlement are the one sanctioned exception
// and share the pair with their realized sibling.
type ForecastInstance struct {
	Base
	RuleID        string         `gorm:"type:uuid;not null;index:idx_instances_rule_date" json:"rule_id"`
	Date          time.Time      `gorm:"not null;index:idx_instances_rule_date;index" json:"date"`
	Amount        float64        `gorm:"not null" json:"amount"`
	Status        InstanceStatus `gorm:"not null;default:'projected';index" json:"status"`
	TransactionID *string        `gorm:"type:uuid;index" json:"transaction_id,omitempty"`
	Note          string         `json:"note"`

	// Relationships
	Rule ForecastRule `gorm:"foreignKey:RuleID" json:"rule,omitempty"`
}
