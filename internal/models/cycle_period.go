package models

import "time"

// CyclePeriod is an explicit override of an accounting period's boundaries.
// At most one override exists per key; within its [start, end] range it
// fully replaces the computed standard boundaries.
type CyclePeriod struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
