package models

import "time"

// Transaction represents a realized money movement. Amount is signed:
// negative for expenses, positive for income. AmountEUR carries the value
// normalized to the ledger currency; when nil the native amount is treated
// as already normalized.
type Transaction struct {
	Base
	AccountID        string    `gorm:"type:uuid;not null;index" json:"account_id"`
	Date             time.Time `gorm:"not null;index" json:"date"`
	Amount           float64   `gorm:"not null" json:"amount"`
	AmountEUR        *float64  `json:"amount_eur,omitempty"`
	Category         string    `gorm:"index" json:"category"`
	Description      string    `json:"description"`
	OriginalCurrency string    `json:"original_currency"`
	IsManual         bool      `gorm:"default:false" json:"is_manual"`

	// Relationships
	Account Account `gorm:"foreignKey:AccountID" json:"account,omitempty"`
}

// LedgerAmount returns the transaction value in the ledger currency,
// falling back to the native amount when no normalized value is stored.
func (t *Transaction) LedgerAmount() float64 {
	if t.AmountEUR != nil {
		return *t.AmountEUR
	}
	return t.Amount
}
