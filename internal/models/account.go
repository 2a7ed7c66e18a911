package models

// AccountNature determines whether an account counts toward the cash
// position. Liability accounts (credit cards, pay-later providers) are
// excluded from balances; their upcoming payments surface only as projected
// outflows.
type AccountNature string

const (
	AccountNatureAsset     AccountNature = "asset"
	AccountNatureLiability AccountNature = "liability"
)

// Account represents a financial account in the system
type Account struct {
	Base
	Name           string        `gorm:"not null" json:"name"`
	Currency       string        `gorm:"not null;default:'EUR'" json:"currency"`
	Nature         AccountNature `gorm:"not null;default:'asset'" json:"nature"`
	InitialBalance float64       `gorm:"not null;default:0" json:"initial_balance"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:AccountID" json:"transactions,omitempty"`
}
