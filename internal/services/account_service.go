package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "fluxo/internal/errors"
	"fluxo/internal/models"
)

// accountService handles account-related business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// CreateAccount creates a new account.
func (s *accountService) CreateAccount(name, currency string, nature models.AccountNature, initialBalance float64) (*models.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	switch nature {
	case models.AccountNatureAsset, models.AccountNatureLiability:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account nature must be asset or liability")
	}
	if currency == "" {
		currency = "EUR"
	}

	account := &models.Account{
		Name:           name,
		Currency:       currency,
		Nature:         nature,
		InitialBalance: initialBalance,
	}
	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// GetAccounts returns all accounts with their current balances. Balances are
// computed as initial balance plus the ledger sum of the account's
// transactions, with one grouped query instead of a query per account.
func (s *accountService) GetAccounts() ([]AccountBalance, error) {
	var accounts []models.Account
	if err := s.db.Order("created_at").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	type accountSum struct {
		AccountID string
		Total     float64
	}
	var sums []accountSum
	err := s.db.Model(&models.Transaction{}).
		Select("account_id, SUM(COALESCE(amount_eur, amount)) AS total").
		Group("account_id").
		Scan(&sums).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totals := make(map[string]float64, len(sums))
	for _, row := range sums {
		totals[row.AccountID] = row.Total
	}

	balances := make([]AccountBalance, 0, len(accounts))
	for _, account := range accounts {
		balances = append(balances, AccountBalance{
			Account:        account,
			CurrentBalance: account.InitialBalance + totals[account.ID],
		})
	}
	return balances, nil
}

// GetAccountByID returns an account by ID.
func (s *accountService) GetAccountByID(accountID string) (*models.Account, error) {
	var account models.Account
	if err := s.db.First(&account, "id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}
