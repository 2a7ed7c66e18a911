package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"fluxo/internal/cycle"
	apperrors "fluxo/internal/errors"
	"fluxo/internal/logger"
	"fluxo/internal/models"
	"fluxo/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db             *gorm.DB
	fx             FXServicer
	ledgerCurrency string
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, fx FXServicer, ledgerCurrency string) TransactionServicer {
	if ledgerCurrency == "" {
		ledgerCurrency = "EUR"
	}
	return &transactionService{db: db, fx: fx, ledgerCurrency: ledgerCurrency}
}

// CreateManualTransaction records a hand-entered transaction. Amounts are
// assumed to be in the account's currency; non-ledger currencies are
// normalized through the FX service, and an empty category falls back to
// pattern-based auto-categorization.
func (s *transactionService) CreateManualTransaction(accountID, description, category string, amount float64, date time.Time) (*models.Transaction, error) {
	var account models.Account
	if err := s.db.First(&account, "id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if date.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction date is required")
	}

	category = strings.TrimSpace(category)
	if category == "" {
		category = s.Categorize(description)
	}

	transaction := &models.Transaction{
		AccountID:   account.ID,
		Date:        cycle.DateOnly(date),
		Amount:      amount,
		Category:    category,
		Description: strings.TrimSpace(description),
		IsManual:    true,
	}
	if account.Currency != s.ledgerCurrency {
		transaction.OriginalCurrency = account.Currency
		transaction.AmountEUR = s.fx.Normalize(amount, account.Currency, transaction.Date)
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// UpdateTransaction edits a transaction's date, description, category, and
// amount. For foreign-currency transactions the stored ledger amount is
// recomputed with the implied rate of the original conversion, so editing the
// amount does not require a fresh FX lookup and stays consistent with the
// rate in effect when the transaction was imported.
func (s *transactionService) UpdateTransaction(transactionID string, date time.Time, description, category string, amount float64) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(transactionID)
	if err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction date is required")
	}

	updates := map[string]interface{}{
		"date":        cycle.DateOnly(date),
		"description": strings.TrimSpace(description),
		"category":    strings.TrimSpace(category),
		"amount":      amount,
	}

	if transaction.AmountEUR != nil {
		if transaction.Amount != 0 && *transaction.AmountEUR != 0 {
			impliedRate := transaction.Amount / *transaction.AmountEUR
			converted := amount / impliedRate
			updates["amount_eur"] = converted
		} else {
			// No usable implied rate; treat the new amount as ledger-valued.
			updates["amount_eur"] = amount
			logger.Get().Warnw("implied exchange rate unavailable, storing amount as ledger value",
				"transaction_id", transaction.ID,
			)
		}
	}

	if err := s.db.Model(transaction).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// BulkAssignCategory sets the category on a batch of transactions.
func (s *transactionService) BulkAssignCategory(transactionIDs []string, category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return apperrors.ErrCategoryMissing
	}
	if len(transactionIDs) == 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "no transaction ids provided")
	}

	err := s.db.Model(&models.Transaction{}).
		Where("id IN ?", transactionIDs).
		Update("category", category).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// DeleteTransaction removes a transaction. Any forecast instance realized by
// it reverts to projected so the expected payment shows up again.
func (s *transactionService) DeleteTransaction(transactionID string) error {
	transaction, err := s.GetTransactionByID(transactionID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ForecastInstance{}).
			Where("transaction_id = ?", transaction.ID).
			Updates(map[string]interface{}{
				"status":         models.InstanceStatusProjected,
				"transaction_id": nil,
			}).Error; err != nil {
			return err
		}
		return tx.Delete(transaction).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetTransactions returns a paginated, filtered transaction list ordered by
// date descending.
func (s *transactionService) GetTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{})
	if filter.FromDate != nil {
		base = base.Where("date >= ?", cycle.DateOnly(*filter.FromDate))
	}
	if filter.ToDate != nil {
		base = base.Where("date <= ?", cycle.DateOnly(*filter.ToDate))
	}
	if filter.Category != nil {
		base = base.Where("category = ?", *filter.Category)
	}
	if filter.AccountID != nil {
		base = base.Where("account_id = ?", *filter.AccountID)
	}
	if filter.MinAmount != nil {
		base = base.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		base = base.Where("amount <= ?", *filter.MaxAmount)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Order("date DESC, created_at DESC").Scopes(pagination.Paginate(page)).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetTransactionByID returns a transaction by ID.
func (s *transactionService) GetTransactionByID(transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.First(&transaction, "id = ?", transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// Categorize matches a description against the active category rules in
// priority order and returns the first match, or "Uncategorized".
func (s *transactionService) Categorize(description string) string {
	var rules []models.CategoryRule
	err := s.db.Where("is_active = ?", true).Order("priority, created_at").Find(&rules).Error
	if err != nil {
		logger.Get().Warnw("failed to load category rules", "error", err.Error())
		return "Uncategorized"
	}

	for i := range rules {
		pattern := rules[i].Pattern
		haystack := description
		if !rules[i].CaseSensitive {
			pattern = strings.ToLower(pattern)
			haystack = strings.ToLower(haystack)
		}
		if pattern != "" && strings.Contains(haystack, pattern) {
			return rules[i].Category
		}
	}
	return "Uncategorized"
}
