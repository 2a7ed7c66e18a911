package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fluxo/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestAccount creates an asset account with zero initial balance.
func CreateTestAccount(t *testing.T, db *gorm.DB) *models.Account {
	t.Helper()
	return CreateTestAccountWithBalance(t, db, models.AccountNatureAsset, 0)
}

// CreateTestAccountWithBalance creates an account with the given nature and
// initial balance.
func CreateTestAccountWithBalance(t *testing.T, db *gorm.DB, nature models.AccountNature, balance float64) *models.Account {
	t.Helper()

	account := &models.Account{
		Name:           fmt.Sprintf("Account %d", nextID()),
		Currency:       "EUR",
		Nature:         nature,
		InitialBalance: balance,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestTransaction creates a transaction on the given account.
func CreateTestTransaction(t *testing.T, db *gorm.DB, accountID string, amount float64, date time.Time) *models.Transaction {
	t.Helper()

	transaction := &models.Transaction{
		AccountID:   accountID,
		Date:        date,
		Amount:      amount,
		Description: fmt.Sprintf("Transaction %d", nextID()),
		IsManual:    true,
	}
	if err := db.Create(transaction).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return transaction
}

// CreateTestRule creates an active forecast rule of the given type.
func CreateTestRule(t *testing.T, db *gorm.DB, ruleType models.RuleType, amount float64, startDate time.Time) *models.ForecastRule {
	t.Helper()

	rule := &models.ForecastRule{
		Name:      fmt.Sprintf("Rule %d", nextID()),
		Type:      ruleType,
		Amount:    amount,
		Currency:  "EUR",
		StartDate: startDate,
		IsActive:  true,
	}
	switch ruleType {
	case models.RuleTypeRecurring:
		rule.Frequency = models.FrequencyMonthly
		rule.DayOfMonth = startDate.Day()
	case models.RuleTypeOneOff:
		end := startDate
		rule.EndDate = &end
	case models.RuleTypeBudget:
		rule.Category = fmt.Sprintf("Category %d", nextID())
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("failed to create test rule: %v", err)
	}
	return rule
}

// CreateTestInstance creates a projected forecast instance for a rule.
func CreateTestInstance(t *testing.T, db *gorm.DB, ruleID string, amount float64, date time.Time) *models.ForecastInstance {
	t.Helper()

	instance := &models.ForecastInstance{
		RuleID: ruleID,
		Date:   date,
		Amount: amount,
		Status: models.InstanceStatusProjected,
	}
	if err := db.Create(instance).Error; err != nil {
		t.Fatalf("failed to create test instance: %v", err)
	}
	return instance
}

// CreateTestCycle stores an accounting period override.
func CreateTestCycle(t *testing.T, db *gorm.DB, key string, start, end time.Time) *models.CyclePeriod {
	t.Helper()

	period := &models.CyclePeriod{Key: key, StartDate: start, EndDate: end}
	if err := db.Create(period).Error; err != nil {
		t.Fatalf("failed to create test cycle: %v", err)
	}
	return period
}
