package services

import (
	"time"

	"fluxo/internal/cycle"
	"fluxo/internal/models"
	"fluxo/internal/pagination"
)

// AccountBalance pairs an account with its current balance
// (initial balance plus all recorded transactions).
type AccountBalance struct {
	models.Account
	CurrentBalance float64 `json:"current_balance"`
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(name, currency string, nature models.AccountNature, initialBalance float64) (*models.Account, error)
	GetAccounts() ([]AccountBalance, error)
	GetAccountByID(accountID string) (*models.Account, error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate  *time.Time
	ToDate    *time.Time
	Category  *string
	AccountID *string
	MinAmount *float64
	MaxAmount *float64
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateManualTransaction(accountID, description, category string, amount float64, date time.Time) (*models.Transaction, error)
	UpdateTransaction(transactionID string, date time.Time, description, category string, amount float64) (*models.Transaction, error)
	BulkAssignCategory(transactionIDs []string, category string) error
	DeleteTransaction(transactionID string) error
	GetTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(transactionID string) (*models.Transaction, error)
	Categorize(description string) string
}

// RuleInput carries the fields needed to create a forecast rule.
type RuleInput struct {
	Name              string
	Type              models.RuleType
	Amount            float64
	Currency          string
	AccountID         string
	Category          string
	StartDate         time.Time
	EndDate           *time.Time
	Frequency         string
	DayOfMonth        int
	InstallmentsCount *int
}

// PlanKind selects the forecast plan derived from editing a transaction.
type PlanKind string

const (
	PlanPayIn30       PlanKind = "pay_in_30"
	PlanRepeatMonthly PlanKind = "repeat_monthly"
)

// TransactionPlan describes a forecast rule to derive from a real
// transaction (e.g. a pay-later purchase due in 30 days, or a charge that
// repeats monthly).
type TransactionPlan struct {
	Kind        PlanKind
	MonthsAhead int
}

// RuleServicer defines the contract for forecast rule management.
type RuleServicer interface {
	CreateRule(input RuleInput) (*models.ForecastRule, error)
	GetRules(page pagination.PageRequest, isActive *bool, ruleType *models.RuleType) (*pagination.PageResponse[models.ForecastRule], error)
	GetRuleByID(ruleID string) (*models.ForecastRule, error)
	DeactivateRule(ruleID string) error
	ApplyTransactionPlan(transactionID string, plan TransactionPlan) (*models.ForecastRule, error)
}

// ForecastServicer defines the contract for instance generation and
// reconciliation.
type ForecastServicer interface {
	GenerateInstances(start time.Time, horizonMonths int) error
	LinkTransaction(transactionID, instanceID string) error
	SetInstanceAmount(instanceID string, amount float64) error
	SetInstanceStatus(instanceID string, status models.InstanceStatus) error
	GetInstanceByID(instanceID string) (*models.ForecastInstance, error)
}

// PeriodRow is one accounting period in the year cash-flow timeline.
type PeriodRow struct {
	Key       string  `json:"key"`
	Label     string  `json:"label"`
	Opening   float64 `json:"opening"`
	Actual    float64 `json:"actual"`
	Projected float64 `json:"projected"`
	Net       float64 `json:"net"`
	Closing   float64 `json:"closing"`
}

// PeriodDetail is the per-category breakdown behind one period row.
type PeriodDetail struct {
	Category  string   `json:"category"`
	Actual    float64  `json:"actual"`
	Bills     float64  `json:"bills"`
	BudgetCap *float64 `json:"budget_cap,omitempty"`
	Effective float64  `json:"effective"`
	Projected float64  `json:"projected"`
}

// YearReport is the full cash-flow timeline for one year of accounting
// periods.
type YearReport struct {
	Year            int                       `json:"year"`
	OpeningBalance  float64                   `json:"opening_balance"`
	Periods         []PeriodRow               `json:"periods"`
	DetailsByPeriod map[string][]PeriodDetail `json:"details_by_period"`
	Unmatched       []models.Transaction      `json:"unmatched_transactions"`
}

// CategoryTotal is a category with its aggregated spend.
type CategoryTotal struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// CycleSummary aggregates the current accounting period for the dashboard.
type CycleSummary struct {
	Key           string          `json:"key"`
	Start         time.Time       `json:"start"`
	End           time.Time       `json:"end"`
	Income        float64         `json:"income"`
	Expense       float64         `json:"expense"`
	Net           float64         `json:"net"`
	TopCategories []CategoryTotal `json:"top_categories"`
}

// ReportServicer defines the contract for aggregation and reporting.
type ReportServicer interface {
	BuildYearReport(year int) (*YearReport, error)
	CycleSummary(now time.Time) (*CycleSummary, error)
}

// CycleServicer defines the contract for custom cycle override management.
type CycleServicer interface {
	UpsertCycle(key string, startDate, endDate time.Time) (*models.CyclePeriod, error)
	GetCycles() ([]models.CyclePeriod, error)
	Calendar() (*cycle.Calendar, error)
}

// RatesByDay maps ISO dates to per-currency exchange rates
// (units of foreign currency per unit of ledger currency).
type RatesByDay map[string]map[string]float64

// FXServicer defines the contract for exchange-rate lookups. Failures are
// expected to degrade gracefully: Normalize returns nil when no rate can be
// obtained, and callers treat the amount as already in the ledger currency.
type FXServicer interface {
	RatesForRange(start, end time.Time, toCurrency string) (RatesByDay, error)
	Normalize(amount float64, fromCurrency string, date time.Time) *float64
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
