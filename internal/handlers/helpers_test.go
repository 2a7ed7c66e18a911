package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"fluxo/internal/cycle"
	"fluxo/internal/models"
	"fluxo/internal/pagination"
	"fluxo/internal/services"
	"fluxo/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

// --- shared mocks ---

type mockAuditService struct{}

func (m *mockAuditService) Log(_, _, _, _ string, _ map[string]interface{}) {}

var _ services.AuditServicer = (*mockAuditService)(nil)

type mockAccountService struct {
	createAccountFn  func(name, currency string, nature models.AccountNature, initialBalance float64) (*models.Account, error)
	getAccountsFn    func() ([]services.AccountBalance, error)
	getAccountByIDFn func(accountID string) (*models.Account, error)
}

func (m *mockAccountService) CreateAccount(name, currency string, nature models.AccountNature, initialBalance float64) (*models.Account, error) {
	if m.createAccountFn != nil {
		return m.createAccountFn(name, currency, nature, initialBalance)
	}
	return &models.Account{}, nil
}

func (m *mockAccountService) GetAccounts() ([]services.AccountBalance, error) {
	if m.getAccountsFn != nil {
		return m.getAccountsFn()
	}
	return []services.AccountBalance{}, nil
}

func (m *mockAccountService) GetAccountByID(accountID string) (*models.Account, error) {
	if m.getAccountByIDFn != nil {
		return m.getAccountByIDFn(accountID)
	}
	return &models.Account{}, nil
}

var _ services.AccountServicer = (*mockAccountService)(nil)

type mockTransactionService struct {
	createManualTransactionFn func(accountID, description, category string, amount float64, date time.Time) (*models.Transaction, error)
	updateTransactionFn       func(transactionID string, date time.Time, description, category string, amount float64) (*models.Transaction, error)
	bulkAssignCategoryFn      func(transactionIDs []string, category string) error
	deleteTransactionFn       func(transactionID string) error
	getTransactionsFn         func(page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	getTransactionByIDFn      func(transactionID string) (*models.Transaction, error)
	categorizeFn              func(description string) string
}

func (m *mockTransactionService) CreateManualTransaction(accountID, description, category string, amount float64, date time.Time) (*models.Transaction, error) {
	if m.createManualTransactionFn != nil {
		return m.createManualTransactionFn(accountID, description, category, amount, date)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(transactionID string, date time.Time, description, category string, amount float64) (*models.Transaction, error) {
	if m.updateTransactionFn != nil {
		return m.updateTransactionFn(transactionID, date, description, category, amount)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) BulkAssignCategory(transactionIDs []string, category string) error {
	if m.bulkAssignCategoryFn != nil {
		return m.bulkAssignCategoryFn(transactionIDs, category)
	}
	return nil
}

func (m *mockTransactionService) DeleteTransaction(transactionID string) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(transactionID)
	}
	return nil
}

func (m *mockTransactionService) GetTransactions(page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.getTransactionsFn != nil {
		return m.getTransactionsFn(page, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetTransactionByID(transactionID string) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) Categorize(description string) string {
	if m.categorizeFn != nil {
		return m.categorizeFn(description)
	}
	return "Uncategorized"
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

type mockRuleService struct {
	createRuleFn           func(input services.RuleInput) (*models.ForecastRule, error)
	getRulesFn             func(page pagination.PageRequest, isActive *bool, ruleType *models.RuleType) (*pagination.PageResponse[models.ForecastRule], error)
	getRuleByIDFn          func(ruleID string) (*models.ForecastRule, error)
	deactivateRuleFn       func(ruleID string) error
	applyTransactionPlanFn func(transactionID string, plan services.TransactionPlan) (*models.ForecastRule, error)
}

func (m *mockRuleService) CreateRule(input services.RuleInput) (*models.ForecastRule, error) {
	if m.createRuleFn != nil {
		return m.createRuleFn(input)
	}
	return &models.ForecastRule{}, nil
}

func (m *mockRuleService) GetRules(page pagination.PageRequest, isActive *bool, ruleType *models.RuleType) (*pagination.PageResponse[models.ForecastRule], error) {
	if m.getRulesFn != nil {
		return m.getRulesFn(page, isActive, ruleType)
	}
	resp := pagination.NewPageResponse([]models.ForecastRule{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockRuleService) GetRuleByID(ruleID string) (*models.ForecastRule, error) {
	if m.getRuleByIDFn != nil {
		return m.getRuleByIDFn(ruleID)
	}
	return &models.ForecastRule{}, nil
}

func (m *mockRuleService) DeactivateRule(ruleID string) error {
	if m.deactivateRuleFn != nil {
		return m.deactivateRuleFn(ruleID)
	}
	return nil
}

func (m *mockRuleService) ApplyTransactionPlan(transactionID string, plan services.TransactionPlan) (*models.ForecastRule, error) {
	if m.applyTransactionPlanFn != nil {
		return m.applyTransactionPlanFn(transactionID, plan)
	}
	return &models.ForecastRule{}, nil
}

var _ services.RuleServicer = (*mockRuleService)(nil)

type mockForecastService struct {
	generateInstancesFn func(start time.Time, horizonMonths int) error
	linkTransactionFn   func(transactionID, instanceID string) error
	setInstanceAmountFn func(instanceID string, amount float64) error
	setInstanceStatusFn func(instanceID string, status models.InstanceStatus) error
	getInstanceByIDFn   func(instanceID string) (*models.ForecastInstance, error)
}

func (m *mockForecastService) GenerateInstances(start time.Time, horizonMonths int) error {
	if m.generateInstancesFn != nil {
		return m.generateInstancesFn(start, horizonMonths)
	}
	return nil
}

func (m *mockForecastService) LinkTransaction(transactionID, instanceID string) error {
	if m.linkTransactionFn != nil {
		return m.linkTransactionFn(transactionID, instanceID)
	}
	return nil
}

func (m *mockForecastService) SetInstanceAmount(instanceID string, amount float64) error {
	if m.setInstanceAmountFn != nil {
		return m.setInstanceAmountFn(instanceID, amount)
	}
	return nil
}

func (m *mockForecastService) SetInstanceStatus(instanceID string, status models.InstanceStatus) error {
	if m.setInstanceStatusFn != nil {
		return m.setInstanceStatusFn(instanceID, status)
	}
	return nil
}

func (m *mockForecastService) GetInstanceByID(instanceID string) (*models.ForecastInstance, error) {
	if m.getInstanceByIDFn != nil {
		return m.getInstanceByIDFn(instanceID)
	}
	return &models.ForecastInstance{}, nil
}

var _ services.ForecastServicer = (*mockForecastService)(nil)

type mockReportService struct {
	buildYearReportFn func(year int) (*services.YearReport, error)
	cycleSummaryFn    func(now time.Time) (*services.CycleSummary, error)
}

func (m *mockReportService) BuildYearReport(year int) (*services.YearReport, error) {
	if m.buildYearReportFn != nil {
		return m.buildYearReportFn(year)
	}
	return &services.YearReport{Year: year}, nil
}

func (m *mockReportService) CycleSummary(now time.Time) (*services.CycleSummary, error) {
	if m.cycleSummaryFn != nil {
		return m.cycleSummaryFn(now)
	}
	return &services.CycleSummary{}, nil
}

var _ services.ReportServicer = (*mockReportService)(nil)

type mockCycleService struct {
	upsertCycleFn func(key string, startDate, endDate time.Time) (*models.CyclePeriod, error)
	getCyclesFn   func() ([]models.CyclePeriod, error)
}

func (m *mockCycleService) UpsertCycle(key string, startDate, endDate time.Time) (*models.CyclePeriod, error) {
	if m.upsertCycleFn != nil {
		return m.upsertCycleFn(key, startDate, endDate)
	}
	return &models.CyclePeriod{Key: key}, nil
}

func (m *mockCycleService) GetCycles() ([]models.CyclePeriod, error) {
	if m.getCyclesFn != nil {
		return m.getCyclesFn()
	}
	return []models.CyclePeriod{}, nil
}

func (m *mockCycleService) Calendar() (*cycle.Calendar, error) {
	cycles, err := m.GetCycles()
	if err != nil {
		return nil, err
	}
	return cycle.NewCalendar(cycles), nil
}

var _ services.CycleServicer = (*mockCycleService)(nil)

// --- test helpers ---

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
