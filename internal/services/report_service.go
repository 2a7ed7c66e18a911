package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"fluxo/internal/cycle"
	apperrors "fluxo/internal/errors"
	"fluxo/internal/models"
)

// reportService implements the aggregation and reporting engine.
type reportService struct {
	db *gorm.DB
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB) ReportServicer {
	return &reportService{db: db}
}

// reportInputs holds the raw rows the year report aggregates over.
type reportInputs struct {
	accounts     []models.Account
	rules        []models.ForecastRule
	cycles       []models.CyclePeriod
	transactions []models.Transaction
	instances    []models.ForecastInstance
	linkedTxIDs  map[string]bool
}

// BuildYearReport produces one row per accounting period of the requested
// year: opening balance, actual total, projected total, net, and closing
// balance, plus a per-category detail list and the transactions that still
// need manual reconciliation.
//
// Period membership is decided by the cycle calendar everywhere (actuals,
// bills, budgets); a transaction dated Dec 27 belongs to January's period.
// Budget caps bound consumption: as real spending accrues against a
// budgeted category, the displayed projected remainder shrinks instead of
// double-counting.
func (s *reportService) BuildYearReport(year int) (*YearReport, error) {
	in, err := s.loadReportInputs(year)
	if err != nil {
		return nil, err
	}

	cal := cycle.NewCalendar(in.cycles)
	yearPrefix := fmt.Sprintf("%04d-", year)
	firstKey := cycle.Key(year, time.January)

	assetAccounts := make(map[string]bool, len(in.accounts))
	opening := 0.0
	for i := range in.accounts {
		if in.accounts[i].Nature == models.AccountNatureAsset {
			assetAccounts[in.accounts[i].ID] = true
			opening += in.accounts[i].InitialBalance
		}
	}

	// Actuals bucketed by (period, category). Liability accounts are
	// excluded from the cash position entirely; their settlements show up
	// as projected outflows via forecast rules instead.
	actuals := make(map[string]float64)
	var inYear []models.Transaction
	for i := range in.transactions {
		t := &in.transactions[i]
		if !assetAccounts[t.AccountID] {
			continue
		}
		key := cal.KeyForDate(t.Date)
		switch {
		case key < firstKey:
			opening += t.LedgerAmount()
		case strings.HasPrefix(key, yearPrefix):
			actuals[categoryKey(key, t.Category)] += t.LedgerAmount()
			inYear = append(inYear, *t)
		}
	}

	activeRules := make(map[string]*models.ForecastRule, len(in.rules))
	budgetCategories := make(map[string]bool)
	for i := range in.rules {
		activeRules[in.rules[i].ID] = &in.rules[i]
		if in.rules[i].Type == models.RuleTypeBudget {
			budgetCategories[categoryOrDefault(in.rules[i].Category)] = true
		}
	}

	// Projected instances split into budget caps and plain bills. Realized
	// instances are represented through their transactions in the actuals
	// bucket; skipped ones count nowhere.
	bills := make(map[string]float64)
	budgets := make(map[string]float64)
	for i := range in.instances {
		inst := &in.instances[i]
		if inst.Status != models.InstanceStatusProjected {
			continue
		}
		rule, ok := activeRules[inst.RuleID]
		if !ok {
			continue
		}
		key := cal.KeyForDate(inst.Date)
		if !strings.HasPrefix(key, yearPrefix) {
			continue
		}
		ck := categoryKey(key, rule.Category)
		if rule.Type == models.RuleTypeBudget {
			// Most restrictive cap wins when several budget instances
			// target the same period and category.
			current, exists := budgets[ck]
			if !exists || math.Abs(inst.Amount) > math.Abs(current) {
				budgets[ck] = inst.Amount
			}
		} else {
			// Siblings from partial settlements simply sum.
			bills[ck] += inst.Amount
		}
	}

	periods := make([]PeriodRow, 0, 12)
	details := make(map[string][]PeriodDetail, 12)
	running := opening
	for m := time.January; m <= time.December; m++ {
		key := cycle.Key(year, m)

		var rows []PeriodDetail
		periodActual, periodProjected := 0.0, 0.0
		for _, cat := range activeCategories(key, actuals, bills, budgets) {
			ck := categoryKey(key, cat)
			actual := actuals[ck]
			bill := bills[ck]
			capAmount, hasCap := budgets[ck]

			consumed := actual + bill
			effective := consumed
			if hasCap && capAmount != 0 {
				if capAmount < 0 {
					effective = math.Min(capAmount, consumed)
				} else {
					effective = math.Max(capAmount, consumed)
				}
			}

			projected := effective - actual
			periodActual += actual
			periodProjected += projected

			detail := PeriodDetail{
				Category:  cat,
				Actual:    actual,
				Bills:     bill,
				Effective: effective,
				Projected: projected,
			}
			if hasCap {
				capCopy := capAmount
				detail.BudgetCap = &capCopy
			}
			rows = append(rows, detail)
		}

		net := periodActual + periodProjected
		periods = append(periods, PeriodRow{
			Key:       key,
			Label:     time.Date(year, m, 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006"),
			Opening:   running,
			Actual:    periodActual,
			Projected: periodProjected,
			Net:       net,
			Closing:   running + net,
		})
		running += net
		details[key] = rows
	}

	unmatched := make([]models.Transaction, 0)
	for i := range inYear {
		t := &inYear[i]
		if in.linkedTxIDs[t.ID] {
			continue
		}
		if t.Category == "" || !budgetCategories[t.Category] {
			unmatched = append(unmatched, *t)
		}
	}

	return &YearReport{
		Year:            year,
		OpeningBalance:  opening,
		Periods:         periods,
		DetailsByPeriod: details,
		Unmatched:       unmatched,
	}, nil
}

// loadReportInputs fetches everything the report needs. The first four
// reads are independent and issued concurrently; the instance window is
// padded by a month on both sides because cycle classification can pull
// dates across the calendar-year boundary.
func (s *reportService) loadReportInputs(year int) (*reportInputs, error) {
	in := &reportInputs{}

	var g errgroup.Group
	g.Go(func() error {
		return s.db.Find(&in.accounts).Error
	})
	g.Go(func() error {
		return s.db.Where("is_active = ?", true).Find(&in.rules).Error
	})
	g.Go(func() error {
		return s.db.Order("key").Find(&in.cycles).Error
	})
	g.Go(func() error {
		return s.db.Order("date").Find(&in.transactions).Error
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	windowStart := time.Date(year-1, time.December, 1, 0, 0, 0, 0, time.UTC)
	windowEnd := time.Date(year+1, time.January, 31, 0, 0, 0, 0, time.UTC)
	if err := s.db.Where("date BETWEEN ? AND ?", windowStart, windowEnd).Find(&in.instances).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var linked []models.ForecastInstance
	if err := s.db.Select("transaction_id").Where("transaction_id IS NOT NULL").Find(&linked).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	in.linkedTxIDs = make(map[string]bool, len(linked))
	for i := range linked {
		if linked[i].TransactionID != nil {
			in.linkedTxIDs[*linked[i].TransactionID] = true
		}
	}

	return in, nil
}

// CycleSummary aggregates income, expenses, and top spending categories for
// the accounting period containing now.
func (s *reportService) CycleSummary(now time.Time) (*CycleSummary, error) {
	var cycles []models.CyclePeriod
	if err := s.db.Order("key").Find(&cycles).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	cal := cycle.NewCalendar(cycles)
	key, start, end := cal.CurrentPeriod(now)

	var transactions []models.Transaction
	err := s.db.
		Joins("JOIN accounts ON accounts.id = transactions.account_id AND accounts.nature = ?", models.AccountNatureAsset).
		Where("transactions.date BETWEEN ? AND ?", start, end).
		Order("transactions.date DESC").
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &CycleSummary{Key: key, Start: start, End: end}
	byCategory := make(map[string]float64)
	for i := range transactions {
		amount := transactions[i].LedgerAmount()
		if amount < 0 {
			summary.Expense += math.Abs(amount)
			byCategory[categoryOrDefault(transactions[i].Category)] += math.Abs(amount)
		} else {
			summary.Income += amount
		}
	}
	summary.Net = summary.Income - summary.Expense

	for cat, amount := range byCategory {
		summary.TopCategories = append(summary.TopCategories, CategoryTotal{Category: cat, Amount: amount})
	}
	sort.Slice(summary.TopCategories, func(i, j int) bool {
		if summary.TopCategories[i].Amount != summary.TopCategories[j].Amount {
			return summary.TopCategories[i].Amount > summary.TopCategories[j].Amount
		}
		return summary.TopCategories[i].Category < summary.TopCategories[j].Category
	})
	if len(summary.TopCategories) > 6 {
		summary.TopCategories = summary.TopCategories[:6]
	}

	return summary, nil
}

func categoryOrDefault(category string) string {
	if category == "" {
		return "Uncategorized"
	}
	return category
}

func categoryKey(periodKey, category string) string {
	return periodKey + ":" + categoryOrDefault(category)
}

// activeCategories returns the sorted set of categories that appear in any
// of the maps for the given period.
func activeCategories(periodKey string, maps ...map[string]float64) []string {
	prefix := periodKey + ":"
	seen := make(map[string]bool)
	for _, m := range maps {
		for k := range m {
			if strings.HasPrefix(k, prefix) {
				seen[strings.TrimPrefix(k, prefix)] = true
			}
		}
	}
	cats := make([]string, 0, len(seen))
	for c := range seen {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}
