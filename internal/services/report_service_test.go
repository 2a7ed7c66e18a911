package services

import (
	"math"
	"testing"
	"time"

	"fluxo/internal/models"
	"fluxo/internal/testutil"
)

func approx(t *testing.T, got, want float64, label string) {
	t.Helper()
	if math.Abs(got-want) > 0.001 {
		t.Errorf("%s = %v, want %v", label, got, want)
	}
}

func findDetail(details []PeriodDetail, category string) *PeriodDetail {
	for i := range details {
		if details[i].Category == category {
			return &details[i]
		}
	}
	return nil
}

func TestBuildYearReport(t *testing.T) {
	t.Run("opening_balance_from_assets_and_prior_transactions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReportService(db)

		asset := testutil.CreateTestAccountWithBalance(t, db, models.AccountNatureAsset, 1000)
		liability := testutil.CreateTestAccountWithBalance(t, db, models.AccountNatureLiability, -2000)

		// Before the year: counts toward opening.
		testutil.CreateTestTransaction(t, db, asset.ID, 500, date(2024, time.December, 10))
		// Liability movement never touches the cash position.
		testutil.CreateTestTransaction(t, db, liability.ID, -100, date(2024, time.December, 10))

		report, err := svc.BuildYearReport(2025)
		testutil.AssertNoError(t, err)

		approx(t, report.OpeningBalance, 1500, "opening balance")
		if len(report.Periods) != 12 {
			t.Fatalf("expected 12 periods, got %d", len(report.Periods))
		}
	})

	t.Run("cycle_boundary_pulls_december_into_january", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReportService(db)

		asset := testutil.CreateTestAccountWithBalance(t, db, models.AccountNatureAsset, 0)
		// Dec 20th 2024 is past the December 19th cutoff: it belongs to the
		// 2025-01 period, so it is an in-year actual, not opening balance.
		testutil.CreateTestTransaction(t, db, asset.ID, -80, date(2024, time.December, 20))

		report, err := svc.BuildYearReport(2025)
		testutil.AssertNoError(t, err)

		approx(t, report.OpeningBalance, 0, "opening balance")
		approx(t, report.Periods[0].Actual, -80, "january actual")
	})

	t.Run("budget_consumption_is_monotonic", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReportService(db)

		asset := testutil.CreateTestAccount(t, db)

		budget := &models.ForecastRule{
			Name:      "Groceries budget",
			Type:      models.RuleTypeBudget,
			Amount:    -500,
			Currency:  "EUR",
			Category:  "Groceries",
			StartDate: date(2025, time.January, 1),
			IsActive:  true,
		}
		testutil.AssertNoError(t, db.Create(budget).Error)
		// Anchor of the 2025-02 period (starts Jan 27th).
		testutil.CreateTestInstance(t, db, budget.ID, -500, date(2025, time.January, 27))

		tx := testutil.CreateTestTransaction(t, db, asset.ID, -200, date(2025, time.February, 10))
		testutil.AssertNoError(t, db.Model(tx).Update("category", "Groceries").Error)

		report, err := svc.BuildYearReport(2025)
		testutil.AssertNoError(t, err)

		detail := findDetail(report.DetailsByPeriod["2025-02"], "Groceries")
		if detail == nil {
			t.Fatal("expected Groceries detail in 2025-02")
		}
		approx(t, detail.Actual, -200, "actual")
		if detail.BudgetCap == nil {
			t.Fatal("expected budget cap")
		}
		approx(t, *detail.BudgetCap, -500, "cap")
		approx(t, detail.Effective, -500, "effective")
		approx(t, detail.Projected, -300, "projected remainder")

		feb := report.Periods[1]
		approx(t, feb.Actual, -200, "period actual")
		approx(t, feb.Projected, -300, "period projected")
		approx(t, feb.Net, -500, "period net")
	})

	t.Run("overspent_budget_tracks_spending", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReportService(db)

		asset := testutil.CreateTestAccount(t, db)

		budget := &models.ForecastRule{
			Name:      "Groceries budget",
			Type:      models.RuleTypeBudget,
			Amount:    -500,
			Currency:  "EUR",
			Category:  "Groceries",
			StartDate: date(2025, time.January, 1),
			IsActive:  true,
		}
		testutil.AssertNoError(t, db.Create(budget).Error)
		testutil.CreateTestInstance(t, db, budget.ID, -500, date(2025, time.January, 27))

		tx := testutil.CreateTestTransaction(t, db, asset.ID, -700, date(2025, time.February, 10))
		testutil.AssertNoError(t, db.Model(tx).Update("category", "Groceries").Error)

		report, err := svc.BuildYearReport(2025)
		testutil.AssertNoError(t, err)

		detail := findDetail(report.DetailsByPeriod["2025-02"], "Groceries")
		if detail == nil {
			t.Fatal("expected Groceries detail in 2025-02")
		}
		// Overspending widens the effective total; the projected remainder
		// never flips positive to offset real spending.
		approx(t, detail.Effective, -700, "effective")
		approx(t, detail.Projected, 0, "projected remainder")
	})

	t.Run("sibling_bills_sum", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReportService(db)

		rule := &models.ForecastRule{
			Name:      "Streaming",
			Type:      models.RuleTypeRecurring,
			Amount:    -50,
			Currency:  "EUR",
			Category:  "Streaming",
			StartDate: date(2025, time.March, 10),
			Frequency: models.FrequencyMonthly,
			IsActive:  true,
		}
		testutil.AssertNoError(t, db.Create(rule).Error)
		testutil.CreateTestInstance(t, db, rule.ID, -30, date(2025, time.March, 10))
		testutil.CreateTestInstance(t, db, rule.ID, -20, date(2025, time.March, 10))

		report, err := svc.BuildYearReport(2025)
		testutil.AssertNoError(t, err)

		detail := findDetail(report.DetailsByPeriod["2025-03"], "Streaming")
		if detail == nil {
			t.Fatal("expected Streaming detail in 2025-03")
		}
		approx(t, detail.Bills, -50, "bills")
		approx(t, detail.Projected, -50, "projected")
	})

	t.Run("running_balance_chains", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReportService(db)

		asset := testutil.CreateTestAccountWithBalance(t, db, models.AccountNatureAsset, 100)
		testutil.CreateTestTransaction(t, db, asset.ID, -10, date(2025, time.February, 5))
		testutil.CreateTestTransaction(t, db, asset.ID, 40, date(2025, time.April, 5))

		report, err := svc.BuildYearReport(2025)
		testutil.AssertNoError(t, err)

		approx(t, report.Periods[0].Opening, 100, "first period opening")
		for i := 1; i < len(report.Periods); i++ {
			prev, cur := report.Periods[i-1], report.Periods[i]
			if math.Abs(cur.Opening-prev.Closing) > 0.001 {
				t.Errorf("period %s opening %v does not chain from %s closing %v",
					cur.Key, cur.Opening, prev.Key, prev.Closing)
			}
		}
		last := report.Periods[len(report.Periods)-1]
		approx(t, last.Closing, 130, "final closing")
	})

	t.Run("unmatched_transactions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReportService(db)

		asset := testutil.CreateTestAccount(t, db)

		budget := &models.ForecastRule{
			Name:      "Groceries budget",
			Type:      models.RuleTypeBudget,
			Amount:    -500,
			Currency:  "EUR",
			Category:  "Groceries",
			StartDate: date(2025, time.January, 1),
			IsActive:  true,
		}
		testutil.AssertNoError(t, db.Create(budget).Error)

		uncategorized := testutil.CreateTestTransaction(t, db, asset.ID, -25, date(2025, time.March, 5))

		budgeted := testutil.CreateTestTransaction(t, db, asset.ID, -40, date(2025, time.March, 6))
		testutil.AssertNoError(t, db.Model(budgeted).Update("category", "Groceries").Error)

		linked := testutil.CreateTestTransaction(t, db, asset.ID, -60, date(2025, time.March, 7))
		rule := testutil.CreateTestRule(t, db, models.RuleTypeRecurring, -60, date(2025, time.March, 7))
		inst := testutil.CreateTestInstance(t, db, rule.ID, -60, date(2025, time.March, 7))
		testutil.AssertNoError(t, db.Model(inst).Updates(map[string]interface{}{
			"status":         models.InstanceStatusRealized,
			"transaction_id": linked.ID,
		}).Error)

		report, err := svc.BuildYearReport(2025)
		testutil.AssertNoError(t, err)

		if len(report.Unmatched) != 1 {
			t.Fatalf("expected 1 unmatched transaction, got %d", len(report.Unmatched))
		}
		if report.Unmatched[0].ID != uncategorized.ID {
			t.Errorf("unmatched = %s, want %s", report.Unmatched[0].ID, uncategorized.ID)
		}
	})
}

func TestCycleSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewReportService(db)

	asset := testutil.CreateTestAccount(t, db)
	liability := testutil.CreateTestAccountWithBalance(t, db, models.AccountNatureLiability, 0)

	testutil.CreateTestTransaction(t, db, asset.ID, 2000, date(2025, time.October, 1))
	groceries := testutil.CreateTestTransaction(t, db, asset.ID, -150, date(2025, time.October, 5))
	testutil.AssertNoError(t, db.Model(groceries).Update("category", "Groceries").Error)
	testutil.CreateTestTransaction(t, db, asset.ID, -50, date(2025, time.October, 6))
	// Liability spend stays out of the cash summary.
	testutil.CreateTestTransaction(t, db, liability.ID, -999, date(2025, time.October, 6))
	// Outside the period containing Oct 10th (ends Oct 26th).
	testutil.CreateTestTransaction(t, db, asset.ID, -500, date(2025, time.October, 28))

	summary, err := svc.CycleSummary(date(2025, time.October, 10))
	testutil.AssertNoError(t, err)

	if summary.Key != "2025-10" {
		t.Errorf("key = %q, want 2025-10", summary.Key)
	}
	approx(t, summary.Income, 2000, "income")
	approx(t, summary.Expense, 200, "expense")
	approx(t, summary.Net, 1800, "net")

	if len(summary.TopCategories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(summary.TopCategories))
	}
	if summary.TopCategories[0].Category != "Groceries" {
		t.Errorf("top category = %q, want Groceries", summary.TopCategories[0].Category)
	}
	approx(t, summary.TopCategories[0].Amount, 150, "top category amount")
	if summary.TopCategories[1].Category != "Uncategorized" {
		t.Errorf("second category = %q, want Uncategorized", summary.TopCategories[1].Category)
	}
}
