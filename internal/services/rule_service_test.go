package services

import (
	"testing"
	"time"

	"fluxo/internal/models"
	"fluxo/internal/pagination"
	"fluxo/internal/testutil"
)

func TestCreateRule(t *testing.T) {
	t.Run("recurring_defaults", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRuleService(db)

		rule, err := svc.CreateRule(RuleInput{
			Name:      "Rent",
			Type:      models.RuleTypeRecurring,
			Amount:    -900,
			StartDate: date(2025, time.January, 3),
		})
		testutil.AssertNoError(t, err)

		if rule.Frequency != models.FrequencyMonthly {
			t.Errorf("frequency = %q, want monthly", rule.Frequency)
		}
		if rule.DayOfMonth != 3 {
			t.Errorf("day_of_month = %d, want 3", rule.DayOfMonth)
		}
		if rule.Currency != "EUR" {
			t.Errorf("currency = %q, want EUR", rule.Currency)
		}
		if !rule.IsActive {
			t.Error("expected rule to be active")
		}
	})

	t.Run("one_off_gets_end_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRuleService(db)

		rule, err := svc.CreateRule(RuleInput{
			Name:      "Car repair",
			Type:      models.RuleTypeOneOff,
			Amount:    -450,
			StartDate: date(2025, time.May, 12),
		})
		testutil.AssertNoError(t, err)

		if rule.EndDate == nil || !rule.EndDate.Equal(date(2025, time.May, 12)) {
			t.Errorf("end date = %v, want start date", rule.EndDate)
		}
	})

	t.Run("validation_errors", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRuleService(db)

		_, err := svc.CreateRule(RuleInput{Type: models.RuleTypeOneOff, Amount: -1, StartDate: date(2025, time.May, 1)})
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateRule(RuleInput{Name: "No start", Type: models.RuleTypeOneOff, Amount: -1})
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateRule(RuleInput{Name: "Zero", Type: models.RuleTypeOneOff, StartDate: date(2025, time.May, 1)})
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateRule(RuleInput{
			Name: "Installments without count", Type: models.RuleTypeInstallment,
			Amount: -100, StartDate: date(2025, time.May, 1),
		})
		testutil.AssertAppError(t, err, "INVALID_RULE_CONFIG")

		_, err = svc.CreateRule(RuleInput{
			Name: "Weekly", Type: models.RuleTypeRecurring,
			Amount: -100, StartDate: date(2025, time.May, 1), Frequency: "weekly",
		})
		testutil.AssertAppError(t, err, "INVALID_RULE_CONFIG")

		_, err = svc.CreateRule(RuleInput{
			Name: "Budget without category", Type: models.RuleTypeBudget,
			Amount: -100, StartDate: date(2025, time.May, 1),
		})
		testutil.AssertAppError(t, err, "CATEGORY_REQUIRED")

		end := date(2025, time.April, 1)
		_, err = svc.CreateRule(RuleInput{
			Name: "Backwards", Type: models.RuleTypeRecurring,
			Amount: -100, StartDate: date(2025, time.May, 1), EndDate: &end,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("budget_upserts_by_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRuleService(db)

		first, err := svc.CreateRule(RuleInput{
			Name: "Groceries budget", Type: models.RuleTypeBudget,
			Amount: -500, Category: "Groceries", StartDate: date(2025, time.January, 1),
		})
		testutil.AssertNoError(t, err)

		// Projected and realized history under the original cap.
		projected := testutil.CreateTestInstance(t, db, first.ID, -500, date(2025, time.January, 27))
		realized := testutil.CreateTestInstance(t, db, first.ID, -480, date(2024, time.December, 19))
		testutil.AssertNoError(t, db.Model(realized).Update("status", models.InstanceStatusRealized).Error)

		second, err := svc.CreateRule(RuleInput{
			Name: "Groceries budget v2", Type: models.RuleTypeBudget,
			Amount: -600, Category: "Groceries", StartDate: date(2025, time.January, 1),
		})
		testutil.AssertNoError(t, err)

		if second.ID != first.ID {
			t.Error("expected budget upsert to reuse the existing rule")
		}
		if second.Amount != -600 {
			t.Errorf("amount = %v, want -600", second.Amount)
		}

		var ruleCount int64
		db.Model(&models.ForecastRule{}).Where("type = ? AND category = ?", models.RuleTypeBudget, "Groceries").Count(&ruleCount)
		if ruleCount != 1 {
			t.Errorf("expected a single budget rule for the category, got %d", ruleCount)
		}

		// Projected instances dropped, realized kept.
		var gone int64
		db.Model(&models.ForecastInstance{}).Where("id = ?", projected.ID).Count(&gone)
		if gone != 0 {
			t.Error("expected projected instance to be removed on cap change")
		}
		var kept int64
		db.Model(&models.ForecastInstance{}).Where("id = ?", realized.ID).Count(&kept)
		if kept != 1 {
			t.Error("expected realized instance to survive cap change")
		}
	})
}

func TestGetRules(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewRuleService(db)

	active := testutil.CreateTestRule(t, db, models.RuleTypeRecurring, -10, date(2025, time.January, 1))
	inactive := testutil.CreateTestRule(t, db, models.RuleTypeOneOff, -20, date(2025, time.January, 2))
	testutil.AssertNoError(t, db.Model(inactive).Update("is_active", false).Error)

	t.Run("no_filter", func(t *testing.T) {
		page := pagination.PageRequest{}
		result, err := svc.GetRules(page, nil, nil)
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 {
			t.Errorf("total = %d, want 2", result.TotalItems)
		}
	})

	t.Run("active_only", func(t *testing.T) {
		isActive := true
		result, err := svc.GetRules(pagination.PageRequest{}, &isActive, nil)
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 || result.Data[0].ID != active.ID {
			t.Errorf("expected only the active rule, got %d items", result.TotalItems)
		}
	})

	t.Run("by_type", func(t *testing.T) {
		oneOff := models.RuleTypeOneOff
		result, err := svc.GetRules(pagination.PageRequest{}, nil, &oneOff)
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 || result.Data[0].ID != inactive.ID {
			t.Errorf("expected only the one_off rule, got %d items", result.TotalItems)
		}
	})
}

func TestDeactivateRule(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	ruleSvc := NewRuleService(db)
	forecastSvc := NewForecastService(db, NewCycleService(db))

	rule := testutil.CreateTestRule(t, db, models.RuleTypeRecurring, -50, date(2025, time.January, 10))
	testutil.AssertNoError(t, forecastSvc.GenerateInstances(date(2025, time.January, 1), 6))

	realized := testutil.CreateTestInstance(t, db, rule.ID, -50, date(2024, time.December, 10))
	testutil.AssertNoError(t, db.Model(realized).Update("status", models.InstanceStatusRealized).Error)

	testutil.AssertNoError(t, ruleSvc.DeactivateRule(rule.ID))

	reloaded, err := ruleSvc.GetRuleByID(rule.ID)
	testutil.AssertNoError(t, err)
	if reloaded.IsActive {
		t.Error("expected rule to be inactive")
	}

	var projectedCount int64
	db.Model(&models.ForecastInstance{}).
		Where("rule_id = ? AND status = ?", rule.ID, models.InstanceStatusProjected).
		Count(&projectedCount)
	if projectedCount != 0 {
		t.Errorf("expected projected instances removed, found %d", projectedCount)
	}

	var realizedCount int64
	db.Model(&models.ForecastInstance{}).
		Where("rule_id = ? AND status = ?", rule.ID, models.InstanceStatusRealized).
		Count(&realizedCount)
	if realizedCount != 1 {
		t.Errorf("expected realized history kept, found %d", realizedCount)
	}

	// Inactive rules no longer generate: deleted projections stay gone.
	testutil.AssertNoError(t, forecastSvc.GenerateInstances(date(2025, time.January, 1), 6))
	db.Model(&models.ForecastInstance{}).
		Where("rule_id = ? AND status = ?", rule.ID, models.InstanceStatusProjected).
		Count(&projectedCount)
	if projectedCount != 0 {
		t.Errorf("deactivated rule regenerated %d instances", projectedCount)
	}

	testutil.AssertAppError(t, ruleSvc.DeactivateRule("00000000-0000-0000-0000-000000000000"), "RULE_NOT_FOUND")
}

func TestApplyTransactionPlan(t *testing.T) {
	t.Run("pay_in_30", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRuleService(db)

		account := testutil.CreateTestAccount(t, db)
		tx := testutil.CreateTestTransaction(t, db, account.ID, -120, date(2025, time.March, 1))

		rule, err := svc.ApplyTransactionPlan(tx.ID, TransactionPlan{Kind: PlanPayIn30})
		testutil.AssertNoError(t, err)

		if rule.Type != models.RuleTypeOneOff {
			t.Errorf("type = %s, want one_off", rule.Type)
		}
		if !rule.StartDate.Equal(date(2025, time.March, 31)) {
			t.Errorf("due date = %v, want 2025-03-31", rule.StartDate)
		}
		if rule.SourceTransactionID == nil || *rule.SourceTransactionID != tx.ID {
			t.Error("expected rule to reference the source transaction")
		}

		var instances []models.ForecastInstance
		testutil.AssertNoError(t, db.Where("rule_id = ?", rule.ID).Find(&instances).Error)
		if len(instances) != 1 {
			t.Fatalf("expected 1 instance, got %d", len(instances))
		}
		if instances[0].Amount != -120 {
			t.Errorf("instance amount = %v, want -120", instances[0].Amount)
		}

		// Re-applying reuses the rule and does not duplicate the instance.
		again, err := svc.ApplyTransactionPlan(tx.ID, TransactionPlan{Kind: PlanPayIn30})
		testutil.AssertNoError(t, err)
		if again.ID != rule.ID {
			t.Error("expected plan reapplication to reuse the rule")
		}
		var count int64
		db.Model(&models.ForecastInstance{}).Where("rule_id = ?", rule.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 instance after reapplication, got %d", count)
		}
	})

	t.Run("repeat_monthly", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRuleService(db)

		account := testutil.CreateTestAccount(t, db)
		tx := testutil.CreateTestTransaction(t, db, account.ID, -9.99, date(2025, time.January, 31))

		rule, err := svc.ApplyTransactionPlan(tx.ID, TransactionPlan{Kind: PlanRepeatMonthly, MonthsAhead: 3})
		testutil.AssertNoError(t, err)

		if rule.Type != models.RuleTypeRecurring {
			t.Errorf("type = %s, want recurring", rule.Type)
		}
		// Jan 31st + 1 month clamps to Feb 28th.
		if !rule.StartDate.Equal(date(2025, time.February, 28)) {
			t.Errorf("start = %v, want 2025-02-28", rule.StartDate)
		}

		var instances []models.ForecastInstance
		testutil.AssertNoError(t, db.Where("rule_id = ?", rule.ID).Order("date").Find(&instances).Error)
		if len(instances) != 3 {
			t.Fatalf("expected 3 instances, got %d", len(instances))
		}
		if !instances[1].Date.Equal(date(2025, time.March, 28)) {
			t.Errorf("second instance = %v, want 2025-03-28", instances[1].Date)
		}
	})

	t.Run("unknown_plan", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRuleService(db)

		account := testutil.CreateTestAccount(t, db)
		tx := testutil.CreateTestTransaction(t, db, account.ID, -10, date(2025, time.January, 1))

		_, err := svc.ApplyTransactionPlan(tx.ID, TransactionPlan{Kind: "pay_whenever"})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("missing_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRuleService(db)

		_, err := svc.ApplyTransactionPlan("00000000-0000-0000-0000-000000000000", TransactionPlan{Kind: PlanPayIn30})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}
