package services

import (
	"testing"
	"time"

	"fluxo/internal/models"
	"fluxo/internal/testutil"
)

func TestCreateAccount(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		account, err := svc.CreateAccount("Main checking", "", models.AccountNatureAsset, 2500)
		testutil.AssertNoError(t, err)

		if account.ID == "" {
			t.Fatal("expected account ID")
		}
		if account.Currency != "EUR" {
			t.Errorf("currency = %q, want EUR default", account.Currency)
		}
		if account.InitialBalance != 2500 {
			t.Errorf("initial balance = %v, want 2500", account.InitialBalance)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		_, err := svc.CreateAccount("  ", "EUR", models.AccountNatureAsset, 0)
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateAccount("Weird", "EUR", "equity", 0)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetAccounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAccountService(db)

	checking := testutil.CreateTestAccountWithBalance(t, db, models.AccountNatureAsset, 1000)
	card := testutil.CreateTestAccountWithBalance(t, db, models.AccountNatureLiability, 0)

	testutil.CreateTestTransaction(t, db, checking.ID, -150, date(2025, time.March, 1))
	testutil.CreateTestTransaction(t, db, checking.ID, 2000, date(2025, time.March, 25))
	testutil.CreateTestTransaction(t, db, card.ID, -75, date(2025, time.March, 2))

	balances, err := svc.GetAccounts()
	testutil.AssertNoError(t, err)

	if len(balances) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(balances))
	}

	byID := make(map[string]AccountBalance)
	for _, b := range balances {
		byID[b.ID] = b
	}
	if got := byID[checking.ID].CurrentBalance; got != 2850 {
		t.Errorf("checking balance = %v, want 2850", got)
	}
	if got := byID[card.ID].CurrentBalance; got != -75 {
		t.Errorf("card balance = %v, want -75", got)
	}
}

func TestGetAccountByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAccountService(db)

	account := testutil.CreateTestAccount(t, db)

	found, err := svc.GetAccountByID(account.ID)
	testutil.AssertNoError(t, err)
	if found.ID != account.ID {
		t.Errorf("got %s, want %s", found.ID, account.ID)
	}

	_, err = svc.GetAccountByID("00000000-0000-0000-0000-000000000000")
	testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
}
