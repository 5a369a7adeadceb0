package query

import (
	"testing"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/testutil"
)

func TestApplyFilters(t *testing.T) {
	page := pagination.PageRequest{Page: 1, Limit: 100}

	t.Run("category_contains_is_case_insensitive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestTransactionAt(t, db, user.ID, models.TransactionTypeExpense, 100, "Groceries", time.Now())
		testutil.CreateTestTransactionAt(t, db, user.ID, models.TransactionTypeExpense, 200, "transport", time.Now())

		spec := ForTransactions(user.ID, TransactionParams{Category: "GROC"}, page)

		var results []models.Transaction
		err := ApplyFilters(db.Model(&models.Transaction{}), spec.Filters).Find(&results).Error
		testutil.AssertNoError(t, err)
		if len(results) != 1 || results[0].Category != "Groceries" {
			t.Errorf("expected only Groceries, got %v", results)
		}
	})

	t.Run("date_range_bounds_are_inclusive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		inside := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
		before := time.Date(2025, 4, 30, 12, 0, 0, 0, time.UTC)
		after := time.Date(2025, 6, 1, 0, 0, 0, 1, time.UTC)
		testutil.CreateTestTransactionAt(t, db, user.ID, models.TransactionTypeExpense, 1, "a", inside)
		testutil.CreateTestTransactionAt(t, db, user.ID, models.TransactionTypeExpense, 2, "b", before)
		testutil.CreateTestTransactionAt(t, db, user.ID, models.TransactionTypeExpense, 3, "c", after)

		spec := ForTransactions(user.ID, TransactionParams{FromDate: "2025-05-01", ToDate: "2025-05-31"}, page)

		var results []models.Transaction
		err := ApplyFilters(db.Model(&models.Transaction{}), spec.Filters).Find(&results).Error
		testutil.AssertNoError(t, err)
		if len(results) != 1 || !results[0].Date.Equal(inside) {
			t.Errorf("expected only the in-range transaction, got %v", results)
		}
	})

	t.Run("same_day_range_covers_whole_day", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		evening := time.Date(2025, 5, 10, 22, 30, 0, 0, time.UTC)
		testutil.CreateTestTransactionAt(t, db, user.ID, models.TransactionTypeExpense, 1, "a", evening)

		spec := ForTransactions(user.ID, TransactionParams{FromDate: "2025-05-10", ToDate: "2025-05-10"}, page)

		var count int64
		err := ApplyFilters(db.Model(&models.Transaction{}), spec.Filters).Count(&count).Error
		testutil.AssertNoError(t, err)
		if count != 1 {
			t.Errorf("expected the evening transaction to match, got %d rows", count)
		}
	})

	t.Run("type_equals", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeIncome, 100)
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, 200)

		spec := ForTransactions(user.ID, TransactionParams{TransactionType: "INCOME"}, page)

		var results []models.Transaction
		err := ApplyFilters(db.Model(&models.Transaction{}), spec.Filters).Find(&results).Error
		testutil.AssertNoError(t, err)
		if len(results) != 1 || results[0].Type != models.TransactionTypeIncome {
			t.Errorf("expected only income rows, got %v", results)
		}
	})

	t.Run("id_contains_substring", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		created := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, 100)
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, 200)

		// Use a mid-ID fragment so the match cannot be a prefix accident.
		fragment := created.ID[9:18]
		spec := ForTransactions(user.ID, TransactionParams{Search: fragment}, page)

		var results []models.Transaction
		err := ApplyFilters(db.Model(&models.Transaction{}), spec.Filters).Find(&results).Error
		testutil.AssertNoError(t, err)

		found := false
		for _, r := range results {
			if r.ID == created.ID {
				found = true
			}
		}
		if !found {
			t.Errorf("expected transaction %s in results %v", created.ID, results)
		}
	})

	t.Run("name_or_email_matches_either_field", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		byName := testutil.CreateTestUser(t, db)
		byEmail := testutil.CreateTestUser(t, db)

		for _, search := range []string{byName.Name, byEmail.Email} {
			spec := ForUserOverview(OverviewParams{Search: search}, page)

			var results []models.User
			err := ApplyFilters(db.Model(&models.User{}), spec.Filters).Find(&results).Error
			testutil.AssertNoError(t, err)
			if len(results) != 1 {
				t.Errorf("search %q: expected 1 user, got %d", search, len(results))
			}
		}
	})
}

func TestApplySort(t *testing.T) {
	page := pagination.PageRequest{Page: 1, Limit: 100}

	t.Run("amount_ascending", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, 300)
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, 100)
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, 200)

		spec := ForTransactions(user.ID, TransactionParams{SortBy: "amount", SortOrder: "asc"}, page)

		var results []models.Transaction
		err := Apply(db.Model(&models.Transaction{}), spec).Find(&results).Error
		testutil.AssertNoError(t, err)

		amounts := []int64{results[0].Amount, results[1].Amount, results[2].Amount}
		if amounts[0] != 100 || amounts[1] != 200 || amounts[2] != 300 {
			t.Errorf("expected ascending amounts, got %v", amounts)
		}
	})

	t.Run("date_descending_by_default", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		recent := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
		testutil.CreateTestTransactionAt(t, db, user.ID, models.TransactionTypeExpense, 1, "a", old)
		testutil.CreateTestTransactionAt(t, db, user.ID, models.TransactionTypeExpense, 2, "b", recent)

		spec := ForTransactions(user.ID, TransactionParams{}, page)

		var results []models.Transaction
		err := Apply(db.Model(&models.Transaction{}), spec).Find(&results).Error
		testutil.AssertNoError(t, err)
		if !results[0].Date.Equal(recent) {
			t.Errorf("expected newest first, got %v", results[0].Date)
		}
	})

	t.Run("transaction_count_orders_users_in_sql", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		quiet := testutil.CreateTestUser(t, db)
		busy := testutil.CreateTestUser(t, db)
		testutil.CreateTestTransaction(t, db, busy.ID, models.TransactionTypeExpense, 1)
		testutil.CreateTestTransaction(t, db, busy.ID, models.TransactionTypeExpense, 2)
		testutil.CreateTestTransaction(t, db, quiet.ID, models.TransactionTypeExpense, 3)

		spec := ForUserOverview(OverviewParams{SortBy: "transactionCount", SortOrder: "desc"}, page)

		var results []models.User
		err := Apply(db.Model(&models.User{}), spec).Find(&results).Error
		testutil.AssertNoError(t, err)
		if len(results) != 2 {
			t.Fatalf("expected 2 users, got %d", len(results))
		}
		if results[0].ID != busy.ID {
			t.Errorf("expected the busier user first, got %s", results[0].ID)
		}
	})

	t.Run("transaction_count_survives_pagination", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		var ids []string
		for i := 0; i < 3; i++ {
			u := testutil.CreateTestUser(t, db)
			for j := 0; j <= i; j++ {
				testutil.CreateTestTransaction(t, db, u.ID, models.TransactionTypeExpense, 1)
			}
			ids = append(ids, u.ID)
		}

		spec := ForUserOverview(OverviewParams{SortBy: "transactionCount", SortOrder: "desc"}, pagination.PageRequest{Page: 2, Limit: 1})

		var results []models.User
		err := Apply(db.Model(&models.User{}), spec).Find(&results).Error
		testutil.AssertNoError(t, err)
		if len(results) != 1 {
			t.Fatalf("expected 1 user on page 2, got %d", len(results))
		}
		// The middle user by activity is the one created second.
		if results[0].ID != ids[1] {
			t.Errorf("expected the second-most-active user, got %s", results[0].ID)
		}
	})
}
