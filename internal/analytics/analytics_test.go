package analytics

import (
	"reflect"
	"testing"
	"time"

	"fintrack/internal/models"
)

func tx(txType models.TransactionType, amount int64) models.Transaction {
	return models.Transaction{Type: txType, Amount: amount}
}

func txAt(txType models.TransactionType, amount int64, category string, date time.Time) models.Transaction {
	return models.Transaction{Type: txType, Amount: amount, Category: category, Date: date}
}

func TestSummarize(t *testing.T) {
	t.Run("mixed_transactions", func(t *testing.T) {
		r := Summarize([]models.Transaction{
			tx(models.TransactionTypeIncome, 10000),
			tx(models.TransactionTypeExpense, 4000),
			tx(models.TransactionTypeExpense, 1000),
		})

		if r.TransactionCount != 3 {
			t.Errorf("expected count 3, got %d", r.TransactionCount)
		}
		if r.TotalIncome != 10000 {
			t.Errorf("expected income 10000, got %d", r.TotalIncome)
		}
		if r.TotalExpense != 5000 {
			t.Errorf("expected expense 5000, got %d", r.TotalExpense)
		}
		if r.NetAmount != 5000 {
			t.Errorf("expected net 5000, got %d", r.NetAmount)
		}
	})

	t.Run("empty_set_yields_zeros", func(t *testing.T) {
		r := Summarize(nil)
		if r != (Rollup{}) {
			t.Errorf("expected zero rollup, got %+v", r)
		}
	})

	t.Run("expense_only_net_is_negative", func(t *testing.T) {
		r := Summarize([]models.Transaction{
			tx(models.TransactionTypeExpense, 2500),
		})
		if r.NetAmount != -2500 {
			t.Errorf("expected net -2500, got %d", r.NetAmount)
		}
	})
}

func TestSummarizeUser(t *testing.T) {
	joined := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	user := models.User{
		Base:  models.Base{ID: "u1", CreatedAt: joined},
		Name:  "Alice",
		Email: "alice@test.com",
		Role:  models.RoleUser,
	}

	r := SummarizeUser(user, []models.Transaction{
		tx(models.TransactionTypeIncome, 100),
	})

	if r.ID != "u1" || r.Name != "Alice" || r.Email != "alice@test.com" {
		t.Errorf("unexpected identity fields: %+v", r)
	}
	if !r.JoinedDate.Equal(joined) {
		t.Errorf("expected joined date %v, got %v", joined, r.JoinedDate)
	}
	if r.TransactionCount != 1 || r.TotalIncome != 100 {
		t.Errorf("unexpected rollup: %+v", r.Rollup)
	}
}

func TestRoleDistribution(t *testing.T) {
	dist := RoleDistribution([]models.User{
		{Role: models.RoleAdmin},
		{Role: models.RoleUser},
		{Role: models.RoleUser},
		{Role: models.RoleReadOnly},
	})

	want := map[models.Role]int{
		models.RoleAdmin:    1,
		models.RoleUser:     2,
		models.RoleReadOnly: 1,
	}
	if !reflect.DeepEqual(dist, want) {
		t.Errorf("expected %v, got %v", want, dist)
	}
}

func TestTopByTransactionCount(t *testing.T) {
	t.Run("orders_by_count_descending", func(t *testing.T) {
		rollups := []UserRollup{
			{ID: "a", Rollup: Rollup{TransactionCount: 2}},
			{ID: "b", Rollup: Rollup{TransactionCount: 9}},
			{ID: "c", Rollup: Rollup{TransactionCount: 5}},
		}

		top := TopByTransactionCount(rollups, 5)
		got := []string{top[0].ID, top[1].ID, top[2].ID}
		want := []string{"b", "c", "a"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected order %v, got %v", want, got)
		}
	})

	t.Run("truncates_to_n", func(t *testing.T) {
		rollups := []UserRollup{
			{ID: "a", Rollup: Rollup{TransactionCount: 1}},
			{ID: "b", Rollup: Rollup{TransactionCount: 2}},
			{ID: "c", Rollup: Rollup{TransactionCount: 3}},
		}

		top := TopByTransactionCount(rollups, 2)
		if len(top) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(top))
		}
		if top[0].ID != "c" || top[1].ID != "b" {
			t.Errorf("unexpected order: %s, %s", top[0].ID, top[1].ID)
		}
	})

	t.Run("ties_break_by_id_ascending", func(t *testing.T) {
		rollups := []UserRollup{
			{ID: "z", Rollup: Rollup{TransactionCount: 4}},
			{ID: "a", Rollup: Rollup{TransactionCount: 4}},
		}

		top := TopByTransactionCount(rollups, 5)
		if top[0].ID != "a" || top[1].ID != "z" {
			t.Errorf("expected tie broken by ID, got %s, %s", top[0].ID, top[1].ID)
		}
	})

	t.Run("does_not_mutate_input", func(t *testing.T) {
		rollups := []UserRollup{
			{ID: "a", Rollup: Rollup{TransactionCount: 1}},
			{ID: "b", Rollup: Rollup{TransactionCount: 2}},
		}

		TopByTransactionCount(rollups, 1)
		if rollups[0].ID != "a" {
			t.Error("input slice was reordered")
		}
	})
}

func TestCategoryBreakdown(t *testing.T) {
	now := time.Now()

	t.Run("sums_expenses_per_category", func(t *testing.T) {
		breakdown := CategoryBreakdown([]models.Transaction{
			txAt(models.TransactionTypeExpense, 3000, "groceries", now),
			txAt(models.TransactionTypeExpense, 2000, "groceries", now),
			txAt(models.TransactionTypeExpense, 1000, "transport", now),
		})

		want := []CategoryTotal{
			{Category: "groceries", Total: 5000},
			{Category: "transport", Total: 1000},
		}
		if !reflect.DeepEqual(breakdown, want) {
			t.Errorf("expected %v, got %v", want, breakdown)
		}
	})

	t.Run("excludes_income", func(t *testing.T) {
		breakdown := CategoryBreakdown([]models.Transaction{
			txAt(models.TransactionTypeIncome, 9000, "salary", now),
			txAt(models.TransactionTypeExpense, 100, "coffee", now),
		})

		if len(breakdown) != 1 || breakdown[0].Category != "coffee" {
			t.Errorf("expected only expense categories, got %v", breakdown)
		}
	})

	t.Run("equal_totals_sort_by_category", func(t *testing.T) {
		breakdown := CategoryBreakdown([]models.Transaction{
			txAt(models.TransactionTypeExpense, 500, "rent", now),
			txAt(models.TransactionTypeExpense, 500, "food", now),
		})

		if breakdown[0].Category != "food" || breakdown[1].Category != "rent" {
			t.Errorf("expected alphabetical tie-break, got %v", breakdown)
		}
	})

	t.Run("empty_set", func(t *testing.T) {
		if got := CategoryBreakdown(nil); len(got) != 0 {
			t.Errorf("expected empty breakdown, got %v", got)
		}
	})
}

func TestMonthlyTrend(t *testing.T) {
	t.Run("groups_by_calendar_month_chronologically", func(t *testing.T) {
		trend := MonthlyTrend([]models.Transaction{
			txAt(models.TransactionTypeExpense, 100, "a", time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)),
			txAt(models.TransactionTypeIncome, 900, "b", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)),
			txAt(models.TransactionTypeIncome, 300, "c", time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC)),
		})

		want := []MonthlyPoint{
			{Month: "2025-01", Income: 900},
			{Month: "2025-02", Income: 300, Expense: 100},
		}
		if !reflect.DeepEqual(trend, want) {
			t.Errorf("expected %v, got %v", want, trend)
		}
	})

	t.Run("groups_by_utc_month", func(t *testing.T) {
		// 2025-01-31 23:00 -05:00 is 2025-02-01 04:00 UTC.
		loc := time.FixedZone("EST", -5*3600)
		trend := MonthlyTrend([]models.Transaction{
			txAt(models.TransactionTypeIncome, 100, "a", time.Date(2025, 1, 31, 23, 0, 0, 0, loc)),
		})

		if len(trend) != 1 || trend[0].Month != "2025-02" {
			t.Errorf("expected UTC month 2025-02, got %v", trend)
		}
	})
}
