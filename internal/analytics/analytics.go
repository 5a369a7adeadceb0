// Package analytics computes derived financial aggregates over transaction
// rows. All functions are pure and operate on amounts in minor units, so
// sums are exact.
package analytics

import (
	"sort"
	"time"

	"fintrack/internal/models"
)

// Rollup is the per-entity aggregate over a transaction set.
type Rollup struct {
	TransactionCount int   `json:"transactionCount"`
	TotalIncome      int64 `json:"totalIncome"`
	TotalExpense     int64 `json:"totalExpense"`
	NetAmount        int64 `json:"netAmount"`
}

// Summarize computes the rollup for a set of transactions. An empty set
// yields the zero rollup.
func Summarize(txs []models.Transaction) Rollup {
	r := Rollup{TransactionCount: len(txs)}
	for _, tx := range txs {
		switch tx.Type {
		case models.TransactionTypeIncome:
			r.TotalIncome += tx.Amount
		case models.TransactionTypeExpense:
			r.TotalExpense += tx.Amount
		}
	}
	r.NetAmount = r.TotalIncome - r.TotalExpense
	return r
}

// UserRollup pairs a user's identity with their rollup.
type UserRollup struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       models.Role `json:"role"`
	JoinedDate time.Time   `json:"joinedDate"`
	Rollup
}

// SummarizeUser computes the rollup for one user and their transactions.
func SummarizeUser(user models.User, txs []models.Transaction) UserRollup {
	return UserRollup{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		JoinedDate: user.CreatedAt,
		Rollup:     Summarize(txs),
	}
}

// RoleDistribution counts users per role.
func RoleDistribution(users []models.User) map[models.Role]int {
	dist := make(map[models.Role]int, 3)
	for _, u := range users {
		dist[u.Role]++
	}
	return dist
}

// TopByTransactionCount returns the n most active users by transaction count,
// descending. Ties break by user ID ascending: IDs are time-ordered UUIDs, so
// the older account ranks first and the ordering is deterministic.
func TopByTransactionCount(rollups []UserRollup, n int) []UserRollup {
	top := make([]UserRollup, len(rollups))
	copy(top, rollups)
	sort.Slice(top, func(i, j int) bool {
		if top[i].TransactionCount != top[j].TransactionCount {
			return top[i].TransactionCount > top[j].TransactionCount
		}
		return top[i].ID < top[j].ID
	})
	if n < len(top) {
		top = top[:n]
	}
	return top
}

// CategoryTotal is the summed expense for one category.
type CategoryTotal struct {
	Category string `json:"category"`
	Total    int64  `json:"total"`
}

// CategoryBreakdown groups expense transactions by category, summing amounts.
// Income rows are excluded. Results are sorted by total descending, ties by
// category name ascending.
func CategoryBreakdown(txs []models.Transaction) []CategoryTotal {
	totals := make(map[string]int64)
	for _, tx := range txs {
		if tx.Type == models.TransactionTypeExpense {
			totals[tx.Category] += tx.Amount
		}
	}

	breakdown := make([]CategoryTotal, 0, len(totals))
	for category, total := range totals {
		breakdown = append(breakdown, CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Total != breakdown[j].Total {
			return breakdown[i].Total > breakdown[j].Total
		}
		return breakdown[i].Category < breakdown[j].Category
	})
	return breakdown
}

// MonthlyPoint is one calendar month's income and expense totals.
type MonthlyPoint struct {
	Month   string `json:"month"`
	Income  int64  `json:"income"`
	Expense int64  `json:"expense"`
}

// MonthlyTrend groups transactions by the calendar month of their effective
// date (in UTC, not their creation time), summing income and expense
// separately. Months are returned chronologically.
func MonthlyTrend(txs []models.Transaction) []MonthlyPoint {
	byMonth := make(map[string]*MonthlyPoint)
	for _, tx := range txs {
		month := tx.Date.UTC().Format("2006-01")
		point, ok := byMonth[month]
		if !ok {
			point = &MonthlyPoint{Month: month}
			byMonth[month] = point
		}
		switch tx.Type {
		case models.TransactionTypeIncome:
			point.Income += tx.Amount
		case models.TransactionTypeExpense:
			point.Expense += tx.Amount
		}
	}

	trend := make([]MonthlyPoint, 0, len(byMonth))
	for _, point := range byMonth {
		trend = append(trend, *point)
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Month < trend[j].Month })
	return trend
}
