package services

import (
	"context"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/query"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID   string
	Role models.Role
}

// IsAdmin reports whether the principal holds the ADMIN role.
func (p Principal) IsAdmin() bool { return p.Role == models.RoleAdmin }

// CanAccessUser reports whether the principal may read targetUserID's data.
func (p Principal) CanAccessUser(targetUserID string) bool {
	return p.IsAdmin() || p.ID == targetUserID
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(name, email, password string, role models.Role) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
}

// TransactionList is the shaped result of a transaction listing. The whole
// envelope is cached, so a cache hit returns a byte-identical payload.
type TransactionList struct {
	Transactions []models.Transaction `json:"transactions"`
	Pagination   pagination.Meta      `json:"pagination"`
	Success      bool                 `json:"success"`
	Message      string               `json:"message"`
}

// CreateTransactionInput holds the validated fields for a new transaction.
type CreateTransactionInput struct {
	Type     models.TransactionType
	Amount   int64
	Category string
	Date     time.Time
}

// UpdateTransactionInput holds partial-update fields; nil means unchanged.
type UpdateTransactionInput struct {
	Type     *models.TransactionType
	Amount   *int64
	Category *string
	Date     *time.Time
}

// TransactionServicer defines the contract for transaction reads and writes.
type TransactionServicer interface {
	ListTransactions(ctx context.Context, principal Principal, params query.TransactionParams, page pagination.PageRequest) (*TransactionList, error)
	ListUserTransactions(ctx context.Context, principal Principal, targetUserID string, params query.TransactionParams, page pagination.PageRequest) (*TransactionList, error)
	CreateTransaction(ctx context.Context, principal Principal, input CreateTransactionInput) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, principal Principal, transactionID string, input UpdateTransactionInput) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, principal Principal, transactionID string) error
}

// Overview is the shaped cross-user analytics result.
type Overview struct {
	Users            []analytics.UserRollup `json:"users"`
	RoleDistribution map[models.Role]int    `json:"roleDistribution"`
	TopUsers         []analytics.UserRollup `json:"topUsers"`
	Pagination       pagination.Meta        `json:"pagination"`
	Success          bool                   `json:"success"`
	Message          string                 `json:"message"`
}

// UserAnalytics is the shaped single-user analytics result: the overall
// rollup, one page of transactions, and the derived breakdowns.
type UserAnalytics struct {
	User              analytics.UserRollup      `json:"user"`
	Transactions      []models.Transaction      `json:"transactions"`
	Categories        []string                  `json:"categories"`
	CategoryBreakdown []analytics.CategoryTotal `json:"categoryBreakdown"`
	MonthlyTrend      []analytics.MonthlyPoint  `json:"monthlyTrend"`
	Pagination        pagination.Meta           `json:"pagination"`
	Success           bool                      `json:"success"`
	Message           string                    `json:"message"`
}

// AnalyticsServicer defines the contract for analytics reads.
type AnalyticsServicer interface {
	Overview(ctx context.Context, principal Principal, params query.OverviewParams, page pagination.PageRequest) (*Overview, error)
	UserAnalytics(ctx context.Context, principal Principal, targetUserID string, params query.TransactionParams, page pagination.PageRequest) (*UserAnalytics, error)
}
