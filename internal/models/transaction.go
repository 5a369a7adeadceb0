package models

import "time"

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// ValidTransactionType reports whether t is INCOME or EXPENSE.
func ValidTransactionType(t TransactionType) bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction represents a financial transaction in the system.
// Amount is stored in minor units (cents) to keep aggregation exact.
type Transaction struct {
	Base
	UserID   string          `gorm:"type:uuid;not null;index" json:"userId"`
	Type     TransactionType `gorm:"type:varchar(16);not null" json:"type"`
	Amount   int64           `gorm:"type:bigint;not null" json:"amount"`
	Category string          `gorm:"not null" json:"category"`
	Date     time.Time       `gorm:"not null;index" json:"date"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
