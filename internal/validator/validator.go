// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("user_role", validateUserRole)
		_ = v.RegisterValidation("sort_order", validateSortOrder)
	}
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "INCOME", "EXPENSE":
		return true
	}
	return false
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "ADMIN", "USER", "READ_ONLY":
		return true
	}
	return false
}

func validateSortOrder(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "asc", "desc":
		return true
	}
	return false
}
