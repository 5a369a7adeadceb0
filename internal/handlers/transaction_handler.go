package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/query"
	"fintrack/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	Type     models.TransactionType `json:"type" binding:"required,transaction_type"`
	Amount   int64                  `json:"amount" binding:"required,gt=0"`
	Category string                 `json:"category" binding:"required,max=100"`
	Date     *string                `json:"date"`
}

// UpdateTransactionRequest represents the request payload for updating a transaction.
type UpdateTransactionRequest struct {
	Type     *models.TransactionType `json:"type" binding:"omitempty,transaction_type"`
	Amount   *int64                  `json:"amount" binding:"omitempty,gt=0"`
	Category *string                 `json:"category" binding:"omitempty,min=1,max=100"`
	Date     *string                 `json:"date"`
}

// bindListQuery binds pagination and filter parameters from the query string.
func bindListQuery(c *gin.Context) (pagination.PageRequest, query.TransactionParams, error) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		return page, query.TransactionParams{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	var params query.TransactionParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return page, params, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return page, params, nil
}

// ListTransactions handles the transaction listing
// @Summary     List transactions
// @Description Get a paginated list of transactions. Admins see all users' transactions; other roles see only their own.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page              query int    false "Page number (default 1)"
// @Param       limit             query int    false "Items per page (default 10, max 100)"
// @Param       category          query string false "Filter by category substring"
// @Param       fromDate          query string false "Filter by start date (RFC3339 or YYYY-MM-DD, inclusive)"
// @Param       toDate            query string false "Filter by end date (RFC3339 or YYYY-MM-DD, inclusive)"
// @Param       transactionType   query string false "Filter by type (INCOME, EXPENSE)"
// @Param       transactionSearch query string false "Search by transaction ID substring"
// @Param       sortBy            query string false "Sort key (date, amount, updatedAt)"
// @Param       sortOrder         query string false "Sort order (asc, desc)"
// @Success     200 {object} services.TransactionList "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, params, err := bindListQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.ListTransactions(c.Request.Context(), principal, params, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListUserTransactions handles the user-scoped transaction listing
// @Summary     List a user's transactions
// @Description Get a paginated list of one user's transactions. Requester must be that user or an admin.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id                path  string true  "User ID"
// @Param       page              query int    false "Page number (default 1)"
// @Param       limit             query int    false "Items per page (default 10, max 100)"
// @Param       category          query string false "Filter by category substring"
// @Param       fromDate          query string false "Filter by start date (RFC3339 or YYYY-MM-DD, inclusive)"
// @Param       toDate            query string false "Filter by end date (RFC3339 or YYYY-MM-DD, inclusive)"
// @Param       transactionType   query string false "Filter by type (INCOME, EXPENSE)"
// @Param       transactionSearch query string false "Search by transaction ID substring"
// @Param       sortBy            query string false "Sort key (date, amount, updatedAt)"
// @Param       sortOrder         query string false "Sort order (asc, desc)"
// @Success     200 {object} services.TransactionList "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Cannot access other user's data"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/user/{id} [get]
func (h *TransactionHandler) ListUserTransactions(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, params, err := bindListQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.ListUserTransactions(c.Request.Context(), principal, c.Param("id"), params, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record a new income or expense transaction for the authenticated user
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details (amount in minor units)"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Read-only role"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var date time.Time
	if req.Date != nil && *req.Date != "" {
		parsed, parseErr := parseFlexibleTime(*req.Date)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		date = parsed
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request.Context(), principal, services.CreateTransactionInput{
		Type:     req.Type,
		Amount:   req.Amount,
		Category: req.Category,
		Date:     date,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"transaction": transaction,
		"success":     true,
		"message":     "Transaction added successfully",
	})
}

// UpdateTransaction handles updating an existing transaction
// @Summary     Update transaction
// @Description Apply a partial update to a transaction. Non-admins may only update their own.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Read-only role"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input := services.UpdateTransactionInput{
		Type:     req.Type,
		Amount:   req.Amount,
		Category: req.Category,
	}
	if req.Date != nil && *req.Date != "" {
		parsed, parseErr := parseFlexibleTime(*req.Date)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		input.Date = &parsed
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Request.Context(), principal, c.Param("id"), input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transaction": transaction,
		"success":     true,
		"message":     "Transaction updated successfully",
	})
}

// DeleteTransaction handles the deletion of a transaction
// @Summary     Delete transaction
// @Description Delete a transaction by ID. Non-admins may only delete their own.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Read-only role"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), principal, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Transaction deleted successfully",
	})
}
