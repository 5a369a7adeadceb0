package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"fintrack/internal/cache"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/query"
)

// transactionService handles transaction reads (cache-aside) and writes
// (write-then-invalidate).
type transactionService struct {
	db      *gorm.DB
	cache   cache.Store
	listTTL time.Duration
}

// NewTransactionService creates a new TransactionServicer. The cache may be
// nil, in which case every read goes to the database.
func NewTransactionService(db *gorm.DB, store cache.Store, listTTL time.Duration) TransactionServicer {
	return &transactionService{db: db, cache: store, listTTL: listTTL}
}

// ListTransactions returns one page of the transaction listing. ADMIN
// requesters see all users' transactions; everyone else is silently scoped
// to their own.
func (s *transactionService) ListTransactions(ctx context.Context, principal Principal, params query.TransactionParams, page pagination.PageRequest) (*TransactionList, error) {
	ownerID := principal.ID
	if principal.IsAdmin() {
		ownerID = ""
	}

	// The requester's identity and role are part of the key: an admin and a
	// regular user issuing the same parameters see different result sets.
	key := cache.Key(transactionParamsValues(params, page), "tx", "all", principal.ID, string(principal.Role))
	return fetchCached(ctx, s.cache, key, s.listTTL, func() (*TransactionList, error) {
		return s.fetchTransactionPage(ctx, ownerID, params, page, "Transactions fetched successfully")
	})
}

// ListUserTransactions returns one page of a single user's transactions.
// The requester must be that user or an admin.
func (s *transactionService) ListUserTransactions(ctx context.Context, principal Principal, targetUserID string, params query.TransactionParams, page pagination.PageRequest) (*TransactionList, error) {
	if !principal.CanAccessUser(targetUserID) {
		return nil, apperrors.ErrForbidden
	}

	key := cache.Key(transactionParamsValues(params, page), "tx", "user", targetUserID)
	return fetchCached(ctx, s.cache, key, s.listTTL, func() (*TransactionList, error) {
		return s.fetchTransactionPage(ctx, targetUserID, params, page, "User transactions fetched successfully")
	})
}

// fetchTransactionPage runs the windowed fetch plus the count query and
// shapes the envelope.
func (s *transactionService) fetchTransactionPage(ctx context.Context, ownerID string, params query.TransactionParams, page pagination.PageRequest, message string) (*TransactionList, error) {
	page.Defaults()
	spec := query.ForTransactions(ownerID, params, page)

	base := s.db.WithContext(ctx).Model(&models.Transaction{})
	base = query.ApplyFilters(base, spec.Filters)

	var totalCount int64
	if err := base.Count(&totalCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	q := query.ApplySort(base.Session(&gorm.Session{}), spec.Sort)
	if err := q.Scopes(pagination.Paginate(spec.Window)).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email", "role")
		}).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	return &TransactionList{
		Transactions: transactions,
		Pagination:   pagination.NewMeta(spec.Window, totalCount),
		Success:      true,
		Message:      message,
	}, nil
}

// CreateTransaction records a new transaction for the requesting user and
// invalidates the caches it could have gone stale.
func (s *transactionService) CreateTransaction(ctx context.Context, principal Principal, input CreateTransactionInput) (*models.Transaction, error) {
	if principal.Role == models.RoleReadOnly {
		return nil, apperrors.ErrReadOnlyRole
	}
	if !models.ValidTransactionType(input.Type) {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if input.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if input.Category == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if input.Date.IsZero() {
		input.Date = time.Now().UTC()
	}

	transaction := &models.Transaction{
		UserID:   principal.ID,
		Type:     input.Type,
		Amount:   input.Amount,
		Category: input.Category,
		Date:     input.Date,
	}
	if err := s.db.WithContext(ctx).Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.invalidateFor(ctx, principal.ID)
	return transaction, nil
}

// UpdateTransaction applies a partial update to a transaction. Non-admins may
// only touch their own; the owner's caches are invalidated either way.
func (s *transactionService) UpdateTransaction(ctx context.Context, principal Principal, transactionID string, input UpdateTransactionInput) (*models.Transaction, error) {
	if principal.Role == models.RoleReadOnly {
		return nil, apperrors.ErrReadOnlyRole
	}

	transaction, err := s.getScoped(ctx, principal, transactionID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Type != nil {
		if !models.ValidTransactionType(*input.Type) {
			return nil, apperrors.ErrInvalidTransactionType
		}
		updates["type"] = *input.Type
	}
	if input.Amount != nil {
		if *input.Amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		updates["amount"] = *input.Amount
	}
	if input.Category != nil {
		if *input.Category == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category cannot be empty")
		}
		updates["category"] = *input.Category
	}
	if input.Date != nil {
		updates["date"] = *input.Date
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(transaction).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	s.invalidateFor(ctx, transaction.UserID)
	return transaction, nil
}

// DeleteTransaction removes a transaction. Non-admins may only delete their
// own; the owner's caches are invalidated after the delete commits.
func (s *transactionService) DeleteTransaction(ctx context.Context, principal Principal, transactionID string) error {
	if principal.Role == models.RoleReadOnly {
		return apperrors.ErrReadOnlyRole
	}

	transaction, err := s.getScoped(ctx, principal, transactionID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.invalidateFor(ctx, transaction.UserID)
	return nil
}

// getScoped fetches a transaction by ID, restricted to the requester's own
// rows unless the requester is an admin. A row hidden by the scope filter is
// indistinguishable from an absent one.
func (s *transactionService) getScoped(ctx context.Context, principal Principal, transactionID string) (*models.Transaction, error) {
	q := s.db.WithContext(ctx).Where("id = ?", transactionID)
	if !principal.IsAdmin() {
		q = q.Where("user_id = ?", principal.ID)
	}

	var transaction models.Transaction
	if err := q.First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// invalidateFor drops every cache entry a mutation of ownerID's transactions
// could have gone stale: the owner's own listings, the cross-user listing
// (admin pages include any user's rows), and all analytics aggregates.
func (s *transactionService) invalidateFor(ctx context.Context, ownerID string) {
	invalidatePrefixes(ctx, s.cache,
		cache.Prefix("tx", "user", ownerID),
		cache.Prefix("tx", "all"),
		cache.Prefix("analytics"),
	)
}
