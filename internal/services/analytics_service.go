package services

import (
	"context"
	"errors"
	"net/url"
	"time"

	"gorm.io/gorm"

	"fintrack/internal/analytics"
	"fintrack/internal/cache"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/query"
)

// topUsersLimit is the number of most-active users included in the overview.
const topUsersLimit = 5

// analyticsService computes cached cross-user and per-user analytics.
type analyticsService struct {
	db          *gorm.DB
	cache       cache.Store
	listTTL     time.Duration
	categoryTTL time.Duration
}

// NewAnalyticsService creates a new AnalyticsServicer. The cache may be nil,
// in which case every read goes to the database.
func NewAnalyticsService(db *gorm.DB, store cache.Store, listTTL, categoryTTL time.Duration) AnalyticsServicer {
	return &analyticsService{db: db, cache: store, listTTL: listTTL, categoryTTL: categoryTTL}
}

// Overview returns one page of per-user rollups plus the role distribution
// and most-active users over the whole filtered set. ADMIN only.
func (s *analyticsService) Overview(ctx context.Context, principal Principal, params query.OverviewParams, page pagination.PageRequest) (*Overview, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	key := cache.Key(overviewParamsValues(params, page), "analytics", "overview")
	return fetchCached(ctx, s.cache, key, s.listTTL, func() (*Overview, error) {
		return s.fetchOverview(ctx, params, page)
	})
}

func (s *analyticsService) fetchOverview(ctx context.Context, params query.OverviewParams, page pagination.PageRequest) (*Overview, error) {
	page.Defaults()
	spec := query.ForUserOverview(params, page)

	base := s.db.WithContext(ctx).Model(&models.User{})
	base = query.ApplyFilters(base, spec.Filters)

	var totalCount int64
	if err := base.Count(&totalCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	users, err := s.fetchUsersWithTransactions(base.Session(&gorm.Session{}), spec.Sort, &spec.Window)
	if err != nil {
		return nil, err
	}

	rollups := make([]analytics.UserRollup, 0, len(users))
	for _, user := range users {
		rollups = append(rollups, analytics.SummarizeUser(user, user.Transactions))
	}

	distribution, err := s.fetchRoleDistribution(base.Session(&gorm.Session{}))
	if err != nil {
		return nil, err
	}

	// Most-active users are ranked over the whole filtered set, not the
	// current page, so the list is stable across pages.
	topUsers, err := s.fetchTopUsers(base.Session(&gorm.Session{}))
	if err != nil {
		return nil, err
	}

	return &Overview{
		Users:            rollups,
		RoleDistribution: distribution,
		TopUsers:         topUsers,
		Pagination:       pagination.NewMeta(spec.Window, totalCount),
		Success:          true,
		Message:          "Analytics overview fetched successfully",
	}, nil
}

// fetchUsersWithTransactions loads one sorted page of users (or, with a nil
// window, the whole filtered set) with the transaction fields rollups need.
func (s *analyticsService) fetchUsersWithTransactions(q *gorm.DB, sort query.Sort, window *pagination.PageRequest) ([]models.User, error) {
	q = query.ApplySort(q, sort)
	if window != nil {
		q = q.Scopes(pagination.Paginate(*window))
	}

	var users []models.User
	if err := q.Preload("Transactions", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "user_id", "amount", "type")
	}).Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return users, nil
}

func (s *analyticsService) fetchRoleDistribution(q *gorm.DB) (map[models.Role]int, error) {
	var rows []struct {
		Role  models.Role
		Count int
	}
	if err := q.Select("role, COUNT(*) as count").Group("role").Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	distribution := make(map[models.Role]int, len(rows))
	for _, row := range rows {
		distribution[row.Role] = row.Count
	}
	return distribution, nil
}

func (s *analyticsService) fetchTopUsers(q *gorm.DB) ([]analytics.UserRollup, error) {
	window := pagination.PageRequest{Page: 1, Limit: topUsersLimit}
	sort := query.Sort{Field: query.SortByTransactionCount, Descending: true}

	users, err := s.fetchUsersWithTransactions(q, sort, &window)
	if err != nil {
		return nil, err
	}

	rollups := make([]analytics.UserRollup, 0, len(users))
	for _, user := range users {
		rollups = append(rollups, analytics.SummarizeUser(user, user.Transactions))
	}
	return analytics.TopByTransactionCount(rollups, topUsersLimit), nil
}

// UserAnalytics returns a single user's overall rollup, one filtered page of
// their transactions, their category list, and derived breakdowns. The
// requester must be that user or an admin.
func (s *analyticsService) UserAnalytics(ctx context.Context, principal Principal, targetUserID string, params query.TransactionParams, page pagination.PageRequest) (*UserAnalytics, error) {
	if !principal.CanAccessUser(targetUserID) {
		return nil, apperrors.ErrForbidden
	}

	key := cache.Key(transactionParamsValues(params, page), "analytics", "user", targetUserID)
	return fetchCached(ctx, s.cache, key, s.listTTL, func() (*UserAnalytics, error) {
		return s.fetchUserAnalytics(ctx, targetUserID, params, page)
	})
}

func (s *analyticsService) fetchUserAnalytics(ctx context.Context, targetUserID string, params query.TransactionParams, page pagination.PageRequest) (*UserAnalytics, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", targetUserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	page.Defaults()
	spec := query.ForTransactions(targetUserID, params, page)

	base := s.db.WithContext(ctx).Model(&models.Transaction{})
	base = query.ApplyFilters(base, spec.Filters)

	var totalCount int64
	if err := base.Count(&totalCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	q := query.ApplySort(base.Session(&gorm.Session{}), spec.Sort)
	if err := q.Scopes(pagination.Paginate(spec.Window)).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	// The overall rollup and breakdowns span all of the user's transactions,
	// not just the filtered page.
	var allTransactions []models.Transaction
	if err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("user_id = ?", targetUserID).
		Select("id", "amount", "type", "category", "date").
		Find(&allTransactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	categories, err := s.userCategories(ctx, targetUserID)
	if err != nil {
		return nil, err
	}

	return &UserAnalytics{
		User:              analytics.SummarizeUser(user, allTransactions),
		Transactions:      transactions,
		Categories:        categories,
		CategoryBreakdown: analytics.CategoryBreakdown(allTransactions),
		MonthlyTrend:      analytics.MonthlyTrend(allTransactions),
		Pagination:        pagination.NewMeta(spec.Window, totalCount),
		Success:           true,
		Message:           "User analytics fetched successfully",
	}, nil
}

// userCategories returns the user's distinct category labels. The list
// changes rarely, so it keeps its own cache entry with a longer TTL; the
// entry still lives under the analytics prefix and is dropped on any
// transaction mutation.
func (s *analyticsService) userCategories(ctx context.Context, userID string) ([]string, error) {
	key := cache.Key(url.Values{}, "analytics", "user", userID, "categories")
	result, err := fetchCached(ctx, s.cache, key, s.categoryTTL, func() (*[]string, error) {
		var categories []string
		if err := s.db.WithContext(ctx).Model(&models.Transaction{}).
			Where("user_id = ?", userID).
			Distinct("category").
			Order("category").
			Pluck("category", &categories).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if categories == nil {
			categories = []string{}
		}
		return &categories, nil
	})
	if err != nil {
		return nil, err
	}
	return *result, nil
}
