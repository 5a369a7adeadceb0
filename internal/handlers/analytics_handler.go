package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/pagination"
	"fintrack/internal/query"
	"fintrack/internal/services"
)

// AnalyticsHandler handles analytics-related requests.
type AnalyticsHandler struct {
	analyticsService services.AnalyticsServicer
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService services.AnalyticsServicer) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Overview handles the cross-user analytics overview
// @Summary     Analytics overview
// @Description Get per-user financial rollups, role distribution, and most-active users. ADMIN only.
// @Tags        analytics
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       limit     query int    false "Items per page (default 10, max 100)"
// @Param       search    query string false "Search by user name or email substring"
// @Param       role      query string false "Filter by role (ADMIN, USER, READ_ONLY)"
// @Param       sortBy    query string false "Sort key (name, joinedDate, transactionCount)"
// @Param       sortOrder query string false "Sort order (asc, desc)"
// @Success     200 {object} services.Overview "Analytics overview"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Admin role required"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analytics [get]
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var params query.OverviewParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.analyticsService.Overview(c.Request.Context(), principal, params, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UserAnalytics handles the single-user analytics read
// @Summary     User analytics
// @Description Get one user's rollup, a filtered page of their transactions, their categories, and derived breakdowns. Requester must be that user or an admin.
// @Tags        analytics
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
// @Success     200 {object} services.UserAnalytics "User analytics"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Cannot access other user's data"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analytics/user/{id} [get]
func (h *AnalyticsHandler) UserAnalytics(c *gin.Context) {
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

	result, err := h.analyticsService.UserAnalytics(c.Request.Context(), principal, c.Param("id"), params, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
