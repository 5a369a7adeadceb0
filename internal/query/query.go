// Package query builds filter/sort/page descriptors for transaction and
// user-overview reads. A Spec is assembled from raw request parameters
// without touching the database; the GORM translator in this package turns
// it into a concrete query.
package query

import (
	"time"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// Filter is a single conjunctive predicate. The set of implementations is
// closed: every variant this package defines is everything the translator
// understands.
type Filter interface {
	isFilter()
}

// CategoryContains matches transactions whose category contains the value,
// case-insensitively.
type CategoryContains struct {
	Value string
}

// DateRange matches transactions whose effective date lies within the
// inclusive bounds. A nil bound is open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// TypeEquals matches transactions of exactly one type.
type TypeEquals struct {
	Value models.TransactionType
}

// IDContains matches transactions whose ID contains the value,
// case-insensitively.
type IDContains struct {
	Value string
}

// UserEquals scopes transactions to a single owner.
type UserEquals struct {
	Value string
}

// RoleEquals matches users of exactly one role (overview reads only).
type RoleEquals struct {
	Value models.Role
}

// NameOrEmailContains matches users whose name or email contains the value,
// case-insensitively (overview reads only).
type NameOrEmailContains struct {
	Value string
}

func (CategoryContains) isFilter()    {}
func (DateRange) isFilter()           {}
func (TypeEquals) isFilter()          {}
func (IDContains) isFilter()          {}
func (UserEquals) isFilter()          {}
func (RoleEquals) isFilter()          {}
func (NameOrEmailContains) isFilter() {}

// SortField is a concrete, store-backed or derived ordering key.
type SortField string

const (
	SortByDate             SortField = "date"
	SortByAmount           SortField = "amount"
	SortByUpdatedAt        SortField = "updatedAt"
	SortByName             SortField = "name"
	SortByJoinedDate       SortField = "joinedDate"
	SortByTransactionCount SortField = "transactionCount"
)

// Sort pairs a field with a direction.
type Sort struct {
	Field      SortField
	Descending bool
}

// Spec is a complete, side-effect-free description of one read: an ordered
// list of conjunctive filters, an ordering, and a page window.
type Spec struct {
	Filters []Filter
	Sort    Sort
	Window  pagination.PageRequest
}

// TransactionParams holds the raw transaction-list query parameters as they
// arrive on the request. Empty strings impose no constraint.
type TransactionParams struct {
	Category        string `form:"category"`
	FromDate        string `form:"fromDate"`
	ToDate          string `form:"toDate"`
	TransactionType string `form:"transactionType"`
	Search          string `form:"transactionSearch"`
	SortBy          string `form:"sortBy"`
	SortOrder       string `form:"sortOrder"`
}

// OverviewParams holds the raw user-overview query parameters.
type OverviewParams struct {
	Search    string `form:"search"`
	Role      string `form:"role"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
}

// ForTransactions builds a Spec for a transaction listing. ownerID scopes the
// read to a single user's transactions; an empty ownerID leaves the listing
// unscoped (callers apply the authorization gate before building the spec).
func ForTransactions(ownerID string, p TransactionParams, window pagination.PageRequest) Spec {
	window.Defaults()

	var filters []Filter
	if ownerID != "" {
		filters = append(filters, UserEquals{Value: ownerID})
	}
	if p.Category != "" {
		filters = append(filters, CategoryContains{Value: p.Category})
	}
	if from, to, ok := dateRange(p.FromDate, p.ToDate); ok {
		filters = append(filters, DateRange{From: from, To: to})
	}
	// An unknown type value imposes no constraint rather than failing the read.
	if t := models.TransactionType(p.TransactionType); models.ValidTransactionType(t) {
		filters = append(filters, TypeEquals{Value: t})
	}
	if p.Search != "" {
		filters = append(filters, IDContains{Value: p.Search})
	}

	return Spec{
		Filters: filters,
		Sort:    transactionSort(p.SortBy, p.SortOrder),
		Window:  window,
	}
}

// ForUserOverview builds a Spec for the cross-user analytics overview.
func ForUserOverview(p OverviewParams, window pagination.PageRequest) Spec {
	window.Defaults()

	var filters []Filter
	if p.Search != "" {
		filters = append(filters, NameOrEmailContains{Value: p.Search})
	}
	if r := models.Role(p.Role); models.ValidRole(r) {
		filters = append(filters, RoleEquals{Value: r})
	}

	return Spec{
		Filters: filters,
		Sort:    overviewSort(p.SortBy, p.SortOrder),
		Window:  window,
	}
}

// transactionSort maps a sortBy token onto a transaction column, falling back
// to date descending for unrecognized tokens.
func transactionSort(sortBy, sortOrder string) Sort {
	field := SortByDate
	switch SortField(sortBy) {
	case SortByDate, SortByAmount, SortByUpdatedAt:
		field = SortField(sortBy)
	}
	// Transactions default to newest first.
	desc := sortOrder != "asc"
	return Sort{Field: field, Descending: desc}
}

// overviewSort maps a sortBy token onto a user-overview key, falling back to
// name ascending for unrecognized tokens.
func overviewSort(sortBy, sortOrder string) Sort {
	field := SortByName
	switch SortField(sortBy) {
	case SortByName, SortByJoinedDate, SortByTransactionCount:
		field = SortField(sortBy)
	}
	desc := sortOrder == "desc"
	return Sort{Field: field, Descending: desc}
}

// dateRange parses the from/to bounds. A bare date for the lower bound is
// normalized to start of day UTC; a bare date for the upper bound extends to
// end of day so a same-day range covers the whole day. Unparseable values
// impose no constraint.
func dateRange(fromStr, toStr string) (from, to *time.Time, ok bool) {
	if t, err := parseBound(fromStr, false); err == nil && fromStr != "" {
		from = &t
	}
	if t, err := parseBound(toStr, true); err == nil && toStr != "" {
		to = &t
	}
	return from, to, from != nil || to != nil
}

// parseBound accepts RFC3339 instants and bare YYYY-MM-DD dates.
func parseBound(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		return t.Add(24*time.Hour - time.Nanosecond), nil
	}
	return t, nil
}
