package query

import (
	"strings"

	"gorm.io/gorm"
)

// Apply translates a Spec into GORM clauses: filters, ordering, and the page
// window. The caller supplies a query already scoped to the right model.
func Apply(db *gorm.DB, spec Spec) *gorm.DB {
	db = ApplyFilters(db, spec.Filters)
	db = ApplySort(db, spec.Sort)
	return db.Offset(spec.Window.Offset()).Limit(spec.Window.Limit)
}

// ApplyFilters translates the filter list into conjunctive WHERE clauses.
// LOWER/LIKE is used for substring matches so the same translation works on
// both PostgreSQL and the SQLite test database.
func ApplyFilters(db *gorm.DB, filters []Filter) *gorm.DB {
	for _, f := range filters {
		switch f := f.(type) {
		case CategoryContains:
			db = db.Where("LOWER(category) LIKE ?", contains(f.Value))
		case DateRange:
			if f.From != nil {
				db = db.Where("date >= ?", *f.From)
			}
			if f.To != nil {
				db = db.Where("date <= ?", *f.To)
			}
		case TypeEquals:
			db = db.Where("type = ?", f.Value)
		case IDContains:
			db = db.Where("LOWER(id) LIKE ?", contains(f.Value))
		case UserEquals:
			db = db.Where("user_id = ?", f.Value)
		case RoleEquals:
			db = db.Where("role = ?", f.Value)
		case NameOrEmailContains:
			db = db.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?",
				contains(f.Value), contains(f.Value))
		}
	}
	return db
}

// ApplySort translates the ordering. The derived transactionCount key is
// pushed into SQL as a correlated subquery so LIMIT/OFFSET see the full
// filtered set in derived order, keeping page boundaries consistent.
func ApplySort(db *gorm.DB, s Sort) *gorm.DB {
	dir := "ASC"
	if s.Descending {
		dir = "DESC"
	}

	switch s.Field {
	case SortByDate:
		return db.Order("date " + dir)
	case SortByAmount:
		return db.Order("amount " + dir)
	case SortByUpdatedAt:
		return db.Order("updated_at " + dir)
	case SortByName:
		return db.Order("name " + dir)
	case SortByJoinedDate:
		return db.Order("created_at " + dir)
	case SortByTransactionCount:
		// Ties broken by ID so the ordering is deterministic across pages.
		return db.Order("(SELECT COUNT(*) FROM transactions t WHERE t.user_id = users.id AND t.deleted_at IS NULL) " + dir).
			Order("id ASC")
	}
	return db
}

func contains(v string) string {
	return "%" + strings.ToLower(v) + "%"
}
