package option

import "gorm.io/gorm"

// QueryOption mutates a gorm statement before execution.
type QueryOption func(*gorm.DB) *gorm.DB

// WithLimit caps the number of returned rows.
func WithLimit(limit int) QueryOption {
	return func(stmt *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return stmt
		}
		return stmt.Limit(limit)
	}
}

// WithOrder appends an ORDER BY clause.
func WithOrder(order string) QueryOption {
	return func(stmt *gorm.DB) *gorm.DB {
		if order == "" {
			return stmt
		}
		return stmt.Order(order)
	}
}

// WithCondition appends a WHERE clause.
func WithCondition(query string, args ...any) QueryOption {
	return func(stmt *gorm.DB) *gorm.DB {
		return stmt.Where(query, args...)
	}
}

// WithPreload eagerly loads an association.
func WithPreload(association string) QueryOption {
	return func(stmt *gorm.DB) *gorm.DB {
		return stmt.Preload(association)
	}
}
