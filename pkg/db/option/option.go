package option

import "gorm.io/gorm"

// QueryOption customizes a repository query before execution.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type sortBy struct {
	column string
	desc   bool
}

func (o sortBy) Apply(db *gorm.DB) *gorm.DB {
	order := o.column
	if o.desc {
		order += " DESC"
	}
	return db.Order(order)
}

// WithSortBy orders results by the given column.
func WithSortBy(column string, desc bool) QueryOption {
	return sortBy{column: column, desc: desc}
}

type limit struct {
	n int
}

func (o limit) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(o.n)
}

// WithLimit caps the number of returned rows.
func WithLimit(n int) QueryOption {
	return limit{n: n}
}
