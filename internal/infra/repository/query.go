package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Query is the filter/order set of one select, composed per call.
type Query struct {
	exprs  []clause.Expression
	orders []clause.OrderByColumn
	limit  int
}

type Option func(*Query)

func Eq(column string, value any) Option {
	return func(q *Query) {
		q.exprs = append(q.exprs, clause.Eq{Column: clause.Column{Name: column}, Value: value})
	}
}

func Gte(column string, value any) Option {
	return func(q *Query) {
		q.exprs = append(q.exprs, clause.Gte{Column: clause.Column{Name: column}, Value: value})
	}
}

func Lte(column string, value any) Option {
	return func(q *Query) {
		q.exprs = append(q.exprs, clause.Lte{Column: clause.Column{Name: column}, Value: value})
	}
}

func OrderBy(column string) Option {
	return func(q *Query) {
		q.orders = append(q.orders, clause.OrderByColumn{Column: clause.Column{Name: column}})
	}
}

func OrderByDesc(column string) Option {
	return func(q *Query) {
		q.orders = append(q.orders, clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: true})
	}
}

func Limit(n int) Option {
	return func(q *Query) { q.limit = n }
}

func (q *Query) apply(tx *gorm.DB) *gorm.DB {
	if len(q.exprs) > 0 {
		tx = tx.Clauses(clause.Where{Exprs: q.exprs})
	}
	for _, o := range q.orders {
		tx = tx.Order(o)
	}
	if q.limit > 0 {
		tx = tx.Limit(q.limit)
	}
	return tx
}
