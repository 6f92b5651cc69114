// Package gormexec implements pager.Executor on top of GORM.
//
// Column names reaching the generated SQL always come from the endpoint's
// sort and filter allow-lists, values are always bound as placeholders.
package gormexec

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Alp4ka/pager"
)

// Scope narrows every query of an Executor, e.g. to a tenant or a table.
type Scope = func(*gorm.DB) *gorm.DB

// Executor runs pager queries against the table of model T.
type Executor[T any] struct {
	db     *gorm.DB
	scopes []Scope
}

// New returns an Executor over db. scopes are applied to both Find and Count.
func New[T any](db *gorm.DB, scopes ...Scope) *Executor[T] {
	return &Executor[T]{
		db:     db,
		scopes: scopes,
	}
}

// Find implements pager.Executor.
func (e *Executor[T]) Find(ctx context.Context, q pager.Query) ([]T, error) {
	db, err := e.filtered(ctx, q.Filter)
	if err != nil {
		return nil, err
	}

	db = applyBoundary(db, q.Boundary)
	if len(q.Sort) > 0 {
		db = db.Order(q.Sort.ToSQL())
	}
	if q.Skip > 0 {
		db = db.Offset(q.Skip)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}

	items := make([]T, 0, max(q.Limit, 0))
	if err = db.Find(&items).Error; err != nil {
		return nil, err
	}

	return items, nil
}

// Count implements pager.Executor.
func (e *Executor[T]) Count(ctx context.Context, f pager.Filter) (int64, error) {
	db, err := e.filtered(ctx, f)
	if err != nil {
		return 0, err
	}

	var n int64
	if err = db.Count(&n).Error; err != nil {
		return 0, err
	}

	return n, nil
}

func (e *Executor[T]) filtered(ctx context.Context, f pager.Filter) (*gorm.DB, error) {
	db := e.db.WithContext(ctx).Model(new(T)).Scopes(e.scopes...)

	exprs, err := translator{dialect: e.db.Dialector.Name()}.filterExpressions(f)
	if err != nil {
		return nil, fmt.Errorf("cannot translate filter: %w", err)
	}
	for _, exp := range exprs {
		db = db.Where(exp)
	}

	return db, nil
}

// applyBoundary adds the keyset seek predicate to the query.
func applyBoundary(db *gorm.DB, b pager.Boundary) *gorm.DB {
	exp := boundaryExpression(b)
	if exp == nil {
		return db
	}

	return db.Clauses(clause.Where{Exprs: []clause.Expression{exp}})
}
