// Package sqlxrepos implements the repositories on PostgreSQL.
package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
)

const uniqueViolation = "23505"

// query accumulates the conditions of a SELECT; conditions use `?` placeholders.
type query struct {
	conds []string
	args  []interface{}
}

func (q *query) and(cond string, args ...interface{}) {
	q.conds = append(q.conds, cond)
	q.args = append(q.args, args...)
}

// search adds a case-insensitive match of val on any of columns.
func (q *query) search(val string, columns ...string) {
	if val == "" {
		return
	}
	pattern := "%" + escapeLike(val) + "%"
	parts := make([]string, 0, len(columns))
	for _, col := range columns {
		parts = append(parts, col+" ILIKE ?")
		q.args = append(q.args, pattern)
	}
	q.conds = append(q.conds, "("+strings.Join(parts, " OR ")+")")
}

func (q *query) where() string {
	if len(q.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.conds, " AND ")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// orderBy keeps the allowed fields of ordering; rows are returned oldest first by default.
func orderBy(ordering []core.DBOrdering, allowed []string) string {
	parts := make([]string, 0, len(ordering)+2)
	for _, ord := range ordering {
		for _, field := range allowed {
			if ord.Field == field {
				parts = append(parts, ord.String())
				break
			}
		}
	}
	parts = append(parts, "created_at ASC", "id ASC")
	return " ORDER BY " + strings.Join(parts, ", ")
}

func limit(paging core.Paging) string {
	if !paging.Limited() {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", paging.PageSize, paging.Offset())
}

// selectPage loads a page of rows into dest and returns the number of matching rows.
func selectPage(ctx context.Context, exec core.DBExecutor, dest interface{}, table, columns string, q query, ordering []core.DBOrdering, allowed []string, paging core.Paging) (int, error) {
	var total int
	countSQL := rebind("SELECT count(*) FROM " + table + q.where())
	if err := exec.GetContext(ctx, &total, countSQL, q.args...); err != nil {
		return 0, errors.Wrap(err, "counting "+table)
	}
	if total == 0 {
		return 0, nil
	}

	selectSQL := rebind("SELECT " + columns + " FROM " + table + q.where() + orderBy(ordering, allowed) + limit(paging))
	if err := exec.SelectContext(ctx, dest, selectSQL, q.args...); err != nil {
		return 0, errors.Wrap(err, "selecting "+table)
	}
	return total, nil
}

// get loads a single row; sql.ErrNoRows is mapped to notFound.
func get(ctx context.Context, exec core.DBExecutor, dest interface{}, notFound error, query string, args ...interface{}) error {
	if err := exec.GetContext(ctx, dest, query, args...); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return notFound
		}
		return errors.Wrap(err, "getting row")
	}
	return nil
}

// affectsOne checks that a statement affected a row; notFound is returned otherwise.
// It takes the results of an Exec: `affectsOne(ErrNotFound)(exec.ExecContext(...))`.
func affectsOne(notFound error) func(sql.Result, error) error {
	return func(res sql.Result, err error) error {
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "counting affected rows")
		}
		if n == 0 {
			return notFound
		}
		return nil
	}
}

func isUniqueViolation(err error) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == uniqueViolation
}

func toJSON(v interface{}) (types.JSONText, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encoding json column")
	}
	return types.JSONText(b), nil
}

func fromJSON(j types.JSONText, v interface{}) error {
	if len(j) == 0 {
		return nil
	}
	return errors.Wrap(j.Unmarshal(v), "decoding json column")
}

// validID reports whether id may be looked up; ids are UUIDs.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func rebind(query string) string { return sqlx.Rebind(sqlx.DOLLAR, query) }
