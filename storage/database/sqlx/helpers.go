// Package sqlxrepos implements the domain repositories on PostgreSQL via
// jmoiron/sqlx. Queries are written with `?` bindvars and rebound to the
// postgres dialect, so sqlx.In id-set expansion composes naturally.
package sqlxrepos

import (
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/maktabuz/maktab/core"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// trapPqErr maps the postgres constraint-violation classes to the domain's
// typed errors; anything else is wrapped as-is.
func trapPqErr(err error, msg string, conflictErr, referenceErr error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return conflictErr
		case pqForeignKeyViolation:
			return referenceErr
		}
	}
	return errors.Wrap(err, msg)
}

// conds accumulates WHERE clauses with `?` bindvars.
type conds struct {
	clauses []string
	args    []interface{}
}

func (c *conds) add(clause string, args ...interface{}) {
	c.clauses = append(c.clauses, clause)
	c.args = append(c.args, args...)
}

// addSearch adds a case-insensitive substring match over the given columns.
func (c *conds) addSearch(search string, columns ...string) {
	if search == "" {
		return
	}
	likes := make([]string, len(columns))
	for i, col := range columns {
		likes[i] = col + " ILIKE ?"
		c.args = append(c.args, "%"+search+"%")
	}
	c.clauses = append(c.clauses, "("+strings.Join(likes, " OR ")+")")
}

func (c *conds) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// orderBy renders the ORDER BY clause. Fields come pre-validated against the
// entity's allow-list; fallback is the entity default.
func orderBy(ordering, fallback []core.DBOrdering) string {
	if len(ordering) == 0 {
		ordering = fallback
	}
	if len(ordering) == 0 {
		return ""
	}
	terms := make([]string, len(ordering))
	for i, ord := range ordering {
		terms[i] = ord.String()
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}

func paginate(page core.Pagination) (string, []interface{}) {
	if page.Limit <= 0 {
		return "", nil
	}
	return " LIMIT ? OFFSET ?", []interface{}{page.Limit, page.Offset()}
}
