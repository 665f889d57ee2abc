package core

import (
	"context"
	"database/sql"
)

type (
	DBExecutor interface {
		Exec(query string, args ...interface{}) (sql.Result, error)
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
		Query(query string, args ...interface{}) (*sql.Rows, error)
		QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
		QueryRow(query string, args ...interface{}) *sql.Row
		QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	}

	DB interface {
		DBExecutor

		Begin() (*sql.Tx, error)
		BeginTx(context.Context, *sql.TxOptions) (*sql.Tx, error)
	}
)

// DBOrdering is a single ORDER BY term produced by the query composer.
type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// ValidateOrderings rejects orderings on fields outside the entity's allow-list.
// Arbitrary column sorting is not permitted.
func ValidateOrderings(orderings []DBOrdering, allowed ...string) error {
	for _, ord := range orderings {
		var ok bool
		for _, fld := range allowed {
			if ord.Field == fld {
				ok = true
				break
			}
		}
		if !ok {
			return NewValidationError(nil, FieldError{Field: "ordering", Error: "cannot order by " + ord.Field})
		}
	}
	return nil
}
