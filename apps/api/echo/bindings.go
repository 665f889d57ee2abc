package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/maktabuz/maktab/core"
)

var orderingParam = "ordering"

// errMalformedQuery surfaces filter bind failures as a 400; malformed query
// params are never coerced into empty results.
var errMalformedQuery = core.NewValidationError(nil, core.FieldError{Field: "query", Error: "malformed query parameters"})

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind parses the `ordering=` query param: comma-separated field names,
// a leading "-" meaning descending.
func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// bindOrdering binds and validates `ordering=` against the entity's
// allow-list.
func bindOrdering(ctx echo.Context, allowed []string) ([]core.DBOrdering, error) {
	ordering := new(Ordering)
	ordering.Bind(ctx)
	if err := core.ValidateOrderings(ordering.Orderings, allowed...); err != nil {
		return nil, err
	}
	return ordering.Orderings, nil
}

// bindPagination binds `page=`/`limit=` and applies defaults and bounds.
func bindPagination(ctx echo.Context, defaultLimit int) (core.Pagination, error) {
	var page core.Pagination
	if err := ctx.Bind(&page); err != nil {
		return core.Pagination{}, errors.Wrap(err, "binding pagination")
	}
	page.Clean(defaultLimit)
	return page, nil
}
