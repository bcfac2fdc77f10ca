package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/schoolops/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads `?ordering=-a,b`; fields missing from allowed are dropped.
func (ord *Ordering) Bind(ctx echo.Context, allowed []string) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if !contains(allowed, field) {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// bindPaging reads `?page=&page_size=`; invalid values fall back to the defaults.
func bindPaging(ctx echo.Context) core.Paging {
	var p core.Paging
	p.Page, _ = strconv.Atoi(ctx.QueryParam("page"))
	p.PageSize, _ = strconv.Atoi(ctx.QueryParam("page_size"))
	p.Clean()
	return p
}

// listParams binds the ordering & paging of a list request.
func listParams(ctx echo.Context, allowed []string) ([]core.DBOrdering, core.Paging) {
	ordering := new(Ordering)
	ordering.Bind(ctx, allowed)
	return ordering.Orderings, bindPaging(ctx)
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

type SuccessResponse struct {
	Success string `json:"success"`
}
