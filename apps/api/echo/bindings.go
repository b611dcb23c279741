package echoapi

import (
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/shule/core"
)

// bindListParams parses pagination, search, sorting and filters from the query
// string. Presentation-only parameters are stripped so they never reach the
// filter map.
func bindListParams(ctx echo.Context) core.ListParams {
	values := make(url.Values, len(ctx.QueryParams()))
	for key, vals := range ctx.QueryParams() {
		if key == includeParam {
			continue
		}
		values[key] = vals
	}
	return core.NewListParams(values)
}

func validateStruct(v interface{}) error {
	return core.Validate.Struct(v)
}
