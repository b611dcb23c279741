package core

import (
	"math"
	"net/url"
	"strconv"
)

// Reserved list query parameters; everything else is treated as a filter key.
const (
	ParamPage      = "page"
	ParamLimit     = "limit"
	ParamSearch    = "search"
	ParamSortBy    = "sort_by"
	ParamSortOrder = "sort_order"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

type (
	// ListParams carries the query-string-derived inputs of a list endpoint.
	ListParams struct {
		Page      int
		Limit     int
		Search    string
		SortBy    string
		SortOrder string
		Filters   map[string]string
	}

	// ListConfig is the static, caller-supplied configuration of a list endpoint.
	// FilterFields is the allow-list of column names accepted as filter keys
	// (after stripping any _from/_to/_min/_max suffix); request keys outside it
	// are rejected, never passed through as column references.
	ListConfig struct {
		FilterFields []string
		SearchFields []string
		SortFields   []string
		DefaultSort  DBOrdering
		CountField   string
	}

	// Pagination is recomputed per request, never stored.
	Pagination struct {
		Total      int  `json:"total"`
		Page       int  `json:"page"`
		Limit      int  `json:"limit"`
		TotalPages int  `json:"total_pages"`
		HasNext    bool `json:"has_next"`
		HasPrev    bool `json:"has_prev"`
	}
)

// NewListParams parses url values into ListParams, clamping pagination inputs.
func NewListParams(values url.Values) ListParams {
	p := ListParams{
		Page:      DefaultPage,
		Limit:     DefaultLimit,
		Search:    CleanString(values.Get(ParamSearch)),
		SortBy:    CleanString(values.Get(ParamSortBy), true /* lower */),
		SortOrder: CleanString(values.Get(ParamSortOrder), true /* lower */),
		Filters:   make(map[string]string),
	}
	if page := atoiOr(values.Get(ParamPage), DefaultPage); page > 0 {
		p.Page = page
	}
	if limit := atoiOr(values.Get(ParamLimit), DefaultLimit); limit > 0 {
		p.Limit = limit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	for key, vals := range values {
		switch key {
		case ParamPage, ParamLimit, ParamSearch, ParamSortBy, ParamSortOrder:
			continue
		}
		if len(vals) == 0 || vals[0] == "" {
			continue
		}
		p.Filters[key] = vals[0]
	}
	return p
}

// Offset is always non-negative; Page/Limit are clamped at construction.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

func NewPagination(total, page, limit int) Pagination {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1 && total > 0,
	}
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
