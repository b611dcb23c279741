package core

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewListParams(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p := NewListParams(url.Values{})
		assert.Equal(t, DefaultPage, p.Page)
		assert.Equal(t, DefaultLimit, p.Limit)
		assert.Empty(t, p.Search)
		assert.Empty(t, p.Filters)
	})

	t.Run("reserved params are not filters", func(t *testing.T) {
		p := NewListParams(url.Values{
			"page":       {"2"},
			"limit":      {"5"},
			"search":     {" Awe "},
			"sort_by":    {"Name"},
			"sort_order": {"DESC"},
			"is_active":  {"true"},
			"empty":      {""},
		})
		assert.Equal(t, 2, p.Page)
		assert.Equal(t, 5, p.Limit)
		assert.Equal(t, "Awe", p.Search)
		assert.Equal(t, "name", p.SortBy)
		assert.Equal(t, "desc", p.SortOrder)
		assert.Equal(t, map[string]string{"is_active": "true"}, p.Filters)
	})

	t.Run("bad inputs are clamped", func(t *testing.T) {
		tests := []struct {
			name        string
			page, limit string
			wantPage    int
			wantLimit   int
		}{
			{name: "non-numeric", page: "lol", limit: "lol", wantPage: DefaultPage, wantLimit: DefaultLimit},
			{name: "negative", page: "-1", limit: "-1", wantPage: DefaultPage, wantLimit: DefaultLimit},
			{name: "zero", page: "0", limit: "0", wantPage: DefaultPage, wantLimit: DefaultLimit},
			{name: "over max limit", page: "1", limit: "1000", wantPage: 1, wantLimit: MaxLimit},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				p := NewListParams(url.Values{"page": {tt.page}, "limit": {tt.limit}})
				assert.Equal(t, tt.wantPage, p.Page)
				assert.Equal(t, tt.wantLimit, p.Limit)
			})
		}
	})
}

func TestListParams_Offset(t *testing.T) {
	assert.Equal(t, 0, ListParams{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 40, ListParams{Page: 3, Limit: 20}.Offset())
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name  string
		total int
		page  int
		limit int
		want  Pagination
	}{
		{
			name: "empty", total: 0, page: 1, limit: 20,
			want: Pagination{Total: 0, Page: 1, Limit: 20, TotalPages: 0},
		},
		{
			name: "single page", total: 5, page: 1, limit: 20,
			want: Pagination{Total: 5, Page: 1, Limit: 20, TotalPages: 1},
		},
		{
			name: "middle page", total: 45, page: 2, limit: 20,
			want: Pagination{Total: 45, Page: 2, Limit: 20, TotalPages: 3, HasNext: true, HasPrev: true},
		},
		{
			name: "last page", total: 45, page: 3, limit: 20,
			want: Pagination{Total: 45, Page: 3, Limit: 20, TotalPages: 3, HasPrev: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPagination(tt.total, tt.page, tt.limit))
		})
	}
}
