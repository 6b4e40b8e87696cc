package blogservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlogQueryWhere(t *testing.T) {
	q := &blogQuery{}
	assert.Equal(t, "", q.whereClause())

	q.where("b.state = %s", StatePublished)
	q.where("b.title ILIKE %s", "%go%")
	q.where("b.tags && %s", []string{"go", "sql"})

	assert.Equal(t, "WHERE b.state = $1 AND b.title ILIKE $2 AND b.tags && $3", q.whereClause())
	assert.Len(t, q.args, 3)
	assert.Equal(t, StatePublished, q.args[0])
	assert.Equal(t, "%go%", q.args[1])
}

func TestListParamsNormalize(t *testing.T) {
	testCases := []struct {
		name       string
		params     ListParams
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{
			name:       "defaults",
			params:     ListParams{},
			wantPage:   1,
			wantLimit:  DefaultPageLimit,
			wantOffset: 0,
		},
		{
			name:       "negative page",
			params:     ListParams{Page: -3, Limit: 10},
			wantPage:   1,
			wantLimit:  10,
			wantOffset: 0,
		},
		{
			name:       "zero limit",
			params:     ListParams{Page: 2, Limit: 0},
			wantPage:   2,
			wantLimit:  DefaultPageLimit,
			wantOffset: DefaultPageLimit,
		},
		{
			name:       "third page",
			params:     ListParams{Page: 3, Limit: 5},
			wantPage:   3,
			wantLimit:  5,
			wantOffset: 10,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.params.normalize()
			assert.Equal(t, tc.wantPage, tc.params.Page)
			assert.Equal(t, tc.wantLimit, tc.params.Limit)
			assert.Equal(t, tc.wantOffset, tc.params.offset())
		})
	}
}

func TestPublicSortClause(t *testing.T) {
	testCases := []struct {
		name     string
		orderBy  string
		order    string
		expected string
	}{
		{
			name:     "missing falls back to newest first",
			orderBy:  "",
			order:    "",
			expected: "b.created_at DESC",
		},
		{
			name:     "unrecognized falls back to newest first",
			orderBy:  "user_id",
			order:    "asc",
			expected: "b.created_at DESC",
		},
		{
			name:     "recognized defaults ascending",
			orderBy:  "read_count",
			order:    "",
			expected: "b.read_count ASC",
		},
		{
			name:     "explicit descending",
			orderBy:  "reading_time",
			order:    "desc",
			expected: "b.reading_time DESC",
		},
		{
			name:     "timestamp maps to created_at",
			orderBy:  "timestamp",
			order:    "",
			expected: "b.created_at ASC",
		},
		{
			name:     "state is not public-sortable",
			orderBy:  "state",
			order:    "asc",
			expected: "b.created_at DESC",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, publicSortClause(tc.orderBy, tc.order))
		})
	}
}

func TestOwnerSortClause(t *testing.T) {
	testCases := []struct {
		name     string
		orderBy  string
		order    string
		expected string
	}{
		{
			name:     "missing falls back to newest first",
			orderBy:  "",
			order:    "",
			expected: "b.created_at DESC",
		},
		{
			name:     "recognized defaults descending",
			orderBy:  "read_count",
			order:    "",
			expected: "b.read_count DESC",
		},
		{
			name:     "explicit ascending",
			orderBy:  "state",
			order:    "asc",
			expected: "b.state ASC",
		},
		{
			name:     "unrecognized falls back",
			orderBy:  "title",
			order:    "asc",
			expected: "b.created_at DESC",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ownerSortClause(tc.orderBy, tc.order))
		})
	}
}

func TestNewPagination(t *testing.T) {
	testCases := []struct {
		name     string
		page     int
		limit    int
		total    int
		expected Pagination
	}{
		{
			name:  "empty result set",
			page:  1,
			limit: 20,
			total: 0,
			expected: Pagination{
				CurrentPage: 1,
				TotalPages:  0,
				TotalBlogs:  0,
				Limit:       20,
				HasNextPage: false,
				HasPrevPage: false,
			},
		},
		{
			name:  "partial last page counts as a page",
			page:  1,
			limit: 20,
			total: 21,
			expected: Pagination{
				CurrentPage: 1,
				TotalPages:  2,
				TotalBlogs:  21,
				Limit:       20,
				HasNextPage: true,
				HasPrevPage: false,
			},
		},
		{
			name:  "middle page has both neighbours",
			page:  2,
			limit: 5,
			total: 12,
			expected: Pagination{
				CurrentPage: 2,
				TotalPages:  3,
				TotalBlogs:  12,
				Limit:       5,
				HasNextPage: true,
				HasPrevPage: true,
			},
		},
		{
			name:  "last page",
			page:  3,
			limit: 5,
			total: 12,
			expected: Pagination{
				CurrentPage: 3,
				TotalPages:  3,
				TotalBlogs:  12,
				Limit:       5,
				HasNextPage: false,
				HasPrevPage: true,
			},
		},
		{
			name:  "page past the end",
			page:  9,
			limit: 5,
			total: 12,
			expected: Pagination{
				CurrentPage: 9,
				TotalPages:  3,
				TotalBlogs:  12,
				Limit:       5,
				HasNextPage: false,
				HasPrevPage: true,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, newPagination(tc.page, tc.limit, tc.total))
		})
	}
}
