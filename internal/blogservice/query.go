package blogservice

import (
	"fmt"
	"strings"
)

const DefaultPageLimit = 20

// ListParams carries the recognized listing query parameters. Zero values
// mean "not supplied"; normalize fills in the pagination defaults.
type ListParams struct {
	Page    int
	Limit   int
	Author  string
	Title   string
	Tags    []string
	OrderBy string
	Order   string
	State   string
}

func (p *ListParams) normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
}

func (p ListParams) offset() int {
	return (p.Page - 1) * p.Limit
}

// blogQuery accumulates typed predicates and renders them as a WHERE clause
// with positional placeholders. Every condition references blogs b only, so
// the same query counts rows without the users join.
type blogQuery struct {
	conds []string
	args  []any
}

// where appends a condition. cond must contain one %s verb per argument; each
// is replaced with the next $n placeholder.
func (q *blogQuery) where(cond string, args ...any) {
	ph := make([]any, len(args))
	for i := range args {
		q.args = append(q.args, args[i])
		ph[i] = fmt.Sprintf("$%d", len(q.args))
	}
	q.conds = append(q.conds, fmt.Sprintf(cond, ph...))
}

func (q *blogQuery) whereClause() string {
	if len(q.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(q.conds, " AND ")
}

var publicSortColumns = map[string]string{
	"read_count":   "b.read_count",
	"reading_time": "b.reading_time",
	"timestamp":    "b.created_at",
}

var ownerSortColumns = map[string]string{
	"timestamp":    "b.created_at",
	"read_count":   "b.read_count",
	"reading_time": "b.reading_time",
	"state":        "b.state",
}

// publicSortClause resolves orderBy against the public whitelist. An
// unrecognized or missing value silently falls back to newest first; a
// recognized one sorts ascending unless desc is requested.
func publicSortClause(orderBy, order string) string {
	col, ok := publicSortColumns[orderBy]
	if !ok {
		return "b.created_at DESC"
	}
	if order == "desc" {
		return col + " DESC"
	}
	return col + " ASC"
}

// ownerSortClause is the owner-listing variant: state is sortable, the
// default direction is descending, and asc must be asked for explicitly.
func ownerSortClause(orderBy, order string) string {
	col, ok := ownerSortColumns[orderBy]
	if !ok {
		return "b.created_at DESC"
	}
	if order == "asc" {
		return col + " ASC"
	}
	return col + " DESC"
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalBlogs  int  `json:"totalBlogs"`
	Limit       int  `json:"limit"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

func newPagination(page, limit, total int) Pagination {
	totalPages := (total + limit - 1) / limit

	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalBlogs:  total,
		Limit:       limit,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// Summary accompanies the owner listing: how many of the caller's blogs sit
// in each state.
type Summary struct {
	TotalBlogs     int `json:"totalBlogs"`
	DraftBlogs     int `json:"draftBlogs"`
	PublishedBlogs int `json:"publishedBlogs"`
}
