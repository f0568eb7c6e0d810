package listutil

import (
	"math"
	"net/url"
	"strconv"
)

// PageParams carries pagination parameters parsed from a request.
type PageParams struct {
	Page    int // 1-indexed page number
	PerPage int // rows per page
}

// DefaultPerPage is the default number of rows per page.
const DefaultPerPage = 50

// PerPageOptions are the allowed rows-per-page values.
var PerPageOptions = []int{10, 20, 50, 100, 200}

// ParsePageParams extracts page and per_page from URL query values.
// Paging is opt-in: ok is false when neither parameter is present.
// PRE: none
// POST: when ok, returns valid PageParams with defaults applied; Offset never overflows
func ParsePageParams(q url.Values) (PageParams, bool) {
	if !q.Has("page") && !q.Has("per_page") {
		return PageParams{}, false
	}
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if !isValidPerPage(perPage) {
		perPage = DefaultPerPage
	}
	if maxPage := math.MaxInt / perPage; page > maxPage {
		page = maxPage
	}
	return PageParams{Page: page, PerPage: perPage}, true
}

// Offset returns the SQL OFFSET for the page.
// PRE: PageParams came from ParsePageParams
// POST: Returns (Page-1) * PerPage
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// ParseSort returns the sort parameter when it is one of allowed, otherwise def.
func ParseSort(q url.Values, allowed []string, def string) string {
	sort := q.Get("sort")
	for _, a := range allowed {
		if sort == a {
			return sort
		}
	}
	return def
}

func isValidPerPage(n int) bool {
	for _, opt := range PerPageOptions {
		if n == opt {
			return true
		}
	}
	return false
}
