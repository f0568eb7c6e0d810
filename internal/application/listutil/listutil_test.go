package listutil

import (
	"math"
	"net/url"
	"strconv"
	"testing"
)

// TestParsePageParams_Absent verifies paging is off when no query values are provided.
func TestParsePageParams_Absent(t *testing.T) {
	if _, ok := ParsePageParams(url.Values{"sort": {"name"}}); ok {
		t.Error("expected paging to be off without page or per_page")
	}
}

// TestParsePageParams_Valid verifies correct parsing of valid page and per_page values.
func TestParsePageParams_Valid(t *testing.T) {
	q := url.Values{"page": {"3"}, "per_page": {"20"}}
	p, ok := ParsePageParams(q)
	if !ok {
		t.Fatal("expected paging to be on")
	}
	if p.Page != 3 {
		t.Errorf("expected page 3, got %d", p.Page)
	}
	if p.PerPage != 20 {
		t.Errorf("expected per_page 20, got %d", p.PerPage)
	}
	if p.Offset() != 40 {
		t.Errorf("expected offset 40, got %d", p.Offset())
	}
}

// TestParsePageParams_InvalidPerPage verifies fallback to default for invalid per_page.
func TestParsePageParams_InvalidPerPage(t *testing.T) {
	q := url.Values{"per_page": {"25"}} // not in allowed list
	p, _ := ParsePageParams(q)
	if p.PerPage != DefaultPerPage {
		t.Errorf("expected default per_page %d for invalid value, got %d", DefaultPerPage, p.PerPage)
	}
	if p.Page != 1 {
		t.Errorf("expected page 1 when only per_page is given, got %d", p.Page)
	}
}

// TestParsePageParams_NegativePage verifies page is clamped to 1 for negative input.
func TestParsePageParams_NegativePage(t *testing.T) {
	q := url.Values{"page": {"-1"}}
	p, _ := ParsePageParams(q)
	if p.Page != 1 {
		t.Errorf("expected page 1 for negative input, got %d", p.Page)
	}
	if p.Offset() != 0 {
		t.Errorf("expected offset 0, got %d", p.Offset())
	}
}

// TestParsePageParams_HugePage verifies very large pages clamp so the offset stays non-negative.
func TestParsePageParams_HugePage(t *testing.T) {
	for _, page := range []string{strconv.Itoa(math.MaxInt), "99999999999999999999999"} {
		for _, perPage := range []string{"10", "200"} {
			p, ok := ParsePageParams(url.Values{"page": {page}, "per_page": {perPage}})
			if !ok {
				t.Fatal("expected paging to be on")
			}
			if p.Offset() < 0 {
				t.Errorf("page=%s per_page=%s: negative offset %d", page, perPage, p.Offset())
			}
			if p.Page < 2 {
				t.Errorf("page=%s per_page=%s: expected a far page, got %d", page, perPage, p.Page)
			}
		}
	}
}

// TestParseSort verifies unknown sort values fall back to the default.
func TestParseSort(t *testing.T) {
	allowed := []string{"newest", "name"}
	tests := []struct {
		query string
		want  string
	}{
		{"name", "name"},
		{"newest", "newest"},
		{"", "newest"},
		{"email", "newest"},
	}
	for _, tt := range tests {
		got := ParseSort(url.Values{"sort": {tt.query}}, allowed, "newest")
		if got != tt.want {
			t.Errorf("ParseSort(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}
