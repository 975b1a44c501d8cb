// Package query filters and ranks a canonical quote table.
package query

import (
	"sort"
	"strings"

	"quoteboard/internal/logging"
	"quoteboard/internal/quote"

	"golang.org/x/text/cases"
)

// AllVendors is the vendor filter value meaning no vendor restriction.
const AllVendors = "all"

// Filter holds the user-supplied query parameters.
type Filter struct {
	Vendor  string // exact match, or AllVendors
	Keyword string // substring of item, surrounding space ignored; empty matches everything
}

// Unfiltered returns a filter that keeps every row.
func Unfiltered() Filter {
	return Filter{Vendor: AllVendors}
}

// Policy settles matching rules that earlier dashboard variants disagreed on.
type Policy struct {
	// CaseSensitive makes keyword matching exact instead of case-folded.
	CaseSensitive bool `yaml:"case_sensitive"`
	// IncludeBlankVendor lists the empty vendor in Vendors.
	IncludeBlankVendor bool `yaml:"include_blank_vendor"`
}

// DefaultPolicy folds case and hides blank vendors from the selector.
func DefaultPolicy() Policy {
	return Policy{}
}

// Row is a result row. Index is the record's position in the input table.
type Row struct {
	quote.Record
	Index  int
	Lowest bool // unit price equals the minimum of the result
}

// Result is the filtered, sorted projection handed to renderers.
type Result struct {
	Rows         []Row
	Count        int
	MinUnitPrice float64
}

// Empty reports whether no row matched.
func (r Result) Empty() bool {
	return r.Count == 0
}

// Lowest returns the rows carrying the minimum unit price.
func (r Result) Lowest() []Row {
	var out []Row
	for _, row := range r.Rows {
		if row.Lowest {
			out = append(out, row)
		}
	}
	return out
}

// Run applies f to t and sorts the survivors ascending by unit price.
// Rows with equal unit price keep their input order.
func Run(t quote.Table, f Filter, p Policy) Result {
	match := keywordMatcher(f.Keyword, p)

	rows := make([]Row, 0, len(t))
	for i, rec := range t {
		if f.Vendor != AllVendors && rec.Vendor != f.Vendor {
			continue
		}
		if !match(rec.Item) {
			continue
		}
		rows = append(rows, Row{Record: rec, Index: i})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].UnitPrice < rows[j].UnitPrice
	})

	res := Result{Rows: rows, Count: len(rows)}
	if len(rows) > 0 {
		res.MinUnitPrice = rows[0].UnitPrice
		for i := range rows {
			rows[i].Lowest = rows[i].UnitPrice == res.MinUnitPrice
		}
	}

	logging.Query("run vendor=%q keyword=%q matched=%d/%d", f.Vendor, f.Keyword, res.Count, len(t))
	return res
}

func keywordMatcher(keyword string, p Policy) func(string) bool {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return func(string) bool { return true }
	}
	if p.CaseSensitive {
		return func(item string) bool {
			return item != "" && strings.Contains(item, keyword)
		}
	}
	fold := cases.Fold()
	needle := fold.String(keyword)
	return func(item string) bool {
		return item != "" && strings.Contains(fold.String(item), needle)
	}
}

// Vendors returns AllVendors followed by the distinct vendors of t, sorted.
func Vendors(t quote.Table, p Policy) []string {
	seen := make(map[string]struct{}, len(t))
	for _, rec := range t {
		if strings.TrimSpace(rec.Vendor) == "" && !p.IncludeBlankVendor {
			continue
		}
		if rec.Vendor == AllVendors {
			// Shadowed by the sentinel; still reachable through AllVendors.
			continue
		}
		seen[rec.Vendor] = struct{}{}
	}

	vendors := make([]string, 0, len(seen))
	for v := range seen {
		vendors = append(vendors, v)
	}
	sort.Strings(vendors)
	return append([]string{AllVendors}, vendors...)
}
