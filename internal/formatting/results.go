package formatting

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/giantswarm/mcp-odoo/internal/domain"
	"github.com/giantswarm/mcp-odoo/internal/odoo"
)

// SearchResult is one page of a search.
type SearchResult struct {
	Domain    domain.Domain
	Records   []odoo.Record
	Schema    odoo.Fields
	Selection Selection
	// Total is the number of records matching Domain.
	Total  int
	Offset int
	// Limit is the page size actually applied.
	Limit int
	// Next and Previous are page URIs, empty at either end.
	Next     string
	Previous string
}

// Search renders a page of search results with a pagination header, one
// entry per record and navigation links.
func (f *Formatter) Search(r SearchResult) string {
	lines := []string{listRule, "Search Results: " + f.model, listRule}

	if len(r.Domain) > 0 {
		lines = append(lines, "Search criteria: "+DescribeDomain(r.Domain))
	}
	if r.Limit > 0 && r.Total > 0 {
		pages := (r.Total + r.Limit - 1) / r.Limit
		lines = append(lines, fmt.Sprintf("Page %d of %d", r.Offset/r.Limit+1, pages))
	}
	if n := len(r.Records); n > 0 {
		lines = append(lines, fmt.Sprintf("Showing records %d-%d of %s", r.Offset+1, r.Offset+n, printer.Sprintf("%d", r.Total)))
	} else {
		lines = append(lines, fmt.Sprintf("Showing 0 of %s records", printer.Sprintf("%d", r.Total)))
	}
	if !r.Selection.All() {
		lines = append(lines, "Fields: "+strings.Join(r.Selection.Fields, ", "))
	}
	lines = append(lines, "")

	if len(r.Records) == 0 {
		lines = append(lines, "No records found matching the criteria.")
	}
	for i, rec := range r.Records {
		lines = append(lines, fmt.Sprintf("[%d] %s", r.Offset+i+1, summary(rec)))
		for _, name := range fieldOrder(rec, r.Selection) {
			if name == "display_name" || name == "name" {
				continue
			}
			lines = append(lines, fmt.Sprintf("    %s: %s", name, f.value(rec, fieldInfo(r.Schema, name), rec[name])))
		}
		lines = append(lines, "")
	}

	if r.Previous != "" || r.Next != "" {
		lines = append(lines, "Navigation:")
		if r.Previous != "" {
			lines = append(lines, "← Previous page: "+r.Previous)
		}
		if r.Next != "" {
			lines = append(lines, "→ Next page: "+r.Next)
		}
	}
	if r.Selection.Smart && len(r.Records) > 0 {
		lines = append(lines, "", smartNote(len(r.Selection.Fields), r.Selection.Available))
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// Browse renders the records fetched for an explicit id list, in the order
// the ids were requested, and names the ids that do not exist.
func (f *Formatter) Browse(requested []int, records []odoo.Record, schema odoo.Fields, sel Selection) string {
	byID := make(map[int]odoo.Record, len(records))
	for _, rec := range records {
		byID[rec.ID()] = rec
	}

	var missing []int
	for _, id := range requested {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}

	lines := []string{
		listRule,
		"Browse Results: " + f.model,
		listRule,
		"Requested IDs: " + joinIDs(requested),
		fmt.Sprintf("Found: %d of %d", len(requested)-len(missing), len(requested)),
	}
	if len(missing) > 0 {
		lines = append(lines, "Missing IDs: "+joinIDs(missing))
	}

	var b strings.Builder
	b.WriteString(strings.Join(lines, "\n"))
	seen := make(map[int]bool, len(requested))
	for _, id := range requested {
		rec, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		b.WriteString("\n\n")
		f.writeRecord(&b, rec, schema, sel)
	}
	if sel.Smart && len(byID) > 0 {
		b.WriteString("\n\n")
		b.WriteString(smartNote(len(sel.Fields), sel.Available))
	}
	return b.String()
}

// Count renders the number of records matching d.
func (f *Formatter) Count(d domain.Domain, n int) string {
	criteria := "All records"
	if len(d) > 0 {
		criteria = DescribeDomain(d)
	}
	return strings.Join([]string{
		listRule,
		"Count Results: " + f.model,
		listRule,
		"Search criteria: " + criteria,
		"Total count: " + printer.Sprintf("%d", n) + " record(s)",
	}, "\n")
}

// DescribeDomain renders d as space-separated terms, e.g.
// `| is_company = true name ilike "azure"`.
func DescribeDomain(d domain.Domain) string {
	if len(d) == 0 {
		return "All records"
	}
	parts := make([]string, 0, len(d))
	for _, t := range d {
		if !t.IsLeaf() {
			parts = append(parts, t.Operator)
			continue
		}
		value, err := json.Marshal(t.Leaf.Value)
		if err != nil {
			value = []byte(fmt.Sprint(t.Leaf.Value))
		}
		parts = append(parts, fmt.Sprintf("%s %s %s", t.Leaf.Field, t.Leaf.Operator, value))
	}
	return strings.Join(parts, " ")
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}
