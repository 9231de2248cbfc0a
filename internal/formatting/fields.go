package formatting

import (
	"slices"
	"sort"
	"strings"

	"github.com/giantswarm/mcp-odoo/internal/odoo"
)

// AllFields is the field-list sentinel that selects every field the backend
// reports, without ranking or commentary.
const AllFields = "__all__"

// identityFields always lead a smart selection, in this order, when the
// model has them.
var identityFields = []string{"id", "display_name", "name"}

// omittedFields are bookkeeping fields never chosen by the smart selection.
var omittedFields = map[string]bool{
	"__last_update":              true,
	"write_date":                 true,
	"create_date":                true,
	"write_uid":                  true,
	"create_uid":                 true,
	"message_follower_ids":       true,
	"message_ids":                true,
	"message_main_attachment_id": true,
	"access_token":               true,
	"access_url":                 true,
}

var technicalPrefixes = []string{"_", "message_", "activity_", "website_message_"}

var (
	nameLike   = map[string]bool{"name": true, "display_name": true, "complete_name": true, "ref": true, "code": true, "default_code": true, "email": true, "title": true}
	statusLike = map[string]bool{"state": true, "status": true, "stage_id": true, "active": true, "type": true, "priority": true, "kanban_state": true}
)

// Selection is the outcome of field selection for one request.
type Selection struct {
	// Fields to request and render, in display order. Nil means every field.
	Fields []string
	// Smart is set when the fields were chosen by ranking.
	Smart bool
	// Available is the number of fields the schema reports.
	Available int
}

// All reports whether every field is selected.
func (s Selection) All() bool {
	return s.Fields == nil
}

// SelectFields resolves the caller's field list against schema. An empty
// list yields the smart selection, a list containing AllFields selects
// everything, and any other list is used as given with duplicates removed.
func SelectFields(schema odoo.Fields, requested []string, maxSmart int) Selection {
	if slices.Contains(requested, AllFields) {
		return Selection{Available: len(schema)}
	}
	if len(requested) == 0 {
		return Selection{Fields: SmartFields(schema, maxSmart), Smart: true, Available: len(schema)}
	}

	seen := make(map[string]bool, len(requested))
	fields := make([]string, 0, len(requested))
	for _, f := range requested {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		fields = append(fields, f)
	}
	return Selection{Fields: fields, Available: len(schema)}
}

// SmartFields returns identity fields followed by the highest-scoring
// remaining fields, at most limit in total. Identity fields are kept even when
// limit is smaller. Equal scores sort by name.
func SmartFields(schema odoo.Fields, limit int) []string {
	fields := []string{"id"}
	for _, name := range identityFields[1:] {
		if _, ok := schema[name]; ok {
			fields = append(fields, name)
		}
	}

	type candidate struct {
		name  string
		score int
	}
	var candidates []candidate
	for name, info := range schema {
		if slices.Contains(identityFields, name) || !eligible(info) {
			continue
		}
		candidates = append(candidates, candidate{name: name, score: importance(info)})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].name < candidates[j].name
	})

	for _, c := range candidates {
		if len(fields) >= limit {
			break
		}
		fields = append(fields, c.name)
	}
	return fields
}

// eligible reports whether a field may appear in a smart selection.
func eligible(info odoo.FieldInfo) bool {
	if omittedFields[info.Name] {
		return false
	}
	for _, prefix := range technicalPrefixes {
		if strings.HasPrefix(info.Name, prefix) {
			return false
		}
	}
	if info.IsBinary() {
		return false
	}
	switch info.Kind {
	case odoo.KindRelationMany:
		return false
	case odoo.KindComputed:
		if !info.Stored {
			return false
		}
	}
	return info.Required || info.Searchable
}

// importance scores a field; higher is shown first.
func importance(info odoo.FieldInfo) int {
	score := 0
	switch {
	case nameLike[info.Name] || strings.HasSuffix(info.Name, "_name"):
		score += 50
	case statusLike[info.Name] || strings.HasSuffix(info.Name, "_state") || strings.HasSuffix(info.Name, "_status"):
		score += 40
	}
	if info.Kind == odoo.KindRelationOne {
		score += 30
	}
	if info.Type == "monetary" || info.Type == "selection" {
		score += 15
	}
	if info.Required {
		score += 20
	}
	if info.Stored && info.Searchable {
		score += 10
	}
	return score
}
