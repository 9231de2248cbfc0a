// Package uri parses and builds odoo:// resource URIs.
//
// Grammar:
//
//	odoo://<model>/record/<id>
//	odoo://<model>/search[?domain=..&fields=a,b&limit=N&offset=N&order=..]
//	odoo://<model>/browse?ids=1,2,3[&fields=a,b]
//	odoo://<model>/count[?domain=..]
//	odoo://<model>/fields
package uri

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/giantswarm/mcp-odoo/internal/api"
	"github.com/giantswarm/mcp-odoo/internal/domain"
)

// Scheme is the URI scheme handled by this package.
const Scheme = "odoo://"

// Operation is the resource operation named in the URI path.
type Operation string

const (
	OpRecord Operation = "record"
	OpSearch Operation = "search"
	OpBrowse Operation = "browse"
	OpCount  Operation = "count"
	OpFields Operation = "fields"
)

var (
	uriPattern   = regexp.MustCompile(`^odoo://([^/]+)/([^/?]+)(?:/([^/?]*))?(?:\?(.*))?$`)
	modelPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.]*$`)
)

// Request is a parsed resource URI. Limit and Offset are nil when absent.
type Request struct {
	Model     string
	Operation Operation
	RecordID  int
	IDs       []int
	Domain    domain.Domain
	Fields    []string
	Limit     *int
	Offset    *int
	Order     string
}

// ValidModelName reports whether name is a syntactically valid model name.
func ValidModelName(name string) bool {
	return modelPattern.MatchString(name)
}

// ValidOperation reports whether op is a known resource operation.
func ValidOperation(op Operation) bool {
	switch op {
	case OpRecord, OpSearch, OpBrowse, OpCount, OpFields:
		return true
	}
	return false
}

// Parse resolves raw into a Request. Every failure is an *api.ValidationError.
func Parse(raw string) (*Request, error) {
	if !strings.HasPrefix(raw, Scheme) {
		return nil, invalid("", fmt.Sprintf("URI must start with '%s', got: %s", Scheme, raw))
	}

	m := uriPattern.FindStringSubmatchIndex(raw)
	if m == nil {
		return nil, invalid("", "invalid URI format: "+raw)
	}
	group := func(i int) string {
		if m[2*i] < 0 {
			return ""
		}
		return raw[m[2*i]:m[2*i+1]]
	}
	model, opStr, idStr, query := group(1), group(2), group(3), group(4)
	hasID := m[6] >= 0

	if !ValidModelName(model) {
		return nil, invalid("model", "invalid model name: "+model)
	}

	req := &Request{Model: model, Operation: Operation(opStr)}
	if !ValidOperation(req.Operation) {
		return nil, invalid("operation", "invalid operation: "+opStr)
	}

	switch {
	case req.Operation == OpRecord:
		if idStr == "" {
			return nil, invalid("record_id", "record operation requires an ID")
		}
		id, err := parsePositive(idStr)
		if err != nil {
			return nil, invalid("record_id", "invalid record ID: "+idStr)
		}
		req.RecordID = id
	case hasID:
		return nil, invalid("record_id", fmt.Sprintf("operation '%s' does not take a record ID", opStr))
	}

	params, err := parseQuery(query)
	if err != nil {
		return nil, err
	}

	if v, ok := params["domain"]; ok {
		d, err := domain.Parse(v)
		if err != nil {
			return nil, err
		}
		req.Domain = d
	}
	req.Fields = splitFields(params["fields"])
	req.Order = strings.TrimSpace(params["order"])

	if req.Limit, err = optionalInt(params, "limit"); err != nil {
		return nil, err
	}
	if req.Offset, err = optionalInt(params, "offset"); err != nil {
		return nil, err
	}

	if v := params["ids"]; v != "" {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := parsePositive(part)
			if err != nil {
				return nil, invalid("ids", "invalid ID in ids parameter: "+part)
			}
			req.IDs = append(req.IDs, id)
		}
	}
	if req.Operation == OpBrowse && len(req.IDs) == 0 {
		return nil, invalid("ids", "browse operation requires 'ids' parameter")
	}

	return req, nil
}

// Build renders r as a URI that Parse maps back to an equal Request.
func Build(r *Request) (string, error) {
	if !ValidModelName(r.Model) {
		return "", invalid("model", "invalid model name: "+r.Model)
	}
	if !ValidOperation(r.Operation) {
		return "", invalid("operation", "invalid operation: "+string(r.Operation))
	}

	var b strings.Builder
	b.WriteString(Scheme)
	b.WriteString(r.Model)
	b.WriteByte('/')
	b.WriteString(string(r.Operation))
	if r.Operation == OpRecord {
		if r.RecordID <= 0 {
			return "", invalid("record_id", "record operation requires an ID")
		}
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(r.RecordID))
	}

	var params []string
	add := func(key, value string) {
		params = append(params, key+"="+url.QueryEscape(value))
	}
	if len(r.Domain) > 0 {
		add("domain", r.Domain.String())
	}
	if len(r.Fields) > 0 {
		add("fields", strings.Join(r.Fields, ","))
	}
	if r.Limit != nil {
		add("limit", strconv.Itoa(*r.Limit))
	}
	if r.Offset != nil {
		add("offset", strconv.Itoa(*r.Offset))
	}
	if r.Order != "" {
		add("order", r.Order)
	}
	if len(r.IDs) > 0 {
		ids := make([]string, len(r.IDs))
		for i, id := range r.IDs {
			ids[i] = strconv.Itoa(id)
		}
		add("ids", strings.Join(ids, ","))
	}

	if len(params) > 0 {
		b.WriteByte('?')
		b.WriteString(strings.Join(params, "&"))
	}
	return b.String(), nil
}

// RecordURI returns the URI of a single record.
func RecordURI(model string, id int) string {
	return fmt.Sprintf("%s%s/record/%d", Scheme, model, id)
}

// WithPage returns a copy of r positioned at offset with the given limit.
func (r *Request) WithPage(offset, limit int) *Request {
	page := *r
	page.Offset = &offset
	page.Limit = &limit
	return &page
}

func parseQuery(query string) (map[string]string, error) {
	params := make(map[string]string)
	if query == "" {
		return params, nil
	}
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		k, err := url.QueryUnescape(key)
		if err != nil {
			return nil, invalid("query", "invalid query parameter: "+key)
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			// Domain literals may contain a bare '%'.
			v = value
		}
		params[k] = v
	}
	return params, nil
}

func splitFields(value string) []string {
	if value == "" {
		return nil
	}
	var fields []string
	for _, f := range strings.Split(value, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

func optionalInt(params map[string]string, name string) (*int, error) {
	value, ok := params[name]
	if !ok || value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return nil, invalid(name, fmt.Sprintf("%s must be an integer, got: %s", name, value))
	}
	if n < 0 {
		return nil, invalid(name, fmt.Sprintf("%s must not be negative", name))
	}
	return &n, nil
}

func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return n, nil
}

func invalid(field, message string) error {
	return &api.ValidationError{Field: field, Message: message}
}
