// Package domain models record filters ("domains") as a small AST.
//
// A domain is a list of terms in prefix (Polish) notation: logical operators
// "&", "|" and "!" followed by their operands, and leaves of the form
// (field, operator, value). Consecutive terms without an explicit operator are
// implicitly and-ed. Two independent parsers build the same AST, one for JSON
// (`[["is_company","=",true]]`) and one for the domain-literal notation
// (`[('is_company','=',True)]`).
package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Logical operators.
const (
	OpAnd = "&"
	OpOr  = "|"
	OpNot = "!"
)

// Term is either a logical operator or a Leaf. Exactly one of Operator and
// Leaf is set.
type Term struct {
	Operator string
	Leaf     *Leaf
}

// Leaf is a single (field, operator, value) condition.
type Leaf struct {
	Field    string
	Operator string
	Value    interface{}
}

// Domain is a validated list of terms. The empty domain matches every record.
type Domain []Term

// Cond builds a leaf term.
func Cond(field, operator string, value interface{}) Term {
	return Term{Leaf: &Leaf{Field: field, Operator: operator, Value: normalizeValue(value)}}
}

// Logical builds an operator term.
func Logical(op string) Term {
	return Term{Operator: op}
}

// IsLeaf reports whether t is a condition rather than an operator.
func (t Term) IsLeaf() bool {
	return t.Leaf != nil
}

// Wire returns the representation sent to the backend: operators as strings
// and leaves as three-element lists.
func (d Domain) Wire() []interface{} {
	out := make([]interface{}, 0, len(d))
	for _, t := range d {
		if t.IsLeaf() {
			out = append(out, []interface{}{t.Leaf.Field, t.Leaf.Operator, t.Leaf.Value})
			continue
		}
		out = append(out, t.Operator)
	}
	return out
}

// String renders the domain as compact JSON, which Parse accepts.
func (d Domain) String() string {
	b, err := json.Marshal(d.Wire())
	if err != nil {
		return fmt.Sprintf("%v", d.Wire())
	}
	return string(b)
}

// Fields returns the field names referenced by the domain's leaves in order
// of first appearance.
func (d Domain) Fields() []string {
	seen := make(map[string]bool)
	var fields []string
	for _, t := range d {
		if !t.IsLeaf() || seen[t.Leaf.Field] {
			continue
		}
		seen[t.Leaf.Field] = true
		fields = append(fields, t.Leaf.Field)
	}
	return fields
}

// Parse accepts either notation. JSON is tried first; when both parsers
// reject the input the domain-literal error is returned because it names the
// offending fragment more precisely for hand-written filters.
func Parse(input string) (Domain, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Domain{}, nil
	}
	if d, err := ParseJSON(trimmed); err == nil {
		return d, nil
	}
	return ParseLiteral(trimmed)
}

// FromValue converts an already decoded value, as found in tool arguments,
// into a Domain. Strings are parsed with Parse; lists are taken as the wire
// form.
func FromValue(v interface{}) (Domain, error) {
	switch value := v.(type) {
	case nil:
		return Domain{}, nil
	case string:
		return Parse(value)
	case Domain:
		if err := value.Validate(); err != nil {
			return nil, err
		}
		return value, nil
	case []interface{}:
		return fromList(value)
	default:
		return nil, validationError(fmt.Sprintf("%v", v), "domain must be a list of conditions")
	}
}

// fromList builds a Domain from the decoded wire form shared by both parsers.
func fromList(items []interface{}) (Domain, error) {
	d := make(Domain, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			d = append(d, Logical(v))
		case []interface{}:
			if len(v) != 3 {
				return nil, validationError(fragmentOf(v), fmt.Sprintf("condition must have 3 elements, got %d", len(v)))
			}
			field, ok := v[0].(string)
			if !ok || field == "" {
				return nil, validationError(fragmentOf(v), "condition field must be a non-empty string")
			}
			op, ok := v[1].(string)
			if !ok {
				return nil, validationError(fragmentOf(v), "condition operator must be a string")
			}
			d = append(d, Cond(field, op, v[2]))
		default:
			return nil, validationError(fragmentOf(item), "expected a condition or a logical operator")
		}
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func fragmentOf(v interface{}) string {
	b, err := json.Marshal(normalizeValue(v))
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
