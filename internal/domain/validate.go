package domain

import (
	"fmt"

	"github.com/giantswarm/mcp-odoo/internal/api"
)

var comparisonOperators = map[string]bool{
	"=": true, "!=": true, "<>": true,
	">": true, ">=": true, "<": true, "<=": true,
	"=?": true,
	"like": true, "not like": true, "ilike": true, "not ilike": true,
	"=like": true, "=ilike": true,
	"in": true, "not in": true,
	"child_of": true, "parent_of": true,
	"any": true, "not any": true,
}

// IsComparisonOperator reports whether op is accepted in a leaf.
func IsComparisonOperator(op string) bool {
	return comparisonOperators[op]
}

// Validate checks leaf operators and the arity of the prefix operators.
// Terms are scanned right to left counting available operands.
func (d Domain) Validate() error {
	operands := 0
	for i := len(d) - 1; i >= 0; i-- {
		t := d[i]
		if t.IsLeaf() {
			if t.Leaf.Field == "" {
				return validationError(Domain{t}.String(), "condition field must be a non-empty string")
			}
			if !comparisonOperators[t.Leaf.Operator] {
				return validationError(Domain{t}.String(), fmt.Sprintf("unknown operator %q", t.Leaf.Operator))
			}
			operands++
			continue
		}

		switch t.Operator {
		case OpNot:
			if operands < 1 {
				return validationError(t.Operator, "operator '!' expects 1 operand")
			}
		case OpAnd, OpOr:
			if operands < 2 {
				return validationError(t.Operator, fmt.Sprintf("operator '%s' expects 2 operands", t.Operator))
			}
			operands--
		default:
			return validationError(t.Operator, fmt.Sprintf("unknown logical operator %q", t.Operator))
		}
	}
	return nil
}

func validationError(fragment, message string) error {
	return &api.ValidationError{Field: "domain", Fragment: fragment, Message: "invalid domain: " + message}
}
