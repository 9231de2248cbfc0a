package odoo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizer_Message(t *testing.T) {
	s := NewSanitizer("top-secret-key", "")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "  ", want: "An error occurred"},
		{name: "invalid field in leaf", in: "Invalid field 'foo_bar' in leaf ('foo_bar', '=', 1)", want: "Invalid field 'foo_bar' in search criteria"},
		{name: "connection refused", in: "dial tcp 10.0.0.1:8069: connection refused", want: "Cannot connect to Odoo server"},
		{name: "record id", in: "Record 42 does not exist", want: "Record ID 42 not found"},
		{
			name: "strips traceback",
			in:   "Traceback (most recent call last):\n  File \"/opt/odoo/models.py\", line 12, in write\nsomething unexpected happened in the model layer",
			want: "Something unexpected happened in the model layer",
		},
		{name: "too short after cleaning", in: "odoo.sql_db: x", want: genericErrorMessage},
		{name: "redacts secrets", in: "request with key top-secret-key failed upstream", want: "Request with key *** failed upstream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Message(tt.in))
		})
	}
}

func TestSanitizer_Fault(t *testing.T) {
	s := NewSanitizer()

	tests := []struct {
		name  string
		fault string
		want  string
	}{
		{name: "access denied", fault: "odoo.exceptions.AccessDenied: Access Denied", want: "Access denied: Invalid credentials or insufficient permissions"},
		{name: "unknown model", fault: "Object res.nothing doesn't exist", want: "The requested resource does not exist"},
		{name: "invalid field", fault: "ValueError: Invalid field 'bogus' on model 'res.partner'", want: "Invalid field 'bogus' in request"},
		{name: "missing", fault: "odoo.exceptions.MissingError: Record does not exist or has been deleted.", want: "The requested record was not found"},
		{
			name:  "validation detail",
			fault: "Traceback ...\nodoo.exceptions.ValidationError: The VAT number is not valid for this country",
			want:  "Validation error: The VAT number is not valid for this country",
		},
		{name: "user error", fault: "UserError('You cannot delete a posted entry')", want: "You cannot delete a posted entry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Fault(tt.fault))
		})
	}
}

func TestSanitizer_NilIsSafe(t *testing.T) {
	var s *Sanitizer
	assert.Equal(t, "unchanged", s.Redact("unchanged"))
}
