package uri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-odoo/internal/api"
	"github.com/giantswarm/mcp-odoo/internal/domain"
)

func intPtr(n int) *int { return &n }

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, r *Request)
	}{
		{
			name:  "record",
			input: "odoo://res.partner/record/42",
			check: func(t *testing.T, r *Request) {
				assert.Equal(t, "res.partner", r.Model)
				assert.Equal(t, OpRecord, r.Operation)
				assert.Equal(t, 42, r.RecordID)
			},
		},
		{
			name:  "search with literal domain",
			input: "odoo://res.partner/search?domain=[('is_company','=',True)]&fields=name,email&limit=5&offset=10&order=name asc",
			check: func(t *testing.T, r *Request) {
				assert.Equal(t, OpSearch, r.Operation)
				assert.Equal(t, domain.Domain{domain.Cond("is_company", "=", true)}, r.Domain)
				assert.Equal(t, []string{"name", "email"}, r.Fields)
				assert.Equal(t, intPtr(5), r.Limit)
				assert.Equal(t, intPtr(10), r.Offset)
				assert.Equal(t, "name asc", r.Order)
			},
		},
		{
			name:  "search with encoded JSON domain",
			input: "odoo://res.partner/search?domain=%5B%5B%22is_company%22%2C%22%3D%22%2Ctrue%5D%5D",
			check: func(t *testing.T, r *Request) {
				assert.Equal(t, domain.Domain{domain.Cond("is_company", "=", true)}, r.Domain)
				assert.Nil(t, r.Limit)
			},
		},
		{
			name:  "browse",
			input: "odoo://product.product/browse?ids=1, 2,3",
			check: func(t *testing.T, r *Request) {
				assert.Equal(t, []int{1, 2, 3}, r.IDs)
			},
		},
		{
			name:  "count without domain",
			input: "odoo://sale.order/count",
			check: func(t *testing.T, r *Request) {
				assert.Equal(t, OpCount, r.Operation)
				assert.Nil(t, r.Domain)
			},
		},
		{
			name:  "fields",
			input: "odoo://res.partner/fields",
			check: func(t *testing.T, r *Request) {
				assert.Equal(t, OpFields, r.Operation)
			},
		},
		{
			name:  "zero limit is allowed",
			input: "odoo://res.partner/search?limit=0",
			check: func(t *testing.T, r *Request) {
				assert.Equal(t, intPtr(0), r.Limit)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse(tt.input)
			require.NoError(t, err)
			tt.check(t, r)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"wrong scheme", "http://res.partner/record/1"},
		{"no operation", "odoo://res.partner"},
		{"bad model", "odoo://1partner/search"},
		{"bad model chars", "odoo://res-partner/search"},
		{"unknown operation", "odoo://res.partner/delete"},
		{"record without id", "odoo://res.partner/record"},
		{"record with zero id", "odoo://res.partner/record/0"},
		{"record with text id", "odoo://res.partner/record/abc"},
		{"id on search", "odoo://res.partner/search/5"},
		{"browse without ids", "odoo://res.partner/browse"},
		{"browse with bad id", "odoo://res.partner/browse?ids=1,x"},
		{"negative limit", "odoo://res.partner/search?limit=-1"},
		{"negative offset", "odoo://res.partner/search?offset=-5"},
		{"text limit", "odoo://res.partner/search?limit=ten"},
		{"malformed domain", "odoo://res.partner/search?domain=[[bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse(tt.input)
			require.Error(t, err)
			assert.Nil(t, r)
			assert.True(t, api.IsValidationError(err), "got %T", err)
		})
	}
}

func TestBuild_RoundTrip(t *testing.T) {
	d, err := domain.Parse(`['|', ('name', 'ilike', 'a&b'), ('amount', '>=', 10.5)]`)
	require.NoError(t, err)

	requests := []*Request{
		{Model: "res.partner", Operation: OpRecord, RecordID: 7},
		{Model: "res.partner", Operation: OpSearch, Domain: d, Fields: []string{"name", "email"}, Limit: intPtr(0), Offset: intPtr(20), Order: "name desc, id"},
		{Model: "res.partner", Operation: OpBrowse, IDs: []int{3, 1, 2}, Fields: []string{"name"}},
		{Model: "account.move", Operation: OpCount, Domain: d},
		{Model: "res.partner", Operation: OpFields},
	}

	for _, want := range requests {
		raw, err := Build(want)
		require.NoError(t, err)

		got, err := Parse(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestBuild_Invalid(t *testing.T) {
	_, err := Build(&Request{Model: "res.partner", Operation: OpRecord})
	assert.True(t, api.IsValidationError(err))

	_, err = Build(&Request{Model: "bad model", Operation: OpSearch})
	assert.True(t, api.IsValidationError(err))
}

func TestWithPage(t *testing.T) {
	base := &Request{Model: "res.partner", Operation: OpSearch, Limit: intPtr(10)}
	next := base.WithPage(10, 10)

	raw, err := Build(next)
	require.NoError(t, err)
	assert.Equal(t, "odoo://res.partner/search?limit=10&offset=10", raw)
	assert.Nil(t, base.Offset, "original request is not modified")
	assert.Equal(t, "odoo://res.partner/record/5", RecordURI("res.partner", 5))
}
