package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-odoo/internal/api"
)

func intPtr(n int) *int { return &n }

func TestResolveLimit(t *testing.T) {
	tests := []struct {
		name     string
		limit    *int
		expected int
		invalid  bool
	}{
		{"absent", nil, 10, false},
		{"zero", intPtr(0), 0, false},
		{"within range", intPtr(25), 25, false},
		{"at max", intPtr(100), 100, false},
		{"above max", intPtr(101), 100, false},
		{"negative", intPtr(-1), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveLimit(tt.limit, 10, 100)
			if tt.invalid {
				assert.True(t, api.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveOffset(t *testing.T) {
	got, err := resolveOffset(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	_, err = resolveOffset(intPtr(-5))
	assert.True(t, api.IsValidationError(err))
}

func TestOptionalInt(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected int
		invalid  bool
	}{
		{"json number", float64(7), 7, false},
		{"int", 7, 7, false},
		{"numeric string", " 7 ", 7, false},
		{"fraction", 7.5, 0, true},
		{"word", "seven", 0, true},
		{"bool", true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toolArgs{"limit": tt.value}.optionalInt("limit")
			if tt.invalid {
				assert.True(t, api.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.expected, *got)
		})
	}

	got, err := toolArgs{}.optionalInt("limit")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFieldsArgument(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected []string
		invalid  bool
	}{
		{"absent", nil, nil, false},
		{"list", []interface{}{"name", "email"}, []string{"name", "email"}, false},
		{"comma string", "name, email", []string{"name", "email"}, false},
		{"json string", `["name","email"]`, []string{"name", "email"}, false},
		{"mixed list", []interface{}{"name", 3}, nil, true},
		{"number", 3, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toolArgs{"fields": tt.value}.fields()
			if tt.invalid {
				assert.True(t, api.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestValuesArgument(t *testing.T) {
	values, err := toolArgs{"values": map[string]interface{}{"name": "X"}}.values()
	require.NoError(t, err)
	assert.Equal(t, "X", values["name"])

	values, err = toolArgs{"values": `{"name": "Y"}`}.values()
	require.NoError(t, err)
	assert.Equal(t, "Y", values["name"])

	for _, bad := range []interface{}{nil, map[string]interface{}{}, "not json", []interface{}{"x"}} {
		_, err := toolArgs{"values": bad}.values()
		assert.True(t, api.IsValidationError(err), "values %v", bad)
	}
}

func TestModelArgument(t *testing.T) {
	model, err := toolArgs{"model": " res.partner "}.model()
	require.NoError(t, err)
	assert.Equal(t, "res.partner", model)

	for _, bad := range []interface{}{nil, "", "res partner", "1res", 42} {
		_, err := toolArgs{"model": bad}.model()
		assert.True(t, api.IsValidationError(err), "model %v", bad)
	}
}

func TestValidateOrder(t *testing.T) {
	for _, ok := range []string{"", "name", "name asc", "name DESC, id desc", "partner_id.name"} {
		assert.NoError(t, validateOrder(ok), ok)
	}
	for _, bad := range []string{"name; drop table", "name asc desc", "(select 1)"} {
		assert.Error(t, validateOrder(bad), bad)
	}
}
