package mock

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMethodCall(t *testing.T) {
	body := `<?xml version="1.0"?>
<methodCall>
  <methodName>execute_kw</methodName>
  <params>
    <param><value><string>odoo</string></value></param>
    <param><value><int>2</int></value></param>
    <param><value>untyped</value></param>
    <param><value><array><data>
      <value><array><data>
        <value><string>is_company</string></value>
        <value><string>=</string></value>
        <value><boolean>1</boolean></value>
      </data></array></value>
    </data></array></value></param>
    <param><value><struct>
      <member><name>limit</name><value><i4>5</i4></value></member>
      <member><name>ratio</name><value><double>0.5</double></value></member>
      <member><name>empty</name><value><nil/></value></member>
    </struct></value></param>
  </params>
</methodCall>`

	method, params, err := decodeMethodCall(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, "execute_kw", method)
	require.Len(t, params, 5)
	assert.Equal(t, "odoo", params[0])
	assert.Equal(t, int64(2), params[1])
	assert.Equal(t, "untyped", params[2])
	assert.Equal(t, []interface{}{[]interface{}{"is_company", "=", true}}, params[3])
	assert.Equal(t, map[string]interface{}{"limit": int64(5), "ratio": 0.5, "empty": nil}, params[4])
}

func TestDecodeMethodCall_MissingName(t *testing.T) {
	_, _, err := decodeMethodCall(strings.NewReader(`<methodCall><params/></methodCall>`))
	assert.Error(t, err)
}

func TestEncodeResponse(t *testing.T) {
	out := string(encodeResponse(map[string]interface{}{
		"b": []int{1, 2},
		"a": "x < y",
		"c": nil,
	}))

	assert.Contains(t, out, "<methodResponse><params><param>")
	assert.Contains(t, out, "<member><name>a</name><value><string>x &lt; y</string></value></member>")
	assert.Contains(t, out, "<value><int>1</int></value><value><int>2</int></value>")
	assert.Contains(t, out, "<name>c</name><value><boolean>0</boolean></value>")
	assert.Less(t, strings.Index(out, "<name>a</name>"), strings.Index(out, "<name>b</name>"))
}

func TestEncodeFault(t *testing.T) {
	out := string(encodeFault(1, "Access Denied"))
	assert.Contains(t, out, "<fault>")
	assert.Contains(t, out, "<name>faultString</name><value><string>Access Denied</string></value>")
	assert.Contains(t, out, "<name>faultCode</name><value><int>1</int></value>")
}

func TestCompileDomain(t *testing.T) {
	records := []map[string]interface{}{
		{"id": 1, "name": "Azure Interior", "is_company": true, "country_id": []interface{}{21, "Belgium"}},
		{"id": 2, "name": "Deco Addict", "is_company": true, "country_id": false},
		{"id": 3, "name": "Brandon Freeman", "is_company": false, "country_id": []interface{}{21, "Belgium"}},
	}

	tests := []struct {
		name   string
		domain []interface{}
		want   []int
	}{
		{name: "empty", domain: nil, want: []int{1, 2, 3}},
		{name: "leaf", domain: []interface{}{[]interface{}{"is_company", "=", true}}, want: []int{1, 2}},
		{name: "implicit and", domain: []interface{}{
			[]interface{}{"is_company", "=", true},
			[]interface{}{"country_id", "=", int64(21)},
		}, want: []int{1}},
		{name: "or", domain: []interface{}{
			"|",
			[]interface{}{"name", "ilike", "deco"},
			[]interface{}{"name", "ilike", "brandon"},
		}, want: []int{2, 3}},
		{name: "not", domain: []interface{}{"!", []interface{}{"is_company", "=", true}}, want: []int{3}},
		{name: "in", domain: []interface{}{[]interface{}{"id", "in", []interface{}{int64(1), int64(3)}}}, want: []int{1, 3}},
		{name: "unset", domain: []interface{}{[]interface{}{"country_id", "=", false}}, want: []int{2}},
		{name: "greater", domain: []interface{}{[]interface{}{"id", ">", int64(1)}}, want: []int{2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := compileDomain(tt.domain)
			var got []int
			for _, r := range records {
				if match(r) {
					got = append(got, r["id"].(int))
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
