package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// ParseJSON parses a domain written as JSON, for example
// `["|", ["name","ilike","acme"], ["is_company","=",true]]`.
func ParseJSON(input string) (Domain, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(input)))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, validationError(snippet(input, jsonErrorOffset(err)), fmt.Sprintf("malformed JSON: %v", err))
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, validationError(input, "unexpected data after the domain")
	}

	items, ok := raw.([]interface{})
	if !ok {
		return nil, validationError(input, "domain must be a list")
	}
	return fromList(items)
}

func jsonErrorOffset(err error) int {
	if syntaxErr, ok := err.(*json.SyntaxError); ok {
		return int(syntaxErr.Offset)
	}
	return 0
}
