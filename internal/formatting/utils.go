package formatting

import (
	"encoding/json"
	"fmt"
)

// PrettyJSON renders v as JSON indented by two spaces, falling back to the
// %v form when v cannot be marshalled.
func PrettyJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
