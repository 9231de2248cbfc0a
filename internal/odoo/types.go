package odoo

import (
	"time"

	"github.com/giantswarm/mcp-odoo/internal/config"
)

// Record is a backend record keyed by field name. The schema is whatever
// FieldsGet reports at call time.
type Record map[string]interface{}

// ID returns the record id, or 0 when absent.
func (r Record) ID() int {
	id, _ := toInt(r["id"])
	return id
}

// SearchOptions controls pagination and ordering of a search.
// A zero Limit means no limit.
type SearchOptions struct {
	Limit  int
	Offset int
	Order  string
}

// Session is the authenticated handle to the backend.
type Session struct {
	UserID   int
	Database string
	Method   config.AuthMethod
	// Established is when authentication completed.
	Established time.Time
	// LastUsed is the time of the last successful call.
	LastUsed time.Time

	// secret is passed as the password argument of execute_kw: the API key
	// or the user's password.
	secret string
}

// VersionInfo is the answer of common.version.
type VersionInfo struct {
	ServerVersion   string
	ServerSerie     string
	ProtocolVersion int
}

// ModelInfo is one entry of the backend's enabled model list.
type ModelInfo struct {
	Model string `json:"model"`
	Name  string `json:"name"`
}

// ModelAccess is the backend's answer for one model's permissions.
type ModelAccess struct {
	Model      string          `json:"model"`
	Enabled    bool            `json:"enabled"`
	Operations map[string]bool `json:"operations"`
}
