// Package logging provides subsystem-tagged structured logging for mcp-odoo.
//
// It is a thin layer over log/slog. Every entry carries a subsystem attribute
// so that connection, access-control and dispatcher logs can be told apart:
//
//	logging.Init(logging.LevelInfo, os.Stderr)
//	logging.Info("Connection", "Authenticated as uid %d on %s", uid, db)
//	logging.Error("Access", err, "Permission refresh failed")
//
// # Output
//
// The stdio transport uses stdout for protocol frames, so logs must never be
// written there. Init defaults to os.Stderr when given a nil writer.
//
// # Audit lines
//
// Audit emits one INFO line per completed tool call or resource read with the
// request id, model, operation and outcome as attributes.
package logging
