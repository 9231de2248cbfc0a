// Package odoo owns the connection to the ERP backend.
//
// A Connection authenticates once, keeps the resulting Session and reuses it
// for every call. Record operations go over XML-RPC to the
// /mcp/xmlrpc/{db,common,object} endpoints; API key validation and the
// model permission matrix come from the REST endpoints under /mcp/.
//
// All backend calls on one Connection are serialized by a mutex and carry the
// configured timeout. Transport failures and expired sessions cause one
// re-authentication and one retry; timeouts are surfaced without retrying.
// Backend faults are translated into the error types of internal/api with
// their messages sanitized so that credentials and server internals never
// reach the caller.
package odoo
