// Package api holds the types shared by every layer of the connector: the
// error taxonomy returned to protocol callers, the permission operations and
// the tool metadata consumed by the MCP server.
//
// The package imports nothing from internal/ so that the backend connection,
// the access controller and the dispatcher can all depend on it without
// cycles.
//
// # Errors
//
// Every failure that reaches a caller is one of ConnectionError,
// AuthenticationError, PermissionError, ValidationError, TimeoutError or
// NotFoundError. Use the IsX helpers (built on errors.As) rather than type
// switches so wrapped errors are classified correctly, and ErrorPayload to
// build the {"error", "type"} body sent back over MCP.
package api
