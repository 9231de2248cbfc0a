// Package app provides application bootstrap and lifecycle management for
// mcp-odoo.
//
// # Bootstrap
//
// NewApplication performs the startup sequence:
//
//  1. Logging is initialized on stderr so stdout stays free for the stdio
//     transport.
//  2. Configuration is loaded from compiled defaults, an optional YAML file
//     and the environment. Missing credentials only produce a warning; the
//     server still starts and every request reports an authentication error.
//  3. Services are built: the backend connection, the access controller
//     (optionally narrowed by a local policy file), the tool provider and
//     the MCP server.
//
// # Running
//
// Run attempts an initial authentication, starts the policy file watcher
// and serves MCP requests until the context is cancelled, SIGINT or SIGTERM
// arrives, or the transport ends. Shutdown stops the server, the watcher and
// the connection in that order.
//
// # Diagnostics
//
// Check authenticates against the backend and prints the server version and
// the permission matrix of every enabled model.
package app
