// Package server exposes the backend through MCP tools and odoo:// resource
// templates.
//
// Every request runs the same pipeline: arguments or the resource URI are
// validated, the access controller authorizes the model operation, the
// backend connection executes it and the formatter renders the answer.
// Failures at any stage end the request with a structured error payload
// of the form {"error": message, "type": kind}. Nothing is retried here;
// the connection owns its own single retry for transient failures.
//
// Each request is assigned a request id and produces one audit log line.
package server
