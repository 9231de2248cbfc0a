// Package access decides which models and operations the connector may use.
//
// The Controller keeps an immutable snapshot of the permission matrix. The
// snapshot is loaded from the backend's REST permission endpoints, narrowed
// by an optional local policy file, and replaced wholesale when it expires.
// Readers never block on each other; at most one refresh runs at a time.
//
// Every check fails closed: a model absent from the snapshot is denied, and
// when no unexpired snapshot can be obtained every operation is denied with
// the reason "no active permission data available".
package access
