// Package formatting renders backend records as compact, hierarchical text
// sized for a language model's context window.
//
// When the caller names no fields, SelectFields picks a bounded "smart"
// subset: identity fields first, then the remaining fields ranked by an
// importance score. The AllFields sentinel bypasses ranking. Values are
// rendered by the field's declared kind and type, never by inspecting the
// Go type of the value alone, and output is deterministic for identical
// input.
package formatting
