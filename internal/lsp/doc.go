// Package lsp implements the LSP client driver (C9): per-language-server
// lifecycle, capability negotiation, a single in-flight user-request state
// machine, versioned-buffer document synchronization, diagnostics
// collection, and recipe-based auto-start — spec.md §4.8.
//
// It is grounded on the teacher's internal/lsp package (client.go's
// functional-options/status-enum idiom, transport.go's Content-Length
// JSON-RPC framing, protocol.go's LSP type vocabulary, document.go's
// versioned-document bookkeeping) but generalized from the teacher's
// goroutine/context-per-call model to the single-threaded model spec §5
// requires: there is no background read loop here. A server's stdout
// bytes arrive as internal/platform ProcessStdout events on the core
// thread; Client.Feed accumulates them and drains as many complete
// Content-Length-framed messages as are available before returning,
// synchronously, from that same tick.
//
// JSON handling follows spec.md §4.7/§4.8 literally: incoming messages
// are parsed into internal/protocol/json's tagged-variant arena (one
// per Client, Reset between messages — "a single arena-backed Json
// instance is reused per LSP client to minimize allocation"), and
// outgoing request bodies are assembled field-by-field with
// json.Set/SetRaw rather than marshaled from a request struct, matching
// spec's per-field patching style for requests built from several
// unrelated pieces of editor state (a buffer's path, a cursor position,
// a picker selection). The one exception is ClientCapabilities
// (capabilities.go): a large, constant, deeply nested structure built
// once at Client construction, which it is simpler and no less
// "assembled from editor state" to encoding/json-marshal whole and
// splice into the initialize params with SetRaw — the teacher's own
// protocol.go takes the same plain-struct approach for the capability
// tables specifically, while building per-request params dynamically.
package lsp
