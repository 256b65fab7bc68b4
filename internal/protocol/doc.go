// Package protocol implements the length-prefixed client↔server wire
// framing of spec.md §4.7: ClientEvent (Key/Resize/Command/OpenBuffer)
// sent by a TTY client, ServerEvent (Display/Suspend/CommandOutput/
// Request) sent back. Every record is a u32 big-endian length prefix
// followed by a one-byte tag and tag-specific fields; Decode reports
// InsufficientData when fewer bytes than the prefix promises have
// arrived yet (the caller should wait for more platform.ClientReadable
// data) and InvalidData when the tag or fields are malformed (caller
// closes the offending connection, per spec: "panic on the client;
// ignore on the server and close the offender").
//
// This framing is unrelated to the Content-Length-header JSON-RPC
// framing internal/lsp speaks to language servers over process pipes —
// two different wires for two different peers, grounded respectively
// on spec.md §4.7 and the teacher's internal/lsp/transport.go.
package protocol
