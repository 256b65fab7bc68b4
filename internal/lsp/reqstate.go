package lsp

import "github.com/dshills/pepperd/internal/engine/buffer"

// RequestState tags the one user-initiated request a Client may have
// in flight at a time, per spec.md §4.8's "at most one in-flight
// user-initiated request per client" — completions, hover,
// signatureHelp and every document-sync notification bypass this
// machine entirely and may proceed concurrently with it.
type RequestState int

const (
	StateIdle RequestState = iota
	StateDefinition
	StateReferences
	StateRename
	StateFinishRename
	StateCodeAction
	StateFinishCodeAction
	StateDocumentSymbols
	StateFinishDocumentSymbols
	StateWorkspaceSymbols
	StateFormatting
)

func (s RequestState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateDefinition:
		return "Definition"
	case StateReferences:
		return "References"
	case StateRename:
		return "Rename"
	case StateFinishRename:
		return "FinishRename"
	case StateCodeAction:
		return "CodeAction"
	case StateFinishCodeAction:
		return "FinishCodeAction"
	case StateDocumentSymbols:
		return "DocumentSymbols"
	case StateFinishDocumentSymbols:
		return "FinishDocumentSymbols"
	case StateWorkspaceSymbols:
		return "WorkspaceSymbols"
	case StateFormatting:
		return "Formatting"
	default:
		return "Unknown"
	}
}

// bufferView names the client-side view a DocumentSymbols request was
// issued from, so FinishDocumentSymbols knows which view to navigate
// once a symbol is picked. Kept as a plain handle pair rather than
// importing internal/editor (not a dependency of this package);
// internal/editor supplies the concrete value through Host.
type bufferView struct {
	Client uint8
	Buffer buffer.Handle
}

// position is this package's copy of an LSP Position (zero-based line,
// UTF-16-code-unit character), distinct from bufpos.Position (byte
// column). spec.md does not mandate a UTF-16 conversion layer and the
// retrieval pack supplies none, so this driver treats a buffer's byte
// column as the LSP character offset directly — exact for ASCII
// content, the one acknowledged simplification recorded in DESIGN.md.
type position struct {
	Line      int
	Character int
}

// requestInfo carries the state-specific payload spec.md names for
// References{context_len, auto_close}, Rename{buf,pos},
// DocumentSymbols{view} and Formatting{buf}; fields the current State
// doesn't use are simply left zero.
type requestInfo struct {
	state RequestState

	buf        buffer.Handle // Rename, Formatting, References (origin)
	pos        position      // Rename target position
	contextLen int           // References
	autoClose  bool          // References
	view       bufferView    // DocumentSymbols / FinishDocumentSymbols
}
