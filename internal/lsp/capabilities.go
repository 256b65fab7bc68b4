package lsp

import (
	"encoding/json"

	arenajson "github.com/dshills/pepperd/internal/protocol/json"
)

// SyncKind mirrors LSP's TextDocumentSyncKind, the closed set spec.md
// §4.8 names for both change and save sync: {None, Full, Incremental}.
type SyncKind int

const (
	SyncNone SyncKind = iota
	SyncFull
	SyncIncremental
)

// ServerCapabilities is the subset spec.md §4.8 negotiates at
// initialize time, parsed from the server's InitializeResult via
// internal/protocol/json rather than a full LSP capability struct —
// only the fields this driver's request state machine and document
// sync actually branch on are kept.
type ServerCapabilities struct {
	OpenClose           bool
	Change              SyncKind
	Save                SyncKind
	SaveIncludesText    bool
	CompletionTriggers  []string
	Hover               bool
	SignatureTriggers   []string
	Definition          bool
	References          bool
	DocumentSymbol      bool
	CodeAction          bool
	Formatting          bool
	RenameEnabled       bool
	RenamePrepare       bool
	WorkspaceSymbol     bool
}

// parseServerCapabilities reads caps out of an initialize response's
// "capabilities" object, every FromJson-style accessor total per
// spec's "helper FromJson conversions are total and never panic" —
// a server omitting or malforming a capability degrades it to "off"
// rather than erroring the handshake.
func parseServerCapabilities(raw *arenajson.Arena) ServerCapabilities {
	var sc ServerCapabilities

	sync := raw.Get("capabilities.textDocumentSync")
	switch sync.Kind() {
	case arenajson.KindObject:
		sc.OpenClose = sync.Get("openClose").Bool()
		sc.Change = SyncKind(sync.Get("change").Int())
		save := sync.Get("save")
		switch save.Kind() {
		case arenajson.KindBool:
			if save.Bool() {
				sc.Save = SyncFull
			}
		case arenajson.KindObject:
			sc.Save = SyncFull
			sc.SaveIncludesText = save.Get("includeText").Bool()
		}
	case arenajson.KindInteger, arenajson.KindFloat:
		sc.OpenClose = true
		sc.Change = SyncKind(sync.Int())
	}

	if cp := raw.Get("capabilities.completionProvider"); cp.Exists() {
		for _, v := range cp.Get("triggerCharacters").Array() {
			sc.CompletionTriggers = append(sc.CompletionTriggers, v.String())
		}
	}
	sc.Hover = raw.Get("capabilities.hoverProvider").Exists()
	if sh := raw.Get("capabilities.signatureHelpProvider"); sh.Exists() {
		for _, v := range sh.Get("triggerCharacters").Array() {
			sc.SignatureTriggers = append(sc.SignatureTriggers, v.String())
		}
	}
	sc.Definition = raw.Get("capabilities.definitionProvider").Exists()
	sc.References = raw.Get("capabilities.referencesProvider").Exists()
	sc.DocumentSymbol = raw.Get("capabilities.documentSymbolProvider").Exists()
	sc.CodeAction = raw.Get("capabilities.codeActionProvider").Exists()
	sc.Formatting = raw.Get("capabilities.documentFormattingProvider").Exists()
	sc.WorkspaceSymbol = raw.Get("capabilities.workspaceSymbolProvider").Exists()

	rename := raw.Get("capabilities.renameProvider")
	switch rename.Kind() {
	case arenajson.KindBool:
		sc.RenameEnabled = rename.Bool()
	case arenajson.KindObject:
		sc.RenameEnabled = true
		sc.RenamePrepare = rename.Get("prepareProvider").Bool()
	}

	return sc
}

// defaultClientCapabilitiesJSON returns the client-capabilities object
// sent with every initialize request, encoded once via encoding/json —
// see doc.go for why this one payload is a marshaled struct rather than
// built field-by-field with json.Set.
func defaultClientCapabilitiesJSON() []byte {
	type syncCaps struct {
		DidSave bool `json:"didSave"`
	}
	type completionItemCaps struct {
		SnippetSupport bool `json:"snippetSupport"`
	}
	type completionCaps struct {
		CompletionItem completionItemCaps `json:"completionItem"`
	}
	type renameCaps struct {
		PrepareSupport bool `json:"prepareSupport"`
	}
	type textDocumentCaps struct {
		Synchronization syncCaps       `json:"synchronization"`
		Completion      completionCaps `json:"completion"`
		Hover           struct{}       `json:"hover"`
		Definition      struct{}       `json:"definition"`
		References      struct{}      `json:"references"`
		DocumentSymbol  struct{}       `json:"documentSymbol"`
		CodeAction      struct{}       `json:"codeAction"`
		Formatting      struct{}       `json:"formatting"`
		Rename          renameCaps     `json:"rename"`
	}
	type workspaceCaps struct {
		Symbol struct{} `json:"symbol"`
	}
	caps := struct {
		TextDocument textDocumentCaps `json:"textDocument"`
		Workspace    workspaceCaps    `json:"workspace"`
	}{
		TextDocument: textDocumentCaps{
			Synchronization: syncCaps{DidSave: true},
			Completion:      completionCaps{CompletionItem: completionItemCaps{SnippetSupport: true}},
			Rename:          renameCaps{PrepareSupport: true},
		},
	}
	data, _ := json.Marshal(caps)
	return data
}
