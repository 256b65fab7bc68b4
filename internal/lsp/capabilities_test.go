package lsp

import (
	"testing"

	arenajson "github.com/dshills/pepperd/internal/protocol/json"
)

func TestParseServerCapabilitiesObjectSync(t *testing.T) {
	var a arenajson.Arena
	a.Reset([]byte(`{
		"capabilities": {
			"textDocumentSync": {"openClose": true, "change": 2, "save": {"includeText": true}},
			"completionProvider": {"triggerCharacters": [".", ":"]},
			"hoverProvider": true,
			"definitionProvider": true,
			"renameProvider": {"prepareProvider": true}
		}
	}`))

	sc := parseServerCapabilities(&a)
	if !sc.OpenClose || sc.Change != SyncIncremental {
		t.Fatalf("sync = %+v", sc)
	}
	if sc.Save != SyncFull || !sc.SaveIncludesText {
		t.Fatalf("save = %+v", sc)
	}
	if len(sc.CompletionTriggers) != 2 || sc.CompletionTriggers[1] != ":" {
		t.Fatalf("triggers = %v", sc.CompletionTriggers)
	}
	if !sc.Hover || !sc.Definition {
		t.Fatalf("hover/definition = %+v", sc)
	}
	if !sc.RenameEnabled || !sc.RenamePrepare {
		t.Fatalf("rename = %+v", sc)
	}
}

func TestParseServerCapabilitiesNumericSyncAndBoolRename(t *testing.T) {
	var a arenajson.Arena
	a.Reset([]byte(`{"capabilities": {"textDocumentSync": 1, "renameProvider": true}}`))

	sc := parseServerCapabilities(&a)
	if !sc.OpenClose || sc.Change != SyncFull {
		t.Fatalf("sync = %+v", sc)
	}
	if !sc.RenameEnabled || sc.RenamePrepare {
		t.Fatalf("rename = %+v", sc)
	}
}

func TestParseServerCapabilitiesMissingDegradesToOff(t *testing.T) {
	var a arenajson.Arena
	a.Reset([]byte(`{"capabilities": {}}`))

	sc := parseServerCapabilities(&a)
	if sc.OpenClose || sc.Definition || sc.RenameEnabled {
		t.Fatalf("sc = %+v, want all off", sc)
	}
}

func TestDefaultClientCapabilitiesJSONIsValidObject(t *testing.T) {
	data := defaultClientCapabilitiesJSON()
	var a arenajson.Arena
	a.Reset(data)
	if !a.Get("textDocument.synchronization.didSave").Bool() {
		t.Fatalf("didSave missing: %s", data)
	}
	if !a.Get("textDocument.rename.prepareSupport").Bool() {
		t.Fatalf("prepareSupport missing: %s", data)
	}
}
