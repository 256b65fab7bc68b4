package lsp

import (
	"net/url"
	"path/filepath"
	"strings"
)

// fileURI converts an absolute POSIX path to a file:// URI, a
// simplified copy of the teacher's protocol.go FilePathToURI with the
// Windows-drive-letter branch dropped: C7's platform abstraction is
// epoll-only (Linux), so this driver never runs on a POSIX-path-free
// filesystem.
func fileURI(path string) string {
	if path == "" {
		return ""
	}
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	u := &url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// uriToPath converts a file:// URI back to a filesystem path.
func uriToPath(uri string) string {
	if uri == "" {
		return ""
	}
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return uri
	}
	return filepath.FromSlash(u.Path)
}

// detectLanguageID is a small subset of the teacher's
// DetectLanguageID, covering the languages the rest of this retrieval
// pack actually builds (Go, Rust — the original_source's own
// language) plus a few common scripting/markup extensions; anything
// else falls back to "plaintext" exactly as LSP expects for an
// unrecognized file.
func detectLanguageID(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return "go"
	case ".rs":
		return "rust"
	case ".py":
		return "python"
	case ".js":
		return "javascript"
	case ".ts":
		return "typescript"
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	case ".yaml", ".yml":
		return "yaml"
	case ".md", ".markdown":
		return "markdown"
	case ".sh", ".bash":
		return "shellscript"
	default:
		return "plaintext"
	}
}
