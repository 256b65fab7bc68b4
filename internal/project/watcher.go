// Package project watches a workspace's recipe file for changes and
// re-parses it, the piece of "Recipe/workspace detection" internal/lsp
// itself doesn't do: lsp.Manager matches an already-loaded recipe set
// against buffer paths one buffer at a time, but nothing reloads that
// set when `.pepperd/lsp.toml` itself changes on disk. Grounded on the
// teacher's internal/config/watcher (fsnotify-driven config reload)
// generalized from "watch every settings layer's file" to "watch one
// recipe file", since this repo's TOML settings and recipe file are
// the same document (internal/config.Settings.LSP).
package project

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/pepperd/internal/config"
)

// Watcher re-parses path and delivers the resulting recipe set
// whenever the file changes. It must be driven from the single
// dispatch thread via a non-blocking read of Changes; the fsnotify
// goroutine underneath only ever sends, never touches editor state.
type Watcher struct {
	fsw     *fsnotify.Watcher
	path    string
	changes chan []config.Recipe
}

// NewWatcher starts watching the directory containing path (fsnotify
// watches directories, not files, so an editor's atomic
// write-to-temp-then-rename save is still observed). Returns an error
// if that directory doesn't exist, which callers treat as "no recipe
// file to watch yet" rather than fatal.
func NewWatcher(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{fsw: fsw, path: path, changes: make(chan []config.Recipe, 1)}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	base := filepath.Base(w.path)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) reload() {
	settings, err := config.Load(w.path)
	if err != nil {
		return
	}
	select {
	case w.changes <- settings.LSP:
	default:
		// Drop the stale pending reload in favor of the fresh one; the
		// dispatcher only ever wants the latest recipe set, not a queue
		// of every intermediate edit.
		select {
		case <-w.changes:
		default:
		}
		w.changes <- settings.LSP
	}
}

// Changes delivers each freshly re-parsed recipe set. Reads from it
// must never block the dispatch thread for more than one non-blocking
// select.
func (w *Watcher) Changes() <-chan []config.Recipe {
	return w.changes
}

// Close stops the underlying fsnotify watch.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
