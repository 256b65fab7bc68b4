package lsp

import (
	"github.com/dshills/pepperd/internal/config"
	"github.com/dshills/pepperd/internal/platform"
)

// Manager coordinates every recipe-matched language server, grounded
// on the teacher's Manager (manager.go) but stripped of its
// goroutine/mutex machinery: the whole core is single-threaded, so
// Manager is driven entirely by explicit calls from the dispatcher's
// tick loop rather than owning any background state of its own.
type Manager struct {
	host    Host
	recipes []*recipeState

	// byProcess indexes the running recipes by their spawned process
	// handle, populated once SpawnProcess's resulting ProcessExited/
	// ProcessStdout event echoes back a Tag this Manager recognizes.
	byProcess map[platform.Handle]*recipeState

	pendingSpawn []*recipeState // recipes whose SpawnProcess request has been queued but not yet confirmed by an event
}

// NewManager compiles recipes into recipeStates.
func NewManager(host Host, recipes []config.Recipe) *Manager {
	m := &Manager{host: host, byProcess: make(map[platform.Handle]*recipeState)}
	for _, cfg := range recipes {
		m.recipes = append(m.recipes, newRecipeState(cfg))
	}
	return m
}

// ReloadRecipes replaces the recipe set with recipes, for example after
// internal/project detects a workspace recipe file change. A recipe
// already running (matched by glob) is left untouched rather than
// restarted, so editing an unrelated line of `.pepperd/lsp.toml` never
// kills an already-spawned language server; a recipe whose glob
// disappeared from the new set is dropped unless it is running.
func (m *Manager) ReloadRecipes(recipes []config.Recipe) {
	next := make(map[string]config.Recipe, len(recipes))
	for _, cfg := range recipes {
		next[cfg.Glob] = cfg
	}

	var kept []*recipeState
	for _, r := range m.recipes {
		if r.running {
			kept = append(kept, r)
			delete(next, r.cfg.Glob)
			continue
		}
		if _, ok := next[r.cfg.Glob]; ok {
			kept = append(kept, r)
			delete(next, r.cfg.Glob)
		}
	}
	for _, cfg := range recipes {
		if _, ok := next[cfg.Glob]; ok {
			kept = append(kept, newRecipeState(cfg))
			delete(next, cfg.Glob)
		}
	}
	m.recipes = kept
}

// ClientForPath returns the running Client whose recipe matches path,
// if one is already started.
func (m *Manager) ClientForPath(path string) (*Client, bool) {
	for _, r := range m.recipes {
		if r.running && r.matches(path) && r.client != nil {
			return r.client, true
		}
	}
	return nil, false
}

// EnsureStarted finds the first recipe matching path that isn't
// already running (or pending) and returns the SpawnProcess request to
// enqueue for it, or nil if every matching recipe is already started
// or no recipe matches at all.
func (m *Manager) EnsureStarted(path string) *platform.Request {
	for _, r := range m.recipes {
		if !r.matches(path) {
			continue
		}
		if r.running || m.isPending(r) {
			continue
		}
		m.pendingSpawn = append(m.pendingSpawn, r)
		return &platform.Request{
			Kind:        platform.SpawnProcess,
			Command:     r.cfg.Command,
			Env:         r.cfg.Env,
			SpawnBufCap: 1 << 16,
			Tag:         r.spawnTag(),
		}
	}
	return nil
}

func (m *Manager) isPending(r *recipeState) bool {
	for _, p := range m.pendingSpawn {
		if p == r {
			return true
		}
	}
	return false
}

// HandleEvent routes a platform.Event carrying a Process handle back
// to the recipe that spawned it, using the Event.Tag echo rather than
// a handle the caller never otherwise learns (see internal/platform's
// Event.Tag doc comment for why this indirection exists).
func (m *Manager) HandleEvent(ev platform.Event) {
	switch ev.Kind {
	case platform.ProcessStdout:
		if c, ok := m.clientFor(ev); ok {
			c.Feed(ev.Data)
		}
	case platform.ProcessExited:
		m.handleExit(ev)
	}
}

func (m *Manager) clientFor(ev platform.Event) (*Client, bool) {
	if r, ok := m.byProcess[ev.Process]; ok {
		return r.client, r.client != nil
	}
	// not yet confirmed via a completed spawn; fall back to matching by
	// tag against the pending list, in case the first ProcessStdout byte
	// arrives before this Manager has recorded the handle (shouldn't
	// happen given Flush's ordering, but costs nothing to guard).
	for i, r := range m.pendingSpawn {
		if r.spawnTag() == ev.Tag {
			m.confirmSpawn(r, ev.Process)
			m.pendingSpawn = append(m.pendingSpawn[:i], m.pendingSpawn[i+1:]...)
			if r.client != nil {
				r.client.Feed(ev.Data)
			}
			return r.client, r.client != nil
		}
	}
	return nil, false
}

func (m *Manager) handleExit(ev platform.Event) {
	if r, ok := m.byProcess[ev.Process]; ok {
		r.running = false
		r.client = nil
		delete(m.byProcess, ev.Process)
		return
	}
	for i, r := range m.pendingSpawn {
		if r.spawnTag() == ev.Tag {
			m.pendingSpawn = append(m.pendingSpawn[:i], m.pendingSpawn[i+1:]...)
			return
		}
	}
}

// ConfirmSpawn records that recipe tag's SpawnProcess request resolved
// to handle, constructing its Client. The dispatcher calls this once
// per queued spawn, as soon as it can observe the resulting handle —
// in practice, on the first event (of any kind) carrying that Tag.
func (m *Manager) ConfirmSpawn(tag string, handle platform.Handle) {
	for i, r := range m.pendingSpawn {
		if r.spawnTag() == tag {
			m.confirmSpawn(r, handle)
			m.pendingSpawn = append(m.pendingSpawn[:i], m.pendingSpawn[i+1:]...)
			return
		}
	}
}

func (m *Manager) confirmSpawn(r *recipeState, handle platform.Handle) {
	tag := r.cfg.Glob
	if len(r.cfg.Command) > 0 {
		tag = r.cfg.Command[0]
	}
	r.running = true
	r.handle = handle
	r.client = NewClient(handle, WithHost(m.host), WithProjectRoot(r.cfg.Root), WithTag(tag))
	r.client.Initialize()
	m.byProcess[handle] = r
}

// DrainOutbound collects every running client's queued outbound
// messages as WriteToProcess requests, for the dispatcher to append to
// its own platform.Request batch alongside socket writes.
func (m *Manager) DrainOutbound() []platform.Request {
	var out []platform.Request
	for handle, r := range m.byProcess {
		if r.client == nil {
			continue
		}
		for _, msg := range r.client.DrainOutbox() {
			out = append(out, platform.Request{Kind: platform.WriteToProcess, Process: handle, Buf: msg})
		}
	}
	return out
}

// Clients returns every currently running client, for broadcasting a
// document-sync event (BufferLoad/Save/Close) to whichever clients
// have that buffer open.
func (m *Manager) Clients() []*Client {
	var out []*Client
	for _, r := range m.recipes {
		if r.running && r.client != nil {
			out = append(out, r.client)
		}
	}
	return out
}

// ClientsForPath returns the running clients whose recipe glob matches
// path, so a buffer event is only forwarded to the language server(s)
// actually responsible for that file type — broadcasting to every
// running client regardless of match would register, say, a .go file
// against a running rust-analyzer client's document-sync table.
func (m *Manager) ClientsForPath(path string) []*Client {
	var out []*Client
	for _, r := range m.recipes {
		if r.running && r.client != nil && r.matches(path) {
			out = append(out, r.client)
		}
	}
	return out
}
