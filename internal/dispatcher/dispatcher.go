// Package dispatcher drives the editor core's single tick loop
// described by spec.md §4.9: wait for ready events, translate and
// apply each one in order, flush the requests that produced, and
// repeat until a client asks to quit or every client has disconnected.
// Grounded on the teacher's internal/event/dispatch.SyncDispatcher for
// its panic-recovery-around-one-unit-of-work shape and plain counter
// stats, generalized from "one handler per event" to "one fixed
// event-kind switch per event" since the core has a closed set of
// event kinds rather than a pluggable handler registry, and from
// goroutine-safe atomics to plain fields since there is exactly one
// thread.
package dispatcher

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/dshills/pepperd/internal/editor"
	"github.com/dshills/pepperd/internal/input/mode"
	"github.com/dshills/pepperd/internal/platform"
	"github.com/dshills/pepperd/internal/project"
	"github.com/dshills/pepperd/internal/protocol"
)

// Stats counts what one Loop has processed, the single-threaded
// counterpart to the teacher's SyncDispatcher atomic counters.
type Stats struct {
	Ticks     uint64
	Events    uint64
	Panics    uint64
	ClientsIn uint64
}

// Loop owns the platform multiplexer and the editor core State it
// drives. It is not safe for concurrent use, matching Platform's own
// single-thread contract.
type Loop struct {
	platform *platform.Platform
	state    *editor.State
	log      hclog.Logger

	idleTimeoutMS int
	recvBufs      map[platform.Handle][]byte
	connected     map[platform.Handle]bool
	everConnected bool
	project       *project.Watcher

	Stats Stats
}

// WatchProject installs a recipe-file watcher whose reloads are picked
// up once per tick; nil disables watching (the default if WatchProject
// is never called).
func (l *Loop) WatchProject(w *project.Watcher) {
	l.project = w
}

// New builds a Loop. A nil log runs silently (hclog.NewNullLogger).
func New(p *platform.Platform, s *editor.State, log hclog.Logger, idleTimeoutMS int) *Loop {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Loop{
		platform:      p,
		state:         s,
		log:           log,
		idleTimeoutMS: idleTimeoutMS,
		recvBufs:      make(map[platform.Handle][]byte),
		connected:     make(map[platform.Handle]bool),
	}
}

// Run blocks, ticking until a client's quit-all reaches Platform.Flush
// or every connected client has disconnected after at least one
// connected, per spec's "the server runs until told to stop or it has
// nothing left to serve" framing.
func (l *Loop) Run() error {
	for {
		events, err := l.platform.Wait(l.idleTimeoutMS)
		if err != nil {
			return fmt.Errorf("dispatcher: wait: %w", err)
		}
		l.Stats.Ticks++

		for _, ev := range events {
			l.dispatch(ev)
		}

		if l.project != nil {
			select {
			case recipes := <-l.project.Changes():
				l.state.ReloadRecipes(recipes)
				l.log.Info("reloaded LSP recipes", "count", len(recipes))
			default:
			}
		}

		for _, req := range l.state.DrainPlatformRequests() {
			l.platform.Submit(req)
		}
		for _, req := range l.state.RenderFrames() {
			l.platform.Submit(req)
		}

		if quit := l.platform.Flush(); quit {
			l.platform.Close()
			return nil
		}
		if l.everConnected && len(l.connected) == 0 {
			l.platform.Submit(platform.Request{Kind: platform.Quit})
			l.platform.Flush()
			l.platform.Close()
			return nil
		}
	}
}

// dispatch applies one event, recovering a panic from it the same way
// the teacher's Executor.Execute recovers one handler's panic: the
// core keeps ticking for every other client rather than taking the
// whole process down over one bad event.
func (l *Loop) dispatch(ev platform.Event) {
	defer func() {
		if r := recover(); r != nil {
			l.Stats.Panics++
			l.log.Error("recovered panic handling event", "kind", ev.Kind, "panic", r)
		}
	}()
	l.Stats.Events++

	switch ev.Kind {
	case platform.ClientAccepted:
		l.connected[ev.Client] = true
		l.everConnected = true
		l.Stats.ClientsIn++
		l.state.AddClient(ev.Client)
		// spec.md §6: the first byte server->client after accept is the
		// client's own handle, ahead of any framed event.
		l.platform.Submit(platform.Request{Kind: platform.WriteToClient, Client: ev.Client, Buf: []byte{byte(ev.Client)}})
		l.log.Debug("client connected", "client", ev.Client)
	case platform.ClientReadable:
		l.handleClientReadable(ev)
	case platform.ClientClosed:
		delete(l.connected, ev.Client)
		delete(l.recvBufs, ev.Client)
		l.state.RemoveClient(ev.Client)
		l.log.Debug("client disconnected", "client", ev.Client)
	case platform.ProcessStdout, platform.ProcessExited:
		l.state.LSP().HandleEvent(ev)
		if ev.Kind == platform.ProcessExited {
			l.log.Debug("language server exited", "process", ev.Process, "code", ev.Code)
		}
	case platform.ProcessStderr:
		l.log.Warn("language server stderr", "process", ev.Process, "bytes", len(ev.Data))
	case platform.Idle:
		// nothing of its own to do; Run's render-and-drain step still
		// picks up any status-bar write, LSP stdin write, or changed
		// frame queued between ticks.
	}
}

// handleClientReadable reassembles length-prefixed records out of a
// (possibly partial, possibly multi-record) read and feeds each
// complete one through decodeAndApply, mirroring lsp.Client.Feed's own
// accumulate-then-drain loop over the same frame format.
func (l *Loop) handleClientReadable(ev platform.Event) {
	buf := append(l.recvBufs[ev.Client], ev.Data...)
	for {
		payload, consumed, status := protocol.DecodeFrame(buf)
		switch status {
		case protocol.Complete:
			buf = buf[consumed:]
			l.decodeAndApply(ev.Client, payload)
		case protocol.InsufficientData:
			l.recvBufs[ev.Client] = buf
			return
		default: // protocol.InvalidData
			l.platform.Submit(platform.Request{Kind: platform.CloseClient, Client: ev.Client})
			delete(l.recvBufs, ev.Client)
			return
		}
	}
}

func (l *Loop) decodeAndApply(h platform.Handle, payload []byte) {
	cev, status := protocol.DecodeClientEvent(payload)
	if status != protocol.Complete {
		l.platform.Submit(platform.Request{Kind: platform.CloseClient, Client: h})
		return
	}

	out := l.state.HandleClientEvent(h, cev)
	if out.Message != "" {
		l.platform.Submit(platform.Request{
			Kind:   platform.WriteToClient,
			Client: h,
			Buf:    protocol.ServerEvent{Kind: protocol.CommandOutputEvent, Output: out.Message}.Encode(),
		})
	}

	switch out.Signal {
	case mode.Quit:
		l.platform.Submit(platform.Request{Kind: platform.CloseClient, Client: h})
	case mode.QuitAll:
		l.platform.Submit(platform.Request{Kind: platform.Quit})
	}
}
