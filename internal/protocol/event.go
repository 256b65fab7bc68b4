package protocol

import (
	"encoding/binary"

	"github.com/dshills/pepperd/internal/input/key"
)

// ClientEventKind tags a ClientEvent's variant.
type ClientEventKind uint8

const (
	KeyEvent ClientEventKind = iota
	ResizeEvent
	CommandEvent
	OpenBufferEvent
)

// ClientEvent is one event a TTY client sends to the server, per
// spec.md §4.7's `ClientEvent ∈ {Key(h,key), Resize(h,w,h),
// Command(h,string), OpenBuffer(h,path)}`. Handle is always the
// sending client's own handle, echoed back by the server's first-byte
// handshake (spec §6).
type ClientEvent struct {
	Kind    ClientEventKind
	Handle  byte
	Key     key.Key
	Width   uint16
	Height  uint16
	Command string
	Path    string
}

// Encode serializes e as a framed record.
func (e ClientEvent) Encode() []byte {
	var body []byte
	body = append(body, byte(e.Kind), e.Handle)
	switch e.Kind {
	case KeyEvent:
		body = append(body, encodeKey(e.Key)...)
	case ResizeEvent:
		body = append(body, byte(e.Width>>8), byte(e.Width), byte(e.Height>>8), byte(e.Height))
	case CommandEvent:
		body = append(body, encodeString(e.Command)...)
	case OpenBufferEvent:
		body = append(body, encodeString(e.Path)...)
	}
	return Frame(body)
}

// DecodeClientEvent parses one ClientEvent from a payload already
// extracted by DecodeFrame (not a raw, still-length-prefixed buffer).
func DecodeClientEvent(payload []byte) (ClientEvent, DecodeStatus) {
	if len(payload) < 2 {
		return ClientEvent{}, InvalidData
	}
	kind := ClientEventKind(payload[0])
	handle := payload[1]
	rest := payload[2:]

	switch kind {
	case KeyEvent:
		k, ok := decodeKey(rest)
		if !ok {
			return ClientEvent{}, InvalidData
		}
		return ClientEvent{Kind: kind, Handle: handle, Key: k}, Complete
	case ResizeEvent:
		if len(rest) != 4 {
			return ClientEvent{}, InvalidData
		}
		w := uint16(rest[0])<<8 | uint16(rest[1])
		h := uint16(rest[2])<<8 | uint16(rest[3])
		return ClientEvent{Kind: kind, Handle: handle, Width: w, Height: h}, Complete
	case CommandEvent:
		s, ok := decodeString(rest)
		if !ok {
			return ClientEvent{}, InvalidData
		}
		return ClientEvent{Kind: kind, Handle: handle, Command: s}, Complete
	case OpenBufferEvent:
		s, ok := decodeString(rest)
		if !ok {
			return ClientEvent{}, InvalidData
		}
		return ClientEvent{Kind: kind, Handle: handle, Path: s}, Complete
	default:
		return ClientEvent{}, InvalidData
	}
}

// ServerEventKind tags a ServerEvent's variant.
type ServerEventKind uint8

const (
	DisplayEvent ServerEventKind = iota
	SuspendEvent
	CommandOutputEvent
	RequestEvent
)

// RequestKind names what a ServerEvent{Kind: RequestEvent} is asking
// the client to do. The original Rust source's ClientEvent::Request
// payload type lived in an events.rs module not present in this
// retrieval pack, and the one call site we can see
// (application.rs's `Ok(ServerEvent::Request(_)) => ()`) ignores the
// payload outright — an open question resolved here: the only
// client-local capability the spec names that the server cannot
// satisfy itself is the read-line's Ctrl-Y clipboard paste (§4.4), so
// RequestClipboardPaste is the one variant wired end to end; the kind
// is still a byte-sized enum so future request kinds slot in without
// a wire format change.
type RequestKind uint8

const (
	RequestClipboardPaste RequestKind = iota
)

// ServerEvent is one event the server sends to a TTY client, per
// spec.md §4.7's `ServerEvent ∈ {Display(bytes), Suspend,
// CommandOutput(string), Request(kind)}`.
type ServerEvent struct {
	Kind    ServerEventKind
	Display []byte
	Output  string
	Request RequestKind
}

// Encode serializes e as a framed record.
func (e ServerEvent) Encode() []byte {
	var body []byte
	body = append(body, byte(e.Kind))
	switch e.Kind {
	case DisplayEvent:
		body = append(body, e.Display...)
	case SuspendEvent:
		// no payload
	case CommandOutputEvent:
		body = append(body, encodeString(e.Output)...)
	case RequestEvent:
		body = append(body, byte(e.Request))
	}
	return Frame(body)
}

// DecodeServerEvent parses one ServerEvent from a payload already
// extracted by DecodeFrame.
func DecodeServerEvent(payload []byte) (ServerEvent, DecodeStatus) {
	if len(payload) < 1 {
		return ServerEvent{}, InvalidData
	}
	kind := ServerEventKind(payload[0])
	rest := payload[1:]

	switch kind {
	case DisplayEvent:
		return ServerEvent{Kind: kind, Display: append([]byte(nil), rest...)}, Complete
	case SuspendEvent:
		return ServerEvent{Kind: kind}, Complete
	case CommandOutputEvent:
		s, ok := decodeString(rest)
		if !ok {
			return ServerEvent{}, InvalidData
		}
		return ServerEvent{Kind: kind, Output: s}, Complete
	case RequestEvent:
		if len(rest) != 1 {
			return ServerEvent{}, InvalidData
		}
		return ServerEvent{Kind: kind, Request: RequestKind(rest[0])}, Complete
	default:
		return ServerEvent{}, InvalidData
	}
}

// encodeKey/decodeKey give key.Key a compact wire form: one byte Code,
// four bytes Rune (as uint32, big-endian), one flags byte.
func encodeKey(k key.Key) []byte {
	out := make([]byte, 6)
	out[0] = byte(k.Code)
	binary.BigEndian.PutUint32(out[1:5], uint32(k.Rune))
	var flags byte
	if k.Ctrl {
		flags |= 1
	}
	if k.Alt {
		flags |= 2
	}
	if k.Shift {
		flags |= 4
	}
	out[5] = flags
	return out
}

func decodeKey(buf []byte) (key.Key, bool) {
	if len(buf) != 6 {
		return key.Key{}, false
	}
	flags := buf[5]
	return key.Key{
		Code:  key.Code(buf[0]),
		Rune:  rune(binary.BigEndian.Uint32(buf[1:5])),
		Ctrl:  flags&1 != 0,
		Alt:   flags&2 != 0,
		Shift: flags&4 != 0,
	}, true
}

// encodeString prefixes s with a u32 big-endian byte length.
func encodeString(s string) []byte {
	out := make([]byte, 4+len(s))
	binary.BigEndian.PutUint32(out, uint32(len(s)))
	copy(out[4:], s)
	return out
}

func decodeString(buf []byte) (string, bool) {
	if len(buf) < 4 {
		return "", false
	}
	n := binary.BigEndian.Uint32(buf)
	if uint64(n) > uint64(len(buf)-4) {
		return "", false
	}
	return string(buf[4 : 4+n]), true
}
