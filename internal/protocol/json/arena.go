// Package json provides the tagged-variant JSON tree spec.md §4.7
// requires for LSP payloads — {Null, Bool, Integer, Float,
// String(interned), Array, Object(key→value map)} — backed by
// github.com/tidwall/gjson for read access and github.com/tidwall/sjson
// for building outgoing bodies, rather than a hand-rolled arena
// allocator: the teacher's own go.mod lists all three tidwall/*
// packages (gjson, sjson, match, pretty as sjson's indirect deps), and
// the pack consistently reaches for them over encoding/json trees when
// it wants cheap, allocation-light tagged access to ad hoc JSON.
package json

import (
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Kind tags a Value's variant, per spec's tagged-variant tree.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindString
	KindArray
	KindObject
)

// Value is a read-only view over one JSON node, wrapping a
// gjson.Result. Values are only valid for the lifetime of the Arena
// document they were read from.
type Value struct {
	r gjson.Result
}

// Kind classifies v.
func (v Value) Kind() Kind {
	switch v.r.Type {
	case gjson.Null:
		return KindNull
	case gjson.True, gjson.False:
		return KindBool
	case gjson.Number:
		if v.r.Num == float64(int64(v.r.Num)) {
			return KindInteger
		}
		return KindFloat
	case gjson.String:
		return KindString
	case gjson.JSON:
		if v.r.IsArray() {
			return KindArray
		}
		return KindObject
	default:
		return KindNull
	}
}

// Exists reports whether the path this Value came from resolved to
// anything at all, distinguishing "absent" from "present and null".
func (v Value) Exists() bool { return v.r.Exists() }

// Bool converts v; total, defaults to false for any non-bool Kind.
func (v Value) Bool() bool { return v.r.Bool() }

// Int converts v; total, defaults to 0 for any non-numeric Kind.
func (v Value) Int() int64 { return v.r.Int() }

// Float converts v; total, defaults to 0 for any non-numeric Kind.
func (v Value) Float() float64 { return v.r.Float() }

// String converts v to its string representation; total — for
// non-string kinds this is gjson's raw/printed form, never a panic,
// matching spec's "helper FromJson conversions are total and never
// panic".
func (v Value) String() string {
	if v.r.Type == gjson.String {
		return v.r.Str
	}
	return v.r.String()
}

// Array returns v's elements; empty (not nil-panicking) for a
// non-array Kind.
func (v Value) Array() []Value {
	raw := v.r.Array()
	out := make([]Value, len(raw))
	for i, r := range raw {
		out[i] = Value{r: r}
	}
	return out
}

// Object calls fn for every key/value pair if v is an object; a
// non-object Kind simply calls fn zero times.
func (v Value) Object(fn func(key string, val Value)) {
	v.r.ForEach(func(key, val gjson.Result) bool {
		fn(key.String(), Value{r: val})
		return true
	})
}

// Get resolves a dotted gjson path against v, e.g. "params.uri".
func (v Value) Get(path string) Value {
	return Value{r: v.r.Get(path)}
}

// Raw returns the underlying raw JSON text for this node.
func (v Value) Raw() string { return v.r.Raw }

// Arena wraps one JSON document's raw bytes, reused across Get calls
// per spec's "a single arena-backed Json instance is reused per LSP
// client to minimize allocation". gjson.Result slices reference the
// original byte slice directly, so Reset only needs to swap the
// pointer, not deep-copy.
type Arena struct {
	raw []byte
}

// Reset loads a new document into the arena, replacing any previous
// content.
func (a *Arena) Reset(raw []byte) {
	a.raw = raw
}

// Root returns the document root as a Value.
func (a *Arena) Root() Value {
	return Value{r: gjson.ParseBytes(a.raw)}
}

// Get resolves a dotted path against the arena's current document.
func (a *Arena) Get(path string) Value {
	return Value{r: gjson.GetBytes(a.raw, path)}
}

// Set returns a'.raw with path set to value, building the outgoing
// JSON-RPC body via sjson rather than marshaling a struct — matches
// spec's per-field patching style for LSP requests assembled from
// several unrelated pieces of editor state.
func Set(raw []byte, path string, value any) ([]byte, error) {
	return sjson.SetBytes(raw, path, value)
}

// SetRaw is Set for a value that is already valid JSON text (e.g. a
// nested object built by an earlier Set/SetRaw call).
func SetRaw(raw []byte, path string, rawValue string) ([]byte, error) {
	return sjson.SetRawBytes(raw, path, []byte(rawValue))
}

// Delete removes path from raw.
func Delete(raw []byte, path string) ([]byte, error) {
	return sjson.DeleteBytes(raw, path)
}

// QuoteKey escapes s for safe use as a dotted sjson path segment when
// a JSON object key itself contains ".", "*" or "?" (all gjson/sjson
// path metacharacters), by prefixing each with a backslash, gjson's
// documented escape convention.
func QuoteKey(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '.' || c == '*' || c == '?' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}

// Itoa is a convenience re-export so callers building sjson paths with
// numeric array indices don't need a separate strconv import.
func Itoa(i int) string { return strconv.Itoa(i) }
