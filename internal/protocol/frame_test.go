package protocol

import (
	"bytes"
	"testing"
)

func TestFrameDecodeRoundTrip(t *testing.T) {
	framed := Frame([]byte("hello"))
	payload, consumed, status := DecodeFrame(framed)
	if status != Complete {
		t.Fatalf("status = %v, want Complete", status)
	}
	if consumed != len(framed) {
		t.Fatalf("consumed = %d, want %d", consumed, len(framed))
	}
	if !bytes.Equal(payload, []byte("hello")) {
		t.Fatalf("payload = %q", payload)
	}
}

func TestDecodeFrameInsufficientDataOnShortPrefix(t *testing.T) {
	_, _, status := DecodeFrame([]byte{0, 0})
	if status != InsufficientData {
		t.Fatalf("status = %v, want InsufficientData", status)
	}
}

func TestDecodeFrameInsufficientDataOnShortBody(t *testing.T) {
	framed := Frame([]byte("hello world"))
	_, _, status := DecodeFrame(framed[:6])
	if status != InsufficientData {
		t.Fatalf("status = %v, want InsufficientData", status)
	}
}

func TestDecodeFrameInvalidDataOnHugeLength(t *testing.T) {
	buf := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	_, _, status := DecodeFrame(buf)
	if status != InvalidData {
		t.Fatalf("status = %v, want InvalidData", status)
	}
}

func TestDecodeFrameLeavesTrailingBytesForNextRecord(t *testing.T) {
	buf := append(Frame([]byte("a")), Frame([]byte("bb"))...)
	first, consumed, status := DecodeFrame(buf)
	if status != Complete || string(first) != "a" {
		t.Fatalf("first = %q, status = %v", first, status)
	}
	second, _, status := DecodeFrame(buf[consumed:])
	if status != Complete || string(second) != "bb" {
		t.Fatalf("second = %q, status = %v", second, status)
	}
}
