package lsp

import (
	"strconv"
	"strings"

	"github.com/dshills/pepperd/internal/protocol"
)

// encodeMessage wraps body (a complete JSON-RPC object) with the LSP
// base-protocol Content-Length header, per spec.md §4.9's "JSON-RPC 2.0
// over stdio with Content-Length: N\r\n\r\n framing", grounded on the
// teacher's transport.go send().
func encodeMessage(body []byte) []byte {
	header := "Content-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n"
	out := make([]byte, 0, len(header)+len(body))
	out = append(out, header...)
	out = append(out, body...)
	return out
}

// decodeMessage extracts one Content-Length-framed JSON body from buf,
// reusing internal/protocol's DecodeStatus vocabulary (Complete,
// InsufficientData, InvalidData) so both this package's wire and C8's
// binary client<->server wire report framing state the same way, even
// though the two framings share nothing else. Unlike
// protocol.DecodeFrame, headers are text and variable-length, so this
// walks buf by hand rather than reading a fixed-size prefix.
func decodeMessage(buf []byte) (body []byte, consumed int, status protocol.DecodeStatus) {
	headerEnd := indexHeaderEnd(buf)
	if headerEnd < 0 {
		return nil, 0, protocol.InsufficientData
	}

	contentLength := -1
	for _, line := range strings.Split(string(buf[:headerEnd]), "\r\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(name), "content-length") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return nil, 0, protocol.InvalidData
		}
		contentLength = n
	}
	if contentLength < 0 {
		return nil, 0, protocol.InvalidData
	}

	bodyStart := headerEnd + 4 // len("\r\n\r\n")
	bodyEnd := bodyStart + contentLength
	if len(buf) < bodyEnd {
		return nil, 0, protocol.InsufficientData
	}
	return buf[bodyStart:bodyEnd], bodyEnd, protocol.Complete
}

// indexHeaderEnd finds the offset of the blank line ending the header
// block, or -1 if buf doesn't yet contain one.
func indexHeaderEnd(buf []byte) int {
	for i := 0; i+3 < len(buf); i++ {
		if buf[i] == '\r' && buf[i+1] == '\n' && buf[i+2] == '\r' && buf[i+3] == '\n' {
			return i
		}
	}
	return -1
}
