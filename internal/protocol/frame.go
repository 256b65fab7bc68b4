package protocol

import "encoding/binary"

// lengthPrefixSize is the size of the u32 big-endian record length
// prefix every frame carries.
const lengthPrefixSize = 4

// maxFrameLen bounds a single record so a corrupt or hostile length
// prefix cannot make the caller allocate unbounded memory.
const maxFrameLen = 16 << 20

// Frame prepends payload's length as a u32 big-endian header, ready to
// hand to platform.Request{Kind: WriteToClient}.
func Frame(payload []byte) []byte {
	out := make([]byte, lengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(out, uint32(len(payload)))
	copy(out[lengthPrefixSize:], payload)
	return out
}

// DecodeStatus reports whether DecodeFrame found a complete record.
type DecodeStatus int

const (
	// Complete means frame holds a full record and consumed bytes of
	// buf should be dropped by the caller.
	Complete DecodeStatus = iota
	// InsufficientData means buf does not yet hold a full record; the
	// caller should retry once more bytes have arrived.
	InsufficientData
	// InvalidData means the length prefix is out of bounds; the caller
	// should close the connection.
	InvalidData
)

// DecodeFrame extracts the first complete length-prefixed record from
// buf, if any.
func DecodeFrame(buf []byte) (payload []byte, consumed int, status DecodeStatus) {
	if len(buf) < lengthPrefixSize {
		return nil, 0, InsufficientData
	}
	n := binary.BigEndian.Uint32(buf)
	if n > maxFrameLen {
		return nil, 0, InvalidData
	}
	total := lengthPrefixSize + int(n)
	if len(buf) < total {
		return nil, 0, InsufficientData
	}
	return buf[lengthPrefixSize:total], total, Complete
}
