// Package wal implements the append-only, block-framed record format
// the storage engine uses to make mutations durable before they reach
// the indexed structures.
//
// The file is a contiguous byte stream framed into fixed 32 KiB
// blocks. Each block holds a sequence of physical records; a logical
// record that does not fit in the space remaining in the current block
// is split across blocks, with each fragment tagged by its position in
// the logical record. A record header never straddles a block
// boundary: when fewer than HeaderSize bytes remain in a block, the
// tail is zero-filled and framing continues in the next block.
package wal

const (
	// Record types. The values are part of the on-disk format and must
	// match any reader of these files.
	RecordTypeZero   = 0 // reserved so zero-filled regions decode as "no data"
	RecordTypeFull   = 1
	RecordTypeFirst  = 2
	RecordTypeMiddle = 3
	RecordTypeLast   = 4

	MaxRecordType = RecordTypeLast

	// BlockSize is the framing window over the byte stream.
	BlockSize = 32 * 1024

	// Header layout:
	// - CRC (4 bytes, little-endian, masked)
	// - Length (2 bytes, little-endian)
	// - Type (1 byte)
	HeaderSize = 7

	// MaxPayloadSize is the largest payload one physical record can
	// carry, bounded by the 2-byte length field.
	MaxPayloadSize = 65535
)
