package wal

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/CairnDB/cairn/pkg/common/crc"
)

var (
	// ErrFragmentTooLarge indicates a fragment payload that cannot be
	// described by the header's 2-byte length field. The fragmentation
	// loop caps fragments well below this bound, so seeing it means a
	// defect in the caller of emitPhysicalRecord, not an I/O fault.
	ErrFragmentTooLarge = errors.New("fragment exceeds 16-bit length field")

	// ErrBlockOverflow indicates an attempt to emit a physical record
	// past the current block boundary. Like ErrFragmentTooLarge it is
	// structurally unreachable through AddRecord.
	ErrBlockOverflow = errors.New("physical record would cross block boundary")
)

// Writer appends logical records to a SequentialFile in the block
// format described in the package documentation. It is not safe for
// concurrent use; callers serialize access.
//
// After AddRecord returns an error the writer must not be used again:
// the block-framing cursor advances past the space a failed record
// would have occupied, so it may no longer match the file's real
// contents. To keep appending, reopen the file and construct a new
// writer with NewWriterAtOffset using the file's actual length.
type Writer struct {
	dest        SequentialFile
	blockOffset int

	// typeCRC[t] is the checksum of the single byte t, precomputed so
	// each record's checksum starts from the type tag's contribution.
	typeCRC [MaxRecordType + 1]uint32

	metrics WriterMetrics
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithMetrics attaches a metrics implementation to the writer.
func WithMetrics(m WriterMetrics) WriterOption {
	return func(w *Writer) {
		if m != nil {
			w.metrics = m
		}
	}
}

// NewWriter creates a writer for an empty file.
func NewWriter(dest SequentialFile, opts ...WriterOption) *Writer {
	return NewWriterAtOffset(dest, 0, opts...)
}

// NewWriterAtOffset creates a writer that resumes appending to a file
// which already holds existingLength bytes of log data. The initial
// in-block offset is derived from the length so that framing stays
// aligned with the blocks already on disk.
func NewWriterAtOffset(dest SequentialFile, existingLength int64, opts ...WriterOption) *Writer {
	w := &Writer{
		dest:        dest,
		blockOffset: int(existingLength % BlockSize),
		metrics:     NewNoopWriterMetrics(),
	}
	for i := 0; i <= MaxRecordType; i++ {
		w.typeCRC[i] = crc.Value([]byte{byte(i)})
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// blockTrailer supplies the zero fill for block tails too small to
// hold another header; at most HeaderSize-1 bytes are ever needed.
var blockTrailer [HeaderSize - 1]byte

// AddRecord appends one logical record. The payload may be any length,
// including zero: an empty payload still produces one zero-length Full
// record. Success means every fragment was appended and flushed to the
// underlying file.
func (w *Writer) AddRecord(payload []byte) error {
	start := time.Now()
	ctx := context.Background()

	ptr := 0
	left := len(payload)
	begin := true
	fragments := 0
	padded := 0

	// Fragment the record as needed. Even an empty payload runs the
	// loop once to emit a single zero-length record.
	var err error
	for {
		leftover := BlockSize - w.blockOffset
		if leftover < HeaderSize {
			// Not enough room for a header; zero-fill the tail and
			// switch to a new block. A trailer write failure surfaces
			// through the next append, and the framing cursor must
			// advance regardless.
			if leftover > 0 {
				_ = w.dest.Append(blockTrailer[:leftover])
				padded += leftover
			}
			w.blockOffset = 0
		}

		// Invariant: at least HeaderSize bytes remain in the block.
		avail := BlockSize - w.blockOffset - HeaderSize
		fragLen := left
		if fragLen > avail {
			fragLen = avail
		}

		var recordType uint8
		end := left == fragLen
		switch {
		case begin && end:
			recordType = RecordTypeFull
		case begin:
			recordType = RecordTypeFirst
		case end:
			recordType = RecordTypeLast
		default:
			recordType = RecordTypeMiddle
		}

		err = w.emitPhysicalRecord(recordType, payload[ptr:ptr+fragLen])
		ptr += fragLen
		left -= fragLen
		begin = false
		fragments++

		if err != nil || left == 0 {
			break
		}
	}

	if padded > 0 {
		w.metrics.RecordPadding(ctx, int64(padded))
	}
	w.metrics.RecordAppend(ctx, time.Since(start), int64(len(payload)), fragments, err == nil)
	return err
}

// emitPhysicalRecord writes one header+payload unit. The payload must
// fit in the current block; the caller's avail computation guarantees
// it. The block offset advances by the record's full size whether or
// not the writes succeed.
func (w *Writer) emitPhysicalRecord(t uint8, p []byte) error {
	if len(p) > MaxPayloadSize {
		return fmt.Errorf("%w: %d bytes", ErrFragmentTooLarge, len(p))
	}
	if w.blockOffset+HeaderSize+len(p) > BlockSize {
		return fmt.Errorf("%w: offset %d, payload %d bytes", ErrBlockOverflow, w.blockOffset, len(p))
	}

	var header [HeaderSize]byte
	binary.LittleEndian.PutUint16(header[4:6], uint16(len(p)))
	header[6] = t

	// The checksum covers the type byte and the payload, and is masked
	// before storage.
	sum := crc.Mask(crc.Extend(w.typeCRC[t], p))
	binary.LittleEndian.PutUint32(header[0:4], sum)

	err := w.dest.Append(header[:])
	if err == nil {
		if err = w.dest.Append(p); err == nil {
			err = w.dest.Flush()
		}
	}

	w.blockOffset += HeaderSize + len(p)
	return err
}
