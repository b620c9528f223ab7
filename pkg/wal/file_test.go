package wal

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
)

func TestFileSinkCreateWriteReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "000001.log")

	sink, err := CreateFileSink(path)
	if err != nil {
		t.Fatalf("CreateFileSink failed: %v", err)
	}

	w := NewWriter(sink)
	first := []byte("first session record")
	if err := w.AddRecord(first); err != nil {
		t.Fatalf("AddRecord failed: %v", err)
	}
	wantSize := int64(HeaderSize + len(first))
	if sink.Size() != wantSize {
		t.Errorf("Size = %d, want %d", sink.Size(), wantSize)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Resume in a second session.
	sink2, err := OpenFileSink(path)
	if err != nil {
		t.Fatalf("OpenFileSink failed: %v", err)
	}
	if sink2.Size() != wantSize {
		t.Fatalf("reopened Size = %d, want %d", sink2.Size(), wantSize)
	}

	w2 := NewWriterAtOffset(sink2, sink2.Size())
	second := []byte("second session record")
	if err := w2.AddRecord(second); err != nil {
		t.Fatalf("AddRecord after resume failed: %v", err)
	}
	if err := sink2.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Both sessions' records must parse out of the one stream.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	records := parseRecords(t, data, 0)
	logical := reassemble(t, records)
	if len(logical) != 2 {
		t.Fatalf("recovered %d records, want 2", len(logical))
	}
	if !bytes.Equal(logical[0], first) || !bytes.Equal(logical[1], second) {
		t.Error("recovered records do not match inputs")
	}
}

func TestFileSinkResumeMidBlockAlignment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "000002.log")

	sink, err := CreateFileSink(path)
	if err != nil {
		t.Fatalf("CreateFileSink failed: %v", err)
	}
	w := NewWriter(sink)

	// Spill into the second block, then resume and keep framing aligned.
	big := make([]byte, BlockSize+100-2*HeaderSize)
	if err := w.AddRecord(big); err != nil {
		t.Fatalf("AddRecord failed: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	sink2, err := OpenFileSink(path)
	if err != nil {
		t.Fatalf("OpenFileSink failed: %v", err)
	}
	w2 := NewWriterAtOffset(sink2, sink2.Size())
	if w2.blockOffset != int(sink2.Size()%BlockSize) {
		t.Errorf("resume blockOffset = %d, want %d", w2.blockOffset, sink2.Size()%BlockSize)
	}
	if err := w2.AddRecord([]byte("tail")); err != nil {
		t.Fatalf("AddRecord after resume failed: %v", err)
	}
	if err := sink2.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	logical := reassemble(t, parseRecords(t, data, 0))
	if len(logical) != 2 || !bytes.Equal(logical[1], []byte("tail")) {
		t.Fatalf("recovered records do not match inputs: %d records", len(logical))
	}
}

func TestFileSinkDigest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "000003.log")

	sink, err := CreateFileSink(path)
	if err != nil {
		t.Fatalf("CreateFileSink failed: %v", err)
	}
	defer sink.Close()

	chunks := [][]byte{[]byte("alpha"), []byte("beta"), []byte("gamma")}
	var all []byte
	for _, chunk := range chunks {
		if err := sink.Append(chunk); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		all = append(all, chunk...)
	}

	if got, want := sink.Digest(), xxhash.Sum64(all); got != want {
		t.Errorf("Digest = %#x, want %#x", got, want)
	}
}

func TestCreateFileSinkExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "000004.log")
	if err := os.WriteFile(path, []byte("occupied"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateFileSink(path); err == nil {
		t.Error("expected error creating over an existing file")
	}
}

func TestOpenFileSinkMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.log")
	if _, err := OpenFileSink(path); err == nil {
		t.Error("expected error opening a missing file")
	}
}

func TestFileSinkDurableOnFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "000005.log")

	sink, err := CreateFileSink(path)
	if err != nil {
		t.Fatalf("CreateFileSink failed: %v", err)
	}
	defer sink.Close()

	w := NewWriter(sink)
	if err := w.AddRecord([]byte("durable")); err != nil {
		t.Fatalf("AddRecord failed: %v", err)
	}

	// AddRecord flushes per physical record, so the bytes must be
	// visible in the file before Close.
	stat, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := int64(HeaderSize + len("durable")); stat.Size() != want {
		t.Errorf("file size after AddRecord = %d, want %d", stat.Size(), want)
	}
}
