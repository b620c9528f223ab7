package wal

import (
	"bufio"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/CairnDB/cairn/pkg/common/log"
)

// SequentialFile is the sink a Writer appends to. Append adds bytes to
// the end of the stream in order; Flush forces previously appended
// bytes to durable storage before returning. Implementations report
// failures rather than swallowing or retrying them.
type SequentialFile interface {
	Append(p []byte) error
	Flush() error
}

// sinkBufferSize matches the buffering used elsewhere in the engine
// for sequential write paths.
const sinkBufferSize = 64 * 1024

// FileSink is an os.File-backed SequentialFile. Appends are buffered;
// Flush drains the buffer and fsyncs. The sink also keeps a running
// xxhash digest and byte count of everything appended through it,
// which tests and diagnostics use to fingerprint the written stream.
//
// Like the Writer, a FileSink assumes a single appender and is not
// internally synchronized.
type FileSink struct {
	path     string
	file     *os.File
	writer   *bufio.Writer
	digest   *xxhash.Digest
	size     int64
	appended int64
	logger   log.Logger
}

// FileSinkOption configures a FileSink.
type FileSinkOption func(*FileSink)

// WithLogger sets the logger used for sink lifecycle events.
func WithLogger(logger log.Logger) FileSinkOption {
	return func(s *FileSink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// CreateFileSink creates a new log file at path. The file must not
// already exist.
func CreateFileSink(path string, opts ...FileSinkOption) (*FileSink, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	s := newFileSink(path, file, 0, opts)
	s.logger.Debug("created log file %s", path)
	return s, nil
}

// OpenFileSink opens an existing log file for appending. The sink's
// Size reflects the bytes already in the file, so a resuming caller
// can construct its writer with NewWriterAtOffset(sink, sink.Size()).
func OpenFileSink(path string, opts ...FileSinkOption) (*FileSink, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}
	s := newFileSink(path, file, stat.Size(), opts)
	s.logger.Debug("opened log file %s for append at %d bytes", path, stat.Size())
	return s, nil
}

func newFileSink(path string, file *os.File, size int64, opts []FileSinkOption) *FileSink {
	s := &FileSink{
		path:   path,
		file:   file,
		writer: bufio.NewWriterSize(file, sinkBufferSize),
		digest: xxhash.New(),
		size:   size,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append adds p to the end of the file's byte stream.
func (s *FileSink) Append(p []byte) error {
	if _, err := s.writer.Write(p); err != nil {
		return fmt.Errorf("failed to append to log file: %w", err)
	}
	s.digest.Write(p)
	s.size += int64(len(p))
	s.appended += int64(len(p))
	return nil
}

// Flush drains the write buffer and forces the appended bytes to
// durable storage.
func (s *FileSink) Flush() error {
	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush log buffer: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	return nil
}

// Size returns the file's length in bytes, counting both pre-existing
// content and bytes appended through this sink.
func (s *FileSink) Size() int64 {
	return s.size
}

// Digest returns the xxhash of the bytes appended through this sink
// instance. Pre-existing file content is not included.
func (s *FileSink) Digest() uint64 {
	return s.digest.Sum64()
}

// Path returns the file path the sink was opened with.
func (s *FileSink) Path() string {
	return s.path
}

// Close flushes, syncs and closes the underlying file.
func (s *FileSink) Close() error {
	if err := s.Flush(); err != nil {
		s.file.Close()
		return err
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	s.logger.Debug("closed log file %s (%d bytes appended)", s.path, s.appended)
	return nil
}
