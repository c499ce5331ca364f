package utils

import (
	"io"
	"sync"
)

type flusher interface {
	Flush() error
}

type syncer interface {
	Sync() error
}

// FlushingWriter makes console output visible line by line. Each write is followed by Flush when the
// wrapped writer buffers, and Sync forwards to the wrapped writer so zap can flush it on shutdown.
type FlushingWriter struct {
	writer io.Writer
	mutex  sync.Mutex
}

// NewFlushingWriter wraps writer. A writer that is already a FlushingWriter is returned unchanged.
func NewFlushingWriter(writer io.Writer) io.Writer {
	if writer == nil {
		return nil
	}
	if _, alreadyWrapped := writer.(*FlushingWriter); alreadyWrapped {
		return writer
	}
	return &FlushingWriter{writer: writer}
}

// Write writes data and flushes the wrapped writer when it buffers.
func (flushingWriter *FlushingWriter) Write(data []byte) (int, error) {
	if flushingWriter == nil || flushingWriter.writer == nil {
		return len(data), nil
	}

	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	bytesWritten, writeError := flushingWriter.writer.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}
	return bytesWritten, flushingWriter.flushLocked()
}

// Sync flushes buffered output and syncs the wrapped writer when it supports syncing.
func (flushingWriter *FlushingWriter) Sync() error {
	if flushingWriter == nil || flushingWriter.writer == nil {
		return nil
	}

	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	if flushError := flushingWriter.flushLocked(); flushError != nil {
		return flushError
	}
	if syncableWriter, implementsSync := flushingWriter.writer.(syncer); implementsSync {
		return syncableWriter.Sync()
	}
	return nil
}

func (flushingWriter *FlushingWriter) flushLocked() error {
	if flushableWriter, implementsFlush := flushingWriter.writer.(flusher); implementsFlush {
		return flushableWriter.Flush()
	}
	return nil
}
