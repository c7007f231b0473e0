package utils

import (
	"bytes"
	"sync"
)

// LineHandler receives one line of output without its trailing newline.
type LineHandler func(line string)

// LineWriter buffers streamed bytes and hands complete lines to a LineHandler.
type LineWriter struct {
	handler LineHandler
	pending bytes.Buffer
	mutex   sync.Mutex
}

// NewLineWriter wraps handler so it can be used as an io.Writer.
func NewLineWriter(handler LineHandler) *LineWriter {
	return &LineWriter{handler: handler}
}

// Write splits data on newlines and dispatches each completed line.
func (lineWriter *LineWriter) Write(data []byte) (int, error) {
	if lineWriter == nil || lineWriter.handler == nil {
		return len(data), nil
	}

	lineWriter.mutex.Lock()
	defer lineWriter.mutex.Unlock()

	lineWriter.pending.Write(data)
	for {
		buffered := lineWriter.pending.Bytes()
		newlineIndex := bytes.IndexByte(buffered, '\n')
		if newlineIndex < 0 {
			break
		}
		line := string(bytes.TrimSuffix(buffered[:newlineIndex], []byte{'\r'}))
		lineWriter.pending.Next(newlineIndex + 1)
		lineWriter.handler(line)
	}
	return len(data), nil
}

// Flush dispatches any trailing partial line.
func (lineWriter *LineWriter) Flush() error {
	if lineWriter == nil || lineWriter.handler == nil {
		return nil
	}

	lineWriter.mutex.Lock()
	defer lineWriter.mutex.Unlock()

	if lineWriter.pending.Len() == 0 {
		return nil
	}
	line := lineWriter.pending.String()
	lineWriter.pending.Reset()
	lineWriter.handler(line)
	return nil
}
