package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// WriterLogger writes report lines to an io.Writer. It is safe for
// concurrent use.
type WriterLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterLogger(w io.Writer) *WriterLogger {
	return &WriterLogger{w: w}
}

// NewStdoutLogger reports to stdout
func NewStdoutLogger() *WriterLogger { return NewWriterLogger(os.Stdout) }

func (l *WriterLogger) Logf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, format, args...)
}

func (l *WriterLogger) Log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, msg)
}
