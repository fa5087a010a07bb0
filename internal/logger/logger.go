package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger receives the user-facing report
type Logger interface {
	Logf(format string, args ...interface{})
	Log(msg string)
}

// NewDiagnostics returns the logrus logger used for warnings and debug
// output. It writes to w, or stderr when w is nil.
func NewDiagnostics(w io.Writer, verbose bool) *logrus.Logger {
	if w == nil {
		w = os.Stderr
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    !isTerminal(w),
	})
	l.SetLevel(logrus.WarnLevel)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// Discard returns a diagnostics logger that drops everything
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
