package cmd

import (
	"io"
	"os"

	"github.com/cinject/cli/internal/logger"
)

// AppConfig holds the shared dependencies of every command
type AppConfig struct {
	// Logger receives the report
	Logger logger.Logger
	// Stderr receives diagnostics
	Stderr io.Writer
	// Interactive enables the spinner and the summary box
	Interactive bool
}

// NewAppConfig creates a configuration writing the report to stdout
func NewAppConfig() *AppConfig {
	return &AppConfig{
		Logger:      logger.NewStdoutLogger(),
		Stderr:      os.Stderr,
		Interactive: logger.IsInteractive(),
	}
}
