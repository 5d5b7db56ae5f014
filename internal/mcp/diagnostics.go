package mcp

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DiagnosticLogger handles all diagnostic output for the MCP server.
// In MCP mode everything goes to a file: stdio carries the protocol.
type DiagnosticLogger struct {
	mu       sync.Mutex
	file     *os.File
	logger   zerolog.Logger
	filePath string
	isMCP    bool
}

// NewDiagnosticLogger creates a logger that writes to a temp file in MCP
// mode and to stderr otherwise.
func NewDiagnosticLogger(isMCP bool) *DiagnosticLogger {
	dl := &DiagnosticLogger{isMCP: isMCP}

	if !isMCP {
		dl.logger = newDiagnosticZerolog(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true, TimeFormat: time.Kitchen})
		return dl
	}

	logDir := filepath.Join(os.TempDir(), "assetid-mcp-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		homeDir, herr := os.UserHomeDir()
		if herr != nil {
			homeDir = "."
		}
		logDir = filepath.Join(homeDir, ".assetid-mcp-logs")
		_ = os.MkdirAll(logDir, 0755)
	}

	logPath := filepath.Join(logDir, fmt.Sprintf("mcp-%s.log", time.Now().Format("2006-01-02T150405")))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		// Logging must never break the server
		dl.logger = zerolog.Nop()
		return dl
	}

	dl.file = file
	dl.filePath = logPath
	dl.logger = newDiagnosticZerolog(file)
	return dl
}

// NewDiagnosticLoggerTo writes diagnostics as JSON lines to w.
func NewDiagnosticLoggerTo(w io.Writer) *DiagnosticLogger {
	return &DiagnosticLogger{logger: newDiagnosticZerolog(w)}
}

func newDiagnosticZerolog(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Str("component", "MCP").Logger()
}

// Printf logs a diagnostic message.
func (dl *DiagnosticLogger) Printf(format string, v ...interface{}) {
	if dl == nil {
		return
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	dl.logger.Info().Msgf(format, v...)
}

// Errorf logs an error.
func (dl *DiagnosticLogger) Errorf(format string, v ...interface{}) {
	if dl == nil {
		return
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	dl.logger.Error().Msgf(format, v...)
}

// Tool records one tool call with its outcome.
func (dl *DiagnosticLogger) Tool(name string, items int, elapsed time.Duration, err error) {
	if dl == nil {
		return
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	ev := dl.logger.Info()
	if err != nil {
		ev = dl.logger.Error().Err(err)
	}
	ev.Str("tool", name).Int("items", items).Dur("elapsed", elapsed).Msg("tool call")
}

// Close closes the log file if it's open.
func (dl *DiagnosticLogger) Close() error {
	if dl == nil {
		return nil
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.file != nil {
		err := dl.file.Close()
		dl.file = nil
		dl.logger = zerolog.Nop()
		return err
	}
	return nil
}

// GetLogPath returns the path to the diagnostic log file (if MCP mode)
func (dl *DiagnosticLogger) GetLogPath() string {
	if dl == nil {
		return ""
	}
	return dl.filePath
}

// NoOpLogger is used to suppress all logging
var NoOpLogger = &DiagnosticLogger{logger: zerolog.Nop()}
