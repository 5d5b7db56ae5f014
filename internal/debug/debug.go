package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Build flag for debug mode - can be overridden at build time
// go build -ldflags "-X github.com/standardbeagle/assetid/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// MCPMode tracks if we're running in MCP mode (set by main)
var MCPMode = false

// debugOutput is the writer for debug output (defaults to nil, meaning no output)
var debugOutput io.Writer

// debugFile holds the open file handle if debug output goes to a file
var debugFile *os.File

// debugMutex protects access to debug output
var debugMutex sync.Mutex

// SetMCPMode enables MCP mode which suppresses all debug output to stdio
func SetMCPMode(enabled bool) {
	MCPMode = enabled
}

// SetDebugOutput sets a custom writer for debug output.
// Pass nil to disable debug output entirely.
func SetDebugOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	if w == nil {
		debugOutput = nil
		return
	}
	debugOutput = zerolog.SyncWriter(w)
}

// SetConsoleOutput routes debug output to w in zerolog's human readable form.
func SetConsoleOutput(w io.Writer) {
	SetDebugOutput(zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.Kitchen})
}

// InitDebugLogFile initializes debug logging to a file.
// Returns the path to the log file, or an error if initialization fails.
// Call CloseDebugLog when done to ensure the file is properly closed.
func InitDebugLogFile() (string, error) {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	logDir := filepath.Join(os.TempDir(), "assetid-debug-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02T150405")
	logPath := filepath.Join(logDir, fmt.Sprintf("debug-%s.log", timestamp))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugFile = file
	debugOutput = file
	return logPath, nil
}

// CloseDebugLog closes the debug log file if one is open.
func CloseDebugLog() error {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if debugFile != nil {
		err := debugFile.Close()
		debugFile = nil
		debugOutput = nil
		return err
	}
	return nil
}

// IsDebugEnabled returns true if debug mode is enabled and we're not in MCP mode
func IsDebugEnabled() bool {
	// Never output debug info in MCP mode
	if MCPMode {
		return false
	}

	if EnableDebug == "true" {
		return true
	}

	for _, key := range []string{"ASSETID_DEBUG", "DEBUG"} {
		if v := os.Getenv(key); v == "1" || v == "true" {
			return true
		}
	}

	return false
}

// getDebugWriter returns the writer for debug output, or nil if none is configured
func getDebugWriter() io.Writer {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	return debugOutput
}

// Logger returns a zerolog logger bound to the debug output. It is a no-op
// logger when debug mode is off or no output is configured.
func Logger() zerolog.Logger {
	if !IsDebugEnabled() {
		return zerolog.Nop()
	}
	w := getDebugWriter()
	if w == nil {
		return zerolog.Nop()
	}
	return zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

// Printf prints debug information only when debug mode is enabled and output is configured
func Printf(format string, args ...interface{}) {
	l := Logger()
	l.Debug().Msgf(format, args...)
}

// Log provides structured debug logging with component names
func Log(component, format string, args ...interface{}) {
	l := Logger()
	l.Debug().Str("component", component).Msgf(format, args...)
}

// LogCodec logs identifier transformations that fell back to their input
func LogCodec(format string, args ...interface{}) {
	Log("CODEC", format, args...)
}

// LogBatch provides debug logging for batch transformations
func LogBatch(format string, args ...interface{}) {
	Log("BATCH", format, args...)
}

// LogScan provides debug logging for project scans and watch mode
func LogScan(format string, args ...interface{}) {
	Log("SCAN", format, args...)
}

// LogMCP provides debug logging specifically for MCP operations
func LogMCP(format string, args ...interface{}) {
	Log("MCP", format, args...)
}

// Fatal outputs a catastrophic error message to the debug log and returns a fatal error.
// Callers decide whether to exit. In MCP mode, output is suppressed entirely.
func Fatal(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if !MCPMode {
		if w := getDebugWriter(); w != nil {
			l := zerolog.New(w).With().Timestamp().Logger()
			l.Error().Str("severity", "fatal").Msg(msg)
		}
	}
	return fmt.Errorf("fatal error: %s", msg)
}
