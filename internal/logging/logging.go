// Package logging builds the zerolog logger shared by every component.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
)

// LogFilePath builds a log file path using OS-appropriate path separators.
func LogFilePath(logsDir, programName string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", programName, sessionStart.Format("20060102_150405")),
	)
}

// ParseLevel maps a level name to a zerolog level. Unknown names mean info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToUpper(name) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Options selects the log sinks.
type Options struct {
	Level string
	// Console defaults to os.Stdout.
	Console io.Writer
	// LogsDir enables a plain text log file named after ProgramName and Start.
	LogsDir     string
	ProgramName string
	Start       time.Time
	// GraylogAddress enables a GELF UDP sink, e.g. "localhost:12201".
	GraylogAddress string
}

// Manager owns the logger and the sinks that need closing.
type Manager struct {
	Logger   zerolog.Logger
	FilePath string

	file    *os.File
	graylog *gelf.Writer
}

// Setup builds a logger writing console output, and optionally a log file and
// Graylog, at the configured level.
func Setup(opts Options) (*Manager, error) {
	m := &Manager{}

	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	writers := []io.Writer{
		// write console format with colors to console
		zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: time.RFC3339,
		},
	}

	if opts.LogsDir != "" {
		if err := os.MkdirAll(opts.LogsDir, 0755); err != nil {
			return nil, fmt.Errorf("error creating logs dir: %w", err)
		}
		m.FilePath = LogFilePath(opts.LogsDir, opts.ProgramName, opts.Start)
		file, err := os.OpenFile(m.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("error opening log file: %w", err)
		}
		m.file = file
		// write console format without colors to file
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        file,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		})
	}

	if opts.GraylogAddress != "" {
		gw, err := gelf.NewWriter(opts.GraylogAddress)
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("error creating graylog writer: %w", err)
		}
		m.graylog = gw
		writers = append(writers, gw)
	}

	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}
	m.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(opts.Level)).
		With().Timestamp().Logger()

	m.Logger.Info().Str("loglevel", m.Logger.GetLevel().String()).Msg("Logging set up")
	return m, nil
}

// Close closes the log file and the Graylog connection.
func (m *Manager) Close() error {
	var errs []error
	if m.graylog != nil {
		if err := m.graylog.Close(); err != nil {
			errs = append(errs, err)
		}
		m.graylog = nil
	}
	if m.file != nil {
		if err := m.file.Close(); err != nil {
			errs = append(errs, err)
		}
		m.file = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("error closing log sinks: %v", errs)
	}
	return nil
}
