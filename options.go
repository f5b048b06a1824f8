package daylog

import (
	"io"
	"os"
	"time"

	"daylog/internal/config"
	"daylog/internal/record"
)

// Level is the severity printed in a record's brackets.
type Level = record.Level

const (
	LevelUnset = record.LevelUnset
	LevelInfo  = record.LevelInfo
	LevelWarn  = record.LevelWarn
	LevelError = record.LevelError
	LevelDebug = record.LevelDebug
	LevelTrace = record.LevelTrace
	LevelFatal = record.LevelFatal
	LevelOff   = record.LevelOff
)

// ParseLevel parses a level name, case-insensitively.
func ParseLevel(s string) (Level, error) { return record.ParseLevel(s) }

// ColorMode decides whether console lines color the HTTP method.
type ColorMode string

const (
	ColorAlways ColorMode = config.ColorAlways
	ColorAuto   ColorMode = config.ColorAuto
	ColorNever  ColorMode = config.ColorNever
)

// ResponseTimeMode selects how a response record's elapsed time is measured.
type ResponseTimeMode string

const (
	// ResponseTimeLegacy subtracts the millisecond-of-second fields of the
	// start and end timestamps. It is wrong whenever a request crosses a
	// second boundary and can go negative; it is kept because existing log
	// consumers compare against it.
	ResponseTimeLegacy ResponseTimeMode = config.ResponseTimeLegacy
	// ResponseTimeMonotonic reports the elapsed monotonic duration.
	ResponseTimeMonotonic ResponseTimeMode = config.ResponseTimeMonotonic
)

// Options configures a Logger. Start from DefaultOptions; the zero value
// disables both sinks.
type Options struct {
	FileLogging    bool
	ConsoleLogging bool
	LogFolder      string
	// UTCOffset is a signed ±HH:MM offset every timestamp is rendered in.
	UTCOffset    string
	StartMessage bool

	Color ColorMode
	// DailyRotation re-resolves the log file when the date changes while the
	// process runs. Off, the file is picked once per Logger.
	DailyRotation bool
	ResponseTime  ResponseTimeMode
	// CaptureBody snapshots up to 64 KiB of each request body into request
	// records. The body is restored for the next handler.
	CaptureBody bool

	// Console receives console lines; nil means os.Stdout.
	Console io.Writer
	// Now overrides the time source, for tests.
	Now func() time.Time
}

// DefaultOptions returns file and console logging into ./logs at -03:00.
func DefaultOptions() Options {
	return Options{
		FileLogging:    true,
		ConsoleLogging: true,
		LogFolder:      config.DefaultLogFolder,
		UTCOffset:      config.DefaultUTCOffset,
		StartMessage:   true,
		Color:          ColorAlways,
		ResponseTime:   ResponseTimeLegacy,
		Console:        os.Stdout,
	}
}

// LoadOptions builds Options from a config file and DAYLOG_* environment
// variables; see config.Load for the lookup order.
func LoadOptions(path string) (Options, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return Options{}, err
	}
	return FromConfig(cfg), nil
}

// FromConfig maps loaded configuration onto Options.
func FromConfig(cfg config.Config) Options {
	opts := DefaultOptions()
	opts.FileLogging = cfg.FileLogging
	opts.ConsoleLogging = cfg.ConsoleLogging
	opts.LogFolder = cfg.LogFolder
	opts.UTCOffset = cfg.UTCOffset
	opts.StartMessage = cfg.StartMessage
	opts.Color = ColorMode(cfg.Color)
	opts.DailyRotation = cfg.DailyRotation
	opts.ResponseTime = ResponseTimeMode(cfg.ResponseTime)
	return opts
}
