// Package daylog writes leveled messages and HTTP request/response traces to
// the console and to one log file per day, and provides net/http middleware
// that traces every request through a Logger.
//
// A Logger is built once from Options and passed to whatever needs to log;
// there is no package-level logger.
//
//	logger, err := daylog.New(daylog.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	logger.Info("starting")
//	http.ListenAndServe(":8080", logger.Middleware(mux))
package daylog

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"daylog/internal/clock"
	obs "daylog/internal/observability"
	"daylog/internal/record"
	"daylog/internal/rotation"
)

const (
	envNoColor = "NO_COLOR"

	startMessage = "Logger initialized with UTC offset %s"

	msgDeleteFailed = "delete_logs_failed"
	msgDeleted      = "delete_logs"
	msgWriteFailed  = "write_failed"
)

// Logger is the entry point for writing records. It is safe for concurrent
// use.
type Logger struct {
	opts     Options
	clock    *clock.Clock
	files    *rotation.Manager
	renderer record.Renderer

	consoleMu sync.Mutex
	console   io.Writer
}

// New builds a Logger. With FileLogging it creates the log directory and
// today's file if missing; with StartMessage it then logs one INFO line
// announcing the offset. Filesystem errors are returned as is.
func New(opts Options) (*Logger, error) {
	loc, err := clock.ParseOffset(opts.UTCOffset)
	if err != nil {
		return nil, err
	}
	if opts.Console == nil {
		opts.Console = os.Stdout
	}
	c := clock.NewWithSource(loc, opts.Now)
	l := &Logger{
		opts:     opts,
		clock:    c,
		files:    rotation.New(opts.LogFolder, c, rotation.WithDailyRotation(opts.DailyRotation)),
		renderer: record.Renderer{Colors: useColor(opts.Color, opts.Console)},
		console:  opts.Console,
	}
	if opts.FileLogging {
		if err := l.files.EnsureReady(); err != nil {
			return nil, err
		}
	}
	if opts.StartMessage {
		if err := l.LogMessage(fmt.Sprintf(startMessage, opts.UTCOffset), LevelInfo); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func useColor(mode ColorMode, w io.Writer) bool {
	switch mode {
	case ColorNever:
		return false
	case ColorAuto:
		if _, ok := os.LookupEnv(envNoColor); ok {
			return false
		}
		f, ok := w.(*os.File)
		return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	default:
		return true
	}
}

// Clock returns the Logger's clock.
func (l *Logger) Clock() *clock.Clock { return l.clock }

// Rotation returns the file rotation manager, e.g. for rotation.Watch.
func (l *Logger) Rotation() *rotation.Manager { return l.files }

// Dir returns the log directory.
func (l *Logger) Dir() string { return l.opts.LogFolder }

// CurrentFile returns the file records are appended to, or "" when file
// logging is off or nothing is resolved yet.
func (l *Logger) CurrentFile() string { return l.files.Current() }

// LogMessage writes a message record at level to every enabled sink.
func (l *Logger) LogMessage(text string, level Level) error {
	return l.write(record.Message{Time: l.clock.Now(), Level: level, Text: text})
}

// Info logs text at INFO.
func (l *Logger) Info(text string) error { return l.LogMessage(text, LevelInfo) }

// Warn logs text at WARN.
func (l *Logger) Warn(text string) error { return l.LogMessage(text, LevelWarn) }

// Error logs text at ERROR.
func (l *Logger) Error(text string) error { return l.LogMessage(text, LevelError) }

// Debug logs text at DEBUG.
func (l *Logger) Debug(text string) error { return l.LogMessage(text, LevelDebug) }

// Trace logs text at TRACE.
func (l *Logger) Trace(text string) error { return l.LogMessage(text, LevelTrace) }

// Fatal logs text at FATAL. It does not exit the process.
func (l *Logger) Fatal(text string) error { return l.LogMessage(text, LevelFatal) }

// DeleteLogs removes the log directory and everything in it. Failures are
// reported on the diagnostics logger and never returned. The cached file
// path is kept, so later writes fail until the file is resolved again.
func (l *Logger) DeleteLogs() {
	dir := l.opts.LogFolder
	if dir == "" {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		obs.DeleteErrors.Inc()
		obs.Logger.Error().Err(err).Str(obs.FieldPath, dir).Msg(msgDeleteFailed)
		return
	}
	obs.Logger.Info().Str(obs.FieldPath, dir).Msg(msgDeleted)
}

// write renders r and sends it to the file sink, then the console sink. The
// first failure stops the remaining sinks and is returned.
func (l *Logger) write(r record.Record) error {
	kind := r.Kind().String()
	if l.opts.FileLogging {
		line := l.renderer.Render(r, record.File)
		if err := l.appendFile(line); err != nil {
			obs.WriteErrors.WithLabelValues(obs.SinkFile).Inc()
			return err
		}
		obs.RecordsWritten.WithLabelValues(kind, obs.SinkFile).Inc()
	}
	if l.opts.ConsoleLogging {
		line := l.renderer.Render(r, record.Console)
		l.consoleMu.Lock()
		_, err := io.WriteString(l.console, line+"\n")
		l.consoleMu.Unlock()
		if err != nil {
			obs.WriteErrors.WithLabelValues(obs.SinkConsole).Inc()
			return fmt.Errorf("write console: %w", err)
		}
		obs.RecordsWritten.WithLabelValues(kind, obs.SinkConsole).Inc()
	}
	return nil
}

func (l *Logger) appendFile(line string) error {
	p, err := l.files.Path()
	if err != nil {
		return err
	}
	return l.files.Append(p, line)
}

// report logs a write failure that has no caller to return to.
func (l *Logger) report(err error, kind record.Kind) {
	if err == nil {
		return
	}
	obs.Logger.Error().Err(err).Str(obs.FieldKind, kind.String()).Msg(msgWriteFailed)
}
