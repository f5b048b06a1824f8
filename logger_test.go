package daylog

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daylog/internal/clock"
	obs "daylog/internal/observability"
)

const (
	helloWorld = "Hello World"
	offsetUTC  = "+00:00"
	offsetBRT  = "-03:00"
)

var helloPattern = regexp.MustCompile(`.* - \[INFO\] - Hello World`)

// fakeTime is a settable time source.
type fakeTime struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeTime) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeTime) add(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func testOptions(t *testing.T, console *bytes.Buffer) Options {
	t.Helper()
	opts := DefaultOptions()
	opts.LogFolder = filepath.Join(t.TempDir(), "logs")
	opts.StartMessage = false
	opts.Console = console
	return opts
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func TestLogMessageHelloWorld(t *testing.T) {
	var console bytes.Buffer
	l, err := New(testOptions(t, &console))
	require.NoError(t, err)

	require.NoError(t, l.LogMessage(helloWorld, LevelInfo))

	lines := readLines(t, l.CurrentFile())
	require.Len(t, lines, 1)
	assert.Regexp(t, helloPattern, lines[0])
	assert.Regexp(t, helloPattern, console.String())
	assert.Equal(t, lines[0]+"\n", console.String())
}

func TestStartMessage(t *testing.T) {
	var console bytes.Buffer
	opts := testOptions(t, &console)
	opts.StartMessage = true
	opts.UTCOffset = "+05:30"
	l, err := New(opts)
	require.NoError(t, err)

	lines := readLines(t, l.CurrentFile())
	require.Len(t, lines, 1)
	assert.True(t, strings.HasSuffix(lines[0], " - [INFO] - Logger initialized with UTC offset +05:30"), lines[0])
	assert.Contains(t, lines[0], "+05:30 - ")
}

func TestLevelWrappers(t *testing.T) {
	var console bytes.Buffer
	l, err := New(testOptions(t, &console))
	require.NoError(t, err)

	calls := []struct {
		fn    func(string) error
		level string
	}{
		{l.Info, "INFO"},
		{l.Warn, "WARN"},
		{l.Error, "ERROR"},
		{l.Debug, "DEBUG"},
		{l.Trace, "TRACE"},
		{l.Fatal, "FATAL"},
	}
	for _, c := range calls {
		require.NoError(t, c.fn("msg"))
	}
	lines := readLines(t, l.CurrentFile())
	require.Len(t, lines, len(calls))
	for i, c := range calls {
		assert.True(t, strings.HasSuffix(lines[i], " - ["+c.level+"] - msg"), lines[i])
	}
}

func TestOffsetsRenderSameInstantThreeHoursApart(t *testing.T) {
	instant := time.Date(2024, time.March, 5, 1, 7, 1, 42_000_000, time.UTC)
	now := func() time.Time { return instant }

	render := func(offset string) string {
		var console bytes.Buffer
		opts := testOptions(t, &console)
		opts.FileLogging = false
		opts.UTCOffset = offset
		opts.Now = now
		l, err := New(opts)
		require.NoError(t, err)
		require.NoError(t, l.Info(helloWorld))
		return console.String()
	}
	utc := render(offsetUTC)
	brt := render(offsetBRT)

	assert.Equal(t, "2024-03-05T01:07:01.042+00:00 - [INFO] - Hello World\n", utc)
	assert.Equal(t, "2024-03-04T22:07:01.042-03:00 - [INFO] - Hello World\n", brt)

	wall := func(s string) time.Time {
		ts, err := time.Parse("2006-01-02T15:04:05.000", s[:23])
		require.NoError(t, err)
		return ts
	}
	assert.Equal(t, 3*time.Hour, wall(utc).Sub(wall(brt)))
}

func TestSecondLoggerSameDayReusesFile(t *testing.T) {
	loc, err := clock.ParseOffset(offsetBRT)
	require.NoError(t, err)
	ft := &fakeTime{t: time.Date(2024, time.March, 4, 9, 0, 0, 0, loc)}

	var console bytes.Buffer
	opts := testOptions(t, &console)
	opts.Now = ft.now

	first, err := New(opts)
	require.NoError(t, err)
	entries, err := os.ReadDir(opts.LogFolder)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	ft.add(8 * time.Hour)
	second, err := New(opts)
	require.NoError(t, err)
	entries, err = os.ReadDir(opts.LogFolder)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, first.CurrentFile(), second.CurrentFile())

	require.NoError(t, first.Info("one"))
	require.NoError(t, second.Info("two"))
	assert.Len(t, readLines(t, first.CurrentFile()), 2)
}

func TestDeleteLogs(t *testing.T) {
	var console bytes.Buffer
	l, err := New(testOptions(t, &console))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		name := filepath.Join(l.Dir(), "extra-"+string(rune('a'+i))+".log")
		require.NoError(t, os.WriteFile(name, []byte("x\n"), 0o644))
	}

	l.DeleteLogs()

	_, err = os.ReadDir(l.Dir())
	assert.True(t, errors.Is(err, fs.ErrNotExist), "expected not exist, got %v", err)

	// The cached path survives; writing fails until the file is resolved again.
	err = l.Info("after delete")
	assert.True(t, errors.Is(err, fs.ErrNotExist), "expected not exist, got %v", err)
	assert.NotContains(t, console.String(), "after delete")

	l.Rotation().Invalidate()
	require.NoError(t, l.Info("recreated"))
	assert.Len(t, readLines(t, l.CurrentFile()), 1)
}

func TestDeleteLogsMissingDirIsQuiet(t *testing.T) {
	var console bytes.Buffer
	opts := testOptions(t, &console)
	opts.FileLogging = false
	l, err := New(opts)
	require.NoError(t, err)

	before := testutil.ToFloat64(obs.DeleteErrors)
	l.DeleteLogs()
	assert.Equal(t, before, testutil.ToFloat64(obs.DeleteErrors))

	opts.LogFolder = ""
	l, err = New(opts)
	require.NoError(t, err)
	l.DeleteLogs()
}

func TestFileLoggingDisabled(t *testing.T) {
	var console bytes.Buffer
	opts := testOptions(t, &console)
	opts.FileLogging = false
	l, err := New(opts)
	require.NoError(t, err)
	require.NoError(t, l.Info(helloWorld))

	_, err = os.Stat(opts.LogFolder)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Empty(t, l.CurrentFile())
	assert.Regexp(t, helloPattern, console.String())
}

func TestConsoleLoggingDisabled(t *testing.T) {
	var console bytes.Buffer
	opts := testOptions(t, &console)
	opts.ConsoleLogging = false
	l, err := New(opts)
	require.NoError(t, err)
	require.NoError(t, l.Info(helloWorld))

	assert.Empty(t, console.String())
	assert.Len(t, readLines(t, l.CurrentFile()), 1)
}

func TestNewInvalidOffset(t *testing.T) {
	var console bytes.Buffer
	opts := testOptions(t, &console)
	opts.UTCOffset = "3 hours"
	_, err := New(opts)
	assert.ErrorIs(t, err, clock.ErrInvalidOffset)
}

func TestNewMissingParent(t *testing.T) {
	var console bytes.Buffer
	opts := testOptions(t, &console)
	opts.LogFolder = filepath.Join(t.TempDir(), "a", "b")
	_, err := New(opts)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

type failingWriter struct{}

var errBrokenConsole = errors.New("broken console")

func (failingWriter) Write([]byte) (int, error) { return 0, errBrokenConsole }

func TestConsoleWriteErrorPropagates(t *testing.T) {
	opts := DefaultOptions()
	opts.FileLogging = false
	opts.StartMessage = false
	opts.Console = failingWriter{}
	l, err := New(opts)
	require.NoError(t, err)

	before := testutil.ToFloat64(obs.WriteErrors.WithLabelValues(obs.SinkConsole))
	assert.ErrorIs(t, l.Info(helloWorld), errBrokenConsole)
	assert.Equal(t, before+1, testutil.ToFloat64(obs.WriteErrors.WithLabelValues(obs.SinkConsole)))
}

func TestMetricsCountWrites(t *testing.T) {
	var console bytes.Buffer
	l, err := New(testOptions(t, &console))
	require.NoError(t, err)

	file := obs.RecordsWritten.WithLabelValues("message", obs.SinkFile)
	cons := obs.RecordsWritten.WithLabelValues("message", obs.SinkConsole)
	beforeFile, beforeCons := testutil.ToFloat64(file), testutil.ToFloat64(cons)

	require.NoError(t, l.Warn("counted"))

	assert.Equal(t, beforeFile+1, testutil.ToFloat64(file))
	assert.Equal(t, beforeCons+1, testutil.ToFloat64(cons))
}

func TestLoadOptions(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "daylog.yaml")
	require.NoError(t, os.WriteFile(p, []byte("log_folder: "+dir+"/app\nutc_offset: \"+01:00\"\ncolor: never\nresponse_time: monotonic\n"), 0o644))

	opts, err := LoadOptions(p)
	require.NoError(t, err)
	assert.Equal(t, dir+"/app", opts.LogFolder)
	assert.Equal(t, "+01:00", opts.UTCOffset)
	assert.Equal(t, ColorNever, opts.Color)
	assert.Equal(t, ResponseTimeMonotonic, opts.ResponseTime)
	assert.True(t, opts.FileLogging)
	assert.NotNil(t, opts.Console)
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, l)
}
