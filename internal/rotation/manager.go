// Package rotation maps instants to daily log files inside a directory and
// appends lines to them.
//
// A Manager resolves "today's" file once and caches the path. Unless daily
// rotation is enabled, the cache is not re-evaluated when the date rolls over
// while the process is running; a new file appears on the next construction.
package rotation

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"daylog/internal/clock"
	obs "daylog/internal/observability"
)

const (
	// colonSubstitute (U+A789 MODIFIER LETTER COLON) replaces ':' in file
	// names, which some filesystems reject.
	colonSubstitute = "꞉"
	fileExt         = ".log"

	dirPerm  = 0o755
	filePerm = 0o644

	msgFileCreated = "log_file_created"
	msgRerotate    = "log_file_rerotate"
)

// Option configures a Manager.
type Option func(*Manager)

// WithDailyRotation makes Path re-resolve the file whenever the cached file's
// name no longer carries today's date.
func WithDailyRotation(on bool) Option {
	return func(m *Manager) { m.daily = on }
}

// Manager owns the rotation state for one log directory.
type Manager struct {
	dir   string
	clock *clock.Clock
	daily bool

	mu      sync.Mutex
	current string
}

// New returns a Manager for dir. No filesystem work happens until
// EnsureReady, Resolve or Path is called.
func New(dir string, c *clock.Clock, opts ...Option) *Manager {
	m := &Manager{dir: dir, clock: c}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the log directory.
func (m *Manager) Dir() string { return m.dir }

// Current returns the cached path, or "" when nothing is resolved.
func (m *Manager) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// FileName returns the name given to a file created at t: the full
// timestamp with colons substituted, plus ".log".
func FileName(t time.Time) string {
	return strings.ReplaceAll(clock.Format(t), ":", colonSubstitute) + fileExt
}

// EnsureReady creates the log directory when absent and resolves today's
// file. The parent of the directory must already exist. It is idempotent.
func (m *Manager) EnsureReady() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureReady()
}

func (m *Manager) ensureReady() error {
	if err := os.Mkdir(m.dir, dirPerm); err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("create log dir: %w", err)
	}
	_, err := m.resolve(m.clock.Now())
	return err
}

// Resolve selects the file for now's date: the first directory entry whose
// name contains the date, else a newly created file named FileName(now).
// The result is cached.
func (m *Manager) Resolve(now time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolve(now)
}

func (m *Manager) resolve(now time.Time) (string, error) {
	now = m.clock.In(now)
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return "", fmt.Errorf("list log dir: %w", err)
	}
	date := clock.Date(now)
	for _, e := range entries {
		if strings.Contains(e.Name(), date) {
			m.current = filepath.Join(m.dir, e.Name())
			return m.current, nil
		}
	}

	p := filepath.Join(m.dir, FileName(now))
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return "", fmt.Errorf("create log file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("create log file: %w", err)
	}
	obs.FilesCreated.Inc()
	obs.Logger.Debug().Str(obs.FieldPath, p).Msg(msgFileCreated)
	m.current = p
	return p, nil
}

// Path returns the file to append to. An empty cache (first use, or after
// Invalidate) runs EnsureReady again. With daily rotation, a cached file from
// another date is replaced by today's.
func (m *Manager) Path() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == "" {
		if err := m.ensureReady(); err != nil {
			return "", err
		}
		return m.current, nil
	}
	if m.daily {
		now := m.clock.Now()
		if !strings.Contains(filepath.Base(m.current), clock.Date(now)) {
			obs.Logger.Debug().Str(obs.FieldPath, m.current).Msg(msgRerotate)
			if err := m.ensureReady(); err != nil {
				return "", err
			}
		}
	}
	return m.current, nil
}

// Invalidate drops the cached path so the next Path call resolves again.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	m.current = ""
	m.mu.Unlock()
	obs.CacheInvalidations.Inc()
}

// Append writes line and a newline to the end of path, creating the file if
// needed but never the directory, and never truncating.
func (m *Manager) Append(path, line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("append log file: %w", err)
	}
	return f.Close()
}
