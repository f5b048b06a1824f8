package rotation

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	obs "daylog/internal/observability"
)

const (
	msgWatchStart  = "watch_start"
	msgWatchError  = "watch_error"
	msgInvalidated = "log_file_gone"
	msgDirGone     = "log_dir_gone"
)

type watcher interface {
	Add(string) error
	Close() error
	Events() <-chan fsnotify.Event
	Errors() <-chan error
}

type fsWatcher struct{ *fsnotify.Watcher }

func (w *fsWatcher) Events() <-chan fsnotify.Event { return w.Watcher.Events }
func (w *fsWatcher) Errors() <-chan error          { return w.Watcher.Errors }

var watchFn = func() (watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &fsWatcher{w}, nil
}

// Watch invalidates m's cached path when the current file is removed or
// renamed by someone else, so the next write rediscovers or recreates
// today's file. It returns when ctx is done, or with nil when the directory
// itself disappears.
func Watch(ctx context.Context, m *Manager) error {
	w, err := watchFn()
	if err != nil {
		return err
	}
	defer w.Close()
	dir := filepath.Clean(m.Dir())
	if err := w.Add(dir); err != nil {
		return err
	}
	obs.Logger.Info().Str(obs.FieldPath, dir).Msg(msgWatchStart)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			name := filepath.Clean(ev.Name)
			switch name {
			case dir:
				m.Invalidate()
				obs.Logger.Warn().Str(obs.FieldPath, dir).Msg(msgDirGone)
				return nil
			case filepath.Clean(m.Current()):
				m.Invalidate()
				obs.Logger.Info().Str(obs.FieldPath, name).Str(obs.FieldOp, ev.Op.String()).Msg(msgInvalidated)
			}
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			obs.Logger.Error().Err(err).Msg(msgWatchError)
		}
	}
}
