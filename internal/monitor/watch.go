package monitor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce groups the bursts of events editors emit on save.
const DefaultDebounce = 300 * time.Millisecond

// Watcher calls a function when any of a set of files changes. It watches
// the parent directories so files replaced by rename are still seen.
type Watcher struct {
	files    map[string]struct{}
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *zap.SugaredLogger
}

func NewWatcher(paths []string, debounce time.Duration, logger *zap.SugaredLogger) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, errors.New("watch: no files")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	w := &Watcher{files: make(map[string]struct{}), watcher: fw, debounce: debounce, logger: logger}
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch %s: %w", p, err)
		}
		w.files[abs] = struct{}{}
		dir := filepath.Dir(abs)
		if _, ok := dirs[dir]; ok {
			continue
		}
		dirs[dir] = struct{}{}
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return w, nil
}

// Run calls fn after each debounced change until ctx is cancelled, then
// releases the watcher. fn runs on the Run goroutine, so changes made while
// it runs are coalesced into the next call.
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context)) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debugw("file changed", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("watch error", "error", err)
		case <-timer.C:
			fn(ctx)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	_, ok := w.files[filepath.Clean(ev.Name)]
	return ok
}
