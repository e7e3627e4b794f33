package keymap

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce is how long the directory must stay quiet after an edit
// before a reload is signalled, so editors that write in bursts trigger a
// single reload.
const reloadDebounce = 500 * time.Millisecond

// DirWatcher watches the mappings directory so the daemon can reload
// profiles without restarting. It is polled from the driver loop and never
// blocks: pending fsnotify events are drained non-blocking and collapsed
// into one reload signal per quiet period.
type DirWatcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	dirtyAt  time.Time
}

// WatchDir starts watching dir for mapping file changes.
func WatchDir(dir string) (*DirWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &DirWatcher{fsw: fsw, debounce: reloadDebounce}, nil
}

// Poll drains pending filesystem events and reports true once changes have
// settled for the debounce window.
func (w *DirWatcher) Poll(now time.Time) bool {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return false
			}
			if relevantChange(ev) {
				slog.Debug("keymap: mapping change detected", "file", ev.Name, "op", ev.Op.String())
				w.dirtyAt = now
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return false
			}
			slog.Warn("keymap: directory watcher error", "err", err)
		default:
			if !w.dirtyAt.IsZero() && now.Sub(w.dirtyAt) >= w.debounce {
				w.dirtyAt = time.Time{}
				return true
			}
			return false
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *DirWatcher) Close() error { return w.fsw.Close() }

func relevantChange(ev fsnotify.Event) bool {
	if !strings.HasSuffix(strings.ToUpper(ev.Name), ".TXT") {
		return false
	}
	return ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}
