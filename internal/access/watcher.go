package access

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/giantswarm/mcp-odoo/pkg/logging"
)

// DefaultDebounceInterval is the time to wait after the last change to the
// policy file before reloading it.
const DefaultDebounceInterval = 300 * time.Millisecond

// PolicyWatcher reloads a policy file when it changes on disk and hands the
// result to OnChange. A file that fails to parse is logged and ignored so
// the previous policy stays in force.
type PolicyWatcher struct {
	path     string
	onChange func(*Policy)
	debounce time.Duration

	mu        sync.Mutex
	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	running   bool

	debounceMu    sync.Mutex
	debounceTimer *time.Timer
}

// NewPolicyWatcher creates a watcher for path. Start must be called to begin
// watching.
func NewPolicyWatcher(path string, onChange func(*Policy)) *PolicyWatcher {
	return &PolicyWatcher{
		path:     path,
		onChange: onChange,
		debounce: DefaultDebounceInterval,
	}
}

// Start begins watching. The directory is watched rather than the file so
// editors that replace the file on save are handled.
func (w *PolicyWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return err
	}

	w.fsWatcher = watcher
	w.stopCh = make(chan struct{})
	w.running = true

	go w.processEvents(watcher.Events, watcher.Errors, w.stopCh)

	logging.Info("PolicyWatcher", "Watching %s for changes", w.path)
	return nil
}

// Stop ends watching. It is safe to call more than once.
func (w *PolicyWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.running = false
	close(w.stopCh)
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceMu.Unlock()
}

func (w *PolicyWatcher) processEvents(eventsCh <-chan fsnotify.Event, errorsCh <-chan error, stopCh <-chan struct{}) {
	for {
		select {
		case <-stopCh:
			return
		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Error("PolicyWatcher", err, "fsnotify error")
		}
	}
}

func (w *PolicyWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	logging.Debug("PolicyWatcher", "Policy file changed: %s", event.Op)

	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounce, w.reload)
}

func (w *PolicyWatcher) reload() {
	w.mu.Lock()
	running := w.running
	w.mu.Unlock()
	if !running {
		return
	}

	p, err := LoadPolicy(w.path)
	if err != nil {
		logging.Error("PolicyWatcher", err, "Keeping previous policy")
		return
	}
	logging.Info("PolicyWatcher", "Reloaded policy with %d models", len(p.ModelNames()))
	w.onChange(p)
}
