// Package watcher notices when a catalog data file changes on disk so the
// console can reload it. It prefers fsnotify events and falls back to stat
// polling on filesystems where inotify is unreliable (network mounts) or
// when TAXO_FORCE_POLLING is set.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is how often polling mode stats the file.
const DefaultPollInterval = 2 * time.Second

// Common errors.
var (
	ErrFileRemoved    = errors.New("watched catalog file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// detectFilesystemTypeFunc is a seam for tests that need to simulate a
// remote mount.
var detectFilesystemTypeFunc = DetectFilesystemType

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets how long rapid successive events are coalesced.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounceDuration = d
	}
}

// WithPollInterval sets the stat interval for polling mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		w.pollInterval = d
	}
}

// WithOnChange sets the callback invoked when the file changes.
func WithOnChange(fn func()) Option {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// WithOnError sets the callback invoked on errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// WithForcePoll forces polling mode even if fsnotify is available.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) {
		w.forcePoll = force
	}
}

// fileStamp is the mtime and size pair used to detect content changes in
// polling mode.
type fileStamp struct {
	mtime time.Time
	size  int64
}

func stampOf(info os.FileInfo) fileStamp {
	return fileStamp{mtime: info.ModTime(), size: info.Size()}
}

func (s fileStamp) differs(prev fileStamp) bool {
	return s.mtime.After(prev.mtime) || s.size != prev.size
}

// Watcher monitors a single catalog file for changes.
type Watcher struct {
	path             string
	debounceDuration time.Duration
	pollInterval     time.Duration
	onChange         func()
	onError          func(error)
	forcePoll        bool

	fsType    FilesystemType
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	polling   bool
	last      fileStamp

	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
	changeCh chan struct{}
}

// NewWatcher creates a watcher for the given catalog file path.
func NewWatcher(path string, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:             absPath,
		debounceDuration: DefaultDebounceDuration,
		pollInterval:     DefaultPollInterval,
		onChange:         func() {},
		onError:          func(error) {},
		changeCh:         make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(w)
	}

	w.debouncer = NewDebouncer(w.debounceDuration)

	return w, nil
}

// Start begins watching the file for changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	w.ctx, w.cancel = context.WithCancel(context.Background())

	forcePoll := w.forcePoll || envBool("TAXO_FORCE_POLLING")
	w.fsType = detectFilesystemTypeFunc(w.path)
	w.polling = forcePoll || isRemoteFilesystem(w.fsType)

	if err := w.recordStamp(); err != nil {
		return err
	}

	if !w.polling {
		if err := w.startFsnotify(); err != nil {
			w.polling = true
		}
	}
	if w.polling {
		go w.watchPolling()
	}

	w.started = true
	return nil
}

// recordStamp captures the file's current mtime and size. A missing file is
// not an error; the watcher reports its later appearance as a change.
func (w *Watcher) recordStamp() error {
	info, err := os.Stat(w.path)
	if err != nil {
		if os.IsPermission(err) {
			return ErrPermission
		}
		w.last = fileStamp{}
		return nil
	}
	w.last = stampOf(info)
	return nil
}

// startFsnotify watches the directory holding the file rather than the file
// itself. Editors and the datasource layer replace catalog files atomically,
// and a rename into place only fires an event on the parent directory.
func (w *Watcher) startFsnotify() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return err
	}
	w.fsWatcher = fsw
	go w.watchFsnotify()
	return nil
}

// Stop stops watching the file. The change channel is left open: closing it
// would race with notifyChange and make pending receives fire spuriously.
// Stop is only called at shutdown, so a goroutine blocked on Changed() is
// cleaned up by process termination.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}

	if w.cancel != nil {
		w.cancel()
	}

	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}

	w.debouncer.Cancel()
	w.started = false
}

// IsPolling returns true if the watcher is using polling mode.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.polling
}

// IsStarted returns true if the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// Changed returns a channel that receives when the file changes. This is an
// alternative to the OnChange callback.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changeCh
}

// Path returns the watched file path.
func (w *Watcher) Path() string {
	return w.path
}

// FilesystemType returns the best-effort classification of the filesystem
// backing the watched path.
func (w *Watcher) FilesystemType() FilesystemType {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fsType
}

// PollInterval returns the stat interval used when polling mode is active.
func (w *Watcher) PollInterval() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pollInterval
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

// watchFsnotify consumes fsnotify events for the watched file.
func (w *Watcher) watchFsnotify() {
	targetFile := filepath.Base(w.path)

	// Capture the channels up front to avoid racing Stop, which nils out
	// fsWatcher under the lock.
	w.mu.RLock()
	if w.fsWatcher == nil {
		w.mu.RUnlock()
		return
	}
	events := w.fsWatcher.Events
	errs := w.fsWatcher.Errors
	w.mu.RUnlock()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}

			// The directory watch sees every sibling; only our file matters.
			if filepath.Base(event.Name) != targetFile {
				continue
			}

			switch {
			case event.Op&fsnotify.Remove != 0:
				w.onError(ErrFileRemoved)

			case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				w.debouncer.Trigger(w.notifyChange)
			}

		case err, ok := <-errs:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

// watchPolling stats the file on a ticker and compares stamps.
func (w *Watcher) watchPolling() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			info, err := os.Stat(w.path)
			if err != nil {
				if os.IsNotExist(err) {
					// Report removal once; clearing the stamp arms the next
					// stat to report the file's reappearance as a change.
					w.mu.Lock()
					hadFile := !w.last.mtime.IsZero()
					w.last = fileStamp{}
					w.mu.Unlock()
					if hadFile {
						w.onError(ErrFileRemoved)
					}
				} else if os.IsPermission(err) {
					w.onError(ErrPermission)
				} else {
					w.onError(err)
				}
				continue
			}

			cur := stampOf(info)
			w.mu.Lock()
			changed := cur.differs(w.last)
			if changed {
				w.last = cur
			}
			w.mu.Unlock()

			if changed {
				w.debouncer.Trigger(w.notifyChange)
			}
		}
	}
}

// notifyChange invokes the onChange callback and signals the change channel.
func (w *Watcher) notifyChange() {
	w.mu.RLock()
	started := w.started
	w.mu.RUnlock()

	// Best effort: skip callbacks once Stop has run. A small race window
	// remains, but callbacks are idempotent.
	if !started {
		return
	}

	w.onChange()

	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}
