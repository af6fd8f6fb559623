package server

import (
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"skillsync/internal/errors"
)

// kubernetesDataLink is swapped atomically when a mounted secret is updated
const kubernetesDataLink = "..data"

// CertWatcher watches certificate files and calls onChange once a burst of
// filesystem events has settled for the debounce delay.
// Parent directories are watched so atomic replace-by-rename is seen.
type CertWatcher struct {
	mu sync.Mutex

	files    map[string]struct{}
	dirs     []string
	debounce time.Duration
	onChange func()
	logger   *errors.Logger

	fsWatcher *fsnotify.Watcher
	timer     *time.Timer
	done      chan struct{}
	running   bool
}

// NewCertWatcher creates a watcher for the non-empty paths in files
func NewCertWatcher(files []string, debounce time.Duration, onChange func(), logger *errors.Logger) *CertWatcher {
	if debounce <= 0 {
		debounce = time.Second
	}

	cw := &CertWatcher{
		files:    make(map[string]struct{}),
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}
	for _, f := range files {
		if f == "" {
			continue
		}
		path := filepath.Clean(f)
		cw.files[path] = struct{}{}
		if dir := filepath.Dir(path); !slices.Contains(cw.dirs, dir) {
			cw.dirs = append(cw.dirs, dir)
		}
	}
	return cw
}

// Start begins watching. It fails when no directory could be watched.
func (cw *CertWatcher) Start() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.running {
		return fmt.Errorf("certificate watcher is already running")
	}
	if len(cw.files) == 0 {
		return fmt.Errorf("no certificate files to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	watched := 0
	for _, dir := range cw.dirs {
		if err := watcher.Add(dir); err != nil {
			cw.logger.Warn("Failed to watch certificate directory", "directory", dir, "error", err)
			continue
		}
		watched++
	}
	if watched == 0 {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch any of %v", cw.dirs)
	}

	cw.fsWatcher = watcher
	cw.done = make(chan struct{})
	cw.running = true
	go cw.watchLoop(watcher, cw.done)

	cw.logger.Info("Certificate file watcher started",
		"files", cw.Files(),
		"debounce_delay", cw.debounce)
	return nil
}

// Stop stops watching and cancels a pending reload
func (cw *CertWatcher) Stop() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if !cw.running {
		return nil
	}
	cw.running = false
	close(cw.done)
	if cw.timer != nil {
		cw.timer.Stop()
	}
	if err := cw.fsWatcher.Close(); err != nil {
		return fmt.Errorf("failed to close file watcher: %w", err)
	}
	cw.logger.Info("Certificate file watcher stopped")
	return nil
}

// IsRunning reports whether the watcher is active
func (cw *CertWatcher) IsRunning() bool {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.running
}

// Files returns the watched certificate paths in sorted order
func (cw *CertWatcher) Files() []string {
	files := make([]string, 0, len(cw.files))
	for f := range cw.files {
		files = append(files, f)
	}
	slices.Sort(files)
	return files
}

func (cw *CertWatcher) watchLoop(watcher *fsnotify.Watcher, done <-chan struct{}) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if cw.relevant(event) {
				cw.schedule()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			cw.logger.LogError(err, "Certificate file watcher error")
		case <-done:
			return
		}
	}
}

// relevant reports whether event may have changed a watched file
func (cw *CertWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	path := filepath.Clean(event.Name)
	if _, ok := cw.files[path]; ok {
		return true
	}
	return filepath.Base(path) == kubernetesDataLink
}

// schedule restarts the debounce timer
func (cw *CertWatcher) schedule() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if !cw.running {
		return
	}
	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.timer = time.AfterFunc(cw.debounce, cw.fire)
}

func (cw *CertWatcher) fire() {
	if !cw.IsRunning() {
		return
	}
	cw.logger.Info("Certificate files changed, triggering reload")
	cw.onChange()
}
