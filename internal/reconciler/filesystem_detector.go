package reconciler

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"spring-boot-operator/pkg/logging"
)

const fsDetectorSubsystem = "FilesystemDetector"

// kubeMountData is the symlink a mounted ConfigMap swaps atomically on update.
const kubeMountData = "..data"

// FilesystemDetector implements ChangeDetector for the operator config file.
//
// It uses fsnotify to watch the config directory and emits a config-changed
// event when the watched file is created, written or replaced. Rapid
// successive changes collapse into one event.
type FilesystemDetector struct {
	mu sync.RWMutex

	// dir is the directory holding the config file
	dir string

	// fileName is the base name of the watched file
	fileName string

	// watcher is the fsnotify watcher instance
	watcher *fsnotify.Watcher

	// debounceInterval is how long to wait for additional changes
	debounceInterval time.Duration

	// pending is the timer of the debounced event, nil when none is pending
	pending *time.Timer

	// stopCh signals shutdown
	stopCh chan struct{}

	// running indicates if the detector is active
	running bool
}

// NewFilesystemDetector creates a detector for dir/fileName.
func NewFilesystemDetector(dir, fileName string, debounceInterval time.Duration) *FilesystemDetector {
	if debounceInterval == 0 {
		debounceInterval = 500 * time.Millisecond
	}

	return &FilesystemDetector{
		dir:              dir,
		fileName:         fileName,
		debounceInterval: debounceInterval,
		stopCh:           make(chan struct{}),
	}
}

// Start begins watching for filesystem changes.
func (d *FilesystemDetector) Start(ctx context.Context, events chan<- Event) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return nil
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		d.mu.Unlock()
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		d.mu.Unlock()
		return err
	}
	if err := watcher.Add(d.dir); err != nil {
		_ = watcher.Close()
		d.mu.Unlock()
		return err
	}

	d.watcher = watcher
	d.running = true
	d.stopCh = make(chan struct{})
	stopCh := d.stopCh
	d.mu.Unlock()

	go d.processEvents(ctx, watcher, stopCh, events)

	logging.Info(fsDetectorSubsystem, "Started watching %s for configuration changes", filepath.Join(d.dir, d.fileName))
	return nil
}

// processEvents handles filesystem events until the detector stops.
func (d *FilesystemDetector) processEvents(ctx context.Context, watcher *fsnotify.Watcher, stopCh <-chan struct{}, events chan<- Event) {
	for {
		select {
		case <-ctx.Done():
			d.cancelPending()
			return

		case <-stopCh:
			d.cancelPending()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if d.relevant(event) {
				d.debounce(events)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Error(fsDetectorSubsystem, err, "Filesystem watcher error")
		}
	}
}

// relevant reports whether event may have changed the watched file.
func (d *FilesystemDetector) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}

	switch filepath.Base(event.Name) {
	case d.fileName, kubeMountData:
		return true
	default:
		return false
	}
}

// debounce (re)starts the timer that emits config-changed.
func (d *FilesystemDetector) debounce(events chan<- Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		d.pending.Stop()
	}

	d.pending = time.AfterFunc(d.debounceInterval, func() {
		d.mu.Lock()
		d.pending = nil
		running := d.running
		d.mu.Unlock()

		if !running {
			return
		}

		event := NewEvent(EventConfigChanged, "", SourceFilesystem)
		select {
		case events <- event:
			logging.Debug(fsDetectorSubsystem, "Emitted %s", event)
		default:
			logging.Warn(fsDetectorSubsystem, "Event channel full, dropping %s", event.Name())
		}
	})
}

// cancelPending cancels a pending debounce timer.
func (d *FilesystemDetector) cancelPending() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
}

// Stop gracefully stops the filesystem detector.
func (d *FilesystemDetector) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return nil
	}

	d.running = false
	close(d.stopCh)

	if d.watcher != nil {
		if err := d.watcher.Close(); err != nil {
			logging.Error(fsDetectorSubsystem, err, "Error closing filesystem watcher")
		}
		d.watcher = nil
	}

	logging.Info(fsDetectorSubsystem, "Stopped filesystem detector")
	return nil
}

// GetSource returns the event source type.
func (d *FilesystemDetector) GetSource() EventSource {
	return SourceFilesystem
}
