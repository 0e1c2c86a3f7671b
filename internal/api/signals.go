package api

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// StopFileName is the file whose presence in the signals directory aborts a run.
const StopFileName = "stop"

// SignalWatcher monitors a signals directory for an out-of-band stop file so
// a long delegation fan-out can be aborted from outside the process
// (touch <dir>/stop). Contexts handed out by WrapContext are cancelled as
// soon as the file appears.
type SignalWatcher struct {
	signalsDir string

	mu      sync.Mutex
	stopped bool
	cancels []context.CancelFunc

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewSignalWatcher creates a watcher over the given signals directory,
// creating it if needed. If the filesystem watcher cannot be started the
// SignalWatcher still works, but only notices a stop file present before a
// context is wrapped.
func NewSignalWatcher(signalsDir string) (*SignalWatcher, error) {
	if err := os.MkdirAll(signalsDir, 0755); err != nil {
		return nil, err
	}

	sw := &SignalWatcher{
		signalsDir: signalsDir,
		done:       make(chan struct{}),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return sw, nil
	}
	if err := watcher.Add(signalsDir); err != nil {
		watcher.Close()
		return sw, nil
	}
	sw.watcher = watcher

	go sw.watchSignals()

	return sw, nil
}

// watchSignals monitors the signals directory for the stop file.
func (sw *SignalWatcher) watchSignals() {
	for {
		select {
		case <-sw.done:
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != StopFileName {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				sw.signalStop()
			}
		case _, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// signalStop marks the watcher stopped and cancels every wrapped context.
func (sw *SignalWatcher) signalStop() {
	sw.mu.Lock()
	sw.stopped = true
	cancels := sw.cancels
	sw.cancels = nil
	sw.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// ShouldStop reports whether a stop has been signaled. It also checks the
// directory directly, covering a stop file written before the watcher started.
func (sw *SignalWatcher) ShouldStop() bool {
	sw.mu.Lock()
	stopped := sw.stopped
	sw.mu.Unlock()
	if stopped {
		return true
	}

	if _, err := os.Stat(filepath.Join(sw.signalsDir, StopFileName)); err == nil {
		sw.signalStop()
		return true
	}
	return false
}

// WrapContext derives a context from parent that is cancelled when a stop is
// signaled. The returned cancel func must be called when the run finishes.
func (sw *SignalWatcher) WrapContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	if sw.ShouldStop() {
		cancel()
		return ctx, cancel
	}

	sw.mu.Lock()
	sw.cancels = append(sw.cancels, cancel)
	sw.mu.Unlock()

	return ctx, cancel
}

// ClearStop removes the stop file and re-arms the watcher.
func (sw *SignalWatcher) ClearStop() error {
	err := os.Remove(filepath.Join(sw.signalsDir, StopFileName))
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	sw.mu.Lock()
	sw.stopped = false
	sw.mu.Unlock()
	return nil
}

// Close stops the filesystem watcher.
func (sw *SignalWatcher) Close() error {
	close(sw.done)
	if sw.watcher != nil {
		return sw.watcher.Close()
	}
	return nil
}
