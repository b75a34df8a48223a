package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// debounce is how long the watcher waits after the last write to a file
// before reporting it, so editors that write in several steps trigger a
// single conversion.
const debounce = 100 * time.Millisecond

// Watcher reports changed files under a set of directories.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
	exts     map[string]bool
	onChange func(path string)

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewWatcher watches dirs recursively and calls onChange for written or
// created files whose extension is in exts.
func NewWatcher(logger *zap.Logger, dirs []string, exts []string, onChange func(path string)) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fw,
		logger:   logger,
		exts:     make(map[string]bool, len(exts)),
		onChange: onChange,
		pending:  make(map[string]*time.Timer),
	}
	for _, ext := range exts {
		w.exts[ext] = true
	}

	for _, dir := range dirs {
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return fw.Add(path)
			}
			return nil
		})
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}
	return w, nil
}

// Run delivers events until ctx is done or the watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			w.handleFileEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			w.logger.Error("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleFileEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !w.exts[filepath.Ext(event.Name)] {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[event.Name]; ok {
		t.Reset(debounce)
		return
	}
	name := event.Name
	w.pending[name] = time.AfterFunc(debounce, func() {
		w.mu.Lock()
		delete(w.pending, name)
		w.mu.Unlock()

		w.logger.Debug("file changed", zap.String("file", name))
		w.onChange(name)
	})
}

func (w *Watcher) stop() {
	w.mu.Lock()
	for name, t := range w.pending {
		t.Stop()
		delete(w.pending, name)
	}
	w.mu.Unlock()
	_ = w.watcher.Close()
}
