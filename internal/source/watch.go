package source

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/loog-project/diffy/pkg/diffy"
)

// DefaultDebounce is the quiet period after the last write before a file is
// reloaded.
const DefaultDebounce = 100 * time.Millisecond

// Event is a reloaded document. Err is set if it could not be loaded.
type Event struct {
	Path  string
	Value diffy.Value
	Err   error
}

// Watch loads every file once and again whenever it is written, calling fn
// for each load. fn is called on the calling goroutine, never after Watch
// returned. It blocks until ctx is done.
//
// The parent directories are watched rather than the files so that editors
// replacing a file by renaming keep being followed.
func Watch(ctx context.Context, paths []string, debounce time.Duration, fn func(Event)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	tracked := make(map[string]bool, len(paths))
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if _, err := FormatOf(abs); err != nil {
			return err
		}
		tracked[abs] = true
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
	}

	emit := func(path string) {
		val, err := Load(path)
		fn(Event{Path: path, Value: val, Err: err})
	}
	for path := range tracked {
		emit(path)
	}

	// debounce timers hand their path back to the loop, so fn only ever runs
	// on this goroutine and never after Watch returned
	done := make(chan struct{})
	defer close(done)
	ready := make(chan string)
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-ready:
			delete(timers, path)
			log.Debug().Str("path", path).Msg("Change detected")
			emit(path)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			path := filepath.Clean(event.Name)
			if !tracked[path] {
				continue
			}
			if t, ok := timers[path]; ok && !t.Stop() {
				// already fired and waiting to be picked up
				continue
			}
			timers[path] = time.AfterFunc(debounce, func() {
				select {
				case ready <- path:
				case <-done:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Watcher error")
		}
	}
}
