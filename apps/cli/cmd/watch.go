package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond

	// WatchMinInterval is the minimum time between repeated calls
	WatchMinInterval = time.Second
)

// watch repeats the call whenever a file referenced by a file or embed item
// changes, until ctx is done. It returns the status of the last call.
func (a *app) watch(ctx context.Context, addr, method string, itemArgs []string) int {
	code, sources := a.call(ctx, addr, method, itemArgs)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return a.fail(fmt.Errorf("failed to create file watcher: %w", err))
	}
	defer watcher.Close()

	fw := &fileWatch{watcher: watcher, files: map[string]bool{}, dirs: map[string]bool{}}
	if err := fw.track(sources); err != nil {
		return a.fail(err)
	}
	if len(fw.files) == 0 {
		a.console.Warning("--watch: no file items to watch")
		return code
	}

	fmt.Fprintf(a.env.Stderr, "\nWatching %d file(s) for changes... (press Ctrl+C to stop)\n", len(fw.files))

	limiter := rate.NewLimiter(rate.Every(WatchMinInterval), 1)
	// the first call spends the initial token
	limiter.Allow()

	var (
		debounce <-chan time.Time
		changed  string
	)
	for {
		select {
		case <-ctx.Done():
			return code

		case event, ok := <-watcher.Events:
			if !ok {
				return code
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !fw.files[filepath.Clean(event.Name)] {
				continue
			}
			changed = event.Name
			debounce = time.After(WatchDebounceDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return code
			}
			a.logger.Warn("file watcher error", "component", "watch", "err", err)

		case <-debounce:
			debounce = nil
			if err := limiter.Wait(ctx); err != nil {
				return code
			}
			fmt.Fprintf(a.env.Stderr, "\nFile changed: %s\nRepeating call...\n\n", changed)
			code, sources = a.call(ctx, addr, method, itemArgs)
			if err := fw.track(sources); err != nil {
				a.logger.Warn("cannot watch file", "component", "watch", "err", err)
			}
		}
	}
}

// fileWatch watches the parent directories of a set of files, which keeps
// editors that replace files on save from dropping the watch.
type fileWatch struct {
	watcher *fsnotify.Watcher
	files   map[string]bool
	dirs    map[string]bool
}

func (fw *fileWatch) track(paths []string) error {
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		fw.files[abs] = true

		dir := filepath.Dir(abs)
		if fw.dirs[dir] {
			continue
		}
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		fw.dirs[dir] = true
	}
	return nil
}
