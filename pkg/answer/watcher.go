package answer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// Watch rebuilds the composer's index whenever files in the docs directory
// change, until ctx is cancelled. Bursts of events within debounce trigger a
// single rebuild. A docs directory that does not exist is not watched.
func (c *Composer) Watch(ctx context.Context, debounce time.Duration) error {
	if _, err := os.Stat(c.opts.DocsDir); errors.Is(err, fs.ErrNotExist) {
		c.log.WithField("dir", c.opts.DocsDir).Warn("docs directory missing, not watching")
		return nil
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(c.opts.DocsDir); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch %s: %w", c.opts.DocsDir, err)
	}

	go func() {
		defer w.Close()
		timer := time.NewTimer(debounce)
		timer.Stop()
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				timer.Reset(debounce)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				c.log.WithError(err).Warn("docs watcher error")
			case <-timer.C:
				if err := c.Reload(); err != nil {
					c.log.WithError(err).Error("failed to rebuild document index")
				}
			}
		}
	}()
	return nil
}
