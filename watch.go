package snestile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// pathLocker provides per-path mutual exclusion.
type pathLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newPathLocker() *pathLocker {
	return &pathLocker{locks: make(map[string]*sync.Mutex)}
}

func (pl *pathLocker) Lock(path string) {
	pl.mu.Lock()
	l, ok := pl.locks[path]
	if !ok {
		l = &sync.Mutex{}
		pl.locks[path] = l
	}
	pl.mu.Unlock()
	l.Lock()
}

func (pl *pathLocker) Unlock(path string) {
	pl.mu.Lock()
	l, ok := pl.locks[path]
	pl.mu.Unlock()
	if ok {
		l.Unlock()
	}
}

// debouncer coalesces rapid event bursts into a single callback per file.
// Every armed timer is counted in wg until its callback returns or it is
// stopped.
type debouncer struct {
	mu     sync.Mutex
	wg     sync.WaitGroup
	timers map[string]*time.Timer
	delay  time.Duration
	onFire func(path string)
}

func newDebouncer(delay time.Duration, onFire func(path string)) *debouncer {
	return &debouncer{
		timers: make(map[string]*time.Timer),
		delay:  delay,
		onFire: onFire,
	}
}

func (d *debouncer) trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[path]; ok && t.Stop() {
		t.Reset(d.delay)
		return
	}

	d.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.mu.Lock()
		if d.timers[path] == t {
			delete(d.timers, path)
		}
		d.mu.Unlock()
		d.onFire(path)
	})
	d.timers[path] = t
}

// stop cancels every pending callback and waits for any already running.
func (d *debouncer) stop() {
	d.mu.Lock()
	for path, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, path)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func watchRecursive(w *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if path != dir && skipDir(info) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

// Watch converts every PNG image below dirs and then again whenever one is
// written, once it has been left alone for delay. Conversion errors are
// logged and don't stop the watch, which runs until ctx is cancelled.
func (c *Converter) Watch(ctx context.Context, dirs []string, out string, opts Options, delay time.Duration) error {
	if err := opts.validate(); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	for _, dir := range dirs {
		if err := watchRecursive(w, dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		c.logger.Printf("Watching \"%s\"\n", dir)
	}

	for _, dir := range dirs {
		if err := c.Batch(dir, out, opts, 0); err != nil {
			c.logger.Println(err)
		}
	}

	locker := newPathLocker()

	db := newDebouncer(delay, func(path string) {
		locker.Lock(path)
		defer locker.Unlock(path)

		if _, err := os.Stat(path); err != nil {
			return
		}
		if _, err := c.ConvertFile(path, out, opts); err != nil {
			c.logger.Println(err)
		}
	})
	defer db.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if !skipDir(info) {
						if err := watchRecursive(w, ev.Name); err != nil {
							c.logger.Printf("Watching \"%s\": %v\n", ev.Name, err)
						}
					}
					continue
				}
			}
			if !isImage(ev.Name) || !(ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Rename)) {
				continue
			}
			if filepath.Base(filepath.Dir(ev.Name)) == ConvertedDir {
				continue
			}
			db.trigger(ev.Name)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.logger.Printf("Watcher error: %v\n", err)
		}
	}
}
