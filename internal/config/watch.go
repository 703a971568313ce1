package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"

	"storesearch/internal/eventbus"
)

// watchSettle coalesces the burst of events an editor save produces.
const watchSettle = 150 * time.Millisecond

// Watcher publishes ConfigChanged when the config file is written.
type Watcher struct {
	watcher *fsnotify.Watcher
	bus     eventbus.EventBus
	path    string
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	once    sync.Once
}

// Watch starts watching path. The parent directory is watched so that
// rename-on-save editors are still seen.
func Watch(path string, bus eventbus.EventBus) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, serr.Wrap(err, "failed to resolve config path")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, serr.Wrap(err, "failed to create config watcher")
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, serr.Wrap(err, "failed to watch config directory")
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{watcher: fw, bus: bus, path: abs, ctx: ctx, cancel: cancel}
	w.wg.Add(1)
	go w.loop()
	logger.Debug("Watching config", "path", abs)
	return w, nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchSettle, func() {
				if w.ctx.Err() != nil {
					return
				}
				w.bus.Publish(eventbus.ConfigChangedEvent{Path: w.path})
			})
			mu.Unlock()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.LogErr(serr.Wrap(err, "config watcher error"), "config watch")
		}
	}
}

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		w.cancel()
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}
