package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"blueprints/internal/core/errors"
	"blueprints/internal/shared/observability"
)

// Watch regenerates the project rooted at rootPath whenever a blueprint
// document under its directory changes. A change to any document
// triggers a full regeneration pass so that dependents pick up the new
// specification. Blocks until ctx is cancelled.
func (a *App) Watch(ctx context.Context, rootPath string) error {
	baseDir := a.baseDir(rootPath)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "create file watcher")
	}
	defer fsw.Close()

	if err := watchRecursive(fsw, baseDir); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "watch blueprint directories")
	}

	w := &watchLoop{
		app:      a,
		rootPath: rootPath,
		fsw:      fsw,
		debounce: a.cfg.Watch.Debounce,
		pending:  make(map[string]time.Time),
		kick:     make(chan struct{}, 1),
	}

	a.logger.Info("watching blueprints", "dir", baseDir, "debounce", w.debounce)
	return w.run(ctx)
}

type watchLoop struct {
	app      *App
	rootPath string
	fsw      *fsnotify.Watcher
	debounce time.Duration

	pending   map[string]time.Time
	pendingMu sync.Mutex
	timer     *time.Timer
	kick      chan struct{}
}

func (w *watchLoop) run(ctx context.Context) error {
	defer func() {
		w.pendingMu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.pendingMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			observability.WatcherEventsTotal.Inc()

			if event.Op&fsnotify.Create == fsnotify.Create {
				info, err := os.Stat(event.Name)
				if err == nil && info.IsDir() {
					if err := watchRecursive(w.fsw, event.Name); err != nil {
						w.app.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}
					continue
				}
			}

			if !isBlueprintFile(event.Name) {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create ||
				event.Op&fsnotify.Remove == fsnotify.Remove ||
				event.Op&fsnotify.Rename == fsnotify.Rename {
				w.scheduleChange(event.Name)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.app.logger.Error("watcher error", "error", err)

		case <-w.kick:
			w.regenerate(ctx)
		}
	}
}

func (w *watchLoop) scheduleChange(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = time.Now()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.kick <- struct{}{}:
		default:
		}
	})
}

func (w *watchLoop) regenerate(ctx context.Context) {
	w.pendingMu.Lock()
	changed := make([]string, 0, len(w.pending))
	for path := range w.pending {
		changed = append(changed, path)
	}
	w.pending = make(map[string]time.Time)
	w.pendingMu.Unlock()

	if len(changed) == 0 {
		return
	}
	w.app.logger.Info("blueprints changed, regenerating", "changed", changed)

	// Regeneration must overwrite the previous artifacts.
	force := w.app.force
	w.app.force = true
	result, err := w.app.GenerateProject(ctx, w.rootPath)
	w.app.force = force

	if err != nil {
		w.app.logger.Error("regeneration failed", "root", w.rootPath, "error", err)
		return
	}
	w.app.logger.Info("regeneration complete",
		"root", result.Root,
		"modules", len(result.Modules),
		"flagged", len(result.Flagged()),
		"duration", result.Duration)
}

func watchRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			base := filepath.Base(path)
			if strings.HasPrefix(base, ".") && path != root {
				return filepath.SkipDir
			}
			return fsw.Add(path)
		}
		return nil
	})
}

func isBlueprintFile(path string) bool {
	return strings.HasSuffix(strings.ToLower(filepath.Base(path)), ".md")
}
