package gen

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
)

// debounce coalesces the bursts of events editors produce on save.
const debounce = 200 * time.Millisecond

// watch calls regenerate after path changes until ctx is done. The parent
// directory is watched so files replaced by rename are still seen.
func watch(ctx context.Context, path string, logger *slog.Logger, regenerate func() error) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(err, "resolve tree path")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrapf(err, "watch %s", filepath.Dir(abs))
	}
	logger.InfoContext(ctx, "watching for changes", slog.String("file", abs))

	fire := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			logger.DebugContext(ctx, "tree changed",
				slog.String("file", event.Name),
				slog.String("op", event.Op.String()))
			if timer == nil {
				timer = time.AfterFunc(debounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(debounce)
			}

		case <-fire:
			if err := regenerate(); err != nil {
				logger.ErrorContext(ctx, "generation failed", slog.Any("error", err))
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.WarnContext(ctx, "watch error", slog.Any("error", err))
		}
	}
}
