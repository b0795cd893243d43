package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/folios/internal/checksum"
	"github.com/starford/folios/internal/storage"
)

// EventCallback is called after a watcher-driven index change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, name string)

// Watch starts an fsnotify watcher on the library root and processes file
// change events until ctx is cancelled. It calls cb (if non-nil) after
// each successful index mutation.
//
// The library is a flat directory, so only the root itself is watched.
// Rename events trigger a debounced reconciliation pass that removes
// stale index entries and picks up the renamed file's new name.
func Watch(ctx context.Context, db DocumentIndex, cat storage.Catalog, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(cat.Root()); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", cat.Root()))

	// reconcileTimer is used to debounce rename reconciliation.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, cat, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			name := filepath.Base(ev.Name)
			id, version, ok := storage.ParseFileName(name)
			if !ok {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := cat.Read(name)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("file", name), slog.String("error", readErr.Error()))
					continue
				}
				e := storage.Entry{ID: id, Version: version, Name: name}
				if idxErr := indexDocument(db, e, data); idxErr != nil {
					logger.Warn("watcher: index failed", slog.String("file", name), slog.String("error", idxErr.Error()))
					continue
				}
				kind := "updated"
				if ev.Op&fsnotify.Create != 0 {
					kind = "created"
				}
				logger.Debug("watcher: indexed", slog.String("file", name), slog.String("op", kind))
				if cb != nil {
					cb(kind, name)
				}

			case ev.Op&fsnotify.Remove != 0:
				if delErr := db.Delete(name); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("file", name), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("file", name))
				if cb != nil {
					cb("deleted", name)
				}

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the OLD path only. The new
				// path will arrive as a separate Create event. We delete
				// the old entry immediately and schedule a short
				// reconciliation pass to catch any stragglers.
				if delErr := db.Delete(name); delErr != nil {
					logger.Warn("watcher: rename delete failed", slog.String("file", name), slog.String("error", delErr.Error()))
				} else {
					logger.Debug("watcher: rename old deleted", slog.String("file", name))
					if cb != nil {
						cb("deleted", name)
					}
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile does a lightweight sync using batch lookups: it removes index
// entries without a corresponding file on disk and indexes on-disk files
// that are missing or changed.
func reconcile(db DocumentIndex, cat storage.Catalog, logger *slog.Logger, cb EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	entries := cat.Entries()
	disk := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		disk[e.Name] = struct{}{}
	}

	for name := range checksums {
		if _, ok := disk[name]; !ok {
			if delErr := db.Delete(name); delErr == nil {
				logger.Debug("reconcile: removed stale", slog.String("file", name))
				if cb != nil {
					cb("deleted", name)
				}
			}
		}
	}

	for _, e := range entries {
		data, readErr := cat.Read(e.Name)
		if readErr != nil {
			continue
		}
		if checksums[e.Name] == checksum.Sum(data) {
			continue
		}
		if idxErr := indexDocument(db, e, data); idxErr == nil {
			logger.Debug("reconcile: indexed new", slog.String("file", e.Name))
			if cb != nil {
				cb("created", e.Name)
			}
		}
	}
}
