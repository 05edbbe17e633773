package knowledge

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/linnemanlabs/go-core/log"
)

// Watcher re-ingests the knowledge file when it changes on disk. Because
// chunk ids are positional, a re-ingestion triggered by a write replaces the
// index contents rather than duplicating them.
type Watcher struct {
	ingestor *Ingestor
	path     string
	logger   log.Logger
	watcher  *fsnotify.Watcher
}

// NewWatcher creates a Watcher for the knowledge file at path.
func NewWatcher(ingestor *Ingestor, path string, logger log.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Watcher{
		ingestor: ingestor,
		path:     filepath.Clean(path),
		logger:   logger,
		watcher:  w,
	}, nil
}

// Run watches until ctx is cancelled. The parent directory is watched rather
// than the file itself so that editors which replace the file (rename over)
// still produce events.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			w.logger.Info(ctx, "knowledge file changed, re-ingesting", "path", w.path, "op", event.Op.String())
			if err := w.ingestor.IngestFile(ctx, w.path); err != nil {
				w.logger.Error(ctx, err, "knowledge re-ingestion failed", "path", w.path)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error(ctx, err, "knowledge watcher error")
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
