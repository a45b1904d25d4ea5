package caption

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// FileSource tails a transcript file and replaces the latest caption
// snapshot on every write. Useful for replays and demos without a live
// recognizer. The whole file is treated as the current caption; the
// last non-empty line wins.
type FileSource struct {
	path   string
	store  *Store
	logger zerolog.Logger

	cancel context.CancelFunc
}

// NewFileSource creates a transcript file source.
func NewFileSource(path string, store *Store, logger zerolog.Logger) *FileSource {
	return &FileSource{
		path:   path,
		store:  store,
		logger: logger.With().Str("component", "caption-file").Logger(),
	}
}

// Start begins watching the transcript file. The current contents are
// loaded immediately if the file exists.
func (f *FileSource) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel

	if err := watcher.Add(f.path); err != nil {
		// The file may not exist yet; watch its directory instead and
		// pick the file up on creation.
		if derr := watcher.Add(filepath.Dir(f.path)); derr != nil {
			watcher.Close()
			cancel()
			return err
		}
	}

	f.load()

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != f.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					f.load()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				f.logger.Warn().Err(err).Msg("Transcript watch error")
			}
		}
	}()

	f.logger.Info().Str("path", f.path).Msg("Watching transcript file")
	return nil
}

// Stop ends the watch.
func (f *FileSource) Stop() {
	if f.cancel != nil {
		f.cancel()
	}
}

func (f *FileSource) load() {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			f.logger.Warn().Err(err).Msg("Failed to read transcript file")
		}
		return
	}

	text := lastNonEmptyLine(string(data))
	f.store.Set(Caption{Text: text, Timestamp: time.Now()})
}

func lastNonEmptyLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
