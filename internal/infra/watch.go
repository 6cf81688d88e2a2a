package infra

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// WatchExecutable closes the returned channel once the running binary is
// replaced or modified, so a supervisor can restart the new version.
func WatchExecutable(ctx context.Context) <-chan struct{} {
	exe, err := os.Executable()
	if err != nil {
		log.WithError(err).Warn("cant locate executable, watcher disabled")
		return make(chan struct{})
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	log.Debug(exe)
	return WatchFile(ctx, exe)
}

// WatchFile watches the parent directory of path, since replacing a file
// breaks a watch on the file itself.
func WatchFile(ctx context.Context, path string) <-chan struct{} {
	ch := make(chan struct{})
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.WithError(err).Warn("cant create file watcher")
		return ch
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		log.WithError(err).Warn("cant watch directory")
		_ = watcher.Close()
		return ch
	}

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
				if filepath.Clean(event.Name) != path {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					close(ch)
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("file watcher error")
			}
		}
	}()
	return ch
}
