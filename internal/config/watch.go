package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/srlehn/cellmatrix/internal/errors"
)

// Watch reloads the file at path whenever it is written or replaced and
// passes the result to fn. It blocks until ctx is done. The directory is
// watched so that editors replacing the file are noticed.
func Watch(ctx context.Context, path string, fn func(Config, error)) error {
	if path == `` || fn == nil {
		return errors.NilParam()
	}
	path = filepath.Clean(path)
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.New(err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(path)); err != nil {
		return errors.New(err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			fn(Load(path))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fn(Config{}, errors.New(err))
		}
	}
}
