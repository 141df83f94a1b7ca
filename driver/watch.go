package driver

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"stylc/config"
)

// Watch compiles sources according to command line and then keeps
// recompiling them as they change until interrupted.
func Watch(ctx context.Context, cmd *cli.Command) error {
	j, err := prepare(ctx, cmd, "watch")
	if err != nil {
		return err
	}
	defer j.close()

	// watch keeps outputs it produced up to date
	j.env.Overwrite = true

	if err := j.process(ctx); err != nil {
		if len(j.root) == 0 {
			return err
		}
		j.log.Warn("Initial compilation finished with errors", zap.Error(err))
	}
	return j.watch(ctx)
}

// watch runs single event loop over located sources. Changes are collected
// for a short period so editors saving files in several steps cause one
// compilation.
func (j *job) watch(ctx context.Context) error {
	if len(j.arc) > 0 {
		return errors.New("watching sources inside archives is not supported")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := j.addWatches(w, j.root); err != nil {
		return err
	}
	j.log.Info("Watching for changes", zap.String("source", j.src), zap.String("destination", j.dst))

	pending := make(map[string]struct{})
	timer := time.NewTimer(j.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			j.log.Info("Watching stopped", zap.Int("compiled", j.compiled), zap.Int("cached", j.cached))
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if j.event(w, ev, pending) {
				timer.Reset(j.debounce)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			j.log.Warn("Watcher reported error", zap.Error(err))

		case <-timer.C:
			j.flush(ctx, pending)
		}
	}
}

// addWatches adds dir and, unless a single file is watched, all its visible
// subdirectories.
func (j *job) addWatches(w *fsnotify.Watcher, dir string) error {
	if len(j.file) > 0 {
		return w.Add(dir)
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			j.log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != j.root && config.IsHidden(path) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			j.log.Warn("Unable to watch directory", zap.String("dir", path), zap.Error(err))
		}
		return nil
	})
}

// event records source affected by the event, returns true if something
// needs to be compiled.
func (j *job) event(w *fsnotify.Watcher, ev fsnotify.Event, pending map[string]struct{}) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}

	if len(j.file) > 0 {
		if ev.Name != j.file {
			return false
		}
		pending[ev.Name] = struct{}{}
		return true
	}

	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if config.IsHidden(ev.Name) {
				return false
			}
			if err := j.addWatches(w, ev.Name); err != nil {
				j.log.Warn("Unable to watch directory", zap.String("dir", ev.Name), zap.Error(err))
			}
			// files could have been placed there before watch was added
			files, _ := j.sources(ev.Name)
			for _, f := range files {
				pending[f] = struct{}{}
			}
			return len(files) > 0
		}
	}

	if !j.isSource(ev.Name) {
		return false
	}
	pending[ev.Name] = struct{}{}
	return true
}

// flush compiles collected sources, failures are logged and do not stop
// watching.
func (j *job) flush(ctx context.Context, pending map[string]struct{}) {
	files := make([]string, 0, len(pending))
	for f := range pending {
		files = append(files, f)
		delete(pending, f)
	}
	sort.Sort(natural.StringSlice(files))

	for _, file := range files {
		if ctx.Err() != nil {
			return
		}
		rel, err := filepath.Rel(j.root, file)
		if err != nil {
			rel = filepath.Base(file)
		}
		// errors are already logged
		_ = j.compileFile(ctx, file, rel)
	}
}
