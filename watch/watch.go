// Package watch regenerates stubs whenever the class files they are derived
// from change.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/implgen/generator"
)

var log = commonlog.GetLogger("implgen.watch")

const DefaultDebounce = 250 * time.Millisecond

// Result reports one regeneration.
type Result struct {
	Class string
	FQN   string
	Err   error
}

// Watcher watches a class directory tree. Changes are debounced and
// regeneration runs on the goroutine calling Run, one class at a time.
type Watcher struct {
	gen      *generator.Generator
	dir      string
	classes  []string
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

type Option func(*Watcher)

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New starts watching dir and every directory below it, skipping hidden
// ones.
func New(gen *generator.Generator, dir string, classes []string, opts ...Option) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "watch %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.Newf("watch %s: not a directory", dir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create file watcher")
	}
	w := &Watcher{
		gen:      gen,
		dir:      dir,
		classes:  classes,
		debounce: DefaultDebounce,
		watcher:  fw,
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.addTree(dir); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return errors.Wrapf(err, "watch %s", path)
		}
		log.Debugf("watching %s", path)
		return nil
	})
}

// Run generates every class once, then again after each batch of class file
// changes, until ctx is done or Close is called. report receives every
// outcome.
func (w *Watcher) Run(ctx context.Context, report func(Result)) error {
	w.generate(report)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						log.Warningf("%s", err)
					}
					timer.Reset(w.debounce)
					continue
				}
			}
			if relevant(event) {
				log.Debugf("%s %s", event.Op, event.Name)
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Warningf("watch error: %s", err)

		case <-timer.C:
			w.generate(report)
		}
	}
}

func (w *Watcher) generate(report func(Result)) {
	for _, class := range w.classes {
		fqn, err := w.gen.ImplementFromDirectory(w.dir, class)
		if err != nil {
			log.Errorf("%s: %s", class, err)
		}
		report(Result{Class: class, FQN: fqn, Err: err})
	}
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func relevant(event fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(event.Name), ".class") {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
