package resource

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/delaneyj/mobx-go/mobx"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// ErrEmptyFile is returned for a file with no content. Writers that
// truncate before writing briefly leave the file empty, so reloads skip it.
var ErrEmptyFile = errors.New("empty file")

// LoadYAML decodes the YAML file at path into a T, rejecting unknown fields.
func LoadYAML[T any](path string) (T, error) {
	var v T
	data, err := os.ReadFile(path)
	if err != nil {
		return v, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return v, fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("decoding %s: %w", path, err)
	}
	return v, nil
}

// WatchYAML returns a resource holding the decoded contents of path. While
// the resource is observed the file is watched and reloaded on every write;
// a reload that fails keeps the previous value and reports the error to
// onError (or the standard logger when onError is nil).
//
// Reloads arrive through rs.Do, so once the resource is observed every other
// use of rs has to go through Do as well.
func WatchYAML[T any](rs *mobx.ReactiveSystem, path string, onError func(error), opts ...mobx.Option) (*Resource[T], error) {
	path = filepath.Clean(path)
	initial, err := LoadYAML[T](path)
	if err != nil {
		return nil, err
	}

	report := func(err error) {
		if onError != nil {
			onError(err)
			return
		}
		log.Printf("[resource] %s: %v", path, err)
	}

	var (
		watcher *fsnotify.Watcher
		done    chan struct{}
	)
	subscribe := func(sink func(T)) {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			report(fmt.Errorf("watching %s: %w", path, err))
			return
		}
		// The directory is watched rather than the file: atomic saves
		// replace the file and a watch on the old inode would go quiet.
		if err := w.Add(filepath.Dir(path)); err != nil {
			w.Close()
			report(fmt.Errorf("watching %s: %w", path, err))
			return
		}
		watcher, done = w, make(chan struct{})
		go watchFile(rs, w, done, path, sink, report)

		// pick up changes made while nothing was watching
		if v, err := LoadYAML[T](path); err == nil {
			sink(v)
		} else if !errors.Is(err, ErrEmptyFile) {
			report(err)
		}
	}
	unsubscribe := func() {
		if watcher == nil {
			return
		}
		close(done)
		watcher.Close()
		watcher = nil
	}

	return FromResource(rs, subscribe, unsubscribe, initial, opts...), nil
}

func watchFile[T any](
	rs *mobx.ReactiveSystem,
	w *fsnotify.Watcher,
	done <-chan struct{},
	path string,
	sink func(T),
	report func(error),
) {
	// stopped is checked under Do, where unsubscribe also runs
	stopped := func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}

	for {
		select {
		case <-done:
			return

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			v, err := LoadYAML[T](path)
			if errors.Is(err, ErrEmptyFile) {
				continue
			}
			rs.Do(func() error {
				if stopped() {
					return nil
				}
				if err != nil {
					report(err)
					return nil
				}
				sink(v)
				return nil
			})

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			rs.Do(func() error {
				if stopped() {
					return nil
				}
				report(fmt.Errorf("watching %s: %w", path, err))
				return nil
			})
		}
	}
}
