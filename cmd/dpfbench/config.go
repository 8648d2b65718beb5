package main

import (
	"encoding/json"
	"io/ioutil"
	"log"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/distributed-point-functions/dpf-go/dpf"
)

// sweepConfig is the on-disk shape of a -config file: one parameter list
// per benchmark to run concurrently.
type sweepConfig struct {
	Sweeps [][]dpf.Parameters `json:"sweeps"`
}

// sweepWatcher holds the current sweep and reloads it from disk whenever
// the config file changes, the way the teacher's LocalIndex reloads its
// database file on write (proxy/local_index.go). main reads current() only
// once, at startup, so a reload does not change the sweeps already running.
type sweepWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	lock    sync.RWMutex
	sweeps  [][]dpf.Parameters
}

func newSweepWatcher(path string) *sweepWatcher {
	w := &sweepWatcher{path: path}
	if err := w.reload(); err != nil {
		log.Fatalf("loading %s: %v", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatalf("creating watcher: %v", err)
	}
	if err := watcher.Add(path); err != nil {
		log.Fatalf("watching %s: %v", path, err)
	}
	w.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Write == fsnotify.Write {
					if err := w.reload(); err != nil {
						log.Printf("reloading %s: %v (keeping previous sweep)", path, err)
					} else {
						log.Printf("reloaded sweep config from %s", path)
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("watcher error: %v", err)
			}
		}
	}()

	return w
}

func (w *sweepWatcher) reload() error {
	data, err := ioutil.ReadFile(w.path)
	if err != nil {
		return err
	}
	var cfg sweepConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return err
	}
	w.lock.Lock()
	w.sweeps = cfg.Sweeps
	w.lock.Unlock()
	return nil
}

func (w *sweepWatcher) current() [][]dpf.Parameters {
	w.lock.RLock()
	defer w.lock.RUnlock()
	return w.sweeps
}

func (w *sweepWatcher) close() {
	w.watcher.Close()
}
