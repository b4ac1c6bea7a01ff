// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ais

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// FEED FILE WATCHER
// =============================================================================

// DefaultWatchDebounce coalesces the burst of write events an editor or
// downloader produces while rewriting the feed file.
const DefaultWatchDebounce = 500 * time.Millisecond

// FeedWatcher watches a local vessel feed file and delivers reparsed fleets
// to a callback. Writers typically rewrite the whole file, so the watcher
// debounces and re-reads rather than tracking incremental changes.
type FeedWatcher struct {
	path     string
	onReload func([]Vessel)
	debounce time.Duration

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	pending time.Time
	dirty   bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewFeedWatcher creates a watcher for the feed file at path. onReload is
// called from the watcher goroutine with each successfully parsed fleet.
func NewFeedWatcher(path string, debounce time.Duration, onReload func([]Vessel)) (*FeedWatcher, error) {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	fw := &FeedWatcher{
		path:     path,
		onReload: onReload,
		debounce: debounce,
		watcher:  watcher,
		ctx:      ctx,
		cancel:   cancel,
	}
	return fw, nil
}

// Watch starts watching for feed file changes. The parent directory is
// watched rather than the file itself so atomic rename-into-place writes are
// observed.
func (fw *FeedWatcher) Watch() error {
	if err := fw.watcher.Add(filepath.Dir(fw.path)); err != nil {
		return err
	}

	go fw.processEvents()
	go fw.processPending()

	return nil
}

// Close stops watching and releases resources.
func (fw *FeedWatcher) Close() error {
	fw.cancel()
	if fw.watcher != nil {
		return fw.watcher.Close()
	}
	return nil
}

// processEvents folds raw filesystem events into the debounce state.
func (fw *FeedWatcher) processEvents() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ais: feed watcher recovered: %v", r)
		}
	}()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(fw.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				fw.mu.Lock()
				fw.pending = time.Now()
				fw.dirty = true
				fw.mu.Unlock()
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("ais: feed watcher error: %v", err)
		}
	}
}

// processPending fires the reload once the debounce window has passed
// without further writes.
func (fw *FeedWatcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case <-ticker.C:
			fw.mu.Lock()
			ready := fw.dirty && time.Since(fw.pending) >= fw.debounce
			if ready {
				fw.dirty = false
			}
			fw.mu.Unlock()

			if ready {
				fw.reload()
			}
		}
	}
}

// reload re-reads and re-parses the feed file. A half-written or malformed
// file is logged and skipped; the previous fleet stays in effect.
func (fw *FeedWatcher) reload() {
	data, err := os.ReadFile(fw.path)
	if err != nil {
		log.Printf("ais: feed file read failed: %v", err)
		return
	}
	vessels, err := LoadFeedFile(data)
	if err != nil {
		log.Printf("ais: feed file parse failed, keeping previous fleet: %v", err)
		return
	}
	fw.onReload(vessels)
}
