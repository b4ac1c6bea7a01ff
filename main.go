// AMIS TUI - AIS Maritime Intelligence System terminal interface.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/amis-tui/internal/agent"
	"github.com/jeranaias/amis-tui/internal/ais"
	"github.com/jeranaias/amis-tui/internal/config"
	"github.com/jeranaias/amis-tui/internal/geocode"
	"github.com/jeranaias/amis-tui/internal/mapview"
	"github.com/jeranaias/amis-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configDir := flag.String("config-dir", "", "configuration directory (default ~/.amis)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("amis-tui %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if err := run(*configDir); err != nil {
		fmt.Fprintf(os.Stderr, "amis-tui: %v\n", err)
		os.Exit(1)
	}
}

func run(configDir string) error {
	var cfg *config.Config
	var err error
	if configDir != "" {
		cfg, err = config.LoadFrom(configDir)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// TUI owns stdout; route log output to a file under the config dir.
	closeLog := redirectLogs()
	defer closeLog()

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return err
	}
	store, err := ais.OpenStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open vessel store: %w", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := seedFleet(ctx, cfg, store); err != nil {
		cancel()
		return err
	}
	cancel()

	// Camera starts on the configured initial view. The terminal camera has
	// no tiles to fetch, so it is loaded immediately.
	camera := mapview.NewTerminalCamera(
		ais.Position{Lat: cfg.Map.InitialLat, Lon: cfg.Map.InitialLon},
		cfg.Map.InitialZoom,
	)
	camera.Load()

	source := mapview.VesselSourceFunc(func(ctx context.Context, b mapview.Bounds) ([]ais.Vessel, error) {
		return store.ByBoundingBox(ctx, b.MinLat, b.MaxLat, b.MinLon, b.MaxLon)
	})
	surface := mapview.NewSurface(camera, source, cfg.Map.SettleDelay())

	orch := agent.NewOrchestrator(
		agent.NewClient(cfg.Agent.Endpoint),
		geocode.NewClient(cfg.Geocoder.Endpoint),
		surface,
	)

	m := chat.NewModel(cfg, orch, surface)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	orch.SetOnChange(func() {
		p.Send(chat.TranscriptChangedMsg{})
	})

	if cfg.Feed.WatchFile != "" {
		watcher, err := ais.NewFeedWatcher(cfg.Feed.WatchFile, ais.DefaultWatchDebounce, func(vessels []ais.Vessel) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := store.ReplaceAll(ctx, vessels); err != nil {
				log.Printf("fleet reload failed: %v", err)
				return
			}
			p.Send(chat.VesselsReloadedMsg{Count: len(vessels)})
		})
		if err != nil {
			log.Printf("feed watch disabled: %v", err)
		} else if err := watcher.Watch(); err != nil {
			log.Printf("feed watch disabled: %v", err)
			watcher.Close()
		} else {
			defer watcher.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// seedFleet fills the vessel store for startup: the configured feed endpoint
// first, generated sample traffic as the fallback so the map is never empty
// when offline.
func seedFleet(ctx context.Context, cfg *config.Config, store *ais.Store) error {
	var vessels []ais.Vessel
	if cfg.Feed.Endpoint != "" {
		vessels = ais.NewFeedClient(cfg.Feed.Endpoint).FetchOrEmpty(ctx)
	}
	if len(vessels) == 0 && cfg.Feed.SampleData {
		vessels = ais.SampleVessels(cfg.Feed.SampleSeed)
		log.Printf("feed empty, seeded %d sample vessels", len(vessels))
	}
	if len(vessels) == 0 {
		return nil
	}
	if err := store.ReplaceAll(ctx, vessels); err != nil {
		return fmt.Errorf("failed to seed vessel store: %w", err)
	}
	return nil
}

// redirectLogs points the standard logger at ~/.amis/amis.log so stray
// log lines from background goroutines never corrupt the alternate screen.
func redirectLogs() func() {
	dir, err := config.ConfigDir()
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}
	f, err := os.OpenFile(dir+"/amis.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}
	log.SetOutput(f)
	return func() { f.Close() }
}
