package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/assetid/internal/config"
	"github.com/standardbeagle/assetid/internal/debug"
	"github.com/standardbeagle/assetid/internal/scan"
)

func scanCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	if c.NArg() > 1 {
		return cli.Exit("scan: at most one directory may be given", 2)
	}
	if c.NArg() == 1 {
		cfg.Scan.Root = c.Args().First()
	}
	if info, err := os.Stat(cfg.Scan.Root); err != nil || !info.IsDir() {
		return cli.Exit(fmt.Sprintf("scan: %s is not a directory", cfg.Scan.Root), 2)
	}

	scanner := scan.New(cfg.Scan)
	ix := scan.NewIndex()

	start := time.Now()
	report, err := scanner.Scan(c.Context, ix)
	if err != nil {
		return err
	}
	debug.LogScan("scanned %d files (%d skipped) in %v", report.Files, report.Skipped, time.Since(start))

	jsonOut := cfg.Output.Format == config.FormatJSON
	if jsonOut {
		if err := writeJSON(c.App.Writer, report); err != nil {
			return err
		}
	} else {
		writeEntries(c.App.Writer, report.Entries)
		fmt.Fprintf(c.App.ErrWriter, "%d ids in %d files (%d skipped)\n", len(report.Entries), report.Files, report.Skipped)
	}

	if !cfg.Scan.Watch {
		return nil
	}
	return watch(c, cfg, scanner, ix, jsonOut)
}

type watchUpdate struct {
	Path  string       `json:"path"`
	Event string       `json:"event"`
	Added []scan.Entry `json:"added"`
}

// watch reports identifiers first seen in changed files until interrupted.
func watch(c *cli.Context, cfg *config.Config, scanner *scan.Scanner, ix *scan.Index, jsonOut bool) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := c.App.Writer
	enc := json.NewEncoder(out)
	w, err := scan.NewWatcher(scanner, ix, time.Duration(cfg.Scan.DebounceMs)*time.Millisecond, func(u scan.Update) {
		if len(u.Added) == 0 {
			return
		}
		if jsonOut {
			if err := enc.Encode(watchUpdate{Path: u.Path, Event: u.Event.String(), Added: u.Added}); err != nil {
				debug.LogScan("failed to write update for %s: %v", u.Path, err)
			}
			return
		}
		writeEntries(out, u.Added)
	})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to watch %s: %w", scanner.Root(), err)
	}
	fmt.Fprintf(c.App.ErrWriter, "watching %s, press Ctrl+C to stop\n", scanner.Root())

	<-ctx.Done()
	stats := w.Stats()
	fmt.Fprintf(c.App.ErrWriter, "stopped after %d events (%d errors), %d ids indexed\n",
		stats.EventsProcessed, stats.ErrorCount, ix.Len())
	return nil
}

func writeEntries(w io.Writer, entries []scan.Entry) {
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", e.ID, e.Kind, e.Standard, e.Count)
	}
}
