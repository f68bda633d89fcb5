package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"

	"github.com/robinvdvleuten/beansql"
	"github.com/robinvdvleuten/beansql/errors"
	"github.com/robinvdvleuten/beansql/ledger"
	"github.com/robinvdvleuten/beansql/telemetry"
)

type CheckCmd struct {
	File  string `help:"Ledger input file." arg:"" type:"existingfile"`
	Watch bool   `help:"Re-run the check whenever the ledger or an included file changes."`

	bookingFlags
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	cfg, err := cmd.config()
	if err != nil {
		return err
	}

	if !cmd.Watch {
		return cmd.check(ctx, globals, cfg)
	}
	return cmd.watch(ctx, globals, cfg)
}

// check runs one load-and-book pass and reports everything it found. The
// exit code is non-zero when any error-severity problem exists; warnings
// alone pass.
func (cmd *CheckCmd) check(ctx *kong.Context, globals *Globals, cfg *ledger.Config) error {
	runCtx := context.Background()

	var collector telemetry.Collector
	if globals.Telemetry {
		collector = telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)
		defer func() {
			_, _ = fmt.Fprintln(ctx.Stderr)
			collector.Report(ctx.Stderr)
		}()
	}

	snap, result, err := beansql.Load(runCtx, cmd.File, cfg)
	if err != nil {
		printError(ctx.Stderr, err.Error())
		return NewCommandError(1)
	}

	renderer := errors.NewRenderer(nil)
	for _, path := range result.Files {
		if src, err := os.ReadFile(path); err == nil {
			renderer.AddSource(path, src)
		}
	}

	var errs []error
	for _, serr := range result.SyntaxErrors {
		errs = append(errs, serr)
	}
	for _, diag := range snap.Diagnostics {
		errs = append(errs, diag)
	}
	if len(errs) > 0 {
		_, _ = fmt.Fprintln(ctx.Stderr, renderer.RenderAll(errs))
		_, _ = fmt.Fprintln(ctx.Stderr)
	}

	failures := len(result.SyntaxErrors)
	for _, diag := range snap.Diagnostics {
		if diag.Severity == ledger.Error {
			failures++
		}
	}
	if failures > 0 {
		printError(ctx.Stderr, fmt.Sprintf("%d problem(s) found", failures))
		return NewCommandError(1)
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Check passed: %d transactions, %d accounts", len(snap.Transactions), len(snap.Accounts)))
	return nil
}

// watch re-checks on every change to the ledger or its includes, until
// interrupted. The watched file set is refreshed after each pass because
// includes may have been added or removed.
func (cmd *CheckCmd) watch(ctx *kong.Context, globals *Globals, cfg *ledger.Config) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	for {
		_ = cmd.check(ctx, globals, cfg)

		if err := cmd.rewatch(watcher); err != nil {
			return err
		}
		printInfof(ctx.Stderr, "watching %s", filepath.Base(cmd.File))

		select {
		case <-interrupt:
			return nil
		case err := <-watcher.Errors:
			return err
		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			// Editors often fire several events per save; let them settle.
			time.Sleep(100 * time.Millisecond)
			drainEvents(watcher)
		}
	}
}

// rewatch resets the watch list to the files the last pass actually loaded.
func (cmd *CheckCmd) rewatch(watcher *fsnotify.Watcher) error {
	for _, path := range watcher.WatchList() {
		_ = watcher.Remove(path)
	}

	result, err := beansql.LoadFiles(context.Background(), cmd.File)
	if err != nil {
		// The entry file may be mid-save; fall back to watching it alone.
		result = []string{cmd.File}
	}
	for _, path := range result {
		if err := watcher.Add(path); err != nil {
			return err
		}
	}
	return nil
}

func drainEvents(watcher *fsnotify.Watcher) {
	for {
		select {
		case <-watcher.Events:
		default:
			return
		}
	}
}
