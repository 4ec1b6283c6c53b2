package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/conneroisu/redactor/internal/logging"
	"github.com/conneroisu/redactor/internal/report"
	"github.com/conneroisu/redactor/internal/scanner"
	"github.com/conneroisu/redactor/internal/watcher"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var watchCmd = &cobra.Command{
	Use:     "watch [paths...]",
	Aliases: []string{"w"},
	Short:   "Re-lint documents whenever they change",
	Long: `Watch the given paths (default: lint.scan_paths) and print a lint report for
every batch of changed documents. Changes are debounced by watch.debounce_ms.

With --fix each changed document is normalized before it is linted.

Examples:
  redactor watch                # Watch the configured scan paths
  redactor watch docs/ --fix    # Normalize and lint on every save
  redactor watch --debounce 500 # Wait longer before re-linting`,
	RunE: runWatch,
}

var watchFix bool

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchFix, "fix", false, "Normalize changed documents before linting")
	watchCmd.Flags().Int("debounce", 300, "Debounce delay in milliseconds")
	_ = viper.BindPFlag("watch.debounce_ms", watchCmd.Flags().Lookup("debounce"))
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		paths = cfg.Lint.ScanPaths
	}

	docScanner, err := newDocumentScanner(cfg, logger)
	if err != nil {
		return err
	}
	defer docScanner.Close()

	fw, err := watcher.NewFileWatcher(time.Duration(cfg.Watch.DebounceMS)*time.Millisecond, logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Stop()

	fw.AddFilter(watcher.NoGitFilter)
	fw.AddFilter(watcher.NoBackupFilter)
	fw.AddFilter(watcher.ExtensionFilter(cfg.Lint.Extensions...))
	if len(cfg.Lint.ExcludePatterns) > 0 {
		fw.AddFilter(watcher.ExcludeFilter(cfg.Lint.ExcludePatterns...))
	}

	out := cmd.OutOrStdout()
	fw.AddHandler(func(events []watcher.ChangeEvent) error {
		return lintChanged(out, docScanner, events, watchFix, logger)
	})

	for _, path := range paths {
		if err := watchPath(fw, path); err != nil {
			logger.Warn(context.Background(), err, "failed to watch path", "path", path)
		}
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reports, err := docScanner.ScanPaths(ctx, paths)
	if err != nil {
		logger.Warn(ctx, err, "initial scan incomplete")
	}
	if err := report.Render(out, "text", reports); err != nil {
		return err
	}

	if err := fw.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	logger.Info(ctx, "watching for changes",
		"directories", len(fw.WatchedPaths()),
		"debounce_ms", cfg.Watch.DebounceMS,
		"fix", watchFix)

	<-ctx.Done()
	logger.Info(context.Background(), "stopping watcher")
	return nil
}

// watchPath registers a directory tree, or a single file.
func watchPath(fw *watcher.FileWatcher, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fw.AddRecursive(path)
	}
	return fw.AddPath(path)
}

// lintChanged re-lints the documents in a change batch and renders a text
// report for them. Deleted and renamed-away files are skipped.
func lintChanged(out io.Writer, docScanner *scanner.DocumentScanner, events []watcher.ChangeEvent, fix bool, logger logging.Logger) error {
	ctx := context.Background()
	reports := make([]scanner.DocumentReport, 0, len(events))

	for _, event := range events {
		if event.Type == watcher.EventTypeDeleted || event.Type == watcher.EventTypeRenamed {
			continue
		}

		if fix {
			changed, err := normalizeFile(event.Path, false)
			if err != nil {
				logger.Warn(ctx, err, "failed to normalize document", "path", event.Path)
				continue
			}
			if changed {
				logger.Info(ctx, "normalized document", "path", event.Path)
			}
		}

		r, err := docScanner.LintFile(event.Path)
		if err != nil {
			logger.Warn(ctx, err, "failed to lint document", "path", event.Path)
			continue
		}
		reports = append(reports, r)
	}

	if len(reports) == 0 {
		return nil
	}

	return report.Render(out, "text", reports)
}
