package cmd

import (
	"context"
	"fmt"

	"github.com/conneroisu/redactor/internal/catalog"
	"github.com/conneroisu/redactor/internal/config"
	rerrors "github.com/conneroisu/redactor/internal/errors"
	"github.com/conneroisu/redactor/internal/logging"
	"github.com/conneroisu/redactor/internal/markup"
	"github.com/conneroisu/redactor/internal/report"
	"github.com/conneroisu/redactor/internal/scanner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var lintCmd = &cobra.Command{
	Use:     "lint [paths...]",
	Aliases: []string{"l"},
	Short:   "Report tag problems in documents",
	Long: `Lint every document under the given paths (default: lint.scan_paths) and
report tag problems such as unclosed blocks, mismatched closers, missing
arguments and unknown references.

The command exits non-zero when any issue reaches the --fail-on severity
(default: error). Use --fail-on never to only report.

Examples:
  redactor lint                          # Lint the configured scan paths
  redactor lint docs/intro.txt           # Lint one file
  redactor lint --catalog refs.yml docs  # Check citations against a catalog
  redactor lint --format json docs       # Machine-readable output
  redactor lint --format html docs > report.html`,
	PreRunE: bindCatalogFlag,
	RunE:    runLint,
}

var (
	lintFormat  string
	lintVerbose bool
)

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFormat, "format", "f", "text", "Output format (text, json, yaml, html)")
	lintCmd.Flags().BoolVarP(&lintVerbose, "verbose", "v", false, "Show fix suggestions in text output")
	lintCmd.Flags().String("catalog", "", "Reference catalog file (YAML)")
	lintCmd.Flags().String("fail-on", "error", "Lowest severity that fails the run (error, warning, hint, never)")

	AddFlagValidation(lintCmd.Flags(), "format", ValidateChoice(report.Formats...))
	AddFlagValidation(lintCmd.Flags(), "fail-on", ValidateChoice(config.FailOnValues...))
	AddFlagValidation(lintCmd.Flags(), "catalog", ValidateFileExists)

	_ = viper.BindPFlag("lint.fail_on", lintCmd.Flags().Lookup("fail-on"))
}

func runLint(cmd *cobra.Command, args []string) error {
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

	reports, scanErr := docScanner.ScanPaths(commandContext(cmd), paths)
	if scanErr != nil && reports == nil {
		return scanErr
	}

	opts := report.Options{Format: lintFormat, Verbose: lintVerbose}
	if err := report.RenderWithOptions(cmd.OutOrStdout(), opts, reports); err != nil {
		return err
	}

	collector := rerrors.NewIssueCollector()
	for _, r := range reports {
		collector.Add(r.Path, r.Text, r.Issues)
	}
	collector.AddError(scanErr)

	if errs := collector.Errors(); len(errs) > 0 {
		return errs[0]
	}

	return checkThreshold(collector, cfg.Lint.FailOn)
}

// newDocumentScanner builds a scanner from the lint settings, loading the
// configured reference catalog.
func newDocumentScanner(cfg *config.Config, logger logging.Logger) (*scanner.DocumentScanner, error) {
	cat, err := catalog.Load(cfg.Lint.CatalogFile)
	if err != nil {
		return nil, err
	}
	if !cat.Empty() {
		logger.Debug(context.Background(), "loaded reference catalog",
			"path", cfg.Lint.CatalogFile,
			"bibliography", len(cat.Bibliography),
			"figures", len(cat.Figures),
			"tables", len(cat.Tables))
	}

	return scanner.NewDocumentScanner(scanner.Options{
		Extensions:      cfg.Lint.Extensions,
		ExcludePatterns: cfg.Lint.ExcludePatterns,
		Workers:         cfg.Lint.WorkerCount(),
		Context:         cat.LintContext(),
		Logger:          logger,
	}), nil
}

// checkThreshold fails when any collected issue is at or above failOn.
// "never" has no rank and therefore never fails.
func checkThreshold(collector *rerrors.IssueCollector, failOn string) error {
	threshold := markup.Severity(failOn)
	if !collector.HasBlocking(threshold) {
		return nil
	}

	blocking := 0
	for _, issue := range collector.Issues() {
		if issue.Severity.Rank() >= threshold.Rank() {
			blocking++
		}
	}

	return rerrors.NewValidationError(rerrors.ErrCodeLintFailed,
		fmt.Sprintf("%d %s at or above %s", blocking, pluralize(blocking, "issue"), failOn))
}

// bindCatalogFlag binds the running command's --catalog flag. lint and serve
// both own one, so the binding happens when the command runs.
func bindCatalogFlag(cmd *cobra.Command, args []string) error {
	return viper.BindPFlag("lint.catalog_file", cmd.Flags().Lookup("catalog"))
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func pluralize(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
