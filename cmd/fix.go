package cmd

import (
	"context"
	"fmt"
	"os"

	rerrors "github.com/conneroisu/redactor/internal/errors"
	"github.com/conneroisu/redactor/internal/markup"
	"github.com/conneroisu/redactor/internal/scanner"
	"github.com/spf13/cobra"
)

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Normalize document whitespace the way editors do on save",
	Long: `Apply the save-time normalization to every document under the given paths
(default: lint.scan_paths):

  - line endings become \n
  - blank lines between list items are removed
  - list blocks are separated from structural tag lines by a blank line
  - runs of blank lines collapse to at most two
  - surrounding whitespace is trimmed

With --check nothing is written; the command lists the files that would
change and exits non-zero if there are any.

Examples:
  redactor fix                # Normalize the configured scan paths
  redactor fix docs/          # Normalize one directory
  redactor fix --check docs/  # Fail in CI when files are not normalized`,
	RunE: runFix,
}

var fixCheck bool

func init() {
	rootCmd.AddCommand(fixCmd)

	fixCmd.Flags().BoolVar(&fixCheck, "check", false, "Report files that would change without writing them")
}

func runFix(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		paths = cfg.Lint.ScanPaths
	}

	docScanner := scanner.NewDocumentScanner(scanner.Options{
		Extensions:      cfg.Lint.Extensions,
		ExcludePatterns: cfg.Lint.ExcludePatterns,
		Workers:         1,
		Logger:          logger,
	})
	defer docScanner.Close()

	files, err := docScanner.Discover(commandContext(cmd), paths)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	changed := 0
	for _, file := range files {
		didChange, err := normalizeFile(file, fixCheck)
		if err != nil {
			return err
		}
		if !didChange {
			continue
		}
		changed++
		if fixCheck {
			fmt.Fprintf(out, "would normalize %s\n", file)
		} else {
			fmt.Fprintf(out, "normalized %s\n", file)
		}
	}

	logger.Info(context.Background(), "fix completed",
		"files", len(files), "changed", changed, "check", fixCheck)

	if fixCheck && changed > 0 {
		return rerrors.NewValidationError(rerrors.ErrCodeLintFailed,
			fmt.Sprintf("%d %s not normalized", changed, pluralize(changed, "file")))
	}

	return nil
}

// normalizeFile rewrites path with its normalized text, keeping the file
// mode. It reports whether the content differs; in dry-run mode nothing is
// written.
func normalizeFile(path string, dryRun bool) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, rerrors.ErrReadFailed(path, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return false, rerrors.ErrReadFailed(path, err)
	}

	normalized := markup.NormalizeOnSave(string(content))
	if normalized == string(content) {
		return false, nil
	}
	if dryRun {
		return true, nil
	}

	if err := os.WriteFile(path, []byte(normalized), info.Mode().Perm()); err != nil {
		return false, rerrors.ErrWriteFailed(path, err)
	}

	return true, nil
}
