package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	rerrors "github.com/conneroisu/redactor/internal/errors"
	"github.com/conneroisu/redactor/internal/markup"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newTagCmd())
}

// newTagCmd builds the tag command tree. Each call returns fresh flag state.
func newTagCmd() *cobra.Command {
	tagCmd := &cobra.Command{
		Use:   "tag",
		Short: "Insert tags into a document",
		Long: `Apply the same transforms an editor toolbar applies.

By default the result is printed as JSON with the new text and the selection
the editor should apply. With --write the file is updated in place.`,
	}

	tagCmd.AddCommand(newTagInlineCmd(), newTagBlockCmd())
	return tagCmd
}

func newTagInlineCmd() *cobra.Command {
	var (
		start, end  int
		tagName     string
		value       string
		placeholder string
		write       bool
	)

	cmd := &cobra.Command{
		Use:   "inline <file>",
		Short: "Wrap a byte range in an inline tag",
		Example: `  redactor tag inline notes.txt --start 2 --end 6 --tag nota
  redactor tag inline notes.txt --start 10 --end 10 --tag cita --value smith2020 --write`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := markup.LookupKind(tagName)
			if !kind.IsInline() {
				return rerrors.NewValidationError(rerrors.ErrCodeInvalidRequest,
					fmt.Sprintf("%q is not an inline tag (%s)", tagName, kindList(markup.InlineKinds())))
			}

			opts := markup.InlineOptions{Placeholder: placeholder}
			if cmd.Flags().Changed("value") {
				opts.Value = &value
			}

			return applyToFile(cmd, args[0], write, func(text string) markup.ApplyResult {
				return markup.ApplyInlineTag(text, start, end, tagName, opts)
			})
		},
	}

	cmd.Flags().IntVar(&start, "start", 0, "Selection start (byte offset)")
	cmd.Flags().IntVar(&end, "end", 0, "Selection end (byte offset)")
	cmd.Flags().StringVarP(&tagName, "tag", "t", "", "Tag name (nota, cita, dorado, ...)")
	cmd.Flags().StringVar(&value, "value", "", "Payload to use instead of the selection")
	cmd.Flags().StringVar(&placeholder, "placeholder", "", "Payload when the selection is empty")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the result back to the file")
	_ = cmd.MarkFlagRequired("tag")

	AddFlagValidation(cmd.Flags(), "start", ValidateOffset)
	AddFlagValidation(cmd.Flags(), "end", ValidateOffset)

	return cmd
}

func newTagBlockCmd() *cobra.Command {
	var (
		cursor  int
		tagName string
		title   string
		write   bool
	)

	cmd := &cobra.Command{
		Use:   "block <file>",
		Short: "Insert an empty block tag at a byte offset",
		Example: `  redactor tag block notes.txt --cursor 42 --tag alerta --title "Watch out"
  redactor tag block notes.txt --cursor 0 --tag caja --write`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := markup.LookupKind(tagName)
			if !kind.IsBlock() {
				return rerrors.NewValidationError(rerrors.ErrCodeInvalidRequest,
					fmt.Sprintf("%q is not a block tag (%s)", tagName, kindList(markup.BlockKinds())))
			}

			return applyToFile(cmd, args[0], write, func(text string) markup.ApplyResult {
				return markup.InsertBlockTag(text, cursor, tagName, title)
			})
		},
	}

	cmd.Flags().IntVar(&cursor, "cursor", 0, "Insertion point (byte offset)")
	cmd.Flags().StringVarP(&tagName, "tag", "t", "", "Block tag name (caja, alerta, info, destacado)")
	cmd.Flags().StringVar(&title, "title", "", "Block title")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the result back to the file")
	_ = cmd.MarkFlagRequired("tag")

	AddFlagValidation(cmd.Flags(), "cursor", ValidateOffset)

	return cmd
}

// applyToFile runs transform over the file content and either prints the
// result as JSON or writes the new text back.
func applyToFile(cmd *cobra.Command, path string, write bool, transform func(string) markup.ApplyResult) error {
	info, err := os.Stat(path)
	if err != nil {
		return rerrors.ErrReadFailed(path, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return rerrors.ErrReadFailed(path, err)
	}

	result := transform(string(content))

	if !write {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	if err := os.WriteFile(path, []byte(result.Text), info.Mode().Perm()); err != nil {
		return rerrors.ErrWriteFailed(path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "updated %s (selection %d-%d)\n", path, result.SelectionStart, result.SelectionEnd)
	return nil
}

func kindList(kinds []markup.TagKind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, ", ")
}
