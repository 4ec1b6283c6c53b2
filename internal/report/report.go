// Package report renders lint results for people and tools.
//
// Four formats are supported: text (one line per issue, compiler style),
// json, yaml, and a standalone html page.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	rerrors "github.com/conneroisu/redactor/internal/errors"
	"github.com/conneroisu/redactor/internal/markup"
	"github.com/conneroisu/redactor/internal/scanner"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Formats lists the accepted output formats.
var Formats = []string{"text", "json", "yaml", "html"}

// Options controls rendering.
type Options struct {
	Format string
	// Verbose adds fix suggestions under each issue in text output.
	Verbose bool
}

// Summary counts files and issues by severity.
type Summary struct {
	Files    int `json:"files" yaml:"files"`
	Errors   int `json:"errors" yaml:"errors"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Hints    int `json:"hints" yaml:"hints"`
}

// FileResult holds the located issues of one file.
type FileResult struct {
	Path   string              `json:"path" yaml:"path"`
	Issues []rerrors.FileIssue `json:"issues" yaml:"issues"`
}

// Document is the structured form written by the json and yaml formats.
type Document struct {
	Summary Summary      `json:"summary" yaml:"summary"`
	Files   []FileResult `json:"files" yaml:"files"`
}

// Summarize counts the issues in reports.
func Summarize(reports []scanner.DocumentReport) Summary {
	s := Summary{Files: len(reports)}
	for _, r := range reports {
		counts := markup.CountBySeverity(r.Issues)
		s.Errors += counts[markup.SeverityError]
		s.Warnings += counts[markup.SeverityWarning]
		s.Hints += counts[markup.SeverityHint]
	}
	return s
}

// String returns a one-line summary.
func (s Summary) String() string {
	return fmt.Sprintf("%d %s checked: %d %s, %d %s, %d %s",
		s.Files, plural(s.Files, "file"),
		s.Errors, plural(s.Errors, "error"),
		s.Warnings, plural(s.Warnings, "warning"),
		s.Hints, plural(s.Hints, "hint"))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// NewDocument locates every issue by line and column.
func NewDocument(reports []scanner.DocumentReport) Document {
	doc := Document{
		Summary: Summarize(reports),
		Files:   make([]FileResult, 0, len(reports)),
	}
	for _, r := range reports {
		fr := FileResult{Path: r.Path, Issues: make([]rerrors.FileIssue, 0, len(r.Issues))}
		for _, issue := range r.Issues {
			fr.Issues = append(fr.Issues, rerrors.NewFileIssue(r.Path, r.Text, issue))
		}
		doc.Files = append(doc.Files, fr)
	}
	return doc
}

// Render writes reports in the given format.
func Render(w io.Writer, format string, reports []scanner.DocumentReport) error {
	return RenderWithOptions(w, Options{Format: format}, reports)
}

// RenderWithOptions writes reports according to opts.
func RenderWithOptions(w io.Writer, opts Options, reports []scanner.DocumentReport) error {
	doc := NewDocument(reports)

	switch strings.ToLower(opts.Format) {
	case "", "text":
		return renderText(w, doc, opts.Verbose)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case "html":
		return html.Render(w, buildHTML(doc))
	default:
		return rerrors.NewValidationError(rerrors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown report format %q (%s)", opts.Format, strings.Join(Formats, ", ")))
	}
}

func renderText(w io.Writer, doc Document, verbose bool) error {
	var b strings.Builder
	for _, f := range doc.Files {
		for _, issue := range f.Issues {
			fmt.Fprintf(&b, "%s:%d:%d: %s: %s [%s]\n",
				issue.File, issue.Line, issue.Column, issue.Severity, issue.Message, issue.Code)
			if verbose {
				for _, hint := range rerrors.Suggest(issue.Code) {
					fmt.Fprintf(&b, "    hint: %s\n", hint)
				}
			}
		}
	}
	b.WriteString(doc.Summary.String())
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func element(a atom.Atom, attrs []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func class(name string) []html.Attribute {
	return []html.Attribute{{Key: "class", Val: name}}
}

const stylesheet = `body{font-family:sans-serif;margin:2rem}
table{border-collapse:collapse;margin-bottom:2rem}
td,th{border:1px solid #ccc;padding:.25rem .5rem;text-align:left}
.error{color:#b00020}.warning{color:#a15c00}.hint{color:#31708f}`

var columns = []string{"line", "column", "severity", "code", "message"}

func buildHTML(doc Document) *html.Node {
	title := cases.Title(language.English)

	head := element(atom.Head, nil,
		element(atom.Meta, []html.Attribute{{Key: "charset", Val: "utf-8"}}),
		element(atom.Title, nil, text("Redactor lint report")),
		element(atom.Style, nil, text(stylesheet)),
	)

	body := element(atom.Body, nil,
		element(atom.H1, nil, text("Redactor lint report")),
		element(atom.P, class("summary"), text(doc.Summary.String())),
	)

	for _, f := range doc.Files {
		if len(f.Issues) == 0 {
			continue
		}

		headerRow := element(atom.Tr, nil)
		for _, col := range columns {
			headerRow.AppendChild(element(atom.Th, nil, text(title.String(col))))
		}

		tbody := element(atom.Tbody, nil)
		for _, issue := range f.Issues {
			sev := string(issue.Severity)
			tbody.AppendChild(element(atom.Tr, class(sev),
				element(atom.Td, nil, text(fmt.Sprint(issue.Line))),
				element(atom.Td, nil, text(fmt.Sprint(issue.Column))),
				element(atom.Td, nil, text(title.String(sev))),
				element(atom.Td, nil, element(atom.Code, nil, text(issue.Code))),
				element(atom.Td, nil, text(issue.Message)),
			))
		}

		body.AppendChild(element(atom.H2, nil, text(f.Path)))
		body.AppendChild(element(atom.Table, nil, element(atom.Thead, nil, headerRow), tbody))
	}

	root := &html.Node{Type: html.DocumentNode}
	root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	root.AppendChild(element(atom.Html, []html.Attribute{{Key: "lang", Val: "en"}}, head, body))
	return root
}
