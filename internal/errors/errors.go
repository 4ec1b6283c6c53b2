package errors

import (
	"fmt"
	"sort"
	"sync"

	"github.com/conneroisu/redactor/internal/markup"
)

// FileIssue is a lint issue located in a file by line and column.
type FileIssue struct {
	File     string          `json:"file" yaml:"file"`
	Line     int             `json:"line" yaml:"line"`
	Column   int             `json:"column" yaml:"column"`
	Severity markup.Severity `json:"severity" yaml:"severity"`
	Code     string          `json:"code" yaml:"code"`
	Message  string          `json:"message" yaml:"message"`
}

// Error implements the error interface
func (fi *FileIssue) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", fi.File, fi.Line, fi.Column, fi.Severity, fi.Message)
}

// NewFileIssue locates issue within text.
func NewFileIssue(file, text string, issue markup.Issue) FileIssue {
	line, col := markup.Position(text, issue.From)
	return FileIssue{
		File:     file,
		Line:     line,
		Column:   col,
		Severity: issue.Type,
		Code:     issue.Code,
		Message:  issue.Message,
	}
}

// IssueCollector gathers file issues and operational errors from concurrent
// workers.
type IssueCollector struct {
	issues []FileIssue
	errors []error
	mutex  sync.RWMutex
}

// NewIssueCollector creates a new issue collector
func NewIssueCollector() *IssueCollector {
	return &IssueCollector{
		issues: make([]FileIssue, 0),
		errors: make([]error, 0),
	}
}

// Add records the issues of one document.
func (c *IssueCollector) Add(file, text string, issues []markup.Issue) {
	located := make([]FileIssue, 0, len(issues))
	for _, issue := range issues {
		located = append(located, NewFileIssue(file, text, issue))
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.issues = append(c.issues, located...)
}

// AddError records an operational error. Nil errors are ignored.
func (c *IssueCollector) AddError(err error) {
	if err == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errors = append(c.errors, err)
}

// Issues returns a copy of the collected issues ordered by file, line and column.
func (c *IssueCollector) Issues() []FileIssue {
	c.mutex.RLock()
	result := make([]FileIssue, len(c.issues))
	copy(result, c.issues)
	c.mutex.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})

	return result
}

// Errors returns a copy of the collected operational errors.
func (c *IssueCollector) Errors() []error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	result := make([]error, len(c.errors))
	copy(result, c.errors)
	return result
}

// HasBlocking reports whether any issue is at or above threshold.
func (c *IssueCollector) HasBlocking(threshold markup.Severity) bool {
	if threshold.Rank() == 0 {
		return false
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()
	for _, issue := range c.issues {
		if issue.Severity.Rank() >= threshold.Rank() {
			return true
		}
	}
	return false
}

// Clear removes everything collected so far.
func (c *IssueCollector) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.issues = c.issues[:0]
	c.errors = c.errors[:0]
}
