package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/conneroisu/redactor/internal/markup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactorErrorString(t *testing.T) {
	err := NewIOError(ErrCodeReadFailed, "failed to read document", stderrors.New("disk gone")).
		WithLocation("docs/a.txt", 3, 7)

	assert.Equal(t, "[ERR_READ_FAILED] docs/a.txt:3:7 failed to read document: disk gone", err.Error())
}

func TestRedactorErrorIsAndUnwrap(t *testing.T) {
	cause := stderrors.New("root")
	err := NewConfigError(ErrCodeConfigInvalid, "bad port", cause)
	wrapped := fmt.Errorf("loading: %w", err)

	assert.True(t, stderrors.Is(wrapped, cause))
	assert.True(t, stderrors.Is(wrapped, &RedactorError{Type: ErrorTypeConfig, Code: ErrCodeConfigInvalid}))
	assert.False(t, stderrors.Is(wrapped, &RedactorError{Type: ErrorTypeIO, Code: ErrCodeConfigInvalid}))
	assert.True(t, HasErrorType(wrapped, ErrorTypeConfig))
	assert.True(t, HasErrorCode(wrapped, ErrCodeConfigInvalid))
	assert.False(t, HasErrorCode(cause, ErrCodeConfigInvalid))
}

func TestErrReadFailedNotFound(t *testing.T) {
	err := ErrReadFailed("missing.txt", fmt.Errorf("open: %w", fs.ErrNotExist))
	assert.Equal(t, ErrCodeFileNotFound, err.Code)
	assert.Equal(t, "missing.txt", err.FilePath)

	err = ErrReadFailed("locked.txt", fs.ErrPermission)
	assert.Equal(t, ErrCodeReadFailed, err.Code)
}

func TestWithContext(t *testing.T) {
	err := NewValidationError(ErrCodeInvalidRequest, "unknown op").WithContext("op", "explode")
	assert.Equal(t, "explode", err.Context["op"])
	assert.Equal(t, ErrorTypeValidation, err.Type)
}

func TestNewFileIssue(t *testing.T) {
	text := "line one\n[[foo]]"
	issue := markup.Issue{Type: markup.SeverityHint, Code: markup.CodeUnknownTag, Message: "unknown tag", From: 9, To: 16}

	fi := NewFileIssue("doc.txt", text, issue)
	assert.Equal(t, FileIssue{
		File:     "doc.txt",
		Line:     2,
		Column:   1,
		Severity: markup.SeverityHint,
		Code:     markup.CodeUnknownTag,
		Message:  "unknown tag",
	}, fi)
	assert.Equal(t, "doc.txt:2:1: hint: unknown tag", fi.Error())
}

func TestIssueCollector(t *testing.T) {
	collector := NewIssueCollector()
	assert.Empty(t, collector.Issues())
	assert.False(t, collector.HasBlocking(markup.SeverityHint))

	collector.Add("b.txt", "x", []markup.Issue{{Type: markup.SeverityWarning, Message: "w"}})
	collector.Add("a.txt", "x\ny", []markup.Issue{
		{Type: markup.SeverityHint, Message: "h2", From: 2},
		{Type: markup.SeverityHint, Message: "h1", From: 0},
	})
	collector.AddError(nil)
	collector.AddError(stderrors.New("io"))

	issues := collector.Issues()
	require.Len(t, issues, 3)
	assert.Equal(t, "h1", issues[0].Message)
	assert.Equal(t, "h2", issues[1].Message)
	assert.Equal(t, "b.txt", issues[2].File)
	assert.Len(t, collector.Errors(), 1)

	assert.True(t, collector.HasBlocking(markup.SeverityWarning))
	assert.False(t, collector.HasBlocking(markup.SeverityError))
	assert.False(t, collector.HasBlocking(markup.Severity("never")))

	collector.Clear()
	assert.Empty(t, collector.Issues())
	assert.Empty(t, collector.Errors())
}

func TestSuggest(t *testing.T) {
	for _, code := range []string{
		markup.CodeUnclosedMarker,
		markup.CodeMismatchedCloser,
		markup.CodeUnknownReference,
		markup.CodeMultilineMath,
	} {
		assert.NotEmpty(t, Suggest(code), code)
	}
	assert.Nil(t, Suggest("no-such-code"))
}
