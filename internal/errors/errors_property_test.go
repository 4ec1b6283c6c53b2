//go:build property

package errors

import (
	"fmt"
	"sync"
	"testing"

	"github.com/conneroisu/redactor/internal/markup"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestIssueCollectorProperties validates issue collection under concurrency.
func TestIssueCollectorProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(2468)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	// Property: concurrent adds never lose issues
	properties.Property("concurrent issue addition is thread-safe", prop.ForAll(
		func(goroutineCount int, issuesPerGoroutine int) bool {
			collector := NewIssueCollector()

			var wg sync.WaitGroup
			for g := 0; g < goroutineCount; g++ {
				wg.Add(1)
				go func(id int) {
					defer wg.Done()
					issues := make([]markup.Issue, issuesPerGoroutine)
					for i := range issues {
						issues[i] = markup.Issue{Type: markup.SeverityWarning, Message: "w", From: i, To: i}
					}
					collector.Add(fmt.Sprintf("doc_%d.txt", id), "text\nmore text", issues)
				}(g)
			}
			wg.Wait()

			return len(collector.Issues()) == goroutineCount*issuesPerGoroutine
		},
		gen.IntRange(1, 10),
		gen.IntRange(1, 20),
	))

	// Property: Issues is always sorted by file then line
	properties.Property("issues are sorted", prop.ForAll(
		func(files []string) bool {
			collector := NewIssueCollector()
			for _, f := range files {
				collector.Add(f, "a\nb\nc", []markup.Issue{
					{Type: markup.SeverityError, From: 4},
					{Type: markup.SeverityHint, From: 0},
				})
			}

			issues := collector.Issues()
			for i := 1; i < len(issues); i++ {
				prev, cur := issues[i-1], issues[i]
				if prev.File > cur.File || (prev.File == cur.File && prev.Line > cur.Line) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.OneConstOf("b.txt", "a.txt", "c.md")),
	))

	// Property: Clear empties the collector
	properties.Property("clear is complete", prop.ForAll(
		func(count int) bool {
			collector := NewIssueCollector()
			for i := 0; i < count; i++ {
				collector.Add("x.txt", "", []markup.Issue{{Type: markup.SeverityError}})
				collector.AddError(fmt.Errorf("err %d", i))
			}
			collector.Clear()
			return len(collector.Issues()) == 0 && len(collector.Errors()) == 0
		},
		gen.IntRange(0, 30),
	))

	properties.TestingRun(t)
}
