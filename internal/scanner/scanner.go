// Package scanner discovers markup documents and lints them concurrently.
//
// The scanner walks the configured paths, keeps files whose extension is
// allowed and whose name matches no exclude pattern, and hands each one to a
// persistent worker pool. Every worker reads the file and runs the tag
// linter against the shared reference catalog. Results come back as one
// DocumentReport per file, ordered by path.
package scanner

import (
	"context"
	"fmt"
	"hash/crc32"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	rerrors "github.com/conneroisu/redactor/internal/errors"
	"github.com/conneroisu/redactor/internal/logging"
	"github.com/conneroisu/redactor/internal/markup"
	"github.com/conneroisu/redactor/internal/validation"
)

// MaxFileSize is the largest document the scanner will read.
const MaxFileSize = 10 * 1024 * 1024

// DocumentReport is the lint result for one file.
type DocumentReport struct {
	Path   string         `json:"path" yaml:"path"`
	Issues []markup.Issue `json:"issues" yaml:"issues"`
	// Text is kept so callers can turn offsets into line and column.
	Text string `json:"-" yaml:"-"`
	Hash string `json:"hash" yaml:"hash"`
}

// Options configures a DocumentScanner.
type Options struct {
	Extensions      []string
	ExcludePatterns []string
	Workers         int
	Context         *markup.LintContext
	Logger          logging.Logger
}

// ScanJob represents a lint job for the worker pool.
type ScanJob struct {
	filePath string
	result   chan<- ScanResult
}

// ScanResult carries either a report or the error that prevented it.
type ScanResult struct {
	report DocumentReport
	err    error
}

// WorkerPool manages persistent lint workers fed from a shared job queue.
type WorkerPool struct {
	jobQueue    chan ScanJob
	workers     []*ScanWorker
	workerCount int
	stop        chan struct{}
	stopped     bool
	mu          sync.RWMutex
}

// ScanWorker processes jobs until the pool stops.
type ScanWorker struct {
	id       int
	jobQueue <-chan ScanJob
	scanner  *DocumentScanner
	stop     <-chan struct{}
}

// DocumentScanner finds documents and lints them with a worker pool.
type DocumentScanner struct {
	extensions []string
	excludes   []string
	logger     logging.Logger
	workerPool *WorkerPool

	ctxMu   sync.RWMutex
	lintCtx *markup.LintContext
}

// NewDocumentScanner creates a scanner and starts its workers.
func NewDocumentScanner(opts Options) *DocumentScanner {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	s := &DocumentScanner{
		extensions: normalizeExtensions(opts.Extensions),
		excludes:   opts.ExcludePatterns,
		logger:     logger.WithComponent("scanner"),
		lintCtx:    opts.Context,
	}
	s.workerPool = NewWorkerPool(workers, s)

	return s
}

// NewWorkerPool creates a pool of workers that lint files for scanner.
func NewWorkerPool(workerCount int, scanner *DocumentScanner) *WorkerPool {
	pool := &WorkerPool{
		jobQueue:    make(chan ScanJob, workerCount*2),
		workerCount: workerCount,
		stop:        make(chan struct{}),
	}

	pool.workers = make([]*ScanWorker, workerCount)
	for i := 0; i < workerCount; i++ {
		worker := &ScanWorker{
			id:       i,
			jobQueue: pool.jobQueue,
			scanner:  scanner,
			stop:     pool.stop,
		}
		pool.workers[i] = worker
		go worker.start()
	}

	return pool
}

func (w *ScanWorker) start() {
	for {
		select {
		case job := <-w.jobQueue:
			report, err := w.scanner.LintFile(job.filePath)
			job.result <- ScanResult{report: report, err: err}
		case <-w.stop:
			return
		}
	}
}

// submit queues a job unless the pool is stopped or ctx is done.
func (p *WorkerPool) submit(ctx context.Context, job ScanJob) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return fmt.Errorf("worker pool stopped")
	}

	select {
	case p.jobQueue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop shuts the workers down. It is safe to call more than once.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}
	p.stopped = true
	close(p.stop)
}

// Close stops the worker pool.
func (s *DocumentScanner) Close() error {
	if s.workerPool != nil {
		s.workerPool.Stop()
	}
	return nil
}

// SetLintContext replaces the reference catalog used by later lints.
func (s *DocumentScanner) SetLintContext(ctx *markup.LintContext) {
	s.ctxMu.Lock()
	defer s.ctxMu.Unlock()
	s.lintCtx = ctx
}

func (s *DocumentScanner) lintContext() *markup.LintContext {
	s.ctxMu.RLock()
	defer s.ctxMu.RUnlock()
	return s.lintCtx
}

// Matches reports whether path passes the extension and exclude filters.
func (s *DocumentScanner) Matches(path string) bool {
	if len(s.extensions) > 0 {
		ext := strings.ToLower(filepath.Ext(path))
		allowed := false
		for _, e := range s.extensions {
			if ext == e {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	base := filepath.Base(path)
	slashed := filepath.ToSlash(path)
	for _, pattern := range s.excludes {
		if ok, _ := filepath.Match(pattern, base); ok {
			return false
		}
		if ok, _ := filepath.Match(pattern, slashed); ok {
			return false
		}
	}

	return true
}

// Discover expands paths into the sorted, de-duplicated list of documents
// to lint. Files named explicitly skip the extension filter; files found by
// walking a directory do not. Hidden directories are not descended into.
func (s *DocumentScanner) Discover(ctx context.Context, paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	add := func(path string) {
		clean := filepath.Clean(path)
		if _, dup := seen[clean]; dup {
			return
		}
		seen[clean] = struct{}{}
		files = append(files, clean)
	}

	for _, root := range paths {
		if err := validation.ValidatePath(root); err != nil {
			return nil, rerrors.ErrInvalidPath(root, err)
		}

		info, err := os.Stat(root)
		if err != nil {
			return nil, rerrors.ErrReadFailed(root, err)
		}

		if !info.IsDir() {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}

			if !s.Matches(path) {
				return nil
			}

			// Skip invalid paths silently
			if validation.ValidatePath(path) != nil {
				return nil
			}

			add(path)
			return nil
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, rerrors.NewIOError(rerrors.ErrCodeReadFailed, "failed to walk directory", err).
				WithLocation(root, 0, 0)
		}
	}

	sort.Strings(files)
	return files, nil
}

// ScanPaths lints every document under paths. Reports are sorted by path.
// Files that cannot be read are logged and summarised in the returned error,
// while the remaining reports are still returned.
func (s *DocumentScanner) ScanPaths(ctx context.Context, paths []string) ([]DocumentReport, error) {
	op := logging.StartOperation(s.logger, "scan")

	files, err := s.Discover(ctx, paths)
	if err != nil {
		op.EndWithError(ctx, err)
		return nil, err
	}

	reports, err := s.lintBatch(ctx, files)
	op.End(ctx, "files", len(files), "reports", len(reports))

	return reports, err
}

func (s *DocumentScanner) lintBatch(ctx context.Context, files []string) ([]DocumentReport, error) {
	if len(files) == 0 {
		return nil, nil
	}

	resultChan := make(chan ScanResult, len(files))
	submitted := 0
	var submitErr error

	for _, file := range files {
		if err := s.workerPool.submit(ctx, ScanJob{filePath: file, result: resultChan}); err != nil {
			submitErr = err
			break
		}
		submitted++
	}

	reports := make([]DocumentReport, 0, submitted)
	var failures []error
	for i := 0; i < submitted; i++ {
		result := <-resultChan
		if result.err != nil {
			s.logger.Warn(ctx, result.err, "skipping document")
			failures = append(failures, result.err)
			continue
		}
		reports = append(reports, result.report)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Path < reports[j].Path
	})

	if submitErr != nil {
		return reports, submitErr
	}
	if len(failures) > 0 {
		return reports, fmt.Errorf("scan completed with %d errors: %w", len(failures), failures[0])
	}

	return reports, nil
}

// LintFile reads and lints a single document.
func (s *DocumentScanner) LintFile(path string) (DocumentReport, error) {
	if err := validation.ValidatePath(path); err != nil {
		return DocumentReport{}, rerrors.ErrInvalidPath(path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return DocumentReport{}, rerrors.ErrReadFailed(path, err)
	}
	if info.Size() > MaxFileSize {
		return DocumentReport{}, rerrors.NewIOError(rerrors.ErrCodeReadFailed,
			fmt.Sprintf("document exceeds %d bytes", MaxFileSize), nil).WithLocation(path, 0, 0)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return DocumentReport{}, rerrors.ErrReadFailed(path, err)
	}

	text := string(content)
	issues := markup.LintTags(text, s.lintContext())

	s.logger.Debug(context.Background(), "linted document", "path", path, "issues", len(issues))

	return DocumentReport{
		Path:   path,
		Issues: issues,
		Text:   text,
		Hash:   Hash(content),
	}, nil
}

// Hash returns the CRC32 checksum used to detect changed documents.
func Hash(content []byte) string {
	return fmt.Sprintf("%08x", crc32.ChecksumIEEE(content))
}

func normalizeExtensions(exts []string) []string {
	result := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		result = append(result, ext)
	}
	return result
}
