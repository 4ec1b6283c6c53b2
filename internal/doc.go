// Package internal contains the core implementation packages for redactor.
//
// These packages follow Go's internal package convention: they are not
// importable by other modules and exist to serve the redactor CLI.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - markup: tokenizer, tag taxonomy, linter, transforms and save-time normalizer
//   - catalog: reference ids (bibliography, figures, tables) loaded from YAML
//   - scanner: document discovery and concurrent linting with a worker pool
//   - report: text, JSON, YAML and HTML rendering of lint results
//   - watcher: file system monitoring with debouncing
//   - server: websocket endpoint that answers editor requests
//   - config: viper-backed configuration with validation
//   - errors: typed errors, located issues and fix suggestions
//   - logging: structured logging on log/slog
//   - validation: path, extension and origin checks
//   - version: build metadata
//   - testutils: shared test fixtures
//
// # Data Flow
//
// The markup package is pure: every operation takes text and returns a new
// value. The other packages move documents in and results out:
//
//   - Scanner reads files and hands their text to markup.LintTags
//   - Report turns byte offsets into line and column for display
//   - Watcher feeds changed paths back to the scanner
//   - Server runs the same markup operations for connected editors
//
// # Security Considerations
//
//   - Config and scanner validate paths and reject traversal
//   - Server checks websocket origins against an allowlist
//   - Documents larger than scanner.MaxFileSize are refused
package internal
