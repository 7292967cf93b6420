package graph

import "github.com/graphkernel/codegraph/internal/models"

// Sentinel errors re-exported from internal/models so callers of this
// package's public API never need to import internal/models themselves.
// Compare with errors.Is against these.
var (
	ErrNotIndexed              = models.ErrNotIndexed
	ErrNotFound                = models.ErrNotFound
	ErrParse                   = models.ErrParse
	ErrUnsupportedLanguage     = models.ErrUnsupportedLanguage
	ErrInvalidPath             = models.ErrInvalidPath
	ErrSnapshotVersionMismatch = models.ErrSnapshotVersionMismatch
	ErrIO                      = models.ErrIO
	ErrCanceled                = models.ErrCanceled
)

type wrappedError = models.WrappedError

// NotFound reports that id does not name any element in the current graph.
func NotFound(id string) error { return models.NotFound(id) }

// ParseError reports that path failed to parse, with message giving the
// extractor's explanation.
func ParseError(path, message string) error { return models.ParseError(path, message) }

// UnsupportedLanguage reports that path's extension has no registered
// extractor.
func UnsupportedLanguage(path string) error { return models.UnsupportedLanguage(path) }

// IoError reports a filesystem failure reading or writing path.
func IoError(path, message string) error { return models.IoError(path, message) }
