package diag

import (
	"bundler/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is a user-facing problem. Path names the file it belongs to;
// Primary is meaningful only when that file was loaded into the FileSet.
// Configuration problems may leave Path empty.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Path     string
	Primary  source.Span
	Notes    []Note
}
