// Package diag defines the diagnostic model shared by all build stages.
//
// A Diagnostic carries a Severity, a stable Code (see codes.go), a short
// message, the path of the file it belongs to and a primary span inside that
// file. Notes add secondary positions.
//
// Stages emit through a Reporter so they stay independent of storage. The
// build collects everything into a Bag, which is safe for concurrent use,
// enforces the --max-diagnostics limit and supports sorting and
// deduplication. Rendering lives in internal/diagfmt.
package diag
