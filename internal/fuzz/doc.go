// Package fuzztests houses Go fuzz harnesses for the module front end
// (source -> parser -> printer) and the rewriting passes. They guard against
// panics and hangs on arbitrary inputs.
package fuzztests
