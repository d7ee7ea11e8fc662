package diag

import (
	"fmt"

	"bundler/internal/source"
)

func New(sev Severity, code Code, path string, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Path:     path,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, path string, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, path, primary, msg)
}

// Errorf builds an error without a source position.
func Errorf(code Code, path, format string, args ...any) Diagnostic {
	return New(SevError, code, path, source.Span{}, fmt.Sprintf(format, args...))
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}
