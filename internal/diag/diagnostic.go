package diag

import (
	"bindsadapter/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Decl     string
	Message  string
	Primary  source.Span
	Notes    []Note
}

func New(sev Severity, code Code, decl string, primary source.Span, msg string) *Diagnostic {
	return &Diagnostic{
		Severity: sev,
		Code:     code,
		Decl:     decl,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, decl string, primary source.Span, msg string) *Diagnostic {
	return New(SevError, code, decl, primary, msg)
}

func (d *Diagnostic) WithNote(sp source.Span, msg string) *Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}
