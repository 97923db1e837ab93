// Package emit renders a synthesized type as a Go source file.
package emit

import (
	"bytes"
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"

	"bindsadapter/internal/decl"
	"bindsadapter/internal/synth"
)

// Header is the first line of every generated file.
const Header = "// Code generated by bindsadapter. DO NOT EDIT."

// DefaultFileSuffix is appended to the lower-cased container name.
const DefaultFileSuffix = "_bindsadapter.go"

// GeneratedFile is one rendered output. Writing it is up to the caller.
type GeneratedFile struct {
	Container decl.ID
	Dir       string
	Filename  string
	Content   []byte
}

// Path joins Dir and Filename.
func (f GeneratedFile) Path() string {
	if f.Dir == "" {
		return f.Filename
	}
	return filepath.Join(f.Dir, f.Filename)
}

var fileTemplate = template.Must(template.New("impl").Funcs(template.FuncMap{
	"quote":     strconv.Quote,
	"join":      func(args []string) string { return strings.Join(args, ", ") },
	"params":    paramList,
	"forward":   forwardList,
	"construct": construct,
	"importOf":  importSpec,
}).Parse(implTemplate))

// Emit renders impl. Output for equal input is byte-identical.
func Emit(impl *synth.Impl, fileSuffix string) (GeneratedFile, error) {
	if impl == nil {
		return GeneratedFile{}, fmt.Errorf("emit: nil impl")
	}
	if fileSuffix == "" {
		fileSuffix = DefaultFileSuffix
	}
	filename := strings.ToLower(impl.Base) + fileSuffix

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, impl); err != nil {
		return GeneratedFile{}, fmt.Errorf("executing template for %s: %w", impl.Base, err)
	}
	out, err := imports.Process(filename, buf.Bytes(), &imports.Options{
		FormatOnly: true,
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
	})
	if err != nil {
		return GeneratedFile{}, fmt.Errorf("formatting %s: %w", filename, err)
	}
	return GeneratedFile{
		Container: impl.Container,
		Dir:       impl.Package.Dir,
		Filename:  filename,
		Content:   out,
	}, nil
}

func paramList(params []decl.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Name + " " + p.Type.Expr
	}
	return strings.Join(parts, ", ")
}

func forwardList(params []decl.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Name
		if strings.HasPrefix(p.Type.Expr, "...") {
			parts[i] += "..."
		}
	}
	return strings.Join(parts, ", ")
}

func construct(c synth.CreateCase) string {
	if c.Ctor == "" {
		return "&" + c.Variant + "{}"
	}
	return c.Ctor + "(" + strings.Join(c.Args, ", ") + ")"
}

func importSpec(imp decl.Import) string {
	if imp.Name != "" && imp.Name != path.Base(imp.Path) {
		return imp.Name + " " + strconv.Quote(imp.Path)
	}
	return strconv.Quote(imp.Path)
}

const implTemplate = Header + `

package {{.Package.Name}}

import (
{{- range .Imports}}
	{{importOf .}}
{{- end}}
)

// Dispatch tags of {{.Base}}, in declaration order.
const (
{{- range .Tags}}
	{{.Ident}} = {{.Value}}
{{- end}}
)

// {{.Name}} dispatches construction and binding of the {{.Base}} variants.
type {{.Name}} struct {
	{{.Embed}}
{{- range .Fields}}
	{{.Name}} {{.Type.Expr}}
{{- end}}
}

func {{.Ctor}}({{params .Params}}) *{{.Name}} {
	return &{{.Name}}{
{{- if .BaseCtor}}
		{{.Base}}: {{.BaseCtor}}({{forward .Params}}),
{{- else}}
		{{.Base}}: &{{.Base}}{},
{{- end}}
{{- range .Fields}}
		{{.Name}}: {{.Name}},
{{- end}}
	}
}

// CreateViewHolder builds the variant registered under viewType.
func (a *{{.Name}}) CreateViewHolder(parent {{.Parent}}, viewType int) {{.Holder}} {
	switch viewType {
{{- range .Create.Cases}}
	case {{.Tag.Ident}}:
{{- if .Broken}}
		panic({{quote .Broken}})
{{- else}}
{{- if .Context}}
		context := {{.Context}}
{{- end}}
{{- if .Addr}}
		h := {{construct .}}
		return &h
{{- else}}
		return {{construct .}}
{{- end}}
{{- end}}
{{- end}}
	default:
		panic(fmt.Sprintf({{quote .Create.Default}}, viewType))
	}
}

// BindViewHolder binds the item at position to holder.
func (a *{{.Name}}) BindViewHolder(holder {{.Holder}}, position int) {
	switch a.{{.ViewTypeMethod}}(position) {
{{- range .Bind.Cases}}
	case {{.Tag.Ident}}:
{{- if .Skipped}}
		// {{.Skipped}}
{{- else}}
{{- if .NeedsItem}}
		item := a.{{$.ItemMethod}}(position)
{{- end}}
		holder.({{.Holder}}).{{.Routine}}({{join .Args}})
{{- end}}
{{- end}}
	}
}
`
