package project

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"bindsadapter/internal/diag"
	"bindsadapter/internal/emit"
	"bindsadapter/internal/source"
	"bindsadapter/internal/synth"
)

// ErrInvalidConfig is returned by Validate when any value was rejected.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config mirrors bindsadapter.toml.
type Config struct {
	Generate GenerateConfig `toml:"generate"`
	Output   OutputConfig   `toml:"output"`
}

type GenerateConfig struct {
	ImplSuffix     string `toml:"impl_suffix"`
	FileSuffix     string `toml:"file_suffix"`
	InflatePrefix  string `toml:"inflate_prefix"`
	ItemMethod     string `toml:"item_method"`
	ViewTypeMethod string `toml:"view_type_method"`
	Jobs           int    `toml:"jobs"`
	// OutDir, when set, is relative to the project root.
	OutDir string `toml:"out_dir,omitempty"`
}

type OutputConfig struct {
	Format         string `toml:"format"`
	Color          string `toml:"color"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
}

// Manifest is a located and decoded config file.
type Manifest struct {
	Path   string
	Root   string
	Config Config
	meta   toml.MetaData
}

// Default returns the values used when no file sets them.
func Default() Config {
	def := synth.DefaultOptions()
	return Config{
		Generate: GenerateConfig{
			ImplSuffix:     def.ImplSuffix,
			FileSuffix:     emit.DefaultFileSuffix,
			InflatePrefix:  def.InflatePrefix,
			ItemMethod:     def.ItemMethod,
			ViewTypeMethod: def.ViewTypeMethod,
		},
		Output: OutputConfig{
			Format:         "pretty",
			Color:          "auto",
			MaxDiagnostics: 100,
		},
	}
}

// Load finds bindsadapter.toml above startDir and decodes it over Default.
// ok is false when there is no file; the defaults are returned then.
func Load(startDir string) (m *Manifest, ok bool, err error) {
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return &Manifest{Config: Default()}, false, nil
	}
	m, err = LoadFile(path)
	return m, err == nil, err
}

// LoadFile decodes one config file over Default. Keys the file does not know
// are an error.
func LoadFile(path string) (*Manifest, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
		meta:   meta,
	}, nil
}

// IsDefined reports whether the file set the key, e.g. IsDefined("generate", "jobs").
func (m *Manifest) IsDefined(key ...string) bool {
	if m == nil || m.Path == "" {
		return false
	}
	return m.meta.IsDefined(key...)
}

// Validate reports every rejected value as CfgInvalidValue and returns
// ErrInvalidConfig when there was any.
func (m *Manifest) Validate(r diag.Reporter) error {
	if r == nil {
		r = diag.NopReporter{}
	}
	where := m.Path
	if where == "" {
		where = FileName
	}
	bad := false
	reject := func(key, msg string) {
		bad = true
		diag.ReportError(r, diag.CfgInvalidValue, where+": "+key, source.NoSpan, msg).Emit()
	}

	g := m.Config.Generate
	if !token.IsIdentifier("X" + g.ImplSuffix) {
		reject("generate.impl_suffix", fmt.Sprintf("%q cannot extend a type name", g.ImplSuffix))
	}
	if !strings.HasSuffix(g.FileSuffix, ".go") || strings.ContainsAny(g.FileSuffix, `/\`) {
		reject("generate.file_suffix", fmt.Sprintf("%q must be a file name ending in .go", g.FileSuffix))
	}
	if !token.IsIdentifier(g.InflatePrefix + "X") {
		reject("generate.inflate_prefix", fmt.Sprintf("%q cannot prefix a function name", g.InflatePrefix))
	}
	for _, meth := range []struct{ key, name string }{
		{"generate.item_method", g.ItemMethod},
		{"generate.view_type_method", g.ViewTypeMethod},
	} {
		if !token.IsIdentifier(meth.name) || !token.IsExported(meth.name) {
			reject(meth.key, fmt.Sprintf("%q is not an exported method name", meth.name))
		}
	}
	if g.Jobs < 0 {
		reject("generate.jobs", fmt.Sprintf("jobs must be >= 0, got %d", g.Jobs))
	}

	o := m.Config.Output
	switch o.Format {
	case "pretty", "short", "json":
	default:
		reject("output.format", fmt.Sprintf("unknown format %q (expected pretty|short|json)", o.Format))
	}
	switch o.Color {
	case "auto", "on", "off":
	default:
		reject("output.color", fmt.Sprintf("unknown color mode %q (expected auto|on|off)", o.Color))
	}
	if o.MaxDiagnostics < 0 {
		reject("output.max_diagnostics", fmt.Sprintf("max_diagnostics must be >= 0, got %d", o.MaxDiagnostics))
	}

	if bad {
		return ErrInvalidConfig
	}
	return nil
}

// SynthOptions converts the [generate] section.
func (c Config) SynthOptions() synth.Options {
	return synth.Options{
		ImplSuffix:     c.Generate.ImplSuffix,
		InflatePrefix:  c.Generate.InflatePrefix,
		ItemMethod:     c.Generate.ItemMethod,
		ViewTypeMethod: c.Generate.ViewTypeMethod,
	}
}

// OutDir resolves [generate].out_dir against the project root.
func (m *Manifest) OutDir() string {
	dir := m.Config.Generate.OutDir
	if dir == "" || filepath.IsAbs(dir) || m.Root == "" {
		return dir
	}
	return filepath.Join(m.Root, filepath.FromSlash(dir))
}

// WriteDefault creates dir/bindsadapter.toml with Default values. It refuses
// to overwrite an existing file.
func WriteDefault(dir string) (string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("already initialized: %s exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	var buf bytes.Buffer
	buf.WriteString("# bindsadapter configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(Default()); err != nil {
		return "", fmt.Errorf("%s: failed to encode TOML: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
