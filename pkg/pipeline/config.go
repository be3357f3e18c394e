package pipeline

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/gridview/pkg/errors"
	"github.com/matzehuels/gridview/pkg/grid"
	"github.com/matzehuels/gridview/pkg/template"
)

// Config is a complete gridview run: what to lay out, where its rows come
// from, and what to do with it.
type Config struct {
	Template TemplateConfig `toml:"template" yaml:"template" json:"template"`
	Source   SourceConfig   `toml:"source" yaml:"source" json:"source"`
	Viewport ViewportConfig `toml:"viewport" yaml:"viewport" json:"viewport"`

	// Expand lists row ordinals to expand after loading, applied in order.
	Expand []int `toml:"expand" yaml:"expand" json:"expand,omitempty"`

	// Current is the ordinal of the initial current row.
	Current *int `toml:"current" yaml:"current" json:"current,omitempty"`

	// Select lists row ordinals to select.
	Select []int `toml:"select" yaml:"select" json:"select,omitempty"`

	// Steps run after the first layout pass.
	Steps []Step `toml:"steps" yaml:"steps" json:"steps,omitempty"`

	// Placements adds arranged element rectangles to the snapshot.
	Placements bool `toml:"placements" yaml:"placements" json:"placements,omitempty"`

	// Logger is used for diagnostic output. Not part of the file format.
	Logger *log.Logger `toml:"-" yaml:"-" json:"-"`

	validated bool
}

// TemplateConfig declares the grid template.
type TemplateConfig struct {
	Orientation    string          `toml:"orientation" yaml:"orientation" json:"orientation,omitempty"`
	BlockDimension int             `toml:"block_dimension" yaml:"block_dimension" json:"block_dimension,omitempty"`
	Columns        []string        `toml:"columns" yaml:"columns" json:"columns"`
	Rows           []string        `toml:"rows" yaml:"rows" json:"rows"`
	Bindings       []BindingConfig `toml:"bindings" yaml:"bindings" json:"bindings"`
	Frozen         FrozenConfig    `toml:"frozen" yaml:"frozen" json:"frozen"`
	SizeToContent  []string        `toml:"size_to_content" yaml:"size_to_content" json:"size_to_content,omitempty"`
	Recursive      bool            `toml:"recursive" yaml:"recursive" json:"recursive,omitempty"`
}

// FrozenConfig holds the frozen track counts of the four grid edges.
type FrozenConfig struct {
	Left   int `toml:"left" yaml:"left" json:"left,omitempty"`
	Top    int `toml:"top" yaml:"top" json:"top,omitempty"`
	Right  int `toml:"right" yaml:"right" json:"right,omitempty"`
	Bottom int `toml:"bottom" yaml:"bottom" json:"bottom,omitempty"`
}

// BindingConfig places one binding. Range is [column, row, column span,
// row span]; spans default to 1.
type BindingConfig struct {
	Name  string `toml:"name" yaml:"name" json:"name"`
	Class string `toml:"class" yaml:"class" json:"class"`
	Range []int  `toml:"range" yaml:"range" json:"range"`

	// Field is the row value a row binding shows.
	Field string `toml:"field" yaml:"field" json:"field,omitempty"`

	// Text is the fixed text of a scalar, or the label prefix of a block.
	Text string `toml:"text" yaml:"text" json:"text,omitempty"`
}

// GridRange converts Range to a grid range.
func (b BindingConfig) GridRange() grid.GridRange {
	r := append([]int(nil), b.Range...)
	for len(r) < 4 {
		r = append(r, 1)
	}
	return grid.GridRange{Left: r[0], Top: r[1], Right: r[0] + r[2], Bottom: r[1] + r[3]}
}

// SourceConfig declares the row source.
type SourceConfig struct {
	Kind string `toml:"kind" yaml:"kind" json:"kind"`

	// Rows is the number of generated top-level rows. Memory sources always
	// generate; remote sources only when Seed is set.
	Rows int `toml:"rows" yaml:"rows" json:"rows,omitempty"`

	// Children is the number of generated children per top-level row.
	Children int `toml:"children" yaml:"children" json:"children,omitempty"`

	// Seed replaces the remote collection with generated rows on open.
	Seed bool `toml:"seed" yaml:"seed" json:"seed,omitempty"`

	URL        string `toml:"url" yaml:"url" json:"url,omitempty"`
	Key        string `toml:"key" yaml:"key" json:"key,omitempty"`
	Database   string `toml:"database" yaml:"database" json:"database,omitempty"`
	Collection string `toml:"collection" yaml:"collection" json:"collection,omitempty"`
	PageSize   int    `toml:"page_size" yaml:"page_size" json:"page_size,omitempty"`
	CacheTTL   string `toml:"cache_ttl" yaml:"cache_ttl" json:"cache_ttl,omitempty"`

	ttl time.Duration
}

// TTL returns the parsed cache TTL. Valid after ValidateAndSetDefaults.
func (s SourceConfig) TTL() time.Duration { return s.ttl }

// ViewportConfig is the available size of the first layout pass.
type ViewportConfig struct {
	Width  float64 `toml:"width" yaml:"width" json:"width,omitempty"`
	Height float64 `toml:"height" yaml:"height" json:"height,omitempty"`
}

// Size returns the viewport as a grid size.
func (v ViewportConfig) Size() grid.Size { return grid.Size{Width: v.Width, Height: v.Height} }

// Step is one scripted operation. Which fields apply depends on Kind.
type Step struct {
	Kind      string  `toml:"kind" yaml:"kind" json:"kind"`
	DX        float64 `toml:"dx" yaml:"dx" json:"dx,omitempty"`
	DY        float64 `toml:"dy" yaml:"dy" json:"dy,omitempty"`
	Track     int     `toml:"track" yaml:"track" json:"track,omitempty"`
	Container int     `toml:"container" yaml:"container" json:"container,omitempty"`
	Fraction  float64 `toml:"fraction" yaml:"fraction" json:"fraction,omitempty"`
	Row       int     `toml:"row" yaml:"row" json:"row,omitempty"`
	Field     string  `toml:"field" yaml:"field" json:"field,omitempty"`
	Value     string  `toml:"value" yaml:"value" json:"value,omitempty"`
}

// =============================================================================
// Loading
// =============================================================================

// LoadConfig reads a config file and validates it. The format follows the
// extension: .toml, .yaml, .yml or .json.
func LoadConfig(path string) (*Config, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read config")
	}
	cfg, err := ParseConfig(data, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// DecodeConfig reads a config in the given format from r.
func DecodeConfig(r io.Reader, format string) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config")
	}
	return ParseConfig(data, format)
}

// ParseConfig decodes and validates a config in the given format.
func ParseConfig(data []byte, format string) (*Config, error) {
	var cfg Config
	var err error
	switch strings.ToLower(format) {
	case "toml":
		err = toml.Unmarshal(data, &cfg)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &cfg)
	case "json":
		err = json.Unmarshal(data, &cfg)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported config format: %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s config", format)
	}
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// =============================================================================
// Validation
// =============================================================================

// ValidateAndSetDefaults checks the config and fills in defaults. Calling
// it again is a no-op.
func (c *Config) ValidateAndSetDefaults() error {
	if c.validated {
		return nil
	}
	if err := c.Template.validate(); err != nil {
		return err
	}
	if err := c.Source.validate(); err != nil {
		return err
	}
	if c.Viewport.Width == 0 {
		c.Viewport.Width = DefaultWidth
	}
	if c.Viewport.Height == 0 {
		c.Viewport.Height = DefaultHeight
	}
	if c.Viewport.Width < 0 || c.Viewport.Height < 0 {
		return invalid("viewport must not be negative")
	}
	if len(c.Expand) > 0 && !c.Template.Recursive {
		return invalid("expand needs a recursive template")
	}
	for i := range c.Steps {
		if err := c.validateStep(i); err != nil {
			return err
		}
	}
	if c.Logger == nil {
		c.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	c.validated = true
	return nil
}

func (c *Config) validateStep(i int) error {
	if err := c.Steps[i].Validate(c.Template.Recursive); err != nil {
		return invalid("step %d: %s", i, errors.UserMessage(err))
	}
	return nil
}

// Validate checks a step against a template that is recursive or not, and
// defaults the field of an edit.
func (s *Step) Validate(recursive bool) error {
	if !ValidSteps[s.Kind] {
		return invalid("unknown kind %q", s.Kind)
	}
	if s.Fraction < 0 || s.Fraction > 1 {
		return invalid("fraction %g outside [0,1]", s.Fraction)
	}
	if rowSteps[s.Kind] && s.Row < 0 {
		return invalid("negative row %d", s.Row)
	}
	if (s.Kind == StepExpand || s.Kind == StepCollapse) && !recursive {
		return invalid("%s needs a recursive template", s.Kind)
	}
	if s.Kind == StepEdit && s.Field == "" {
		s.Field = DefaultField
	}
	return nil
}

func (t *TemplateConfig) validate() error {
	switch t.Orientation {
	case "":
		t.Orientation = "vertical"
	case "vertical", "horizontal":
	default:
		return invalid("unknown orientation %q", t.Orientation)
	}
	if t.BlockDimension == 0 {
		t.BlockDimension = 1
	}
	if t.BlockDimension < 0 {
		return invalid("block_dimension must be positive")
	}
	if len(t.Columns) == 0 || len(t.Rows) == 0 {
		return invalid("template needs at least one column and one row")
	}
	for _, l := range append(append([]string(nil), t.Columns...), t.Rows...) {
		if _, _, err := ParseTrack(l); err != nil {
			return err
		}
	}
	for _, a := range t.SizeToContent {
		if a != "x" && a != "y" {
			return invalid("size_to_content axis must be x or y, got %q", a)
		}
	}
	if len(t.Bindings) == 0 {
		return invalid("template has no bindings")
	}
	seen := make(map[string]bool, len(t.Bindings))
	for i := range t.Bindings {
		b := &t.Bindings[i]
		if err := errors.ValidateName(b.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "binding %d", i)
		}
		if seen[b.Name] {
			return invalid("duplicate binding %q", b.Name)
		}
		seen[b.Name] = true
		if b.Class == "" {
			b.Class = ClassRow
		}
		if !ValidClasses[b.Class] {
			return invalid("binding %q: unknown class %q", b.Name, b.Class)
		}
		if n := len(b.Range); n != 2 && n != 4 {
			return invalid("binding %q: range needs 2 or 4 values, got %d", b.Name, n)
		}
		for j, v := range b.Range {
			if v < 0 || (j >= 2 && v == 0) {
				return invalid("binding %q: bad range %v", b.Name, b.Range)
			}
		}
		if b.Class == ClassRow && b.Field == "" {
			b.Field = DefaultField
		}
	}
	return nil
}

func (s *SourceConfig) validate() error {
	if s.Kind == "" {
		s.Kind = SourceMemory
	}
	if !ValidSources[s.Kind] {
		return invalid("unknown source kind %q", s.Kind)
	}
	if s.Rows < 0 || s.Children < 0 {
		return invalid("row counts must not be negative")
	}
	if s.Rows == 0 && (s.Kind == SourceMemory || s.Seed) {
		s.Rows = DefaultRows
	}
	switch s.Kind {
	case SourceRedis:
		if err := errors.ValidateURL(s.URL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "redis source")
		}
		if err := errors.ValidateKey(s.Key); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "redis source")
		}
	case SourceMongo:
		if err := errors.ValidateURL(s.URL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "mongo source")
		}
		for _, name := range []string{s.Database, s.Collection} {
			if err := errors.ValidateName(name); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidConfig, err, "mongo source")
			}
		}
	}
	if s.PageSize == 0 {
		s.PageSize = DefaultPageSize
	}
	s.ttl = DefaultCacheTTL
	if s.CacheTTL != "" {
		d, err := time.ParseDuration(s.CacheTTL)
		if err != nil || d < 0 {
			return invalid("bad cache_ttl %q", s.CacheTTL)
		}
		s.ttl = d
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidConfig, format, args...)
}

// =============================================================================
// Track lengths
// =============================================================================

// ParseTrack parses a track declaration: a length ("auto", "*", "2*" or a
// number) optionally followed by "min=<n>" and "max=<n>".
func ParseTrack(s string) (grid.Length, []template.TrackOption, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return grid.Length{}, nil, invalid("empty track length")
	}
	l, err := ParseLength(fields[0])
	if err != nil {
		return grid.Length{}, nil, err
	}
	var opts []template.TrackOption
	for _, f := range fields[1:] {
		name, value, ok := strings.Cut(f, "=")
		v, err := strconv.ParseFloat(value, 64)
		if !ok || err != nil || v < 0 {
			return grid.Length{}, nil, invalid("bad track bound %q in %q", f, s)
		}
		switch name {
		case "min":
			opts = append(opts, template.Min(v))
		case "max":
			opts = append(opts, template.Max(v))
		default:
			return grid.Length{}, nil, invalid("unknown track bound %q in %q", name, s)
		}
	}
	return l, opts, nil
}

// ParseLength parses "auto", "*", "<weight>*" or a fixed length.
func ParseLength(s string) (grid.Length, error) {
	switch {
	case strings.EqualFold(s, "auto"):
		return grid.Auto(), nil
	case s == "*":
		return grid.Star(1), nil
	case strings.HasSuffix(s, "*"):
		w, err := strconv.ParseFloat(strings.TrimSuffix(s, "*"), 64)
		if err != nil || w <= 0 {
			return grid.Length{}, invalid("bad star weight %q", s)
		}
		return grid.Star(w), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return grid.Length{}, invalid("bad length %q", s)
	}
	return grid.Fixed(v), nil
}
