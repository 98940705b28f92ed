package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/example/swingmark/internal/palette"
)

// Notify holds notification settings.
type Notify struct {
	Save    bool `yaml:"save"`
	Export  bool `yaml:"export"`
	Copy    bool `yaml:"copy"`
	Failure bool `yaml:"failure"`
}

// Config holds the application configuration.
type Config struct {
	Palette      string
	DataDir      string
	APIURL       string
	Video        string
	DefaultColor string
	DefaultWidth float64
	Tolerance    float64
	FPS          float64
	HistoryLimit int
	MinDrag      float64
	Notify       Notify
	Palettes     map[string]*palette.Palette
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		DefaultColor: "red",
		DefaultWidth: 3,
		Tolerance:    0.1,
		FPS:          30,
		Notify: Notify{
			Failure: true,
		},
		Palettes: make(map[string]*palette.Palette),
	}
}

// ApplyEnv overrides fields from SWINGMARK_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("SWINGMARK_PALETTE"); v != "" {
		c.Palette = v
	}
	if v := getenv("SWINGMARK_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := getenv("SWINGMARK_DATA_DIR"); v != "" {
		c.DataDir = v
	}
}

// ResolvePalette returns the configured palette. Palettes defined in the
// config win over files found by the palette loader.
func (c *Config) ResolvePalette(l *palette.Loader) (*palette.Palette, error) {
	if p, ok := c.Palettes[c.Palette]; ok {
		return p, nil
	}
	if l == nil {
		l = palette.NewLoader()
	}
	return l.Load(c.Palette)
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Palette != "" {
		fmt.Fprintf(&sb, "palette = %s\n", c.Palette)
	}
	if c.DataDir != "" {
		fmt.Fprintf(&sb, "data_dir = %s\n", c.DataDir)
	}
	if c.APIURL != "" {
		fmt.Fprintf(&sb, "api_url = %s\n", c.APIURL)
	}
	if c.Video != "" {
		fmt.Fprintf(&sb, "video = %s\n", c.Video)
	}
	fmt.Fprintf(&sb, "default_color = %s\n", c.DefaultColor)
	fmt.Fprintf(&sb, "default_width = %s\n", formatFloat(c.DefaultWidth))
	fmt.Fprintf(&sb, "tolerance = %s\n", formatFloat(c.Tolerance))
	fmt.Fprintf(&sb, "fps = %s\n", formatFloat(c.FPS))
	fmt.Fprintf(&sb, "history_limit = %d\n", c.HistoryLimit)
	fmt.Fprintf(&sb, "min_drag = %s\n", formatFloat(c.MinDrag))
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	fmt.Fprintf(&sb, "failure = %v\n", c.Notify.Failure)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	var names []string
	for name := range c.Palettes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p := c.Palettes[name]
		fmt.Fprintf(&sb, "[palette.%s]\n", name)
		fmt.Fprintf(&sb, "Name = %s\n", p.Name)
		for _, e := range p.Entries {
			fmt.Fprintf(&sb, "%s = %s\n", e.Name, palette.ToHex(e.Color))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
