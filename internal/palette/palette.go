// Package palette maps annotation color tokens to concrete colors.
package palette

import (
	"embed"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/example/swingmark/internal/annotation"
)

//go:embed defaults/*.palette
var embedded embed.FS

// Entry is one named color.
type Entry struct {
	Name  string
	Color color.RGBA
}

// Palette is an ordered set of named stroke colors.
type Palette struct {
	Name    string
	Entries []Entry
}

// Default returns the built in toolbar palette.
func Default() *Palette {
	return &Palette{
		Name: "default",
		Entries: []Entry{
			{"black", color.RGBA{0, 0, 0, 255}},
			{"white", color.RGBA{255, 255, 255, 255}},
			{"red", color.RGBA{255, 0, 0, 255}},
			{"lime", color.RGBA{0, 255, 0, 255}},
			{"blue", color.RGBA{0, 0, 255, 255}},
			{"yellow", color.RGBA{255, 255, 0, 255}},
			{"cyan", color.RGBA{0, 255, 255, 255}},
			{"magenta", color.RGBA{255, 0, 255, 255}},
			{"maroon", color.RGBA{128, 0, 0, 255}},
			{"green", color.RGBA{0, 128, 0, 255}},
			{"navy", color.RGBA{0, 0, 128, 255}},
			{"olive", color.RGBA{128, 128, 0, 255}},
			{"teal", color.RGBA{0, 128, 128, 255}},
			{"purple", color.RGBA{128, 0, 128, 255}},
			{"silver", color.RGBA{192, 192, 192, 255}},
			{"gray", color.RGBA{128, 128, 128, 255}},
		},
	}
}

// Set adds or replaces the entry called name.
func (p *Palette) Set(name string, c color.RGBA) {
	for i := range p.Entries {
		if strings.EqualFold(p.Entries[i].Name, name) {
			p.Entries[i].Color = c
			return
		}
	}
	p.Entries = append(p.Entries, Entry{Name: name, Color: c})
}

// Lookup finds an entry by name, ignoring case.
func (p *Palette) Lookup(name string) (color.RGBA, bool) {
	for _, e := range p.Entries {
		if strings.EqualFold(e.Name, name) {
			return e.Color, true
		}
	}
	return color.RGBA{}, false
}

// Resolve turns a token into a color. Palette names win, then the SVG
// color names, then #hex. Anything else falls back to the first entry.
func (p *Palette) Resolve(tok annotation.ColorToken) color.RGBA {
	c, ok := p.Match(string(tok))
	if ok {
		return c
	}
	if len(p.Entries) > 0 {
		return p.Entries[0].Color
	}
	return color.RGBA{255, 0, 0, 255}
}

// Match is Resolve without the fallback.
func (p *Palette) Match(s string) (color.RGBA, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.RGBA{}, false
	}
	if c, ok := p.Lookup(s); ok {
		return c, true
	}
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return c, true
	}
	if c, err := ParseHex(s); err == nil {
		return c, true
	}
	return color.RGBA{}, false
}

// ParseHex parses #RRGGBB or #RRGGBBAA. The alpha is straight in the text
// and premultiplied in the result.
func ParseHex(s string) (color.RGBA, error) {
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, fmt.Errorf("color must start with #")
	}
	hex := s[1:]
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid hex length")
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, err
	}
	if len(hex) == 6 {
		v = v<<8 | 0xFF
	}
	n := color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
	return color.RGBAModel.Convert(n).(color.RGBA), nil
}

// ToHex formats c as #RRGGBB, or #RRGGBBAA when not opaque.
func ToHex(c color.RGBA) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", n.R, n.G, n.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", n.R, n.G, n.B, n.A)
}
