package palette

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Parse reads a palette file: one "token: #RRGGBB[AA]" per line, with an
// optional "Name:" line. Blank lines and # or // comments are skipped.
func Parse(r io.Reader) (*Palette, error) {
	p := &Palette{}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "//") || strings.HasPrefix(text, "#") {
			continue
		}
		key, value, ok := strings.Cut(text, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if strings.EqualFold(key, "Name") {
			p.Name = value
			continue
		}
		c, err := ParseHex(value)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid color for %s: %w", line, key, err)
		}
		p.Set(key, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(p.Entries) == 0 {
		return nil, fmt.Errorf("palette %q has no colors", p.Name)
	}
	return p, nil
}
