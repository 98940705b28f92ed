package palette

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Loader finds palettes by name or path.
type Loader struct {
	ConfigDir string
	SystemDir string
}

// NewLoader returns a Loader with the standard search directories.
func NewLoader() *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{
		ConfigDir: filepath.Join(home, ".config", "swingmark", "palettes"),
		SystemDir: "/usr/share/swingmark/palettes",
	}
}

// Load resolves name in order: an existing file path, the embedded
// palettes, ConfigDir, then SystemDir. An empty name is the default.
func (l *Loader) Load(name string) (*Palette, error) {
	if name == "" || name == "default" {
		return Default(), nil
	}
	if _, err := os.Stat(name); err == nil {
		return parseFile(name)
	}
	filename := name
	if !strings.HasSuffix(filename, ".palette") {
		filename += ".palette"
	}
	if f, err := embedded.Open("defaults/" + filename); err == nil {
		defer f.Close()
		return Parse(f)
	}
	for _, dir := range []string{l.ConfigDir, l.SystemDir} {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			return parseFile(path)
		}
	}
	return nil, fmt.Errorf("palette '%s' not found", name)
}

// Builtin lists the names of the embedded palettes.
func Builtin() []string {
	entries, err := fs.ReadDir(embedded, "defaults")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".palette"))
	}
	sort.Strings(names)
	return names
}

func parseFile(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}
