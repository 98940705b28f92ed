package config

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/swingmark/internal/palette"
)

// Parse reads RC formatted configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var currentSection string
	var currentPalette *palette.Palette

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			currentPalette = nil

			if name, ok := strings.CutPrefix(currentSection, "palette."); ok {
				currentPalette = &palette.Palette{Name: name}
				cfg.Palettes[name] = currentPalette
			}
			continue
		}

		// Key = Value or Key: Value
		var parts []string
		if strings.Contains(line, "=") {
			parts = strings.SplitN(line, "=", 2)
		} else if strings.Contains(line, ":") {
			parts = strings.SplitN(line, ":", 2)
		} else {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") && len(value) >= 2 {
			value = value[1 : len(value)-1]
		}

		switch {
		case currentPalette != nil:
			if err := setPaletteField(currentPalette, key, value); err != nil {
				return nil, fmt.Errorf("error in section [%s]: %w", currentSection, err)
			}
		case currentSection == "notify":
			if err := setNotifyField(&cfg.Notify, key, value); err != nil {
				return nil, fmt.Errorf("error in section [notify]: %w", err)
			}
		case currentSection == "":
			if err := setRootField(cfg, key, value); err != nil {
				return nil, fmt.Errorf("error in root section: %w", err)
			}
		}
	}

	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) error {
	var err error
	switch strings.ToLower(key) {
	case "palette":
		cfg.Palette = value
	case "data_dir":
		cfg.DataDir = value
	case "api_url":
		cfg.APIURL = value
	case "video":
		cfg.Video = value
	case "default_color":
		cfg.DefaultColor = value
	case "default_width":
		cfg.DefaultWidth, err = parsePositive(key, value)
	case "tolerance":
		cfg.Tolerance, err = parseNonNegative(key, value)
	case "fps":
		cfg.FPS, err = parsePositive(key, value)
	case "history_limit":
		cfg.HistoryLimit, err = strconv.Atoi(value)
		if err == nil && cfg.HistoryLimit < 0 {
			err = fmt.Errorf("history_limit must not be negative")
		}
	case "min_drag":
		cfg.MinDrag, err = parseNonNegative(key, value)
	}
	return err
}

func parseNonNegative(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number for key %s: %w", key, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return v, nil
}

func parsePositive(key, value string) (float64, error) {
	v, err := parseNonNegative(key, value)
	if err == nil && v == 0 {
		err = fmt.Errorf("%s must be positive", key)
	}
	return v, err
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch strings.ToLower(key) {
	case "save":
		n.Save = b
	case "export":
		n.Export = b
	case "copy":
		n.Copy = b
	case "failure":
		n.Failure = b
	}
	return nil
}

func setPaletteField(p *palette.Palette, key, value string) error {
	if strings.EqualFold(key, "Name") {
		p.Name = value
		return nil
	}
	c, err := palette.ParseHex(value)
	if err != nil {
		return fmt.Errorf("invalid color for key %s: %w", key, err)
	}
	p.Set(key, c)
	return nil
}

// yamlConfig mirrors Config for YAML files. Pointers distinguish missing
// keys from zero values so defaults survive.
type yamlConfig struct {
	Palette      string                       `yaml:"palette"`
	DataDir      string                       `yaml:"data_dir"`
	APIURL       string                       `yaml:"api_url"`
	Video        string                       `yaml:"video"`
	DefaultColor string                       `yaml:"default_color"`
	DefaultWidth *float64                     `yaml:"default_width"`
	Tolerance    *float64                     `yaml:"tolerance"`
	FPS          *float64                     `yaml:"fps"`
	HistoryLimit *int                         `yaml:"history_limit"`
	MinDrag      *float64                     `yaml:"min_drag"`
	Notify       *Notify                      `yaml:"notify"`
	Palettes     map[string]map[string]string `yaml:"palettes"`
}

// ParseYAML reads YAML formatted configuration. Keys match the RC format;
// custom palettes live under a palettes map of token to hex color.
func ParseYAML(r io.Reader) (*Config, error) {
	var y yamlConfig
	if err := yaml.NewDecoder(r).Decode(&y); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing yaml config: %w", err)
	}
	cfg := New()
	for key, value := range map[string]string{
		"palette":       y.Palette,
		"data_dir":      y.DataDir,
		"api_url":       y.APIURL,
		"video":         y.Video,
		"default_color": y.DefaultColor,
	} {
		if value != "" {
			setRootField(cfg, key, value)
		}
	}
	for key, value := range map[string]*float64{
		"default_width": y.DefaultWidth,
		"tolerance":     y.Tolerance,
		"fps":           y.FPS,
		"min_drag":      y.MinDrag,
	} {
		if value == nil {
			continue
		}
		if err := setRootField(cfg, key, formatFloat(*value)); err != nil {
			return nil, err
		}
	}
	if y.HistoryLimit != nil {
		if err := setRootField(cfg, "history_limit", strconv.Itoa(*y.HistoryLimit)); err != nil {
			return nil, err
		}
	}
	if y.Notify != nil {
		cfg.Notify = *y.Notify
	}
	for name, entries := range y.Palettes {
		p := &palette.Palette{Name: name}
		tokens := make([]string, 0, len(entries))
		for tok := range entries {
			tokens = append(tokens, tok)
		}
		sort.Strings(tokens)
		for _, tok := range tokens {
			if err := setPaletteField(p, tok, entries[tok]); err != nil {
				return nil, fmt.Errorf("palette %s: %w", name, err)
			}
		}
		cfg.Palettes[name] = p
	}
	return cfg, nil
}
