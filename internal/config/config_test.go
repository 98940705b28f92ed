package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/swingmark/internal/annotation"
)

func TestParse(t *testing.T) {
	input := `
palette = coach
data_dir = /tmp/marks
api_url = http://localhost:8080
fps = 60
history_limit = 50
min_drag = 2.5

[notify]
save = true
export = false
copy = true

[palette.club]
Name = Club Colors
red = #CC0000
path: #00FF00
`
	r := strings.NewReader(input)
	cfg, err := Parse(r)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Palette != "coach" {
		t.Errorf("Expected palette 'coach', got '%s'", cfg.Palette)
	}
	if cfg.DataDir != "/tmp/marks" {
		t.Errorf("Expected data_dir '/tmp/marks', got '%s'", cfg.DataDir)
	}
	if cfg.APIURL != "http://localhost:8080" {
		t.Errorf("Expected api_url, got '%s'", cfg.APIURL)
	}
	if cfg.FPS != 60 || cfg.HistoryLimit != 50 || cfg.MinDrag != 2.5 {
		t.Errorf("numbers = %v %v %v", cfg.FPS, cfg.HistoryLimit, cfg.MinDrag)
	}
	if cfg.DefaultWidth != 3 || cfg.DefaultColor != "red" {
		t.Errorf("defaults lost: %v %q", cfg.DefaultWidth, cfg.DefaultColor)
	}

	if !cfg.Notify.Save || cfg.Notify.Export || !cfg.Notify.Copy || !cfg.Notify.Failure {
		t.Errorf("notify = %+v", cfg.Notify)
	}

	p, ok := cfg.Palettes["club"]
	if !ok {
		t.Fatal("Expected palette 'club' to be loaded")
	}
	if p.Name != "Club Colors" || len(p.Entries) != 2 {
		t.Fatalf("palette = %+v", p)
	}
	if c := p.Resolve(annotation.ColorToken("path")); c.G != 0xFF || c.R != 0 {
		t.Errorf("path color = %v", c)
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		"fps = 0",
		"fps = fast",
		"history_limit = -1",
		"tolerance = -0.5",
		"[notify]\nsave = maybe",
		"[palette.x]\nred = #12",
	} {
		if _, err := Parse(strings.NewReader(input)); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}

func TestCircular(t *testing.T) {
	input := `palette = club
data_dir = /home/user/marks
video = swing1
tolerance = 0.25

[notify]
save = true
export = true
copy = false
failure = false

[palette.club]
Name = club
red = #CC0000
note = #FFFFFF80
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}

	generated := cfg.String()

	cfg2, err := Parse(strings.NewReader(generated))
	if err != nil {
		t.Fatalf("Circular parse failed: %v", err)
	}

	if cfg.Palette != cfg2.Palette || cfg.DataDir != cfg2.DataDir || cfg.Video != cfg2.Video {
		t.Errorf("root mismatch:\n%s", generated)
	}
	if cfg.Tolerance != cfg2.Tolerance || cfg.FPS != cfg2.FPS {
		t.Errorf("number mismatch: %v/%v %v/%v", cfg.Tolerance, cfg2.Tolerance, cfg.FPS, cfg2.FPS)
	}
	if cfg.Notify != cfg2.Notify {
		t.Errorf("Notify mismatch: %+v vs %+v", cfg.Notify, cfg2.Notify)
	}

	p1 := cfg.Palettes["club"]
	p2 := cfg2.Palettes["club"]
	if p1 == nil || p2 == nil {
		t.Fatalf("Custom palette missing in one config")
	}
	if len(p1.Entries) != len(p2.Entries) {
		t.Fatalf("entries %d vs %d", len(p1.Entries), len(p2.Entries))
	}
	for i := range p1.Entries {
		if p1.Entries[i] != p2.Entries[i] {
			t.Errorf("entry %d: %+v vs %+v", i, p1.Entries[i], p2.Entries[i])
		}
	}
}

func TestParseYAML(t *testing.T) {
	input := `
palette: club
api_url: http://coach.local:8080
fps: 120
min_drag: 0
notify:
  save: true
  failure: true
palettes:
  club:
    red: "#CC0000"
    path: "#00FF00"
`
	cfg, err := ParseYAML(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Palette != "club" || cfg.APIURL != "http://coach.local:8080" || cfg.FPS != 120 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Tolerance != 0.1 {
		t.Errorf("tolerance default lost: %v", cfg.Tolerance)
	}
	if !cfg.Notify.Save || cfg.Notify.Copy {
		t.Errorf("notify = %+v", cfg.Notify)
	}
	p, err := cfg.ResolvePalette(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Entries) != 2 || p.Entries[0].Name != "path" {
		t.Fatalf("palette = %+v", p)
	}

	if _, err := ParseYAML(strings.NewReader("fps: -2\n")); err == nil {
		t.Error("expected error for negative fps")
	}
	empty, err := ParseYAML(strings.NewReader(""))
	if err != nil || empty.FPS != 30 {
		t.Errorf("empty yaml = %+v, %v", empty, err)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := New()
	cfg.Palette = "coach"
	env := map[string]string{"SWINGMARK_API_URL": "http://remote:9000"}
	cfg.ApplyEnv(func(k string) string { return env[k] })
	if cfg.Palette != "coach" || cfg.APIURL != "http://remote:9000" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoaderOrderAndSave(t *testing.T) {
	home := t.TempDir()
	l := &Loader{Version: "1.0", Home: home}
	if l.GetConfigPath() != "" {
		t.Fatal("expected no config")
	}
	cfg, err := l.Load()
	if err != nil || cfg.FPS != 30 {
		t.Fatalf("defaults = %+v, %v", cfg, err)
	}

	dir := filepath.Join(home, ".config", "swingmark")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	yamlPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(yamlPath, []byte("palette: high_contrast\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := l.GetConfigPath(); got != yamlPath {
		t.Fatalf("path = %q", got)
	}
	cfg, err = l.Load()
	if err != nil || cfg.Palette != "high_contrast" {
		t.Fatalf("yaml load = %+v, %v", cfg, err)
	}

	cfg.Video = "swing2"
	saved, err := l.Save(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if saved != filepath.Join(dir, "config.rc") {
		t.Fatalf("saved to %q", saved)
	}
	if got := l.GetConfigPath(); got != saved {
		t.Fatalf("rc should win over yaml, got %q", got)
	}
	again, err := l.Load()
	if err != nil || again.Video != "swing2" || again.Palette != "high_contrast" {
		t.Fatalf("reload = %+v, %v", again, err)
	}

	override := filepath.Join(t.TempDir(), "alt.rc")
	os.WriteFile(override, []byte("video = other\n"), 0o644)
	l.OverridePath = override
	if got := l.GetConfigPath(); got != override {
		t.Fatalf("override ignored: %q", got)
	}
}
