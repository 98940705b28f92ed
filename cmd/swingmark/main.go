package main

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/swingmark/internal/annotation"
	"github.com/example/swingmark/internal/codec"
	"github.com/example/swingmark/internal/config"
	"github.com/example/swingmark/internal/notify"
	"github.com/example/swingmark/internal/palette"
	"github.com/example/swingmark/internal/persist"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

// root carries the state every subcommand shares.
type root struct {
	configPath  string
	paletteName string
	dataDir     string
	apiURL      string
	video       string

	config   *config.Config
	palette  *palette.Palette
	notifier *notify.Notifier

	getenv func(string) string
}

func newRoot() *root {
	return &root{configPath: configPathOverride, getenv: os.Getenv}
}

// setup loads the config and resolves flags against it.
// Precedence: CLI > Env > Config > Default.
func (r *root) setup() error {
	loader := config.NewLoader(version, r.configPath)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}
	cfg.ApplyEnv(r.getenv)
	if r.paletteName != "" {
		cfg.Palette = r.paletteName
	}
	if r.dataDir != "" {
		cfg.DataDir = r.dataDir
	}
	if r.apiURL != "" {
		cfg.APIURL = r.apiURL
	}
	if r.video != "" {
		cfg.Video = r.video
	}
	r.config = cfg

	p, err := cfg.ResolvePalette(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load palette '%s': %v. using default.\n", cfg.Palette, err)
		p = palette.Default()
	}
	r.palette = p
	r.notifier = notify.FromConfig(cfg, notify.LoadPreferences(r.getenv))
	return nil
}

func (r *root) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swingmark",
		Short: "Frame-accurate annotations over video",
		Long: `swingmark draws lines, circles, arrows, angles, freehand strokes and
labels over a video frame. Each annotation is pinned to a media time and
shows only while playback is near it.

Annotation sets live in a data directory (one JSON file per video), in a
standalone JSON file given with --json, or behind a swingmark server given
with --api-url.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return r.setup()
		},
	}
	f := cmd.PersistentFlags()
	f.StringVar(&r.configPath, "config", r.configPath, "config file to load")
	f.StringVar(&r.paletteName, "palette", "", "color palette name or file (default, coach, high_contrast)")
	f.StringVar(&r.dataDir, "data-dir", "", "directory holding one annotation file per video")
	f.StringVar(&r.apiURL, "api-url", "", "swingmark server to use instead of the data directory")
	f.StringVarP(&r.video, "video", "v", "", "video id")

	cmd.AddCommand(
		newAnnotateCmd(r),
		newDrawCmd(r),
		newRenderCmd(r),
		newExportPDFCmd(r),
		newShowCmd(r),
		newTimelineCmd(r),
		newServeCmd(r),
		newDiscoverCmd(r),
		newSyncCmd(r),
		newCopyCmd(r),
		newColorsCmd(r),
		newWidthsCmd(r),
		newConfigCmd(r),
		newVersionCmd(r),
	)
	return cmd
}

// dataDirPath is where the file repository keeps its documents.
func (r *root) dataDirPath() string {
	if r.config.DataDir != "" {
		return r.config.DataDir
	}
	if dir := r.getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "swingmark")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "swingmark")
}

// localRepo opens the data directory.
func (r *root) localRepo() (*persist.FileRepository, error) {
	return persist.NewFileRepository(r.dataDirPath())
}

// repository is the server when --api-url is set, otherwise the data
// directory.
func (r *root) repository() (persist.Repository, error) {
	if r.config.APIURL != "" {
		return persist.NewHTTPClient(r.config.APIURL, nil), nil
	}
	return r.localRepo()
}

func (r *root) videoID() (string, error) {
	if r.config.Video == "" {
		return "", fmt.Errorf("no video selected: pass --video or set video in the config")
	}
	return r.config.Video, nil
}

// loadSet reads the annotation set from jsonPath when given, otherwise
// from the repository.
func (r *root) loadSet(ctx context.Context, jsonPath string) ([]annotation.Annotation, error) {
	if jsonPath != "" {
		data, err := os.ReadFile(jsonPath)
		if err != nil {
			return nil, err
		}
		return codec.Deserialize(data)
	}
	video, err := r.videoID()
	if err != nil {
		return nil, err
	}
	repo, err := r.repository()
	if err != nil {
		return nil, err
	}
	return repo.ListForVideo(ctx, video)
}

// videoFromPath names a video after its annotation file.
func videoFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func main() {
	if err := newRoot().command().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
