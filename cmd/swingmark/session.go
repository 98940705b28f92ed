package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/example/swingmark/internal/annotation"
	"github.com/example/swingmark/internal/editor"
	"github.com/example/swingmark/internal/persist"
	"github.com/example/swingmark/internal/playback"
	"github.com/example/swingmark/internal/tool"
)

// session is where an interactive command reads and writes its set: a
// standalone JSON file, or the repository through an async saver.
type session struct {
	video    string
	jsonPath string
	repo     persist.Repository
	saver    *persist.Saver
}

func (r *root) openSession(ctx context.Context, jsonPath string) (*session, error) {
	s := &session{video: r.config.Video, jsonPath: jsonPath}
	if jsonPath != "" {
		if s.video == "" {
			s.video = videoFromPath(jsonPath)
		}
		return s, nil
	}
	if s.video == "" {
		return nil, fmt.Errorf("no video selected: pass --video or --json")
	}
	repo, err := r.repository()
	if err != nil {
		return nil, err
	}
	s.repo = repo
	s.saver = persist.NewSaver(ctx, repo, persist.WithResult(func(c persist.Change, err error) {
		if err != nil {
			log.Printf("save %s %s: %v", c.Op, c.ID, err)
			r.notifier.Failure("save", err)
		}
	}))
	return s, nil
}

// editorOptions applies the config to a new editor for this session.
func (r *root) editorOptions(s *session, clock *playback.Clock) []editor.Option {
	cfg := r.config
	style := annotation.Style{Color: annotation.ColorToken(cfg.DefaultColor), StrokeWidth: cfg.DefaultWidth}
	opts := []editor.Option{
		editor.WithVideo(s.video),
		editor.WithPlayer(clock),
		editor.WithColors(r.palette),
		editor.WithFPS(cfg.FPS),
		editor.WithTolerance(cfg.Tolerance),
		editor.WithHistoryLimit(cfg.HistoryLimit),
		editor.WithToolOptions(tool.WithStyle(style), tool.WithMinDrag(cfg.MinDrag)),
	}
	if s.saver != nil {
		opts = append(opts, editor.WithSaver(s.saver))
	}
	return opts
}

// load fills e from the JSON file, when it exists, or the repository.
func (s *session) load(ctx context.Context, e *editor.Editor) error {
	if s.jsonPath != "" {
		data, err := os.ReadFile(s.jsonPath)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if err != nil {
			return err
		}
		return e.Load(data)
	}
	return e.LoadFromRepository(ctx, s.repo)
}

// save writes the JSON file or queues repository changes.
func (s *session) save(e *editor.Editor) (string, []*persist.Future, error) {
	if s.jsonPath != "" {
		data, err := e.Export()
		if err != nil {
			return "", nil, err
		}
		if err := writeFileAtomic(s.jsonPath, data); err != nil {
			return "", nil, err
		}
		return "wrote " + s.jsonPath, nil, nil
	}
	futures, err := e.Save()
	if err != nil {
		return "", nil, err
	}
	if len(futures) == 0 {
		return "nothing to save", nil, nil
	}
	return fmt.Sprintf("saving %d changes", len(futures)), futures, nil
}

// close waits for queued saves.
func (s *session) close() {
	if s.saver != nil {
		s.saver.Close()
	}
}
