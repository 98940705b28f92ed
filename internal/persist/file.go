package persist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/example/swingmark/internal/annotation"
	"github.com/example/swingmark/internal/codec"
)

// FileRepository keeps one codec document per video under a directory.
type FileRepository struct {
	dir string
	now func() time.Time

	mu    sync.RWMutex
	owner map[string]string // annotation id -> video id
}

// FileOption configures a FileRepository.
type FileOption func(*FileRepository)

// WithNow overrides the clock used for audit stamps.
func WithNow(fn func() time.Time) FileOption { return func(r *FileRepository) { r.now = fn } }

// NewFileRepository opens dir, creating it if needed, and indexes the
// records already stored there.
func NewFileRepository(dir string, opts ...FileOption) (*FileRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	r := &FileRepository{dir: dir, now: time.Now, owner: map[string]string{}}
	for _, o := range opts {
		o(r)
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		video := strings.TrimSuffix(filepath.Base(f), ".json")
		list, err := r.read(video)
		if err != nil {
			return nil, err
		}
		for _, a := range list {
			r.owner[a.ID] = video
		}
	}
	return r, nil
}

// Dir is the directory holding the video documents.
func (r *FileRepository) Dir() string { return r.dir }

func (r *FileRepository) path(video string) (string, error) {
	if video == "" || strings.ContainsAny(video, `/\`) || video == "." || video == ".." {
		return "", fmt.Errorf("invalid video id %q", video)
	}
	return filepath.Join(r.dir, video+".json"), nil
}

func (r *FileRepository) read(video string) ([]annotation.Annotation, error) {
	p, err := r.path(video)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	list, err := codec.Deserialize(data)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].VideoID == "" {
			list[i].VideoID = video
		}
	}
	return list, nil
}

func (r *FileRepository) write(video string, list []annotation.Annotation) error {
	p, err := r.path(video)
	if err != nil {
		return err
	}
	data, err := codec.Serialize(list)
	if err != nil {
		return err
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func (r *FileRepository) stamp() string { return r.now().UTC().Format(time.RFC3339) }

func (r *FileRepository) Create(ctx context.Context, a annotation.Annotation) (annotation.Annotation, error) {
	if err := ctx.Err(); err != nil {
		return annotation.Annotation{}, fail("create", a.ID, err)
	}
	if a.VideoID == "" {
		return annotation.Annotation{}, fail("create", a.ID, ErrNoVideo)
	}
	if a.ID == "" {
		a.ID = annotation.NewID()
	}
	a = a.Clone()
	a.CreatedAt = r.stamp()
	a.UpdatedAt = a.CreatedAt
	if err := a.Validate(); err != nil {
		return annotation.Annotation{}, fail("create", a.ID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.owner[a.ID]; ok {
		return annotation.Annotation{}, fail("create", a.ID, ErrExists)
	}
	list, err := r.read(a.VideoID)
	if err != nil {
		return annotation.Annotation{}, fail("create", a.ID, err)
	}
	if err := r.write(a.VideoID, append(list, a)); err != nil {
		return annotation.Annotation{}, fail("create", a.ID, err)
	}
	r.owner[a.ID] = a.VideoID
	return a, nil
}

func (r *FileRepository) Get(ctx context.Context, id string) (annotation.Annotation, error) {
	if err := ctx.Err(); err != nil {
		return annotation.Annotation{}, fail("get", id, err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	list, i, err := r.locate(id)
	if err != nil {
		return annotation.Annotation{}, fail("get", id, err)
	}
	return list[i], nil
}

func (r *FileRepository) Update(ctx context.Context, id string, p annotation.Patch) error {
	if err := ctx.Err(); err != nil {
		return fail("update", id, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	list, i, err := r.locate(id)
	if err != nil {
		return fail("update", id, err)
	}
	p.UpdatedAt = r.stamp()
	next, err := p.Apply(list[i])
	if err != nil {
		return fail("update", id, err)
	}
	list[i] = next
	if err := r.write(next.VideoID, list); err != nil {
		return fail("update", id, err)
	}
	return nil
}

func (r *FileRepository) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return fail("remove", id, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	list, i, err := r.locate(id)
	if err != nil {
		return fail("remove", id, err)
	}
	video := list[i].VideoID
	if err := r.write(video, append(list[:i], list[i+1:]...)); err != nil {
		return fail("remove", id, err)
	}
	delete(r.owner, id)
	return nil
}

// ListForVideo returns the stored records in creation order. An unknown
// video has an empty set.
func (r *FileRepository) ListForVideo(ctx context.Context, videoID string) ([]annotation.Annotation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fail("list", videoID, err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	list, err := r.read(videoID)
	if err != nil {
		return nil, fail("list", videoID, err)
	}
	if list == nil {
		list = []annotation.Annotation{}
	}
	return list, nil
}

// locate must be called with mu held.
func (r *FileRepository) locate(id string) ([]annotation.Annotation, int, error) {
	video, ok := r.owner[id]
	if !ok {
		return nil, -1, ErrNotFound
	}
	list, err := r.read(video)
	if err != nil {
		return nil, -1, err
	}
	for i, a := range list {
		if a.ID == id {
			return list, i, nil
		}
	}
	return nil, -1, errors.Join(ErrNotFound, fmt.Errorf("index points at %s", video))
}
