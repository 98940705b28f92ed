// Package persist is the boundary between an editing session and durable
// storage of annotation sets.
package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/swingmark/internal/annotation"
)

var (
	// ErrNotFound is returned when an id or video has no stored record.
	ErrNotFound = errors.New("not found")
	// ErrExists is returned by Create when the id is already stored.
	ErrExists = errors.New("already exists")
	// ErrNoVideo is returned when a record does not name its video.
	ErrNoVideo = errors.New("annotation has no video")
)

// Error describes a failed persistence operation.
type Error struct {
	Op  string
	ID  string
	Err error
}

func (e *Error) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("persist %s %s: %v", e.Op, e.ID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func fail(op, id string, err error) error {
	var perr *Error
	if errors.As(err, &perr) {
		return err
	}
	return &Error{Op: op, ID: id, Err: err}
}

// Repository stores annotation sets per video. Implementations stamp
// CreatedAt and UpdatedAt.
type Repository interface {
	Create(ctx context.Context, a annotation.Annotation) (annotation.Annotation, error)
	Get(ctx context.Context, id string) (annotation.Annotation, error)
	Update(ctx context.Context, id string, p annotation.Patch) error
	Remove(ctx context.Context, id string) error
	ListForVideo(ctx context.Context, videoID string) ([]annotation.Annotation, error)
}
