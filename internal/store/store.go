// Package store keeps the ordered annotation set of one editing session
// together with its snapshot based undo and redo history.
//
// A Store is owned by a single event loop and does no locking.
package store

import (
	"errors"
	"fmt"

	"github.com/example/swingmark/internal/annotation"
)

// ErrDuplicateID is returned when committing a record whose id is taken.
var ErrDuplicateID = errors.New("annotation id already present")

// ErrUnknownID is returned by Update for an id the store does not hold.
var ErrUnknownID = errors.New("annotation id not present")

// Listener receives the full ordered list after every change.
type Listener func([]annotation.Annotation)

// Store is the in-memory annotation set.
type Store struct {
	items     []annotation.Annotation
	undo      [][]annotation.Annotation
	redo      [][]annotation.Annotation
	limit     int
	listeners map[int]Listener
	nextSub   int
}

// Option configures a Store.
type Option func(*Store)

// WithHistoryLimit caps the undo stack at n snapshots, dropping the oldest.
// Zero means unbounded.
func WithHistoryLimit(n int) Option { return func(s *Store) { s.limit = n } }

// New creates an empty store with empty history.
func New(opts ...Option) *Store {
	s := &Store{listeners: map[int]Listener{}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// List returns a copy of the current records in commit order.
func (s *Store) List() []annotation.Annotation { return snapshot(s.items) }

// Len returns the number of records.
func (s *Store) Len() int { return len(s.items) }

// Get returns the record with id.
func (s *Store) Get(id string) (annotation.Annotation, bool) {
	if i := s.index(id); i >= 0 {
		return s.items[i].Clone(), true
	}
	return annotation.Annotation{}, false
}

// CanUndo reports whether Undo would change anything.
func (s *Store) CanUndo() bool { return len(s.undo) > 0 }

// CanRedo reports whether Redo would change anything.
func (s *Store) CanRedo() bool { return len(s.redo) > 0 }

// Commit validates and appends a. Invalid records return a
// *annotation.ValidationError and leave the store untouched.
func (s *Store) Commit(a annotation.Annotation) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if s.index(a.ID) >= 0 {
		return fmt.Errorf("commit %s: %w", a.ID, ErrDuplicateID)
	}
	s.record()
	n := len(s.items)
	s.items = append(s.items[:n:n], a.Clone())
	s.changed()
	return nil
}

// Update swaps in a new version of an existing record, keeping its
// position. It goes through the same history bookkeeping as Commit.
func (s *Store) Update(a annotation.Annotation) error {
	if err := a.Validate(); err != nil {
		return err
	}
	i := s.index(a.ID)
	if i < 0 {
		return fmt.Errorf("update %s: %w", a.ID, ErrUnknownID)
	}
	s.record()
	s.items = snapshot(s.items)
	s.items[i] = a.Clone()
	s.changed()
	return nil
}

// Remove deletes the record with id. Absent ids are ignored and false is
// returned.
func (s *Store) Remove(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.record()
	next := make([]annotation.Annotation, 0, len(s.items)-1)
	next = append(next, s.items[:i]...)
	s.items = append(next, s.items[i+1:]...)
	s.changed()
	return true
}

// Clear empties the store. An already empty store is left alone so the
// history does not gain an empty transition.
func (s *Store) Clear() bool {
	if len(s.items) == 0 {
		return false
	}
	s.record()
	s.items = nil
	s.changed()
	return true
}

// Undo restores the state before the last committing operation.
func (s *Store) Undo() bool {
	if len(s.undo) == 0 {
		return false
	}
	prev := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, s.items)
	s.items = prev
	s.changed()
	return true
}

// Redo re-applies the last undone operation.
func (s *Store) Redo() bool {
	if len(s.redo) == 0 {
		return false
	}
	next := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, s.items)
	s.items = next
	s.changed()
	return true
}

// Replace installs list as the whole state, as when loading a saved set.
// History is reset since loading cannot be undone. Every record is
// validated first and nothing changes on error.
func (s *Store) Replace(list []annotation.Annotation) error {
	seen := make(map[string]bool, len(list))
	for _, a := range list {
		if err := a.Validate(); err != nil {
			return err
		}
		if seen[a.ID] {
			return fmt.Errorf("replace %s: %w", a.ID, ErrDuplicateID)
		}
		seen[a.ID] = true
	}
	s.items = snapshot(list)
	s.undo = nil
	s.redo = nil
	s.changed()
	return nil
}

// Subscribe registers fn for change notifications. The returned func
// removes it.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() { delete(s.listeners, id) }
}

func (s *Store) index(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// record pushes the pre-operation state and drops any redo branch. The
// pushed slice must never be written through afterwards.
func (s *Store) record() {
	s.undo = append(s.undo, s.items)
	if s.limit > 0 && len(s.undo) > s.limit {
		s.undo = append([][]annotation.Annotation(nil), s.undo[len(s.undo)-s.limit:]...)
	}
	s.redo = nil
}

func (s *Store) changed() {
	if len(s.listeners) == 0 {
		return
	}
	list := s.List()
	for _, fn := range s.listeners {
		fn(list)
	}
}

func snapshot(items []annotation.Annotation) []annotation.Annotation {
	if items == nil {
		return nil
	}
	out := make([]annotation.Annotation, len(items))
	for i := range items {
		out[i] = items[i].Clone()
	}
	return out
}
