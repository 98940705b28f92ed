package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/example/swingmark/internal/annotation"
	"github.com/example/swingmark/internal/geom"
)

func rec(id string, ts float64) annotation.Annotation {
	return annotation.Annotation{
		ID:        id,
		Kind:      annotation.KindLine,
		Geometry:  annotation.Segment{Start: geom.Pt(0, 0), End: geom.Pt(ts, 1)},
		Style:     annotation.Style{Color: "red", StrokeWidth: 2},
		Timestamp: ts,
	}
}

func ids(list []annotation.Annotation) string {
	s := ""
	for _, a := range list {
		s += a.ID + ","
	}
	return s
}

func TestCommitAppendsInOrder(t *testing.T) {
	s := New()
	for i, id := range []string{"a", "b", "c"} {
		if err := s.Commit(rec(id, float64(i))); err != nil {
			t.Fatalf("commit %s: %v", id, err)
		}
	}
	if got := ids(s.List()); got != "a,b,c," {
		t.Fatalf("order = %s", got)
	}
	if !s.CanUndo() || s.CanRedo() {
		t.Fatalf("unexpected history state")
	}
}

func TestCommitRejectsInvalid(t *testing.T) {
	s := New()
	bad := rec("a", 0)
	bad.Kind = annotation.KindAngle
	var verr *annotation.ValidationError
	if err := s.Commit(bad); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if s.Len() != 0 || s.CanUndo() {
		t.Fatalf("store changed on invalid commit")
	}
	if err := s.Commit(rec("a", 0)); err != nil {
		t.Fatal(err)
	}
	if err := s.Commit(rec("a", 1)); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestUndoRedoEachOperation(t *testing.T) {
	ops := map[string]func(*Store){
		"commit": func(s *Store) { _ = s.Commit(rec("z", 9)) },
		"remove": func(s *Store) { s.Remove("b") },
		"clear":  func(s *Store) { s.Clear() },
		"update": func(s *Store) {
			a, _ := s.Get("a")
			a.Timestamp = 7
			_ = s.Update(a)
		},
	}
	for name, op := range ops {
		s := New()
		_ = s.Commit(rec("a", 1))
		_ = s.Commit(rec("b", 2))
		before := s.List()
		op(s)
		after := s.List()
		if annotation.EqualLists(before, after) {
			t.Fatalf("%s: operation had no effect", name)
		}
		if !s.Undo() {
			t.Fatalf("%s: undo returned false", name)
		}
		if !annotation.EqualLists(s.List(), before) {
			t.Errorf("%s: undo gave %s, want %s", name, ids(s.List()), ids(before))
		}
		if !s.Redo() {
			t.Fatalf("%s: redo returned false", name)
		}
		if !annotation.EqualLists(s.List(), after) {
			t.Errorf("%s: redo gave %s, want %s", name, ids(s.List()), ids(after))
		}
	}
}

func TestUndoRedoEmptyHistoryNoop(t *testing.T) {
	s := New()
	if s.Undo() || s.Redo() {
		t.Fatal("expected no-op on empty history")
	}
	_ = s.Commit(rec("a", 1))
	if s.Redo() {
		t.Fatal("redo should be empty after commit")
	}
	if s.Len() != 1 || !s.CanUndo() {
		t.Fatal("redo no-op changed state")
	}
}

func TestRemoveAbsentAndClearEmptyAreSilent(t *testing.T) {
	s := New()
	if s.Clear() {
		t.Fatal("clear on empty store reported change")
	}
	_ = s.Commit(rec("a", 1))
	depth := len(s.undo)
	if s.Remove("missing") {
		t.Fatal("remove of absent id reported change")
	}
	if len(s.undo) != depth {
		t.Fatal("remove of absent id touched history")
	}
}

func TestCommitClearsRedo(t *testing.T) {
	s := New()
	_ = s.Commit(rec("a", 1))
	_ = s.Commit(rec("b", 2))
	s.Undo()
	if !s.CanRedo() {
		t.Fatal("expected redo entry")
	}
	_ = s.Commit(rec("c", 3))
	if s.CanRedo() {
		t.Fatal("commit must clear redo")
	}
	s.Undo()
	if got := ids(s.List()); got != "a," {
		t.Fatalf("after undo = %s", got)
	}
}

func TestUndoAfterUndoRestoresEarlierCommits(t *testing.T) {
	s := New()
	for i := 0; i < 4; i++ {
		_ = s.Commit(rec(fmt.Sprintf("r%d", i), float64(i)))
	}
	s.Undo()
	s.Undo()
	_ = s.Commit(rec("x", 10))
	if got := ids(s.List()); got != "r0,r1,x," {
		t.Fatalf("list = %s", got)
	}
	s.Undo()
	if got := ids(s.List()); got != "r0,r1," {
		t.Fatalf("after undo = %s", got)
	}
}

func TestReplaceResetsHistory(t *testing.T) {
	s := New()
	_ = s.Commit(rec("a", 1))
	if err := s.Replace([]annotation.Annotation{rec("x", 1), rec("y", 2)}); err != nil {
		t.Fatal(err)
	}
	if s.CanUndo() || s.CanRedo() {
		t.Fatal("replace must reset history")
	}
	bad := rec("q", 1)
	bad.Style.StrokeWidth = 0
	if err := s.Replace([]annotation.Annotation{rec("k", 1), bad}); err == nil {
		t.Fatal("expected error")
	}
	if got := ids(s.List()); got != "x,y," {
		t.Fatalf("failed replace changed state: %s", got)
	}
}

func TestHistoryLimit(t *testing.T) {
	s := New(WithHistoryLimit(2))
	for i := 0; i < 5; i++ {
		_ = s.Commit(rec(fmt.Sprintf("r%d", i), float64(i)))
	}
	n := 0
	for s.Undo() {
		n++
	}
	if n != 2 {
		t.Fatalf("undo depth = %d, want 2", n)
	}
	if s.Len() != 3 {
		t.Fatalf("len after exhausting history = %d, want 3", s.Len())
	}
}

func TestSubscribe(t *testing.T) {
	s := New()
	var got [][]annotation.Annotation
	cancel := s.Subscribe(func(l []annotation.Annotation) { got = append(got, l) })
	_ = s.Commit(rec("a", 1))
	_ = s.Commit(rec("b", 2))
	s.Undo()
	if len(got) != 3 || len(got[1]) != 2 || len(got[2]) != 1 {
		t.Fatalf("unexpected notifications: %v", got)
	}
	cancel()
	s.Redo()
	if len(got) != 3 {
		t.Fatal("listener called after cancel")
	}
}

func TestListIsACopy(t *testing.T) {
	s := New()
	_ = s.Commit(rec("a", 1))
	l := s.List()
	l[0].ID = "hacked"
	if a, _ := s.Get("a"); a.ID != "a" {
		t.Fatal("List exposed internal state")
	}
}
