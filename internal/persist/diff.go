package persist

import (
	"context"
	"fmt"

	"github.com/example/swingmark/internal/annotation"
)

// Op is the kind of a Change.
type Op int

const (
	OpCreate Op = iota
	OpUpdate
	OpRemove
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpRemove:
		return "remove"
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Change is one repository call needed to bring storage in line with a
// local annotation list.
type Change struct {
	Op     Op
	ID     string
	Record annotation.Annotation // OpCreate
	Patch  annotation.Patch      // OpUpdate
}

// Diff lists the changes that turn before into after: removals in before
// order, then updates and creations in after order.
func Diff(before, after []annotation.Annotation) []Change {
	old := make(map[string]annotation.Annotation, len(before))
	for _, a := range before {
		old[a.ID] = a
	}
	kept := make(map[string]bool, len(after))
	for _, a := range after {
		kept[a.ID] = true
	}

	var changes []Change
	for _, a := range before {
		if !kept[a.ID] {
			changes = append(changes, Change{Op: OpRemove, ID: a.ID})
		}
	}
	for _, a := range after {
		prev, ok := old[a.ID]
		if !ok || prev.Equal(a) {
			continue
		}
		if p := annotation.PatchBetween(prev, a); !p.Empty() {
			changes = append(changes, Change{Op: OpUpdate, ID: a.ID, Patch: p})
		}
	}
	for _, a := range after {
		if _, ok := old[a.ID]; !ok {
			changes = append(changes, Change{Op: OpCreate, ID: a.ID, Record: a.Clone()})
		}
	}
	return changes
}

// Apply performs c against repo.
func Apply(ctx context.Context, repo Repository, c Change) error {
	switch c.Op {
	case OpCreate:
		_, err := repo.Create(ctx, c.Record)
		return err
	case OpUpdate:
		return repo.Update(ctx, c.ID, c.Patch)
	case OpRemove:
		return repo.Remove(ctx, c.ID)
	}
	return fail(c.Op.String(), c.ID, fmt.Errorf("unknown op"))
}
