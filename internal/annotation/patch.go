package annotation

// Patch is a partial update. Nil fields are left alone; ClearDuration
// turns a windowed record back into a point-in-time one.
type Patch struct {
	Style         *Style
	Geometry      Geometry
	Timestamp     *float64
	Duration      *float64
	ClearDuration bool
	UpdatedAt     string
}

// Empty reports whether applying p would change nothing.
func (p Patch) Empty() bool {
	return p.Style == nil && p.Geometry == nil && p.Timestamp == nil && p.Duration == nil && !p.ClearDuration
}

// Apply returns a new version of a with p applied. The result is validated
// and a is never modified.
func (p Patch) Apply(a Annotation) (Annotation, error) {
	out := a.Clone()
	if p.Style != nil {
		out.Style = *p.Style
	}
	if p.Geometry != nil {
		out.Geometry = p.Geometry.clone()
	}
	if p.Timestamp != nil {
		out.Timestamp = *p.Timestamp
	}
	if p.ClearDuration {
		out.Duration = nil
	} else if p.Duration != nil {
		out.Duration = Float(*p.Duration)
	}
	if p.UpdatedAt != "" {
		out.UpdatedAt = p.UpdatedAt
	}
	if err := out.Validate(); err != nil {
		return Annotation{}, err
	}
	return out, nil
}

// PatchBetween describes the change from before to after as a Patch.
func PatchBetween(before, after Annotation) Patch {
	var p Patch
	if before.Style != after.Style {
		s := after.Style
		p.Style = &s
	}
	if before.Geometry == nil || after.Geometry == nil || !before.Geometry.equal(after.Geometry) {
		p.Geometry = after.Geometry
	}
	if before.Timestamp != after.Timestamp {
		p.Timestamp = Float(after.Timestamp)
	}
	switch {
	case after.Duration == nil && before.Duration != nil:
		p.ClearDuration = true
	case after.Duration != nil && (before.Duration == nil || *before.Duration != *after.Duration):
		p.Duration = Float(*after.Duration)
	}
	return p
}
