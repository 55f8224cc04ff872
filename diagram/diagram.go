// Package diagram extracts an entity model from a diagram interchange XML
// export: labeled shapes grouped into domain containers and connected by
// typed, cardinality-annotated edges.
//
// Interchange exports are hand-drawn and inconsistent, so extraction is
// permissive: unlabeled shapes, containers without a labeled child, and
// edges with unresolved endpoints are skipped silently. Only malformed XML
// is an error.
package diagram

// Entity is one labeled shape in the model. Labels are always cleaned:
// markup stripped, entities decoded, whitespace collapsed.
type Entity struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	EntityType string    `json:"entity_type"`
	ExternalID string    `json:"external_id,omitempty"`
	GroupID    string    `json:"group_id,omitempty"`
	Geometry   *Geometry `json:"geometry,omitempty"`
	StyleRaw   string    `json:"style,omitempty"`
}

// Geometry is the shape's placement on the canvas. Informational only.
type Geometry struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Group is a visual container holding related entities.
type Group struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Cardinality is the two-sided multiplicity annotation on a relationship.
// Either side may be empty when the edge carries no recognized arrow token.
type Cardinality struct {
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
}

// IsZero reports whether neither side carries a cardinality token.
func (c Cardinality) IsZero() bool {
	return c.Source == "" && c.Target == ""
}

// String renders the pair in source-target notation, e.g. "1..1-0..*".
// A missing side is left empty ("-0..*", "1..1-").
func (c Cardinality) String() string {
	if c.IsZero() {
		return ""
	}
	return c.Source + "-" + c.Target
}

// Relationship is a directed edge between two entities. Edges are only
// materialized when both endpoints resolve to known entities.
type Relationship struct {
	ID          string      `json:"id"`
	SourceID    string      `json:"source_id"`
	TargetID    string      `json:"target_id"`
	SourceLabel string      `json:"source_label,omitempty"`
	TargetLabel string      `json:"target_label,omitempty"`
	Kind        string      `json:"kind,omitempty"`
	Cardinality Cardinality `json:"cardinality,omitzero"`
	StyleRaw    string      `json:"style,omitempty"`
}

// Model is the extracted entity model of one diagram. All slices preserve
// document order, so parsing the same bytes twice yields an identical model.
type Model struct {
	Entities      []Entity       `json:"entities"`
	Groups        []Group        `json:"groups"`
	Relationships []Relationship `json:"relationships"`
}

// Entity returns the entity with the given id.
func (m *Model) Entity(id string) (Entity, bool) {
	for _, e := range m.Entities {
		if e.ID == id {
			return e, true
		}
	}
	return Entity{}, false
}

// GroupLabel returns the label of the group with the given id, or "" when
// the id does not name a known group.
func (m *Model) GroupLabel(id string) string {
	for _, g := range m.Groups {
		if g.ID == id {
			return g.Label
		}
	}
	return ""
}
