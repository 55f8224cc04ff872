package diagram

import (
	"log/slog"
	"strconv"
	"strings"
)

// Interchange element and attribute names. The format nests an optional
// "object" wrapper (carrying the label and typed-record attributes) around
// an "mxCell" (carrying style, parent, and geometry).
const (
	elemCell     = "mxCell"
	elemObject   = "object"
	elemGeometry = "mxGeometry"

	typedRecordMarker = "factSheet"
)

// arrowTokens maps the four recognized arrow-style tokens to cardinality
// notation. Order matters: the first matching token per end wins.
var arrowTokens = []struct {
	token string
	card  string
}{
	{"ERzeroToMany", "0..*"},
	{"ERoneToMany", "1..*"},
	{"ERoneToOne", "1..1"},
	{"ERzeroToOne", "0..1"},
}

// edgeKinds maps recognized edge-style tokens to a relationship kind.
var edgeKinds = []struct {
	token string
	kind  string
}{
	{"edgeStyle=entityRelationEdgeStyle", "Entity Relationship"},
	{"edgeStyle=orthogonalEdgeStyle", "Orthogonal"},
	{"edgeStyle=elbowEdgeStyle", "Elbow"},
}

// Parse extracts entities, groups, and relationships from raw interchange
// XML. Malformed XML is the only error; all structural anomalies are
// non-fatal omissions.
func Parse(data []byte) (*Model, error) {
	a, err := parseArena(data)
	if err != nil {
		return nil, err
	}

	m := &Model{}
	groupIDs := extractGroups(a, m)
	extractEntities(a, m, groupIDs)
	extractRelationships(a, m)
	enrichRelationships(m)

	slog.Debug("diagram: extraction complete",
		"entities", len(m.Entities), "groups", len(m.Groups), "relationships", len(m.Relationships))
	return m, nil
}

// extractGroups scans container cells styled as groups and adopts the label
// of the first labeled object parented directly inside each one. A container
// with no labeled child yields no group.
func extractGroups(a *arena, m *Model) map[string]bool {
	candidates := make([]string, 0)
	isCandidate := make(map[string]bool)
	for i, n := range a.nodes {
		if n.name != elemCell || a.attr(i, "vertex") != "1" {
			continue
		}
		if !strings.Contains(a.attr(i, "style"), "group") {
			continue
		}
		if id := a.attr(i, "id"); id != "" && !isCandidate[id] {
			isCandidate[id] = true
			candidates = append(candidates, id)
		}
	}

	labels := make(map[string]string)
	for i, n := range a.nodes {
		if n.name != elemObject {
			continue
		}
		cell := a.firstChild(i, elemCell)
		if cell < 0 {
			continue
		}
		parentID := a.attr(cell, "parent")
		if !isCandidate[parentID] {
			continue
		}
		if _, done := labels[parentID]; done {
			continue
		}
		if label := CleanLabel(a.attr(i, "label")); label != "" {
			labels[parentID] = label
		}
	}

	known := make(map[string]bool, len(labels))
	for _, id := range candidates {
		label, ok := labels[id]
		if !ok {
			continue
		}
		m.Groups = append(m.Groups, Group{ID: id, Label: label})
		known[id] = true
	}
	return known
}

// extractEntities scans typed-record objects, resolving each one's geometry
// and container chain. Objects missing both a label and an external
// identifier are excluded.
func extractEntities(a *arena, m *Model, groupIDs map[string]bool) {
	seen := make(map[string]bool)
	for i, n := range a.nodes {
		if n.name != elemObject || a.attr(i, "type") != typedRecordMarker {
			continue
		}
		id := a.attr(i, "id")
		if id == "" || seen[id] {
			continue
		}
		cell := a.firstChild(i, elemCell)
		if cell < 0 {
			continue
		}

		label := CleanLabel(a.attr(i, "label"))
		externalID := a.attr(i, "factSheetId")
		if label == "" && externalID == "" {
			continue
		}

		entityType := a.attr(i, "factSheetType")
		if entityType == "" {
			entityType = "Unknown"
		}

		seen[id] = true
		m.Entities = append(m.Entities, Entity{
			ID:         id,
			Label:      label,
			EntityType: entityType,
			ExternalID: externalID,
			GroupID:    resolveGroup(a, a.attr(cell, "parent"), groupIDs),
			Geometry:   cellGeometry(a, cell),
			StyleRaw:   a.attr(cell, "style"),
		})
	}
}

// resolveGroup walks the container chain upward until it reaches a known
// group or runs out of parents.
func resolveGroup(a *arena, parentID string, groupIDs map[string]bool) string {
	visited := make(map[string]bool)
	for parentID != "" && !visited[parentID] {
		if groupIDs[parentID] {
			return parentID
		}
		visited[parentID] = true

		idx, ok := a.byID[parentID]
		if !ok {
			return ""
		}
		next := a.attr(idx, "parent")
		if next == "" && a.nodes[idx].name == elemObject {
			// Object wrappers carry the parent on their cell child.
			if cell := a.firstChild(idx, elemCell); cell >= 0 {
				next = a.attr(cell, "parent")
			}
		}
		parentID = next
	}
	return ""
}

// cellGeometry reads the cell's geometry child, if any.
func cellGeometry(a *arena, cell int) *Geometry {
	gi := a.firstChild(cell, elemGeometry)
	if gi < 0 {
		return nil
	}
	g := &Geometry{}
	g.X = parseCoord(a.attr(gi, "x"))
	g.Y = parseCoord(a.attr(gi, "y"))
	g.Width = parseCoord(a.attr(gi, "width"))
	g.Height = parseCoord(a.attr(gi, "height"))
	return g
}

func parseCoord(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// extractRelationships scans edge cells, keeping only those whose source
// and target both resolve to known entities. Dangling edges are dropped
// silently.
func extractRelationships(a *arena, m *Model) {
	entityIDs := make(map[string]bool, len(m.Entities))
	for _, e := range m.Entities {
		entityIDs[e.ID] = true
	}

	dangling := 0
	for i, n := range a.nodes {
		if n.name != elemCell || a.attr(i, "edge") != "1" {
			continue
		}
		sourceID := a.attr(i, "source")
		targetID := a.attr(i, "target")
		if sourceID == "" || targetID == "" {
			continue
		}
		if !entityIDs[sourceID] || !entityIDs[targetID] {
			dangling++
			continue
		}

		style := a.attr(i, "style")
		m.Relationships = append(m.Relationships, Relationship{
			ID:       a.attr(i, "id"),
			SourceID: sourceID,
			TargetID: targetID,
			Kind:     edgeKind(style),
			Cardinality: Cardinality{
				Source: arrowCardinality(style, "startArrow"),
				Target: arrowCardinality(style, "endArrow"),
			},
			StyleRaw: style,
		})
	}
	if dangling > 0 {
		slog.Debug("diagram: dropped dangling edges", "count", dangling)
	}
}

// enrichRelationships denormalizes endpoint labels onto each relationship.
// Pure lookup over the entity table.
func enrichRelationships(m *Model) {
	labels := make(map[string]string, len(m.Entities))
	for _, e := range m.Entities {
		labels[e.ID] = e.Label
	}
	for i := range m.Relationships {
		m.Relationships[i].SourceLabel = labels[m.Relationships[i].SourceID]
		m.Relationships[i].TargetLabel = labels[m.Relationships[i].TargetID]
	}
}

func edgeKind(style string) string {
	for _, k := range edgeKinds {
		if strings.Contains(style, k.token) {
			return k.kind
		}
	}
	return ""
}

func arrowCardinality(style, end string) string {
	for _, t := range arrowTokens {
		if strings.Contains(style, end+"="+t.token) {
			return t.card
		}
	}
	return ""
}
