package compose

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dmorley/docprep/diagram"
)

func modelFixture() *diagram.Model {
	return &diagram.Model{
		Groups: []diagram.Group{
			{ID: "g-product", Label: "PRODUCT"},
			{ID: "g-party", Label: "PARTY"},
		},
		Entities: []diagram.Entity{
			{ID: "party-root", Label: "Party", GroupID: "g-party"},
			{ID: "club", Label: "Club", GroupID: "g-party"},
			{ID: "official", Label: "Match Official", GroupID: "g-party"},
			{ID: "product-root", Label: "Product", GroupID: "g-product"},
			{ID: "membership", Label: "Membership", GroupID: "g-product"},
			{ID: "loose-supporter", Label: "Supporter Household"},
			{ID: "loose-channel", Label: "Broadcast Channel"},
			{ID: "loose-account", Label: "Ledger Account"},
			{ID: "loose-asset", Label: "Media Asset"},
			{ID: "loose-misc", Label: "Fixture"},
		},
		Relationships: []diagram.Relationship{
			{
				ID: "e1", SourceID: "party-root", TargetID: "product-root",
				SourceLabel: "PARTY", TargetLabel: "PRODUCT",
				Kind:        "Entity Relationship",
				Cardinality: diagram.Cardinality{Source: "1..1", Target: "0..*"},
			},
		},
	}
}

func sectionKeys(sections []Section) []string {
	keys := make([]string, len(sections))
	for i, s := range sections {
		keys[i] = s.Key
	}
	return keys
}

func TestCompose_SectionOrder(t *testing.T) {
	sections := Compose(modelFixture(), Options{ModelName: "Test Model"})
	got := strings.Join(sectionKeys(sections), ",")
	want := "overview,party,product,additional_entities,relationships"
	if got != want {
		t.Errorf("section order = %q, want %q", got, want)
	}
}

func TestCompose_Routing(t *testing.T) {
	sections := Compose(modelFixture(), Options{ModelName: "Test Model", RoutingPrefix: "leanix"})
	for _, s := range sections {
		want := "leanix_" + s.Key
		if s.TargetCollection != want {
			t.Errorf("section %q: target collection = %q, want %q", s.Key, s.TargetCollection, want)
		}
	}

	// No prefix, no routing.
	for _, s := range Compose(modelFixture(), Options{ModelName: "Test Model"}) {
		if s.TargetCollection != "" {
			t.Errorf("section %q: unexpected target collection %q", s.Key, s.TargetCollection)
		}
	}
}

func TestCompose_SelfReferenceElision(t *testing.T) {
	sections := Compose(modelFixture(), Options{ModelName: "Test Model"})
	var party Section
	for _, s := range sections {
		if s.Key == "party" {
			party = s
		}
	}
	if party.Key == "" {
		t.Fatal("party section not found")
	}
	if strings.Contains(party.Content, "- **Party**") {
		t.Error("group's own root entity should be elided from its member list")
	}
	if !strings.Contains(party.Content, "- **Club**") || !strings.Contains(party.Content, "- **Match Official**") {
		t.Errorf("member list incomplete:\n%s", party.Content)
	}
	if !strings.Contains(party.Content, "contains 2 entities") {
		t.Errorf("member count should exclude the root entity:\n%s", party.Content)
	}
}

func TestCompose_InlinedRelationships(t *testing.T) {
	sections := Compose(modelFixture(), Options{ModelName: "Test Model"})
	for _, s := range sections {
		if s.Key != "party" && s.Key != "product" {
			continue
		}
		if !strings.Contains(s.Content, "**PARTY** relates to (exactly one to zero or more) **PRODUCT**") {
			t.Errorf("section %q missing inlined relationship:\n%s", s.Key, s.Content)
		}
	}
}

func TestCompose_AdditionalEntityBuckets(t *testing.T) {
	sections := Compose(modelFixture(), Options{ModelName: "Test Model"})
	var add Section
	for _, s := range sections {
		if s.Key == "additional_entities" {
			add = s
		}
	}
	if add.Key == "" {
		t.Fatal("additional_entities section not found")
	}
	wants := []string{
		"**Party Types (1 entities):** Supporter Household.",
		"**Channel Types (1 entities):** Broadcast Channel.",
		"**Account Types (1 entities):** Ledger Account.",
		"**Asset Types (1 entities):** Media Asset.",
		"**Other Entities (1 entities):** Fixture.",
	}
	for _, want := range wants {
		if !strings.Contains(add.Content, want) {
			t.Errorf("missing %q in:\n%s", want, add.Content)
		}
	}
}

func TestCompose_RelationshipCatalogueSampleCap(t *testing.T) {
	m := modelFixture()
	// Inflate the PARTY group well past the sample cap.
	for i := 0; i < 20; i++ {
		m.Entities = append(m.Entities, diagram.Entity{
			ID:      fmt.Sprintf("extra-%02d", i),
			Label:   fmt.Sprintf("Extra %02d", i),
			GroupID: "g-party",
		})
	}
	sections := Compose(m, Options{ModelName: "Test Model"})
	var rels Section
	for _, s := range sections {
		if s.Key == "relationships" {
			rels = s
		}
	}
	if rels.Key == "" {
		t.Fatal("relationships section not found")
	}
	if !strings.Contains(rels.Content, "## Relationship: PARTY → PRODUCT") {
		t.Errorf("catalogue heading missing:\n%s", rels.Content)
	}
	sampleLine := ""
	for _, line := range strings.Split(rels.Content, "\n") {
		if strings.HasPrefix(line, "The **PARTY** domain includes entities:") {
			sampleLine = line
		}
	}
	if sampleLine == "" {
		t.Fatalf("PARTY member sample missing:\n%s", rels.Content)
	}
	if !strings.HasSuffix(sampleLine, "....") {
		t.Errorf("sample past cap should end with ellipsis: %q", sampleLine)
	}
	if got := strings.Count(sampleLine, ","); got != memberSampleCap-1 {
		t.Errorf("sample lists %d labels, want %d: %q", got+1, memberSampleCap, sampleLine)
	}
}

func TestCompose_Idempotent(t *testing.T) {
	m := modelFixture()
	opts := Options{ModelName: "Test Model", SourceName: "model.xml", RoutingPrefix: "fa"}
	a := Compose(m, opts)
	b := Compose(m, opts)
	if len(a) != len(b) {
		t.Fatalf("section counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("section %q differs between runs", a[i].Key)
		}
	}
}

func TestDescribeCardinality(t *testing.T) {
	tests := []struct {
		card diagram.Cardinality
		want string
	}{
		{diagram.Cardinality{Source: "0..*", Target: "0..*"}, "relates to (zero or more to zero or more)"},
		{diagram.Cardinality{Source: "1..*", Target: "0..*"}, "relates to (one or more to zero or more)"},
		{diagram.Cardinality{Source: "0..*", Target: "1..*"}, "relates to (zero or more to one or more)"},
		{diagram.Cardinality{Source: "1..1", Target: "0..*"}, "relates to (exactly one to zero or more)"},
		{diagram.Cardinality{Source: "0..*", Target: "1..1"}, "relates to (zero or more to exactly one)"},
		{diagram.Cardinality{Source: "1..1", Target: "1..1"}, "relates to (exactly one to exactly one)"},
		{diagram.Cardinality{Source: "0..1", Target: "1..1"}, "relates to (0..1-1..1)"},
		{diagram.Cardinality{Target: "0..*"}, "relates to (-0..*)"},
		{diagram.Cardinality{}, "relates to"},
	}
	for _, tt := range tests {
		if got := describeCardinality(tt.card); got != tt.want {
			t.Errorf("describeCardinality(%+v) = %q, want %q", tt.card, got, tt.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"PARTY", "party"},
		{"Transaction & Events", "transaction_events"},
		{"  Agreements  ", "agreements"},
		{"Location/Geography", "location_geography"},
		{"overview", "overview"},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.input); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
