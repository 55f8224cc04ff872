package glossary

import (
	"strings"
	"testing"
)

const clubDef = "Club means any club which plays the game of football in England;"

func TestExtract_ExplicitOnly(t *testing.T) {
	pages := []string{clubDef, "No definitions on this page."}
	defs := Extract(pages, Options{ExplicitRanges: []Range{{Start: 0, End: 1}}})

	if len(defs) != 1 {
		t.Fatalf("expected 1 definition, got %d: %+v", len(defs), defs)
	}
	d := defs[0]
	if d.Term != "Club" {
		t.Errorf("term = %q, want Club", d.Term)
	}
	if d.Text != "any club which plays the game of football in England" {
		t.Errorf("text = %q", d.Text)
	}
	if d.Source != Explicit {
		t.Errorf("source = %q, want explicit", d.Source)
	}
}

func TestExtract_BothPasses(t *testing.T) {
	// The same page is covered by an explicit range and is dense enough to
	// trigger auto-detection.
	pages := []string{clubDef}
	defs := Extract(pages, Options{
		ExplicitRanges:   []Range{{Start: 0, End: 1}},
		DensityThreshold: 1,
	})
	if len(defs) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(defs))
	}
	if defs[0].Source != Both {
		t.Errorf("source = %q, want both", defs[0].Source)
	}
}

func TestExtract_DetectedOnly(t *testing.T) {
	pages := []string{"Preamble text.", clubDef}
	defs := Extract(pages, Options{DensityThreshold: 1})
	if len(defs) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(defs))
	}
	if defs[0].Source != Detected {
		t.Errorf("source = %q, want detected", defs[0].Source)
	}
}

func TestExtract_ThresholdZeroDisablesDetection(t *testing.T) {
	if defs := Extract([]string{clubDef}, Options{}); len(defs) != 0 {
		t.Errorf("expected no definitions with detection disabled, got %+v", defs)
	}
}

func TestExtract_ShortBodyRejected(t *testing.T) {
	pages := []string{"Goal means a win;"}
	defs := Extract(pages, Options{ExplicitRanges: []Range{{Start: 0, End: 1}}})
	if len(defs) != 0 {
		t.Errorf("5-character body should be rejected, got %+v", defs)
	}
}

func TestExtract_OverlongBodyRejected(t *testing.T) {
	pages := []string{"Season means " + strings.Repeat("x", 1600) + ";"}
	defs := Extract(pages, Options{ExplicitRanges: []Range{{Start: 0, End: 1}}})
	if len(defs) != 0 {
		t.Errorf("1600-character body should be rejected, got %+v", defs)
	}
}

func TestExtract_CaseInsensitiveDedupFirstWins(t *testing.T) {
	pages := []string{
		"Club means any club which plays the game of football in England;\n" +
			"CLUB means something else entirely that repeats the term;",
	}
	defs := Extract(pages, Options{ExplicitRanges: []Range{{Start: 0, End: 1}}})
	if len(defs) != 1 {
		t.Fatalf("expected dedup to a single definition, got %d", len(defs))
	}
	if defs[0].Term != "Club" {
		t.Errorf("first-seen spelling should win, got %q", defs[0].Term)
	}
}

func TestExtract_RangeClamping(t *testing.T) {
	pages := []string{clubDef}
	defs := Extract(pages, Options{ExplicitRanges: []Range{{Start: -3, End: 99}}})
	if len(defs) != 1 {
		t.Errorf("out-of-bounds range should be clamped, got %d definitions", len(defs))
	}
	if defs := Extract(pages, Options{ExplicitRanges: []Range{{Start: 5, End: 2}}}); len(defs) != 0 {
		t.Errorf("empty-after-clamp range should yield nothing, got %+v", defs)
	}
}

func TestExtract_HeaderStrippedBeforeMatching(t *testing.T) {
	pages := []string{"8 - RULES\n" + clubDef}
	defs := Extract(pages, Options{ExplicitRanges: []Range{{Start: 0, End: 1}}})
	if len(defs) != 1 || defs[0].Term != "Club" {
		t.Fatalf("header line should not disturb extraction: %+v", defs)
	}
}

func TestExtract_MergeLaw(t *testing.T) {
	pages := []string{
		"Club means any club which plays the game of football in England;",
		"Player means any person registered to play for a club in England; " +
			"Club means any club which plays the game of football in England;",
	}
	defs := Extract(pages, Options{
		ExplicitRanges:   []Range{{Start: 0, End: 1}},
		DensityThreshold: 2,
	})

	bySource := map[Confidence][]string{}
	seen := map[string]bool{}
	for _, d := range defs {
		key := strings.ToLower(d.Term)
		if seen[key] {
			t.Errorf("duplicate term %q in output", d.Term)
		}
		seen[key] = true
		bySource[d.Source] = append(bySource[d.Source], d.Term)
	}
	if got := bySource[Both]; len(got) != 1 || got[0] != "Club" {
		t.Errorf("both = %v, want [Club]", got)
	}
	if got := bySource[Detected]; len(got) != 1 || got[0] != "Player" {
		t.Errorf("detected = %v, want [Player]", got)
	}
	if len(bySource[Explicit]) != 0 {
		t.Errorf("explicit-only = %v, want none", bySource[Explicit])
	}
}

func TestExtractDashes_WrappedDefinition(t *testing.T) {
	text := strings.Join([]string{
		"Affiliated Association  - an association which is affiliated to",
		"The Association under these Rules",
		"Competition  - any competition sanctioned by The Association",
		"",
	}, "\n")
	defs := extractDashes(text)
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d: %+v", len(defs), defs)
	}
	if defs[0].Term != "Affiliated Association" {
		t.Errorf("term = %q", defs[0].Term)
	}
	if want := "an association which is affiliated to The Association under these Rules"; defs[0].Text != want {
		t.Errorf("wrapped body = %q, want %q", defs[0].Text, want)
	}
	if defs[1].Term != "Competition" {
		t.Errorf("term = %q", defs[1].Term)
	}
}

func TestExtractDashes_SingleSpaceIsNotADefinition(t *testing.T) {
	if defs := extractDashes("Ordinary prose - with a parenthetical dash in it.\n"); len(defs) != 0 {
		t.Errorf("single-space dash should not open a term, got %+v", defs)
	}
}

func TestExtractMeans_BodyStopsAtNextTrigger(t *testing.T) {
	text := "Club means any club which plays the game of football in England " +
		"Player means any person registered to play for a club"
	defs := extractMeans(text)
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d: %+v", len(defs), defs)
	}
	if strings.Contains(defs[0].Text, "Player") {
		t.Errorf("first body should stop at the next trigger: %q", defs[0].Text)
	}
}

func TestRender(t *testing.T) {
	defs := []Definition{
		{Term: "Club", Text: "any club which plays the game of football in England", Source: Explicit},
		{Term: "Player", Text: "any person registered to play for a club", Source: Both},
	}
	got := Render(defs)
	wants := []string{
		"## Club\n",
		"**Defined term** [source: explicit]: Club means any club which plays the game of football in England.\n",
		"## Player\n",
		"**Defined term** [source: both]: Player means any person registered to play for a club.\n",
	}
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if Render(nil) != "" {
		t.Error("empty input should render to empty string")
	}
}
