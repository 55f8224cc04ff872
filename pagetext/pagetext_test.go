package pagetext

import (
	"strings"
	"testing"
)

func TestStrip_RepeatedHeaderEmittedOnce(t *testing.T) {
	pages := []string{
		"8 - RULES\nFirst unique line.",
		"8 - RULES\nSecond unique line.",
		"8 - RULES\nThird unique line.",
	}
	got := Strip(pages)

	if got.Pages != 3 {
		t.Errorf("pages = %d, want 3", got.Pages)
	}
	if n := strings.Count(got.Text, "## 8 - RULES"); n != 1 {
		t.Errorf("marker count = %d, want 1\n%s", n, got.Text)
	}
	wantOrder := []string{"First unique line.", "Second unique line.", "Third unique line."}
	idx := -1
	for _, want := range wantOrder {
		at := strings.Index(got.Text, want)
		if at < 0 {
			t.Fatalf("missing content line %q in:\n%s", want, got.Text)
		}
		if at < idx {
			t.Errorf("content line %q out of page order", want)
		}
		idx = at
	}
	if len(got.Sections) != 1 || got.Sections[0] != "8 - RULES" {
		t.Errorf("sections = %v, want [8 - RULES]", got.Sections)
	}
}

func TestStrip_HeaderNeverAppearsAsBody(t *testing.T) {
	pages := []string{
		"8 - RULES\nBody one.",
		"APPENDIX A - DISCIPLINARY PROCEDURES\nBody two.",
		"8 - RULES\nBody three.",
	}
	got := Strip(pages)
	for _, line := range strings.Split(got.Text, "\n") {
		if line == "" || strings.HasPrefix(line, "## ") {
			continue
		}
		if IsHeaderLine(line) {
			t.Errorf("header text emitted as body content: %q", line)
		}
	}
	// The re-seen header re-opens its section without a second marker.
	if n := strings.Count(got.Text, "## 8 - RULES"); n != 1 {
		t.Errorf("marker count = %d, want 1\n%s", n, got.Text)
	}
}

func TestStrip_ReopenedSectionKeepsPageOrder(t *testing.T) {
	pages := []string{
		"8 - RULES\nRule one.",
		"DEFINITIONS - GLOSSARY\nTerm block.",
		"8 - RULES\nRule two.",
	}
	got := Strip(pages)
	if !strings.Contains(got.Text, "Rule one.") || !strings.Contains(got.Text, "Rule two.") {
		t.Fatalf("content lost:\n%s", got.Text)
	}
	if strings.Index(got.Text, "Rule one.") > strings.Index(got.Text, "Term block.") {
		t.Errorf("page order not preserved:\n%s", got.Text)
	}
}

func TestStrip_NoiseDropped(t *testing.T) {
	pages := []string{strings.Join([]string{
		"42",
		"123 45-GOVERNANCE",
		"Definitions .......... 12",
		"CONTENTS",
		"This line stays.",
	}, "\n")}
	got := Strip(pages)
	if want := "This line stays.\n"; got.Text != want {
		t.Errorf("Strip = %q, want %q", got.Text, want)
	}
}

func TestStrip_HeaderWithOnlyNoiseEmitsNoMarker(t *testing.T) {
	pages := []string{
		"1 - PRELIMINARY\n17",
		"2 - MEMBERSHIP\nActual membership text.",
	}
	got := Strip(pages)
	if strings.Contains(got.Text, "## 1 - PRELIMINARY") {
		t.Errorf("marker emitted for a section with no content:\n%s", got.Text)
	}
	if !strings.Contains(got.Text, "## 2 - MEMBERSHIP") {
		t.Errorf("expected membership marker:\n%s", got.Text)
	}
}

func TestStrip_Idempotent(t *testing.T) {
	pages := []string{
		"8 - RULES\nOne.\n42",
		"APPENDIX A - FORMS\nTwo.",
	}
	a := Strip(pages)
	b := Strip(pages)
	if a.Text != b.Text || a.Pages != b.Pages {
		t.Error("repeated strips disagree")
	}
}

func TestStrip_Empty(t *testing.T) {
	got := Strip(nil)
	if got.Text != "" || got.Pages != 0 || len(got.Sections) != 0 {
		t.Errorf("Strip(nil) = %+v, want zero result", got)
	}
}

func TestIsHeaderLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"8 - RULES", true},
		{"123 - DISCIPLINARY PROCEDURES", true},
		{"APPENDIX A - FORMS & FEES", true},
		{"YOUTH RULES - SEASON 2024/25", true},
		{"RULES (GENERAL) - PART ONE", true},
		{"8 - Rules", false},           // lowercase disqualifies
		{"Section 8 - RULES", false},   // mixed-case left side
		{"8-RULES", false},             // separator needs surrounding spaces
		{"12345 - RULES", false},       // page number too long
		{"plain body text", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsHeaderLine(tt.line); got != tt.want {
			t.Errorf("IsHeaderLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
