// Package glossary extracts term definitions from paginated document text.
// Two independent pattern strategies run over caller-selected and
// density-detected page ranges; merged results carry a provenance tag so a
// downstream consumer can weight high-confidence terms differently from
// speculative ones.
package glossary

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmorley/docprep/pagetext"
)

// Confidence records which extraction pass produced a definition.
type Confidence string

const (
	// Explicit marks terms found only in caller-supplied page ranges.
	Explicit Confidence = "explicit"
	// Detected marks terms found only on density-detected pages.
	Detected Confidence = "detected"
	// Both marks terms found by both passes.
	Both Confidence = "both"
)

// Definition is one extracted term.
type Definition struct {
	// Term is the canonical spelling, whitespace-collapsed. Dedup is
	// case-insensitive and the first-seen spelling wins.
	Term string
	// Text is the definition body, whitespace-collapsed, trailing
	// semicolon or period stripped.
	Text string
	// Source is the provenance tag.
	Source Confidence
}

// Range is a 0-based, end-exclusive page index range. Out-of-bounds ranges
// are clamped to the document, not rejected.
type Range struct {
	Start int
	End   int
}

// Options selects which pages are scanned.
type Options struct {
	// ExplicitRanges are always scanned; matches are tagged Explicit.
	ExplicitRanges []Range
	// DensityThreshold is the minimum per-page count of definition
	// trigger phrases for a page to be auto-scanned; matches are tagged
	// Detected. Zero disables auto-detection.
	DensityThreshold int
}

// Acceptance guard for definition bodies. Anything shorter is pattern
// noise, anything longer has run past its real end.
const (
	minDefinitionLen = 10
	maxDefinitionLen = 1500
)

// Extract runs both strategies over the explicit and density-detected page
// selections and merges the results. Returned definitions are ordered:
// explicit-pass terms in extraction order, then detected-only terms.
func Extract(pages []string, opts Options) []Definition {
	explicit := scanRanges(pages, clampRanges(opts.ExplicitRanges, len(pages)))
	detected := scanRanges(pages, detectRanges(pages, opts.DensityThreshold))

	detectedSet := make(map[string]bool, len(detected))
	for _, d := range detected {
		detectedSet[strings.ToLower(d.Term)] = true
	}
	explicitSet := make(map[string]bool, len(explicit))

	out := make([]Definition, 0, len(explicit)+len(detected))
	for _, d := range explicit {
		key := strings.ToLower(d.Term)
		explicitSet[key] = true
		d.Source = Explicit
		if detectedSet[key] {
			d.Source = Both
		}
		out = append(out, d)
	}
	for _, d := range detected {
		if explicitSet[strings.ToLower(d.Term)] {
			continue
		}
		d.Source = Detected
		out = append(out, d)
	}

	slog.Debug("glossary: extraction complete",
		"explicit", len(explicit), "detected", len(detected), "merged", len(out))
	return out
}

// scanRanges runs both strategies over each range and deduplicates
// case-insensitively across the whole pass, first spelling wins.
func scanRanges(pages []string, ranges []Range) []Definition {
	seen := make(map[string]bool)
	var defs []Definition
	for _, r := range ranges {
		text := rangeText(pages, r)
		for _, d := range append(extractMeans(text), extractDashes(text)...) {
			key := strings.ToLower(d.Term)
			if seen[key] {
				continue
			}
			seen[key] = true
			defs = append(defs, d)
		}
	}
	return defs
}

// rangeText concatenates the range's pages with running headers removed, so
// a header landing mid-definition cannot split or pollute a match.
func rangeText(pages []string, r Range) string {
	var b strings.Builder
	for _, page := range pages[r.Start:r.End] {
		for _, raw := range strings.Split(page, "\n") {
			line := strings.TrimSpace(raw)
			if pagetext.IsHeaderLine(line) {
				continue
			}
			b.WriteString(raw)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func clampRanges(ranges []Range, pageCount int) []Range {
	out := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if r.Start < 0 {
			r.Start = 0
		}
		if r.End > pageCount {
			r.End = pageCount
		}
		if r.Start >= r.End {
			continue
		}
		out = append(out, r)
	}
	return out
}

// detectRanges scores every page by its count of definition trigger phrases
// and returns a single-page range for each page at or above the threshold.
func detectRanges(pages []string, threshold int) []Range {
	if threshold <= 0 {
		return nil
	}
	var out []Range
	for i, page := range pages {
		if n := len(meansTriggerRe.FindAllStringIndex(page, -1)); n >= threshold {
			out = append(out, Range{Start: i, End: i + 1})
		}
	}
	return out
}

// accept applies the shared noise guard and normalizes the pair.
func accept(term, text string) (Definition, bool) {
	term = strings.Join(strings.Fields(term), " ")
	text = strings.Join(strings.Fields(text), " ")
	text = strings.TrimRight(text, ";.")
	text = strings.TrimSpace(text)
	if len(text) < minDefinitionLen || len(text) > maxDefinitionLen {
		return Definition{}, false
	}
	return Definition{Term: term, Text: text}, true
}

// Render formats definitions as one heading-per-term markdown block with an
// explicit confidence annotation on every entry.
func Render(defs []Definition) string {
	if len(defs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("# Glossary of Defined Terms\n\n")
	for _, d := range defs {
		fmt.Fprintf(&b, "## %s\n\n", d.Term)
		fmt.Fprintf(&b, "**Defined term** [source: %s]: %s means %s.\n\n", d.Source, d.Term, d.Text)
	}
	return b.String()
}
