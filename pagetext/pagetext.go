// Package pagetext reconstructs a clean document from per-page extracted
// text. Paginated renders repeat a running header on every page and leave
// page numbers and table-of-contents debris behind; Strip removes all of it
// in a single line-oriented pass and emits one section marker per distinct
// header, in first-seen order.
package pagetext

import (
	"log/slog"
	"regexp"
	"strings"
)

// Header lines are all-caps: either "<number> - <PHRASE>" or
// "<PHRASE> - <PHRASE>". The phrase charset is uppercase letters, digits,
// spaces, and a restricted punctuation set; a lowercase character anywhere
// disqualifies the line, since body text is mixed-case.
var (
	numberedHeaderRe = regexp.MustCompile(`^\d{1,4} - [A-Z][A-Z0-9 &',.()/-]*$`)
	titledHeaderRe   = regexp.MustCompile(`^[A-Z][A-Z0-9 &',.()/-]* - [A-Z][A-Z0-9 &',.()/-]*$`)

	// Bare page-number artifact.
	pageNumberRe = regexp.MustCompile(`^\d{1,4}$`)
	// Page-number-prefixed stray header fragment, e.g. "123  45-".
	strayFragmentRe = regexp.MustCompile(`^\d{1,4}\s+\d+-`)
	// Table-of-contents dot leader, e.g. "Definitions .......... 12".
	tocLeaderRe = regexp.MustCompile(`\.{4,}\s*\d+$`)
)

// noiseLines is the fixed set of literal boilerplate lines carried over from
// the source render, compared after whitespace trimming.
var noiseLines = map[string]bool{
	"CONTENTS":                         true,
	"INDEX":                            true,
	"CONTINUED":                        true,
	"CONTINUED OVERLEAF":               true,
	"THIS PAGE IS INTENTIONALLY BLANK": true,
}

// IsHeaderLine reports whether a trimmed line matches the running-header
// pattern.
func IsHeaderLine(line string) bool {
	return numberedHeaderRe.MatchString(line) || titledHeaderRe.MatchString(line)
}

func isNoiseLine(line string) bool {
	if noiseLines[strings.ToUpper(line)] {
		return true
	}
	if pageNumberRe.MatchString(line) {
		return true
	}
	if strayFragmentRe.MatchString(line) {
		return true
	}
	return tocLeaderRe.MatchString(line)
}

// Result is a reconstructed document.
type Result struct {
	// Text is the cleaned document with "## <header>" section markers.
	Text string
	// Pages is the number of pages processed.
	Pages int
	// Sections lists the distinct section titles in first-seen order.
	Sections []string
}

// Strip removes running headers and page noise from the ordered page
// sequence and reconstructs one document. A header's marker is emitted
// lazily, just before its first content line, so a header that only ever
// precedes noise produces no marker. Repeats of the current header are
// dropped; a header seen under an earlier section re-opens that section
// without emitting a second marker.
func Strip(pages []string) Result {
	var out []string
	var sections []string
	seen := make(map[string]bool)
	currentTitle := ""
	pendingMarker := false
	dropped := 0

	for _, page := range pages {
		for _, raw := range strings.Split(page, "\n") {
			line := strings.TrimSpace(raw)
			if line == "" {
				continue
			}
			if IsHeaderLine(line) {
				title := strings.Join(strings.Fields(line), " ")
				if title != currentTitle {
					currentTitle = title
					pendingMarker = !seen[title]
				}
				continue
			}
			if isNoiseLine(line) {
				dropped++
				continue
			}
			if pendingMarker {
				if len(out) > 0 {
					out = append(out, "")
				}
				out = append(out, "## "+currentTitle, "")
				seen[currentTitle] = true
				sections = append(sections, currentTitle)
				pendingMarker = false
			}
			out = append(out, line)
		}
	}

	slog.Debug("pagetext: strip complete",
		"pages", len(pages), "sections", len(sections), "noise_lines", dropped)

	text := strings.Join(out, "\n")
	if text != "" {
		text += "\n"
	}
	return Result{Text: text, Pages: len(pages), Sections: sections}
}
