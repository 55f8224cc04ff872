package glossary

import (
	"regexp"
	"strings"
)

// Strategy A: "<Capitalized short phrase> means <body>". The phrase is one
// to six capitalized words; the body runs to the next trigger or the first
// semicolon, whichever comes first.
var meansTriggerRe = regexp.MustCompile(
	`\b([A-Z][A-Za-z0-9'/-]*(?:[ \t][A-Z][A-Za-z0-9'/-]*){0,5})[ \t\n]+means[ \t\n]+`)

func extractMeans(text string) []Definition {
	matches := meansTriggerRe.FindAllStringSubmatchIndex(text, -1)
	defs := make([]Definition, 0, len(matches))
	for i, m := range matches {
		term := text[m[2]:m[3]]
		bodyEnd := len(text)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		body := text[m[1]:bodyEnd]
		if semi := strings.IndexByte(body, ';'); semi >= 0 {
			body = body[:semi]
		}
		if d, ok := accept(term, body); ok {
			defs = append(defs, d)
		}
	}
	return defs
}

// Strategy B: "<Capitalized short phrase>  - <body>", line-oriented. A
// matching line opens a term; following non-matching lines are continuation
// text for line-wrapped definitions; the next match or end of input flushes
// the accumulated pair.
var dashLineRe = regexp.MustCompile(
	`^([A-Z][A-Za-z0-9'/&().-]*(?:[ ][A-Za-z0-9'/&().-]+){0,5})[ \t]{2,}- (.+)$`)

// dashState is the accumulator threaded through dashStep. A zero value is
// the idle state.
type dashState struct {
	term string
	body []string
}

func (s dashState) accumulating() bool { return s.term != "" }

// dashStep advances the machine by one line, returning the next state and
// the definition flushed by this line, if any.
func dashStep(s dashState, line string) (dashState, Definition, bool) {
	if m := dashLineRe.FindStringSubmatch(strings.TrimRight(line, " \t")); m != nil {
		next := dashState{term: m[1], body: []string{m[2]}}
		if !s.accumulating() {
			return next, Definition{}, false
		}
		d, ok := s.flush()
		return next, d, ok
	}
	if s.accumulating() && strings.TrimSpace(line) != "" {
		s.body = append(s.body, strings.TrimSpace(line))
	}
	return s, Definition{}, false
}

func (s dashState) flush() (Definition, bool) {
	return accept(s.term, strings.Join(s.body, " "))
}

func extractDashes(text string) []Definition {
	var defs []Definition
	state := dashState{}
	for _, line := range strings.Split(text, "\n") {
		next, d, ok := dashStep(state, line)
		state = next
		if ok {
			defs = append(defs, d)
		}
	}
	if state.accumulating() {
		if d, ok := state.flush(); ok {
			defs = append(defs, d)
		}
	}
	return defs
}
