// Package compose renders an extracted diagram model into self-contained
// markdown sections, each addressable by a stable key and, when a routing
// prefix is supplied, tagged with a target collection identifier. Sections
// are deliberately redundant: every one restates enough surrounding context
// that it can be read (or retrieved) on its own.
package compose

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dmorley/docprep/diagram"
)

// Section is one renderable block of output.
type Section struct {
	// Key identifies the section: "overview", "additional_entities",
	// "relationships", or a slugified group label.
	Key string
	// Content is the rendered markdown.
	Content string
	// TargetCollection is "{prefix}_{key}" when a routing prefix was
	// supplied, empty otherwise.
	TargetCollection string
}

// Options controls rendering.
type Options struct {
	// ModelName appears in headings and descriptive prose, e.g.
	// "Enterprise Conceptual Data Model".
	ModelName string
	// SourceName names the input the model was extracted from and is
	// quoted in the overview. Optional.
	SourceName string
	// RoutingPrefix, when non-empty, causes every section to carry a
	// TargetCollection of the form "{prefix}_{key}".
	RoutingPrefix string
}

// memberSampleCap bounds how many member labels a relationship entry quotes
// from each endpoint's group before truncating with an ellipsis.
const memberSampleCap = 12

// Compose renders the model into an ordered section list: an overview, one
// section per group in label order, an additional-entities section for
// ungrouped entities, and a relationship catalogue. Output depends only on
// the model and options, so repeated calls yield byte-identical sections.
func Compose(m *diagram.Model, opts Options) []Section {
	name := opts.ModelName
	if name == "" {
		name = "Conceptual Data Model"
	}

	groupLabels := make([]string, 0, len(m.Groups))
	labelByGroupID := make(map[string]string, len(m.Groups))
	for _, g := range m.Groups {
		labelByGroupID[g.ID] = g.Label
		groupLabels = append(groupLabels, g.Label)
	}
	sort.Strings(groupLabels)

	// Partition entities by group label. Entities whose group is unknown
	// (or absent) form the ungrouped partition. The entity that shares its
	// group's label is the container's own root shape and is elided from
	// the member list.
	membersByGroup := make(map[string][]string)
	var ungrouped []diagram.Entity
	for _, e := range m.Entities {
		label, ok := labelByGroupID[e.GroupID]
		if !ok {
			ungrouped = append(ungrouped, e)
			continue
		}
		if strings.EqualFold(e.Label, label) {
			continue
		}
		membersByGroup[label] = append(membersByGroup[label], e.Label)
	}
	for _, members := range membersByGroup {
		sort.Strings(members)
	}

	var sections []Section
	add := func(key, content string) {
		s := Section{Key: key, Content: content}
		if opts.RoutingPrefix != "" {
			s.TargetCollection = opts.RoutingPrefix + "_" + Slugify(key)
		}
		sections = append(sections, s)
	}

	add("overview", renderOverview(m, name, opts.SourceName, groupLabels, membersByGroup))
	for _, label := range groupLabels {
		add(Slugify(label), renderGroup(m, name, label, membersByGroup[label]))
	}
	if len(ungrouped) > 0 {
		add("additional_entities", renderAdditional(name, ungrouped))
	}
	if len(m.Relationships) > 0 {
		add("relationships", renderRelationships(m, name, membersByGroup))
	}
	return sections
}

func renderOverview(m *diagram.Model, name, source string, groupLabels []string, membersByGroup map[string][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s — Overview\n\n", name)
	fmt.Fprintf(&b, "The %s ", name)
	if source != "" {
		fmt.Fprintf(&b, "(source: %s) ", source)
	}
	fmt.Fprintf(&b, "contains %d entities organised into %d named domain groups: %s. ",
		len(m.Entities), len(groupLabels), strings.Join(groupLabels, ", "))
	fmt.Fprintf(&b, "These domains are connected through %d entity relationships.\n\n",
		len(m.Relationships))
	for _, label := range groupLabels {
		fmt.Fprintf(&b, "The **%s** domain contains %d entities.\n\n",
			label, len(membersByGroup[label]))
	}
	return b.String()
}

func renderGroup(m *diagram.Model, name, label string, members []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s Domain — %s\n\n", label, name)
	fmt.Fprintf(&b, "The %s domain is part of the %s. It contains %d entities.\n\n",
		label, name, len(members))
	if len(members) > 0 {
		fmt.Fprintf(&b, "The entities within the %s domain are:\n\n", label)
		for _, member := range members {
			fmt.Fprintf(&b, "- **%s**\n", member)
		}
		b.WriteString("\n")
	}

	// Inline every relationship touching this domain so a retrieved chunk
	// carries its connection context.
	var touching []diagram.Relationship
	for _, r := range m.Relationships {
		if r.SourceLabel == label || r.TargetLabel == label {
			touching = append(touching, r)
		}
	}
	if len(touching) > 0 {
		sort.SliceStable(touching, func(i, j int) bool {
			return touching[i].TargetLabel < touching[j].TargetLabel
		})
		fmt.Fprintf(&b, "## %s Domain Relationships\n\n", label)
		for _, r := range touching {
			fmt.Fprintf(&b, "- **%s** %s **%s**\n",
				endpointName(r.SourceLabel, r.SourceID),
				describeCardinality(r.Cardinality),
				endpointName(r.TargetLabel, r.TargetID))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Keyword vocabularies for bucketing ungrouped entities. Membership is a
// case-insensitive substring test against the entity label.
var (
	partyKeywords = []string{
		"player", "club", "team", "individual", "organisation", "employee",
		"customer", "member", "official", "learner", "prospect", "supplier",
		"county", "charity", "government", "school", "authority", "candidate",
		"mentor", "developer", "household", "unit", "supporter", "attendee",
	}
	channelKeywords = []string{
		"channel", "broadcast", "streaming", "tv", "radio", "sms", "email",
		"mobile", "web", "portal", "social", "push", "live", "chat",
		"call centre", "concierge", "in person", "pos", "turnstile", "merchandise",
	}
	assetKeywords = []string{"asset", "data", "property"}
)

func containsAny(label string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(label, kw) {
			return true
		}
	}
	return false
}

func renderAdditional(name string, ungrouped []diagram.Entity) string {
	var party, channel, account, asset, other []string
	for _, e := range ungrouped {
		label := strings.ToLower(e.Label)
		switch {
		case containsAny(label, partyKeywords):
			party = append(party, e.Label)
		case containsAny(label, channelKeywords):
			channel = append(channel, e.Label)
		case strings.Contains(label, "account"):
			account = append(account, e.Label)
		case containsAny(label, assetKeywords):
			asset = append(asset, e.Label)
		default:
			other = append(other, e.Label)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Additional Entities — %s\n\n", name)
	fmt.Fprintf(&b, "The following entities are defined in the %s outside the named "+
		"domain groups and include key party, channel, account, and asset entities.\n\n", name)
	writeBucket(&b, "Party Types", party)
	writeBucket(&b, "Channel Types", channel)
	writeBucket(&b, "Account Types", account)
	writeBucket(&b, "Asset Types", asset)
	writeBucket(&b, "Other Entities", other)
	return b.String()
}

func writeBucket(b *strings.Builder, heading string, labels []string) {
	if len(labels) == 0 {
		return
	}
	sort.Strings(labels)
	fmt.Fprintf(b, "**%s (%d entities):** %s.\n\n", heading, len(labels), strings.Join(labels, ", "))
}

func renderRelationships(m *diagram.Model, name string, membersByGroup map[string][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Entity Relationships — %s\n\n", name)
	fmt.Fprintf(&b, "This document lists all %d domain-level entity relationships in the %s. "+
		"Each relationship section is self-contained: it names the source and target domains, "+
		"states the cardinality, and lists representative entities from each domain.\n\n",
		len(m.Relationships), name)

	bySource := make(map[string][]diagram.Relationship)
	for _, r := range m.Relationships {
		bySource[endpointName(r.SourceLabel, r.SourceID)] = append(
			bySource[endpointName(r.SourceLabel, r.SourceID)], r)
	}
	sourceNames := make([]string, 0, len(bySource))
	for s := range bySource {
		sourceNames = append(sourceNames, s)
	}
	sort.Strings(sourceNames)

	for _, source := range sourceNames {
		rels := bySource[source]
		sort.SliceStable(rels, func(i, j int) bool {
			return rels[i].TargetLabel < rels[j].TargetLabel
		})
		for _, r := range rels {
			target := endpointName(r.TargetLabel, r.TargetID)
			fmt.Fprintf(&b, "## Relationship: %s → %s\n\n", source, target)
			fmt.Fprintf(&b, "**%s** %s **%s**.\n\n", source, describeCardinality(r.Cardinality), target)
			writeMemberSample(&b, source, membersByGroup[source])
			writeMemberSample(&b, target, membersByGroup[target])
		}
	}
	return b.String()
}

func writeMemberSample(b *strings.Builder, domain string, members []string) {
	if len(members) == 0 {
		return
	}
	sample := members
	ellipsis := ""
	if len(sample) > memberSampleCap {
		sample = sample[:memberSampleCap]
		ellipsis = "..."
	}
	fmt.Fprintf(b, "The **%s** domain includes entities: %s%s.\n\n",
		domain, strings.Join(sample, ", "), ellipsis)
}

func endpointName(label, id string) string {
	if label != "" {
		return label
	}
	return id
}

// cardinalityPhrases maps the canonical cardinality pair combinations to a
// natural-language rendering.
var cardinalityPhrases = map[string]string{
	"0..*-0..*": "relates to (zero or more to zero or more)",
	"1..*-0..*": "relates to (one or more to zero or more)",
	"0..*-1..*": "relates to (zero or more to one or more)",
	"1..1-0..*": "relates to (exactly one to zero or more)",
	"0..*-1..1": "relates to (zero or more to exactly one)",
	"1..1-1..1": "relates to (exactly one to exactly one)",
}

func describeCardinality(c diagram.Cardinality) string {
	if c.IsZero() {
		return "relates to"
	}
	raw := c.String()
	if phrase, ok := cardinalityPhrases[raw]; ok {
		return phrase
	}
	return fmt.Sprintf("relates to (%s)", raw)
}

// Slugify lowercases a section key, replaces runs of non-alphanumeric
// characters with a single underscore, and trims leading and trailing
// underscores.
func Slugify(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte('_')
			pendingSep = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
