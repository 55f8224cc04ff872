// Package inventory turns a catalogue workbook export (one row per typed
// record) into per-type markdown sections, each routed to its own
// collection. It complements the diagram extractor: the diagram carries the
// conceptual model, the workbook carries the full record inventory.
package inventory

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dmorley/docprep/compose"
)

// Record is one inventory row.
type Record struct {
	ID          string
	Type        string
	Name        string
	DisplayName string
	Description string
	Level       string
	State       string
}

// Label returns the display name for rendering: name, display name, or
// "Unknown".
func (r Record) Label() string {
	if r.Name != "" {
		return r.Name
	}
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return "Unknown"
}

// typeInfo maps a record type to its collection suffix and section label.
type typeInfo struct {
	suffix string
	label  string
}

// knownTypes is the fixed set of record types the composer renders; rows of
// any other type are skipped.
var knownTypes = map[string]typeInfo{
	"DataObject":         {"dataobject", "DataObject Inventory"},
	"Interface":          {"interface", "Interface Inventory (Data Flows)"},
	"Application":        {"application", "Application Inventory"},
	"BusinessCapability": {"capability", "Business Capability Inventory"},
	"Organization":       {"organization", "Organization Inventory"},
	"ITComponent":        {"itcomponent", "IT Component Inventory"},
	"Provider":           {"provider", "Provider Inventory"},
	"Objective":          {"objective", "Objective Inventory"},
}

// descriptionCap bounds rendered descriptions; longer ones are truncated
// with an ellipsis.
const descriptionCap = 800

// Options controls rendering.
type Options struct {
	// InventoryName appears in each section's prose, e.g. "FA LeanIX
	// inventory".
	InventoryName string
	// RoutingPrefix, when non-empty, routes each type section to
	// "{prefix}_{type suffix}".
	RoutingPrefix string
}

// Read loads the workbook's first non-"ReadMe" sheet into records. The
// export sheet carries a timestamped name that changes per export, so it is
// located by elimination. The first row is the header row; column names are
// matched case-insensitively.
func Read(path string) ([]Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := sheets[0]
	for _, name := range sheets {
		if !strings.EqualFold(name, "readme") {
			sheet = name
			break
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	col := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		r := Record{
			ID:          cell(row, "id"),
			Type:        cell(row, "type"),
			Name:        cell(row, "name"),
			DisplayName: cell(row, "displayname"),
			Description: cell(row, "description"),
			Level:       cell(row, "level"),
			State:       cell(row, "lxstate"),
		}
		if r == (Record{}) {
			continue
		}
		records = append(records, r)
	}
	slog.Debug("inventory: workbook read", "sheet", sheet, "records", len(records))
	return records, nil
}

// Compose renders one section per known record type, in type-name order.
func Compose(records []Record, opts Options) []compose.Section {
	name := opts.InventoryName
	if name == "" {
		name = "inventory"
	}

	byType := make(map[string][]Record)
	for _, r := range records {
		if _, ok := knownTypes[r.Type]; ok {
			byType[r.Type] = append(byType[r.Type], r)
		}
	}
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)

	sections := make([]compose.Section, 0, len(types))
	for _, t := range types {
		info := knownTypes[t]
		s := compose.Section{
			Key:     info.suffix,
			Content: renderType(name, t, info.label, byType[t]),
		}
		if opts.RoutingPrefix != "" {
			s.TargetCollection = opts.RoutingPrefix + "_" + info.suffix
		}
		sections = append(sections, s)
	}
	return sections
}

func renderType(inventoryName, recordType, label string, records []Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", label)
	fmt.Fprintf(&b, "The %s contains %d %s fact sheets. Each entry below includes "+
		"the name, identifier, hierarchy level, and a description where recorded.\n\n",
		inventoryName, len(records), recordType)
	b.WriteString("---\n\n")

	for _, r := range records {
		name := r.Label()
		fmt.Fprintf(&b, "## %s\n\n", name)
		fmt.Fprintf(&b, "**ID**: `%s`  \n", r.ID)
		if r.Level != "" {
			fmt.Fprintf(&b, "**Level**: %s  \n", r.Level)
		}
		if r.State != "" {
			fmt.Fprintf(&b, "**Quality State**: %s  \n", r.State)
		}
		if recordType == "Interface" {
			if source, target, ok := interfaceEndpoints(name); ok {
				fmt.Fprintf(&b, "**Data flow**: %s → %s  \n", source, target)
			}
		}
		b.WriteString("\n")

		if desc := r.Description; desc != "" {
			if runes := []rune(desc); len(runes) > descriptionCap {
				desc = string(runes[:descriptionCap]) + "…"
			}
			b.WriteString(desc + "\n\n")
		} else {
			b.WriteString("_No description recorded._\n\n")
		}
		b.WriteString("---\n\n")
	}
	return b.String()
}

// interfaceEndpointsRe splits interface names of the form "A to B" (with an
// optional trailing "LI" marker) into their endpoints.
var interfaceEndpointsRe = regexp.MustCompile(`(?i)^(.+?)\s+to\s+(.+?)(?:\s+LI)?$`)

func interfaceEndpoints(name string) (source, target string, ok bool) {
	m := interfaceEndpointsRe.FindStringSubmatch(name)
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
}
