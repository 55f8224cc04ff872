package diagram

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// node is one XML element in the arena. Children reference the arena by
// index, so the tree carries no pointers and no cycles.
type node struct {
	name     string
	attrs    map[string]string
	parent   int
	children []int
}

// arena holds the parsed XML tree as a flat slice plus the indexes needed
// for O(1) parent and id lookups.
type arena struct {
	nodes []node
	byID  map[string]int
}

// parseArena decodes interchange XML into a node arena in a single pass.
func parseArena(data []byte) (*arena, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	a := &arena{byID: make(map[string]int)}
	stack := []int{-1}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding interchange XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			attrs := make(map[string]string, len(t.Attr))
			for _, at := range t.Attr {
				attrs[at.Name.Local] = at.Value
			}
			idx := len(a.nodes)
			parent := stack[len(stack)-1]
			a.nodes = append(a.nodes, node{name: t.Name.Local, attrs: attrs, parent: parent})
			if parent >= 0 {
				a.nodes[parent].children = append(a.nodes[parent].children, idx)
			}
			if id := attrs["id"]; id != "" {
				if _, ok := a.byID[id]; !ok {
					a.byID[id] = idx
				}
			}
			stack = append(stack, idx)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}

	if len(a.nodes) == 0 {
		return nil, fmt.Errorf("decoding interchange XML: no elements")
	}
	return a, nil
}

// firstChild returns the index of the first direct child with the given
// element name, or -1.
func (a *arena) firstChild(idx int, name string) int {
	for _, c := range a.nodes[idx].children {
		if a.nodes[c].name == name {
			return c
		}
	}
	return -1
}

// attr returns the named attribute of the node at idx.
func (a *arena) attr(idx int, name string) string {
	return a.nodes[idx].attrs[name]
}
