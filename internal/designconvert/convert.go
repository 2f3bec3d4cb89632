// Package designconvert turns a raw Excalidraw scene (the JSON the browser
// whiteboard emits) into a natural-language description and a Mermaid
// flowchart. It is a minimal, top-level-only port: it extracts shapes, text
// labels, and arrows, groups them into components/connections/standalone
// text, and renders the two summaries the design debounce pipeline needs.
// It does not attempt diagram-type detection, layout analysis, or the
// richer component-shape heuristics of the originating implementation.
package designconvert

import (
	"fmt"
	"sort"
	"strings"
)

// binding names the element a bound arrow endpoint attaches to, matching
// Excalidraw's startBinding/endBinding shape.
type binding struct {
	ElementID string `json:"elementId"`
}

// Element is one node in an Excalidraw scene, keeping only the fields this
// package reads.
type Element struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Text         string   `json:"text"`
	X            float64  `json:"x"`
	Y            float64  `json:"y"`
	Width        float64  `json:"width"`
	Height       float64  `json:"height"`
	ContainerID  string   `json:"containerId"`
	StartBinding *binding `json:"startBinding"`
	EndBinding   *binding `json:"endBinding"`
}

// Scene is the minimal shape of an Excalidraw document this package reads.
type Scene struct {
	Elements []Element `json:"elements"`
}

// Component is a labeled shape in the diagram.
type Component struct {
	ID    string
	Label string
	Kind  string // rectangle, ellipse, diamond, text, etc.
}

// Connection is an arrow/line between two components, by id.
type Connection struct {
	FromID string
	ToID   string
	Label  string
}

// Result is the structured parse the rest of the pipeline consumes.
type Result struct {
	Components []Component
	Connections []Connection
	Standalone  []string // text elements bound to nothing
	Description string
	Mermaid     string
}

// Convert parses scene into components/connections/standalone text and
// renders the description and Mermaid diagram.
func Convert(scene Scene) Result {
	components := make(map[string]*Component)
	var connections []Connection
	var standaloneText []string

	for _, el := range scene.Elements {
		switch el.Type {
		case "rectangle", "ellipse", "diamond":
			components[el.ID] = &Component{ID: el.ID, Kind: el.Type}
		}
	}

	for _, el := range scene.Elements {
		if el.Type != "text" {
			continue
		}
		if el.ContainerID != "" {
			if c, ok := components[el.ContainerID]; ok {
				c.Label = el.Text
				continue
			}
		}
		if strings.TrimSpace(el.Text) != "" {
			standaloneText = append(standaloneText, el.Text)
		}
	}

	for _, el := range scene.Elements {
		if el.Type != "arrow" && el.Type != "line" {
			continue
		}
		if el.StartBinding == nil || el.EndBinding == nil {
			continue
		}
		connections = append(connections, Connection{
			FromID: el.StartBinding.ElementID,
			ToID:   el.EndBinding.ElementID,
			Label:  el.Text,
		})
	}

	var ordered []Component
	for _, c := range components {
		if c.Label == "" {
			c.Label = fmt.Sprintf("%s %s", c.Kind, c.ID)
		}
		ordered = append(ordered, *c)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	return Result{
		Components:  ordered,
		Connections: connections,
		Standalone:  standaloneText,
		Description: buildDescription(ordered, connections, standaloneText),
		Mermaid:     buildMermaid(ordered, connections),
	}
}

func buildDescription(components []Component, connections []Connection, standalone []string) string {
	var b strings.Builder
	if len(components) == 0 {
		b.WriteString("The diagram contains no recognizable shapes yet.")
	} else {
		fmt.Fprintf(&b, "The diagram contains %d component(s): ", len(components))
		labels := make([]string, 0, len(components))
		for _, c := range components {
			labels = append(labels, c.Label)
		}
		b.WriteString(strings.Join(labels, ", "))
		b.WriteString(". ")
	}
	if len(connections) > 0 {
		fmt.Fprintf(&b, "There are %d connection(s) between components. ", len(connections))
	}
	if len(standalone) > 0 {
		fmt.Fprintf(&b, "Additional annotations: %s.", strings.Join(standalone, "; "))
	}
	return strings.TrimSpace(b.String())
}

func buildMermaid(components []Component, connections []Connection) string {
	if len(components) == 0 {
		return "flowchart TD\n    %% empty diagram"
	}
	var b strings.Builder
	b.WriteString("flowchart TD\n")
	ids := nodeIDs(components)
	for _, c := range components {
		fmt.Fprintf(&b, "    %s[%q]\n", ids[c.ID], c.Label)
	}
	for _, conn := range connections {
		from, okFrom := ids[conn.FromID]
		to, okTo := ids[conn.ToID]
		if !okFrom || !okTo {
			continue
		}
		if conn.Label != "" {
			fmt.Fprintf(&b, "    %s -->|%s| %s\n", from, conn.Label, to)
		} else {
			fmt.Fprintf(&b, "    %s --> %s\n", from, to)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// nodeIDs assigns stable, Mermaid-safe node ids (n0, n1, ...) to each
// component, since Excalidraw element ids may contain characters Mermaid's
// node-id syntax rejects.
func nodeIDs(components []Component) map[string]string {
	ids := make(map[string]string, len(components))
	for i, c := range components {
		ids[c.ID] = fmt.Sprintf("n%d", i)
	}
	return ids
}
