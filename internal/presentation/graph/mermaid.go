package graph

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ofekfell/mediaflow/pkg/domain"
)

// Overlay carries render state to visualize on the graph.
type Overlay struct {
	// Usage counts occurrences per leaf reference. Leaves used more than
	// once are styled as reused, since each extra use needs a copy.
	Usage map[string]int
	// Output labels the sink node.
	Output string
}

// Usage counts leaf references of a tree without resolving them.
func Usage(root domain.Node) map[string]int {
	out := make(map[string]int)
	for _, l := range domain.Leaves(root) {
		out[l.Reference]++
	}
	return out
}

// GenerateMermaid produces a Mermaid flowchart of a workflow tree, data
// flowing from the leaves to the output.
// Shapes:
// - Leaf: ([Stadium])
// - Single input action: [Rectangle]
// - Multi input action: [[Subroutine]]
// - Output: ((Circle))
func GenerateMermaid(root domain.Node, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	var reused []string
	next := 0
	var walk func(n domain.Node) string
	walk = func(n domain.Node) string {
		id := fmt.Sprintf("n%d", next)
		next++

		switch v := n.(type) {
		case domain.Leaf:
			fmt.Fprintf(&sb, "    %s([\"%s\"])\n", id, escape(v.Reference))
			if overlay != nil && overlay.Usage[v.Reference] > 1 {
				reused = append(reused, id)
			}
		case *domain.ActionNode:
			opener, closer := "[", "]"
			if v.Kind.MultiInput() {
				opener, closer = "[[", "]]"
			}
			label := string(v.Kind)
			if p := describeParams(v.Params); p != "" {
				label += "<br/>" + p
			}
			fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, escape(label), closer)

			children := v.Children()
			for i, c := range children {
				childID := walk(c)
				if len(children) > 1 {
					fmt.Fprintf(&sb, "    %s -- \"%d\" --> %s\n", childID, i, id)
				} else {
					fmt.Fprintf(&sb, "    %s --> %s\n", childID, id)
				}
			}
		default:
			fmt.Fprintf(&sb, "    %s[\"?\"]\n", id)
		}
		return id
	}
	rootID := walk(root)

	output := "output"
	if overlay != nil && overlay.Output != "" {
		output = overlay.Output
	}
	fmt.Fprintf(&sb, "    out((\"%s\"))\n", escape(output))
	fmt.Fprintf(&sb, "    %s --> out\n", rootID)

	if len(reused) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef reused fill:#fff3e0,stroke:#e65100,stroke-width:2px,color:#000;\n")
		for _, id := range reused {
			fmt.Fprintf(&sb, "    class %s reused;\n", id)
		}
	}

	return sb.String()
}

// describeParams renders params as sorted key=value pairs.
func describeParams(p domain.Params) string {
	if p == nil {
		return ""
	}
	data, err := json.Marshal(domain.ParamsValue(p))
	if err != nil {
		return ""
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, " ")
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
