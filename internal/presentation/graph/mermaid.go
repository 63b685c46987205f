package graph

import (
	"fmt"
	"strings"

	"github.com/Git0Shuai/bevy/pkg/domain"
)

// Overlay contains live engine data to visualize on top of the static graph.
type Overlay struct {
	// Values maps kind names to their current display value. Kinds missing
	// from the map are rendered as absent.
	Values map[string]string
}

// GenerateMermaid produces a Mermaid flowchart syntax string from the
// registered state kinds. It applies semantic styling:
// - Primary: ((Circle))
// - Sub: [/Parallelogram/]
// - Computed: [[Subroutine]]
// Activation edges are solid, derivation edges are dotted. When an overlay is
// given, present kinds carry their value in the label and a highlight class.
func GenerateMermaid(descs []domain.Descriptor, overlay *Overlay) string {
	names := make(map[domain.KindID]string, len(descs))
	for _, d := range descs {
		names[d.ID] = d.Name
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, d := range descs {
		// Sanitize ID for Mermaid
		safeID := sanitizeMermaidID(d.Name)

		// Node Shape based on Variant
		opener, closer := "[", "]"
		switch d.Variant {
		case domain.VariantPrimary:
			opener, closer = "((", "))" // Circle
		case domain.VariantSub:
			opener, closer = "[/", "/]" // Parallelogram
		case domain.VariantComputed:
			opener, closer = "[[", "]]" // Subroutine
		}

		label := d.Name
		if overlay != nil {
			if v, ok := overlay.Values[d.Name]; ok {
				label = fmt.Sprintf("%s = %s", d.Name, v)
			}
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

		// Dependency edges point from the source kind to its dependent.
		arrow := "-->"
		if d.Variant == domain.VariantComputed {
			arrow = "-.->"
		}
		for _, src := range d.Sources {
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(names[src]), arrow, safeID))
		}
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef present fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		for _, d := range descs {
			if _, ok := overlay.Values[d.Name]; ok {
				sb.WriteString(fmt.Sprintf("    class %s present;\n", sanitizeMermaidID(d.Name)))
			}
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
