package graph

import (
	"fmt"
	"strings"

	"github.com/Git0Shuai/bevy/pkg/domain"
)

// GenerateMarkdown produces a human-readable report of the state graph: a
// table of kinds with their wiring and, when an overlay is given, their
// current values, followed by the Mermaid diagram in a fenced block.
func GenerateMarkdown(descs []domain.Descriptor, overlay *Overlay) string {
	names := make(map[domain.KindID]string, len(descs))
	for _, d := range descs {
		names[d.ID] = d.Name
	}

	var sb strings.Builder
	sb.WriteString("# State Graph\n\n")

	if overlay != nil {
		sb.WriteString("| State | Variant | Sources | Value |\n")
		sb.WriteString("|---|---|---|---|\n")
	} else {
		sb.WriteString("| State | Variant | Sources |\n")
		sb.WriteString("|---|---|---|\n")
	}

	for _, d := range descs {
		sources := "-"
		if len(d.Sources) > 0 {
			parts := make([]string, 0, len(d.Sources))
			for _, src := range d.Sources {
				parts = append(parts, names[src])
			}
			sources = strings.Join(parts, ", ")
		}

		if overlay != nil {
			value := "absent"
			if v, ok := overlay.Values[d.Name]; ok {
				value = v
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", d.Name, d.Variant, sources, value))
		} else {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", d.Name, d.Variant, sources))
		}
	}

	sb.WriteString("\n```mermaid\n")
	sb.WriteString(GenerateMermaid(descs, overlay))
	sb.WriteString("```\n")

	return sb.String()
}
