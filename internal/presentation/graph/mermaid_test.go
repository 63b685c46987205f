package graph_test

import (
	"strings"
	"testing"

	"github.com/Git0Shuai/bevy/internal/presentation/graph"
	"github.com/Git0Shuai/bevy/pkg/domain"
)

func gameDescriptors() []domain.Descriptor {
	return []domain.Descriptor{
		{ID: 0, Name: "Mode", Variant: domain.VariantPrimary},
		{ID: 1, Name: "Paused", Variant: domain.VariantSub, Sources: []domain.KindID{0}},
		{ID: 2, Name: "ShowHUD", Variant: domain.VariantComputed, Sources: []domain.KindID{0, 1}},
	}
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		descs    []domain.Descriptor
		overlay  *graph.Overlay
		contains []string
	}{
		{
			name:  "Variant Shapes",
			descs: gameDescriptors(),
			contains: []string{
				"Mode((\"Mode\"))",
				"Paused[/\"Paused\"/]",
				"ShowHUD[[\"ShowHUD\"]]",
			},
		},
		{
			name:  "Edge Styles",
			descs: gameDescriptors(),
			contains: []string{
				"Mode --> Paused",
				"Mode -.-> ShowHUD",
				"Paused -.-> ShowHUD",
			},
		},
		{
			name: "ID Sanitization",
			descs: []domain.Descriptor{
				{ID: 0, Name: "ui.hud-main", Variant: domain.VariantPrimary},
			},
			contains: []string{
				"ui_hud_main((\"ui.hud-main\"))",
			},
		},
		{
			name:  "Overlay Values",
			descs: gameDescriptors(),
			overlay: &graph.Overlay{Values: map[string]string{
				"Mode":   "Combat",
				"Paused": "false",
			}},
			contains: []string{
				"Mode((\"Mode = Combat\"))",
				"Paused[/\"Paused = false\"/]",
				"ShowHUD[[\"ShowHUD\"]]",
				"classDef present",
				"class Mode present;",
				"class Paused present;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.descs, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() missing %q in:\n%s", want, got)
				}
			}
		})
	}
}

func TestGenerateMermaid_AbsentKindNotHighlighted(t *testing.T) {
	overlay := &graph.Overlay{Values: map[string]string{"Mode": "Menu"}}
	got := graph.GenerateMermaid(gameDescriptors(), overlay)

	if strings.Contains(got, "class ShowHUD present;") {
		t.Errorf("GenerateMermaid() highlighted an absent kind:\n%s", got)
	}
	if !strings.Contains(got, "class Mode present;") {
		t.Errorf("GenerateMermaid() missing highlight for present kind:\n%s", got)
	}
}
