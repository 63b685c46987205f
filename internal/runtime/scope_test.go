package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Git0Shuai/bevy/pkg/domain"
)

func TestScopeFired(t *testing.T) {
	exitCombat := domain.Scope{Kind: 0, Value: "Combat", Polarity: domain.OnExit}
	enterCombat := domain.Scope{Kind: 0, Value: "Combat", Polarity: domain.OnEnter}

	tests := []struct {
		name  string
		scope domain.Scope
		from  domain.Optional
		to    domain.Optional
		want  bool
	}{
		{"exit fires on value change away", exitCombat, domain.Some("Combat"), domain.Some("Menu"), true},
		{"exit fires on deactivation", exitCombat, domain.Some("Combat"), domain.None(), true},
		{"exit ignores arrival", exitCombat, domain.Some("Menu"), domain.Some("Combat"), false},
		{"exit ignores unrelated change", exitCombat, domain.Some("Menu"), domain.Some("Arena"), false},
		{"exit ignores activation", exitCombat, domain.None(), domain.Some("Combat"), false},
		{"enter fires on arrival", enterCombat, domain.Some("Menu"), domain.Some("Combat"), true},
		{"enter fires on activation", enterCombat, domain.None(), domain.Some("Combat"), true},
		{"enter ignores departure", enterCombat, domain.Some("Combat"), domain.Some("Menu"), false},
		{"enter ignores unrelated change", enterCombat, domain.None(), domain.Some("Menu"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := domain.Transition{Kind: tt.scope.Kind, From: tt.from, To: tt.to}
			assert.Equal(t, tt.want, scopeFired(tt.scope, r))
		})
	}
}
