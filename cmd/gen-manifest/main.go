package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Git0Shuai/bevy/pkg/schema"
	"gopkg.in/yaml.v3"
)

// Generates a starter manifest for the game-flow example graph. Acts as our
// "level editor": edit the output and feed it back to bevy validate/serve.
func main() {
	target := "states.yaml"
	if len(os.Args) > 1 {
		target = os.Args[1]
	}

	fmt.Printf("Generating starter manifest in: %s\n", target)

	m := schema.Manifest{
		App: "game",
		States: []schema.StateSpec{
			{Name: "Mode", Kind: schema.KindPrimary, Initial: "Menu"},
			{Name: "Paused", Kind: schema.KindSub, Parent: "Mode", When: []string{"Combat"}, Type: "bool", Default: "false"},
			{Name: "ShowHUD", Kind: schema.KindComputed, Sources: []string{"Mode", "Paused"}},
		},
	}
	check(m.Validate())

	data, err := yaml.Marshal(m)
	check(err)

	if dir := filepath.Dir(target); dir != "." {
		check(os.MkdirAll(dir, 0755))
	}
	check(os.WriteFile(target, data, 0644))

	fmt.Println("Done. Try: bevy validate", target)
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}
