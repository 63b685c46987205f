// Package schema loads and applies declarative state graph manifests.
//
// A manifest describes the same graph the typed API builds in code: primary
// kinds with an initial value, sub kinds activated by a condition on their
// parent, and computed kinds derived from one or more sources. Primaries and
// subs are fully declared in data; computed kinds declare their shape while
// the derivation function is bound at apply time.
//
// Basic usage:
//
//	manifest, err := schema.Load("states.yaml")
//	if err != nil {
//	    return err
//	}
//
//	app := bevy.New("game")
//	err = schema.Apply(app, manifest, schema.Derivations{
//	    "ShowHUD": func(sources []any) (any, bool) {
//	        mode, _ := sources[0].(string)
//	        return mode == "Combat", true
//	    },
//	})
//
// A manifest looks like:
//
//	app: game
//	states:
//	  - name: Mode
//	    kind: primary
//	    initial: Menu
//	  - name: Paused
//	    kind: sub
//	    parent: Mode
//	    when: [Combat]
//	    type: bool
//	    default: "false"
//	  - name: ShowHUD
//	    kind: computed
//	    sources: [Mode]
//
// Sub kind conditions are membership tests: the kind is active while the
// parent's display value is listed under when. States may reference states
// declared later in the file; Apply registers them in dependency order.
// Validation reports every problem at once through AggregateError.
package schema
