package bevy

import (
	"fmt"
	"reflect"

	"github.com/Git0Shuai/bevy/internal/runtime"
	"github.com/Git0Shuai/bevy/pkg/domain"
)

// The dynamic registration surface mirrors AddState, AddSubState and
// AddComputedState for callers that learn the graph at run time, such as
// manifest loading. Values travel encoded as strings and kinds are addressed
// by name; the typed API remains the first choice when the graph is known at
// compile time.

// AddPrimaryKind registers a primary kind from a declared type name and an
// encoded initial value. Supported types are "string", "bool", "int" and
// "float"; an empty type means string.
func (a *App) AddPrimaryKind(name, typ, initial string) error {
	rt, err := reflectType(typ)
	if err != nil {
		return fmt.Errorf("add primary %q: %w", name, err)
	}
	codec, _ := runtime.DefaultCodec(rt)
	value, err := codec.Decode(initial)
	if err != nil {
		return fmt.Errorf("add primary %q: %w", name, err)
	}
	_, err = a.engine.AddPrimary(name, value, codec, true)
	return err
}

// AddSubKind registers a sub kind whose predicate is membership of the
// parent's display value in when. The activation default is decoded from the
// declared type, like a primary's initial value.
func (a *App) AddSubKind(name, parent string, when []string, typ, activation string) error {
	pid, ok := a.engine.Lookup(parent)
	if !ok {
		return fmt.Errorf("add sub %q: parent %q: %w", name, parent, domain.ErrUnknownKind)
	}
	rt, err := reflectType(typ)
	if err != nil {
		return fmt.Errorf("add sub %q: %w", name, err)
	}
	codec, _ := runtime.DefaultCodec(rt)
	value, err := codec.Decode(activation)
	if err != nil {
		return fmt.Errorf("add sub %q: %w", name, err)
	}

	allowed := make(map[string]struct{}, len(when))
	for _, w := range when {
		allowed[w] = struct{}{}
	}
	_, err = a.engine.AddSub(name, pid, func(v any) bool {
		_, ok := allowed[fmt.Sprint(v)]
		return ok
	}, value)
	return err
}

// AddComputedKind registers a computed kind with a caller-supplied derivation
// over the sources' values in declaration order.
func (a *App) AddComputedKind(name string, sources []string, derive func(values []any) (any, bool)) error {
	if derive == nil {
		return fmt.Errorf("add computed %q: %w", name, domain.ErrNilDerivation)
	}
	ids := make([]domain.KindID, 0, len(sources))
	for _, src := range sources {
		id, ok := a.engine.Lookup(src)
		if !ok {
			return fmt.Errorf("add computed %q: source %q: %w", name, src, domain.ErrUnknownKind)
		}
		ids = append(ids, id)
	}
	_, err := a.engine.AddComputed(name, ids, derive)
	return err
}

func reflectType(typ string) (reflect.Type, error) {
	switch typ {
	case "", "string":
		return reflect.TypeOf(""), nil
	case "bool":
		return reflect.TypeOf(false), nil
	case "int":
		return reflect.TypeOf(int(0)), nil
	case "float":
		return reflect.TypeOf(float64(0)), nil
	default:
		return nil, fmt.Errorf("unsupported state type %q", typ)
	}
}
