package runtime

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/Git0Shuai/bevy/pkg/domain"
)

// Codec converts state values to and from their string encoding. Snapshots
// store only strings so they can cross process and backend boundaries.
type Codec struct {
	Encode func(v any) (string, error)
	Decode func(s string) (any, error)
}

// DefaultCodec builds a codec for the given value type by switching on its
// underlying reflect kind. Named types (enum-style string or integer states)
// are converted back to their declared type on decode. Types outside the
// bool/string/integer/float families get no default codec; callers must
// supply their own.
func DefaultCodec(rt reflect.Type) (Codec, bool) {
	switch rt.Kind() {
	case reflect.String:
		return Codec{
			Encode: func(v any) (string, error) {
				return reflect.ValueOf(v).String(), nil
			},
			Decode: func(s string) (any, error) {
				return reflect.ValueOf(s).Convert(rt).Interface(), nil
			},
		}, true
	case reflect.Bool:
		return Codec{
			Encode: func(v any) (string, error) {
				return strconv.FormatBool(reflect.ValueOf(v).Bool()), nil
			},
			Decode: func(s string) (any, error) {
				b, err := strconv.ParseBool(s)
				if err != nil {
					return nil, fmt.Errorf("%w: %q is not a bool", domain.ErrBadEncoding, s)
				}
				return reflect.ValueOf(b).Convert(rt).Interface(), nil
			},
		}, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Codec{
			Encode: func(v any) (string, error) {
				return strconv.FormatInt(reflect.ValueOf(v).Int(), 10), nil
			},
			Decode: func(s string) (any, error) {
				n, err := strconv.ParseInt(s, 10, rt.Bits())
				if err != nil {
					return nil, fmt.Errorf("%w: %q is not a %s", domain.ErrBadEncoding, s, rt.Kind())
				}
				out := reflect.New(rt).Elem()
				out.SetInt(n)
				return out.Interface(), nil
			},
		}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Codec{
			Encode: func(v any) (string, error) {
				return strconv.FormatUint(reflect.ValueOf(v).Uint(), 10), nil
			},
			Decode: func(s string) (any, error) {
				n, err := strconv.ParseUint(s, 10, rt.Bits())
				if err != nil {
					return nil, fmt.Errorf("%w: %q is not a %s", domain.ErrBadEncoding, s, rt.Kind())
				}
				out := reflect.New(rt).Elem()
				out.SetUint(n)
				return out.Interface(), nil
			},
		}, true
	case reflect.Float32, reflect.Float64:
		return Codec{
			Encode: func(v any) (string, error) {
				return strconv.FormatFloat(reflect.ValueOf(v).Float(), 'g', -1, rt.Bits()), nil
			},
			Decode: func(s string) (any, error) {
				f, err := strconv.ParseFloat(s, rt.Bits())
				if err != nil {
					return nil, fmt.Errorf("%w: %q is not a %s", domain.ErrBadEncoding, s, rt.Kind())
				}
				out := reflect.New(rt).Elem()
				out.SetFloat(f)
				return out.Interface(), nil
			},
		}, true
	default:
		return Codec{}, false
	}
}
