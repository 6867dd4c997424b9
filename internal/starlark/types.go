// Package starlark exposes a document to Starlark scripts through a "cad"
// module of builtins.
package starlark

import (
	"fmt"

	"github.com/leapstack-labs/leapcad/internal/coords"
	"github.com/leapstack-labs/leapcad/internal/scene"
	"github.com/leapstack-labs/leapcad/pkg/geom"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// Vec3ToStarlark converts a vector to a 3-tuple of floats.
func Vec3ToStarlark(v geom.Vec3) starlark.Tuple {
	return starlark.Tuple{starlark.Float(v[0]), starlark.Float(v[1]), starlark.Float(v[2])}
}

// Vec3FromStarlark accepts any iterable of three numbers.
func Vec3FromStarlark(v starlark.Value) (geom.Vec3, error) {
	seq, ok := v.(starlark.Indexable)
	if !ok || seq.Len() != 3 {
		return geom.Vec3{}, fmt.Errorf("want a sequence of 3 numbers, got %s", v.Type())
	}
	var out geom.Vec3
	for i := range 3 {
		f, ok := starlark.AsFloat(seq.Index(i))
		if !ok {
			return geom.Vec3{}, fmt.Errorf("index %d: want a number, got %s", i, seq.Index(i).Type())
		}
		out[i] = f
	}
	return out, nil
}

// RecordToStarlark converts an object record to a struct with id,
// category, type, visible, parent and points fields.
func RecordToStarlark(rec scene.Record) starlark.Value {
	var parent starlark.Value = starlark.None
	if rec.Parent != "" {
		parent = starlark.String(rec.Parent)
	}
	return starlarkstruct.FromStringDict(starlark.String("object"), starlark.StringDict{
		"id":       starlark.String(rec.ID),
		"category": starlark.String(rec.Category),
		"type":     starlark.String(rec.TypeLabel),
		"visible":  starlark.Bool(rec.Visible),
		"parent":   parent,
		"points":   starlark.MakeInt(len(rec.Mesh.Points)),
	})
}

// SystemToStarlark converts a coordinate system to a struct.
func SystemToStarlark(s coords.System) starlark.Value {
	return starlarkstruct.FromStringDict(starlark.String("system"), starlark.StringDict{
		"title":  starlark.String(s.Title),
		"origin": Vec3ToStarlark(s.Origin),
		"x":      Vec3ToStarlark(s.XAxis),
		"y":      Vec3ToStarlark(s.YAxis),
		"z":      Vec3ToStarlark(s.ZAxis),
	})
}

// GoToStarlark converts a Go value to a Starlark value.
// Supported types: string, int, int64, float64, bool, geom.Vec3, []string,
// []any, map[string]any, map[string]int
func GoToStarlark(v any) (starlark.Value, error) {
	if v == nil {
		return starlark.None, nil
	}

	switch val := v.(type) {
	case string:
		return starlark.String(val), nil

	case int:
		return starlark.MakeInt(val), nil

	case int64:
		return starlark.MakeInt64(val), nil

	case float64:
		return starlark.Float(val), nil

	case bool:
		return starlark.Bool(val), nil

	case geom.Vec3:
		return Vec3ToStarlark(val), nil

	case []string:
		list := make([]starlark.Value, len(val))
		for i, s := range val {
			list[i] = starlark.String(s)
		}
		return starlark.NewList(list), nil

	case []any:
		list := make([]starlark.Value, len(val))
		for i, item := range val {
			sv, err := GoToStarlark(item)
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			list[i] = sv
		}
		return starlark.NewList(list), nil

	case map[string]int:
		dict := starlark.NewDict(len(val))
		for k, n := range val {
			if err := dict.SetKey(starlark.String(k), starlark.MakeInt(n)); err != nil {
				return nil, fmt.Errorf("dict setkey %q: %w", k, err)
			}
		}
		return dict, nil

	case map[string]any:
		dict := starlark.NewDict(len(val))
		for k, v := range val {
			sv, err := GoToStarlark(v)
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %w", k, err)
			}
			if err := dict.SetKey(starlark.String(k), sv); err != nil {
				return nil, fmt.Errorf("dict setkey %q: %w", k, err)
			}
		}
		return dict, nil

	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// ToGo converts a Starlark value back to a Go value.
// Returns: string, int64, float64, bool, []any, map[string]any, or nil
func ToGo(v starlark.Value) (any, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil

	case starlark.String:
		return string(val), nil

	case starlark.Int:
		i64, ok := val.Int64()
		if !ok {
			// Fallback for very large integers - convert to string
			return val.String(), nil
		}
		return i64, nil

	case starlark.Float:
		return float64(val), nil

	case starlark.Bool:
		return bool(val), nil

	case *starlark.List:
		result := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			gv, err := ToGo(val.Index(i))
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			result[i] = gv
		}
		return result, nil

	case *starlark.Dict:
		result := make(map[string]any)
		for _, item := range val.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key must be string, got %T", item[0])
			}
			gv, err := ToGo(item[1])
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %w", key, err)
			}
			result[string(key)] = gv
		}
		return result, nil

	case starlark.Tuple:
		result := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			gv, err := ToGo(val.Index(i))
			if err != nil {
				return nil, fmt.Errorf("tuple index %d: %w", i, err)
			}
			result[i] = gv
		}
		return result, nil

	default:
		// Try to get a string representation
		return val.String(), nil
	}
}
