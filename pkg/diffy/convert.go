package diffy

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FromAny converts decoded JSON, YAML or MessagePack data into a [Value].
//
// Maps must have string keys. Every integer and float kind becomes a
// [Number] and nil becomes [Null]. Slices and all other kinds are rejected
// with [ErrUnsupportedKind].
func FromAny(data any) (Value, error) {
	return fromAny(data, nil)
}

func fromAny(data any, path []string) (Value, error) {
	switch v := data.(type) {
	case nil:
		return Null{}, nil
	case Value:
		if err := validate(v, path); err != nil {
			return nil, err
		}
		return v, nil
	case string:
		return String(v), nil
	case bool:
		return Bool(v), nil
	case float64:
		return Number(v), nil
	case float32:
		return Number(v), nil
	case int:
		return Number(v), nil
	case int8:
		return Number(v), nil
	case int16:
		return Number(v), nil
	case int32:
		return Number(v), nil
	case int64:
		return Number(v), nil
	case uint:
		return Number(v), nil
	case uint8:
		return Number(v), nil
	case uint16:
		return Number(v), nil
	case uint32:
		return Number(v), nil
	case uint64:
		return Number(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %q at %s: %w", v, pathString(path), err)
		}
		return Number(f), nil
	case map[string]any:
		res := make(Hash, len(v))
		for k, sub := range v {
			conv, err := fromAny(sub, append(path, k))
			if err != nil {
				return nil, err
			}
			res[k] = conv
		}
		return res, nil
	case map[any]any:
		res := make(Hash, len(v))
		for rawKey, sub := range v {
			k, ok := rawKey.(string)
			if !ok {
				return nil, fmt.Errorf("key %v (%T) at %s: %w", rawKey, rawKey, pathString(path), ErrUnsupportedKind)
			}
			conv, err := fromAny(sub, append(path, k))
			if err != nil {
				return nil, err
			}
			res[k] = conv
		}
		return res, nil
	default:
		return nil, fmt.Errorf("%T at %s: %w", data, pathString(path), ErrUnsupportedKind)
	}
}

// ToAny converts v into plain Go data: map[string]any, string, float64, bool
// or nil for [Null]. It is the inverse of [FromAny].
func ToAny(v Value) any {
	switch val := v.(type) {
	case Hash:
		res := make(map[string]any, len(val))
		for k, sub := range val {
			res[k] = ToAny(sub)
		}
		return res
	case String:
		return string(val)
	case Number:
		return float64(val)
	case Bool:
		return bool(val)
	default:
		return nil
	}
}

// Validate reports an [ErrAbsentValue] error if v is nil or holds a nil value
// at any depth.
func Validate(v Value) error {
	return validate(v, nil)
}

func validate(v Value, path []string) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("at %s: %w", pathString(path), ErrAbsentValue)
	case Hash:
		for k, sub := range val {
			if err := validate(sub, append(path, k)); err != nil {
				return err
			}
		}
	}
	return nil
}

func pathString(path []string) string {
	if len(path) == 0 {
		return "<root>"
	}
	return strings.Join(path, ".")
}
