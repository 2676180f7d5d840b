package router

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// ToSerializable deep-converts an arbitrary value into a JSON-serializable
// shape. Dispatch order matters and is fixed: nil, mapping, ordered
// sequence, structured record (struct fields by exported name), primitive,
// and finally string representation. Records are never treated as
// sequences; only real slice/array values are.
func ToSerializable(v interface{}) interface{} {
	if v == nil {
		return nil
	}

	// Primitives pass through untouched, including elements reached by
	// recursion from the container branches below.
	switch val := v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return val
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return ToSerializable(rv.Elem().Interface())

	case reflect.Map:
		out := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = ToSerializable(iter.Value().Interface())
		}
		return out

	case reflect.Slice, reflect.Array:
		out := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = ToSerializable(rv.Index(i).Interface())
		}
		return out

	case reflect.Struct:
		return structToMap(rv)

	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// Named numeric types flatten to their underlying value.
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()

	default:
		return fmt.Sprint(v)
	}
}

// structToMap converts a struct value to a mapping over its exported
// fields, keyed by the JSON tag name when one is declared.
func structToMap(rv reflect.Value) map[string]interface{} {
	rt := rv.Type()
	out := make(map[string]interface{}, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag, ok := field.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		out[name] = ToSerializable(rv.Field(i).Interface())
	}
	return out
}

// ParseStatus reports how a structured output was interpreted.
type ParseStatus string

const (
	// ParseOK means the upstream text parsed strictly as a JSON object.
	ParseOK ParseStatus = "parsed"
	// ParseFallback means parsing failed and the raw text is wrapped.
	ParseFallback ParseStatus = "fallback"
)

// ParseStructured attempts a strict JSON parse of upstream text into a
// mapping. On any failure, including valid JSON that is not an object, it
// returns {"raw": text} with ParseFallback. The declared request schema is
// never validated against; the upstream provider is trusted to have
// honored it.
func ParseStructured(text string) (map[string]interface{}, ParseStatus) {
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(text), &result); err != nil || result == nil {
		return map[string]interface{}{"raw": text}, ParseFallback
	}
	return result, ParseOK
}
