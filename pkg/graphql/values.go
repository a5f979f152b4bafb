package graphql

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/vektah/gqlparser/v2/ast"
)

// coerceArguments converts raw argument values (query literals or JSON
// variables) into the Go types resolvers expect: Int -> int, Float -> float64,
// ID and String -> string.
func coerceArguments(defs ast.ArgumentDefinitionList, raw map[string]interface{}) (map[string]interface{}, error) {
	args := make(map[string]interface{}, len(raw))
	for name, value := range raw {
		def := defs.ForName(name)
		if def == nil {
			args[name] = value
			continue
		}
		coerced, err := coerceInput(def.Type, value)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", name, err)
		}
		args[name] = coerced
	}
	return args, nil
}

func coerceInput(typ *ast.Type, value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	if typ.Elem != nil {
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			// A single value is accepted where a list is expected.
			item, err := coerceInput(typ.Elem, value)
			if err != nil {
				return nil, err
			}
			return []interface{}{item}, nil
		}
		out := make([]interface{}, rv.Len())
		for i := range out {
			item, err := coerceInput(typ.Elem, rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = item
		}
		return out, nil
	}

	switch typ.NamedType {
	case "Int":
		return toInt(value)
	case "Float":
		return toFloat(value)
	case "ID", "String":
		return toString(value)
	case "Boolean":
		if b, ok := value.(bool); ok {
			return b, nil
		}
		return nil, fmt.Errorf("cannot use %v as Boolean", value)
	}
	return value, nil
}

func toInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		if v > math.MaxInt32 || v < math.MinInt32 {
			return 0, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %d", v)
		}
		return int(v), nil
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
			return 0, fmt.Errorf("Int cannot represent non-integer value: %v", v)
		}
		return int(v), nil
	case json.Number:
		n, err := strconv.Atoi(v.String())
		if err != nil {
			return 0, fmt.Errorf("Int cannot represent value: %s", v)
		}
		return n, nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("Int cannot represent value: %q", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("Int cannot represent value: %v", value)
	}
}

func toFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("Float cannot represent value: %v", value)
	}
}

func toString(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10), nil
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case json.Number:
		return v.String(), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("cannot represent %T as a string", value)
	}
}

// normalizeVariables rewrites JSON numbers so integral values arrive as
// int64. Variables decoded by encoding/json carry every number as float64.
func normalizeVariables(vars map[string]interface{}) map[string]interface{} {
	if vars == nil {
		return nil
	}
	out := make(map[string]interface{}, len(vars))
	for k, v := range vars {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case float64:
		if val == math.Trunc(val) && val <= math.MaxInt64 && val >= math.MinInt64 {
			return int64(val)
		}
		return val
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]interface{}:
		return normalizeVariables(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	}
	return v
}

// serializeLeaf converts a resolved scalar or enum value to its JSON form.
func serializeLeaf(def *ast.Definition, value interface{}) (interface{}, error) {
	if def.Kind == ast.Enum {
		s, err := toString(value)
		if err != nil {
			return nil, err
		}
		if def.EnumValues.ForName(s) == nil {
			return nil, fmt.Errorf("enum %s has no value %q", def.Name, s)
		}
		return s, nil
	}

	switch def.Name {
	case "Int":
		return toInt(value)
	case "Float":
		return toFloat(value)
	case "String", "ID":
		return toString(value)
	case "Boolean":
		if b, ok := value.(bool); ok {
			return b, nil
		}
		return nil, fmt.Errorf("Boolean cannot represent value: %v", value)
	}
	return value, nil
}

// isNil reports whether v is nil or a nil pointer, map, slice or func.
func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}

// defaultResolve reads fieldName from source. Maps are indexed by key and
// structs by json tag (or case-insensitive field name). Values that are
// functions are invoked, which lets callers build lazy result trees.
func defaultResolve(source interface{}, fieldName string, args map[string]interface{}) interface{} {
	var value interface{}

	switch src := source.(type) {
	case nil:
		return nil
	case map[string]interface{}:
		value = src[fieldName]
	default:
		rv := reflect.ValueOf(source)
		for rv.Kind() == reflect.Ptr {
			if rv.IsNil() {
				return nil
			}
			rv = rv.Elem()
		}
		if rv.Kind() != reflect.Struct {
			return nil
		}
		idx, ok := structFieldIndex(rv.Type(), fieldName)
		if !ok {
			return nil
		}
		value = rv.Field(idx).Interface()
	}

	switch fn := value.(type) {
	case func() interface{}:
		return fn()
	case func(map[string]interface{}) interface{}:
		return fn(args)
	}
	return value
}

var fieldIndexCache sync.Map // reflect.Type -> map[string]int

func structFieldIndex(t reflect.Type, name string) (int, bool) {
	if cached, ok := fieldIndexCache.Load(t); ok {
		idx, found := cached.(map[string]int)[name]
		return idx, found
	}

	index := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		key := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				key = tagName
			}
		}
		index[key] = i
		// Lower-camel alias for untagged fields: ID -> id, Name -> name.
		if _, tagged := f.Tag.Lookup("json"); !tagged {
			index[lowerFirst(f.Name)] = i
		}
	}
	fieldIndexCache.Store(t, index)

	idx, found := index[name]
	return idx, found
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	if strings.ToUpper(s) == s {
		return strings.ToLower(s)
	}
	return strings.ToLower(s[:1]) + s[1:]
}
