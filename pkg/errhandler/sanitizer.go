// sanitizer.go converts arbitrary context values into a serializable form.

package errhandler

import (
	"encoding/json"
	"fmt"
	"math"
	"net"
	"os"
	"reflect"
)

const (
	// MaxNestingLevel is the default deepest level the sanitizer descends to.
	MaxNestingLevel = 10

	// TruncatedMessage replaces any mapping nested deeper than the nesting limit.
	TruncatedMessage = "TRUNCATED - max nesting level reached"

	// RedactedMessage replaces the contents of objects whose type is deny-listed.
	RedactedMessage = "REDACTED BY CLASS DENY LIST"

	resourcePrefix = "Resource of type "
	streamResource = "stream"
)

// JSONSerializable is implemented by values that know how to render themselves
// in a form that is safe to send. The returned value is used as is.
type JSONSerializable interface {
	JSONSerialize() any
}

// Resource is implemented by opaque handles (connections, descriptors, pools)
// that must never be walked. Only the type is reported.
type Resource interface {
	ResourceType() string
}

// Sanitizer walks nested context data and turns it into values that are safe
// to attach to an error report. It holds no mutable state and is safe for
// concurrent use.
type Sanitizer struct {
	denyList        map[string]struct{}
	maxNestingLevel int
}

// NewSanitizer creates a sanitizer that redacts objects of the given
// fully-qualified type names, e.g. "github.com/acme/app/auth.Credentials".
func NewSanitizer(classDenyList ...string) *Sanitizer {
	denyList := make(map[string]struct{}, len(classDenyList))
	for _, class := range classDenyList {
		denyList[class] = struct{}{}
	}

	return &Sanitizer{
		denyList:        denyList,
		maxNestingLevel: MaxNestingLevel,
	}
}

// WithMaxNestingLevel returns a copy of the sanitizer using a different depth cutoff.
func (s *Sanitizer) WithMaxNestingLevel(level int) *Sanitizer {
	clone := *s
	clone.maxNestingLevel = level
	return &clone
}

// MaxNestingLevel returns the depth cutoff in use.
func (s *Sanitizer) MaxNestingLevel() int {
	return s.maxNestingLevel
}

// IsDenied reports whether values of the named type are redacted.
func (s *Sanitizer) IsDenied(class string) bool {
	_, ok := s.denyList[class]
	return ok
}

// CleanUp sanitizes a top level mapping.
func (s *Sanitizer) CleanUp(value map[string]any) map[string]any {
	if cleaned, ok := s.CleanUpLevel(value, 0).(map[string]any); ok {
		return cleaned
	}
	// Only reachable with a negative nesting limit.
	return map[string]any{}
}

// CleanUpLevel sanitizes value as if it was found at the given nesting level.
// The result is either a new map[string]any or TruncatedMessage when level is
// past the nesting limit.
func (s *Sanitizer) CleanUpLevel(value map[string]any, level int) any {
	if level > s.maxNestingLevel {
		return TruncatedMessage
	}

	result := make(map[string]any, len(value))
	for key, v := range value {
		result[key] = s.cleanValue(v, level)
	}

	return result
}

// cleanValue dispatches a single value found in a mapping at level.
func (s *Sanitizer) cleanValue(v any, level int) any {
	if v == nil {
		return ""
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return ""
		}
	}

	if r, ok := v.(Resource); ok {
		return resourcePrefix + r.ResourceType()
	}
	switch v.(type) {
	case *os.File, net.Conn:
		return resourcePrefix + streamResource
	}

	switch rv.Kind() {
	case reflect.Map:
		return s.CleanUpLevel(stringKeyed(rv), level+1)
	case reflect.Slice:
		if b, ok := v.([]byte); ok {
			return string(b)
		}
		return s.cleanList(rv, level+1)
	case reflect.Array:
		return s.cleanList(rv, level+1)
	case reflect.Struct:
		return s.cleanObject(v, rv, level)
	case reflect.Pointer:
		if rv.Elem().Kind() == reflect.Struct {
			return s.cleanObject(v, rv, level)
		}
		return s.cleanValue(rv.Elem().Interface(), level)
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v
	case reflect.Float32, reflect.Float64:
		// JSON has no NaN or infinities.
		if f := rv.Float(); math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Sprint(v)
		}
		return v
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return resourcePrefix + rv.Type().String()
	default:
		return fmt.Sprint(v)
	}
}

// cleanList sanitizes a slice or array as an ordered mapping keyed by position.
func (s *Sanitizer) cleanList(rv reflect.Value, level int) any {
	if level > s.maxNestingLevel {
		return TruncatedMessage
	}

	result := make([]any, rv.Len())
	for i := range result {
		result[i] = s.cleanValue(rv.Index(i).Interface(), level)
	}

	return result
}

// cleanObject renders a struct (or pointer to one) as its class plus exactly
// one of contents, jsonSerialized or variables.
func (s *Sanitizer) cleanObject(v any, rv reflect.Value, level int) map[string]any {
	class := TypeName(rv.Type())
	result := map[string]any{"class": class}

	if s.IsDenied(class) {
		result["contents"] = RedactedMessage
		return result
	}

	for _, candidate := range methodReceivers(v, rv) {
		if js, ok := candidate.(JSONSerializable); ok {
			result["jsonSerialized"] = js.JSONSerialize()
			return result
		}
	}
	for _, candidate := range methodReceivers(v, rv) {
		if m, ok := candidate.(json.Marshaler); ok {
			if raw, err := m.MarshalJSON(); err == nil && json.Valid(raw) {
				result["jsonSerialized"] = json.RawMessage(raw)
				return result
			}
			break
		}
	}

	result["variables"] = s.CleanUpLevel(exportedFields(rv), level+1)
	return result
}

// TypeName returns the fully-qualified name of t, looking through pointers.
// Unnamed types fall back to their Go syntax.
func TypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// TypeNameOf returns the name the sanitizer uses for v's type, which is the
// form expected in the class deny list.
func TypeNameOf(v any) string {
	if v == nil {
		return ""
	}
	return TypeName(reflect.TypeOf(v))
}

// methodReceivers returns v plus, for struct values, a pointer to a copy so
// that pointer-receiver methods are found as well.
func methodReceivers(v any, rv reflect.Value) []any {
	if rv.Kind() != reflect.Struct {
		return []any{v}
	}
	ptr := reflect.New(rv.Type())
	ptr.Elem().Set(rv)
	return []any{v, ptr.Interface()}
}

// exportedFields coerces a struct into a plain field name to value mapping.
// Unexported fields cannot be read through reflection and are skipped.
func exportedFields(rv reflect.Value) map[string]any {
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}

	t := rv.Type()
	fields := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		fields[f.Name] = rv.Field(i).Interface()
	}

	return fields
}

// stringKeyed converts any map kind into a map keyed by strings.
func stringKeyed(rv reflect.Value) map[string]any {
	if m, ok := rv.Interface().(map[string]any); ok {
		return m
	}

	result := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		result[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
	}

	return result
}
