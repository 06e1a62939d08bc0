package codec

import (
	"cmp"
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"time"

	"github.com/MKhiriev/go-vault-store/models"
)

var stringType = reflect.TypeOf("")

// textKeyed reports whether maps keyed by t are stored with their keys
// rendered as strings. The parser only accepts string, integer and
// TextMarshaler keys as they are.
func textKeyed(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.Float32, reflect.Float64, reflect.Interface:
		return true
	}
	return false
}

// stringKeyed copies rv into a map[string]V with every key rendered by
// formatKey.
func stringKeyed(rv reflect.Value) (any, error) {
	out := reflect.MakeMapWithSize(reflect.MapOf(stringType, rv.Type().Elem()), rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k, err := formatKey(iter.Key())
		if err != nil {
			return nil, &models.SerializationError{Type: rv.Type().String(), Err: err}
		}
		out.SetMapIndex(reflect.ValueOf(k), iter.Value())
	}
	return out.Interface(), nil
}

func formatKey(k reflect.Value) (string, error) {
	k = unwrap(k)
	if m, ok := k.Interface().(encoding.TextMarshaler); ok {
		b, err := m.MarshalText()
		return string(b), err
	}

	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(k.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(k.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(k.Float(), 'g', -1, k.Type().Bits()), nil
	}
	return "", fmt.Errorf("unsupported map key type %s", k.Type())
}

func parseKey(s string, t reflect.Type) (reflect.Value, error) {
	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetBool(b)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetFloat(f)
	default:
		return reflect.Value{}, fmt.Errorf("unsupported map key type %s", t)
	}
	return v, nil
}

// decodeTextKeyed parses a string-keyed JSON object into a map[key]elem.
// An interface key type only comes from an empty map, so any entry is an
// error.
func (c *RecordCodec) decodeTextKeyed(text string, key, elem reflect.Type) (any, error) {
	raw := reflect.New(reflect.MapOf(stringType, elem))
	if err := c.parser.Deserialize(text, raw.Interface()); err != nil {
		return nil, err
	}

	entries := raw.Elem()
	if key.Kind() == reflect.Interface && entries.Len() > 0 {
		return nil, &models.TypeResolutionError{Name: TypeAny, Err: errors.New("not usable as a map key")}
	}

	out := reflect.MakeMapWithSize(reflect.MapOf(key, elem), entries.Len())
	iter := entries.MapRange()
	for iter.Next() {
		k, err := parseKey(iter.Key().String(), key)
		if err != nil {
			return nil, &models.SerializationError{Type: key.String(), Err: err}
		}
		out.SetMapIndex(k, iter.Value())
	}
	return out.Interface(), nil
}

// sortedKeys returns keys as a []elem in natural order: numerically for
// numbers, false before true, chronologically for times.
func sortedKeys(elem reflect.Type, keys []reflect.Value) any {
	slices.SortFunc(keys, compareKeys)
	out := reflect.MakeSlice(reflect.SliceOf(elem), 0, len(keys))
	out = reflect.Append(out, keys...)
	return out.Interface()
}

func compareKeys(a, b reflect.Value) int {
	a, b = unwrap(a), unwrap(b)
	if ta, ok := a.Interface().(time.Time); ok {
		if tb, ok := b.Interface().(time.Time); ok {
			return ta.Compare(tb)
		}
	}

	switch a.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(a.Int(), b.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return cmp.Compare(a.Uint(), b.Uint())
	case reflect.Float32, reflect.Float64:
		return cmp.Compare(a.Float(), b.Float())
	case reflect.String:
		return cmp.Compare(a.String(), b.String())
	case reflect.Bool:
		return cmp.Compare(boolRank(a.Bool()), boolRank(b.Bool()))
	}
	return cmp.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// unwrap strips interface and pointer layers.
func unwrap(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	return v
}
