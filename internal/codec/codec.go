// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package codec

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/MKhiriev/go-vault-store/internal/crypto"
	"github.com/MKhiriev/go-vault-store/internal/parser"
	"github.com/MKhiriev/go-vault-store/models"
)

var emptyStruct = reflect.TypeOf(struct{}{})

// RecordCodec is the default [Codec]: Parser, then Cipher, wrapped in a
// Record carrying shape and type names.
//
// Shapes are detected as follows, after dereferencing pointers:
//   - a type with a registered name is an object;
//   - slices and arrays are lists of their element type;
//   - map[K]struct{} is a set of K;
//   - any other map is a map of K to V.
//
// Interface element types are narrowed to the concrete type of the elements
// actually present; an empty collection of interfaces is recorded as "any".
type RecordCodec struct {
	parser   parser.Parser
	cipher   crypto.Cipher
	registry *Registry
}

// New returns a RecordCodec. A nil registry gets a fresh builtin-only one.
func New(p parser.Parser, c crypto.Cipher, reg *Registry) *RecordCodec {
	if reg == nil {
		reg = NewRegistry()
	}
	return &RecordCodec{parser: p, cipher: c, registry: reg}
}

func (c *RecordCodec) Registry() *Registry { return c.registry }

type descriptor struct {
	shape     models.Shape
	keyType   string
	valueType string
	payload   any
}

func (c *RecordCodec) ToRecord(value any) (models.Record, error) {
	d, err := c.describe(value)
	if err != nil {
		return models.Record{}, err
	}

	text, err := c.parser.Serialize(d.payload)
	if err != nil {
		return models.Record{}, err
	}

	cipherText, err := c.cipher.Encrypt([]byte(text))
	if err != nil {
		return models.Record{}, fmt.Errorf("encrypt %s: %w", d.valueType, err)
	}

	return models.Record{
		Shape:      d.shape,
		KeyType:    d.keyType,
		ValueType:  d.valueType,
		CipherText: cipherText,
	}, nil
}

func (c *RecordCodec) FromRecord(rec models.Record) (any, error) {
	if err := rec.Validate(); err != nil {
		return nil, &models.SerializationError{Type: "record", Err: err}
	}
	if rec.IsManifest() || rec.IsChunk() {
		return nil, &models.TypeResolutionError{
			Name: rec.ValueType,
			Err:  errors.New("engine record can not be decoded as a value"),
		}
	}

	plain, err := c.open(rec.CipherText)
	if err != nil {
		return nil, err
	}

	target, err := c.targetType(rec)
	if err != nil {
		return nil, err
	}

	switch {
	case rec.Shape == models.ShapeSet:
		return c.decodeSet(string(plain), target)
	case rec.Shape == models.ShapeMap && textKeyed(target.Key()):
		return c.decodeTextKeyed(string(plain), target.Key(), target.Elem())
	}

	ptr := reflect.New(target)
	if err := c.parser.Deserialize(string(plain), ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

func (c *RecordCodec) EncodeManifest(m models.Manifest) (models.Record, error) {
	text, err := c.parser.Serialize(m)
	if err != nil {
		return models.Record{}, err
	}
	cipherText, err := c.cipher.Encrypt([]byte(text))
	if err != nil {
		return models.Record{}, fmt.Errorf("encrypt manifest: %w", err)
	}
	return models.Record{
		Shape:      models.ShapeObject,
		ValueType:  models.ManifestType,
		CipherText: cipherText,
	}, nil
}

func (c *RecordCodec) DecodeManifest(rec models.Record) (models.Manifest, error) {
	if !rec.IsManifest() {
		return models.Manifest{}, &models.TypeResolutionError{
			Name: rec.ValueType,
			Err:  errors.New("record is not a manifest"),
		}
	}

	plain, err := c.open(rec.CipherText)
	if err != nil {
		return models.Manifest{}, err
	}

	var m models.Manifest
	if err := c.parser.Deserialize(string(plain), &m); err != nil {
		return models.Manifest{}, err
	}
	if m.Count < 0 || m.Generation == "" {
		return models.Manifest{}, &models.SerializationError{
			Type: models.ManifestType,
			Err:  fmt.Errorf("invalid manifest: count=%d generation=%q", m.Count, m.Generation),
		}
	}
	return m, nil
}

func (c *RecordCodec) open(cipherText []byte) ([]byte, error) {
	plain, err := c.cipher.Decrypt(cipherText)
	if err == nil {
		return plain, nil
	}
	if errors.Is(err, models.ErrDecryption) {
		return nil, err
	}
	return nil, &models.DecryptionError{Cipher: c.cipher.Name(), Err: err}
}

func (c *RecordCodec) targetType(rec models.Record) (reflect.Type, error) {
	switch rec.Shape {
	case models.ShapeObject:
		return c.registry.Resolve(rec.ValueType)
	case models.ShapeList:
		elem, err := c.registry.Resolve(rec.ValueType)
		if err != nil {
			return nil, err
		}
		return reflect.SliceOf(elem), nil
	case models.ShapeMap:
		key, err := c.mapKey(rec.KeyType)
		if err != nil {
			return nil, err
		}
		elem, err := c.registry.Resolve(rec.ValueType)
		if err != nil {
			return nil, err
		}
		return reflect.MapOf(key, elem), nil
	case models.ShapeSet:
		return c.mapKey(rec.KeyType)
	}
	return nil, &models.SerializationError{Type: "record", Err: fmt.Errorf("unknown shape %q", string(rec.Shape))}
}

func (c *RecordCodec) mapKey(name string) (reflect.Type, error) {
	key, err := c.registry.Resolve(name)
	if err != nil {
		return nil, err
	}
	if !key.Comparable() {
		return nil, &models.TypeResolutionError{Name: name, Err: errors.New("not usable as a map key")}
	}
	return key, nil
}

// decodeSet parses a JSON array of elem into a map[elem]struct{}. An
// interface element type only comes from an empty set.
func (c *RecordCodec) decodeSet(text string, elem reflect.Type) (any, error) {
	list := reflect.New(reflect.SliceOf(elem))
	if err := c.parser.Deserialize(text, list.Interface()); err != nil {
		return nil, err
	}

	items := list.Elem()
	if elem.Kind() == reflect.Interface && items.Len() > 0 {
		return nil, &models.TypeResolutionError{Name: TypeAny, Err: errors.New("not usable as a set element")}
	}
	set := reflect.MakeMapWithSize(reflect.MapOf(elem, emptyStruct), items.Len())
	zero := reflect.Zero(emptyStruct)
	for i := 0; i < items.Len(); i++ {
		set.SetMapIndex(items.Index(i), zero)
	}
	return set.Interface(), nil
}

func (c *RecordCodec) describe(value any) (descriptor, error) {
	if value == nil {
		return descriptor{}, &models.SerializationError{Type: "nil", Err: errors.New("nil value")}
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return descriptor{}, &models.SerializationError{Type: rv.Type().String(), Err: errors.New("nil pointer")}
		}
		rv = rv.Elem()
	}
	t := rv.Type()

	if name, err := c.registry.NameOf(t); err == nil {
		return descriptor{shape: models.ShapeObject, valueType: name, payload: rv.Interface()}, nil
	}

	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		elems := make([]reflect.Value, rv.Len())
		for i := range elems {
			elems[i] = rv.Index(i)
		}
		name, err := c.elemName(t, t.Elem(), elems)
		if err != nil {
			return descriptor{}, err
		}
		return descriptor{shape: models.ShapeList, valueType: name, payload: rv.Interface()}, nil

	case reflect.Map:
		keys := rv.MapKeys()
		keyName, err := c.elemName(t, t.Key(), keys)
		if err != nil {
			return descriptor{}, err
		}

		if t.Elem() == emptyStruct {
			return descriptor{shape: models.ShapeSet, keyType: keyName, payload: sortedKeys(t.Key(), keys)}, nil
		}

		vals := make([]reflect.Value, 0, len(keys))
		iter := rv.MapRange()
		for iter.Next() {
			vals = append(vals, iter.Value())
		}
		valName, err := c.elemName(t, t.Elem(), vals)
		if err != nil {
			return descriptor{}, err
		}

		payload := rv.Interface()
		if textKeyed(t.Key()) {
			if payload, err = stringKeyed(rv); err != nil {
				return descriptor{}, err
			}
		}
		return descriptor{shape: models.ShapeMap, keyType: keyName, valueType: valName, payload: payload}, nil
	}

	return descriptor{}, &models.TypeResolutionError{Name: t.String()}
}

// elemName names the element type of a collection. Concrete element types
// are looked up directly; interface element types take the concrete type of
// the elements present, which must all agree.
func (c *RecordCodec) elemName(container, static reflect.Type, elems []reflect.Value) (string, error) {
	if static.Kind() != reflect.Interface {
		return c.registry.NameOf(static)
	}

	var concrete reflect.Type
	for _, e := range elems {
		if e.IsNil() {
			return "", &models.SerializationError{Type: container.String(), Err: errors.New("nil element")}
		}
		et := e.Elem().Type()
		for et.Kind() == reflect.Pointer {
			et = et.Elem()
		}
		if concrete == nil {
			concrete = et
			continue
		}
		if et != concrete {
			return "", &models.SerializationError{
				Type: container.String(),
				Err:  fmt.Errorf("heterogeneous elements: %s and %s", concrete, et),
			}
		}
	}

	if concrete == nil {
		return TypeAny, nil
	}
	return c.registry.NameOf(concrete)
}
