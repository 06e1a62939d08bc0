// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package codec

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/MKhiriev/go-vault-store/models"
)

// Builtin type names. Together with the reserved engine names they form the
// closed set every Registry starts with; application kinds are added with
// Register.
const (
	TypeString  = "string"
	TypeBool    = "bool"
	TypeInt     = "int"
	TypeInt8    = "int8"
	TypeInt16   = "int16"
	TypeInt32   = "int32"
	TypeInt64   = "int64"
	TypeUint    = "uint"
	TypeUint8   = "uint8"
	TypeUint16  = "uint16"
	TypeUint32  = "uint32"
	TypeUint64  = "uint64"
	TypeFloat32 = "float32"
	TypeFloat64 = "float64"
	TypeBytes   = "bytes"
	TypeAny     = "any"
	TypeTime    = "time"
)

var (
	anyType      = reflect.TypeOf((*any)(nil)).Elem()
	manifestType = reflect.TypeOf(models.Manifest{})
	chunkType    = reflect.TypeOf([]byte(nil))
)

var builtins = map[string]reflect.Type{
	TypeString:  reflect.TypeOf(""),
	TypeBool:    reflect.TypeOf(false),
	TypeInt:     reflect.TypeOf(int(0)),
	TypeInt8:    reflect.TypeOf(int8(0)),
	TypeInt16:   reflect.TypeOf(int16(0)),
	TypeInt32:   reflect.TypeOf(int32(0)),
	TypeInt64:   reflect.TypeOf(int64(0)),
	TypeUint:    reflect.TypeOf(uint(0)),
	TypeUint8:   reflect.TypeOf(uint8(0)),
	TypeUint16:  reflect.TypeOf(uint16(0)),
	TypeUint32:  reflect.TypeOf(uint32(0)),
	TypeUint64:  reflect.TypeOf(uint64(0)),
	TypeFloat32: reflect.TypeOf(float32(0)),
	TypeFloat64: reflect.TypeOf(float64(0)),
	TypeBytes:   reflect.TypeOf([]byte(nil)),
	TypeAny:     anyType,
	TypeTime:    reflect.TypeOf(time.Time{}),
}

// reserved names resolve for the engine but are never produced by NameOf, so
// application values can not masquerade as manifests or chunks.
var reserved = map[string]reflect.Type{
	models.ManifestType: manifestType,
	models.ChunkType:    chunkType,
}

var (
	ErrEmptyTypeName    = errors.New("type name must not be empty")
	ErrReservedTypeName = errors.New("type name is reserved")
	ErrTypeConflict     = errors.New("type name or type already registered differently")
)

// Registry maps persisted type names to Go types and back.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]reflect.Type
	byType map[reflect.Type]string
}

// NewRegistry returns a Registry preloaded with the builtin types.
func NewRegistry() *Registry {
	r := &Registry{
		byName: make(map[string]reflect.Type, len(builtins)+len(reserved)),
		byType: make(map[reflect.Type]string, len(builtins)),
	}
	for name, t := range builtins {
		r.byName[name] = t
		r.byType[t] = name
	}
	for name, t := range reserved {
		r.byName[name] = t
	}
	return r
}

// Register binds name to t. Pointer types are registered by their element
// type. Registering the same pair twice is a no-op.
func (r *Registry) Register(name string, t reflect.Type) error {
	if name == "" {
		return ErrEmptyTypeName
	}
	if t == nil {
		return fmt.Errorf("register %q: nil type", name)
	}
	if _, ok := reserved[name]; ok {
		return fmt.Errorf("register %q: %w", name, ErrReservedTypeName)
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, nameTaken := r.byName[name]
	bound, typeTaken := r.byType[t]
	switch {
	case nameTaken && existing == t:
		return nil
	case nameTaken:
		return fmt.Errorf("register %q as %s: bound to %s: %w", name, t, existing, ErrTypeConflict)
	case typeTaken:
		return fmt.Errorf("register %q as %s: registered as %q: %w", name, t, bound, ErrTypeConflict)
	}

	r.byName[name] = t
	r.byType[t] = name
	return nil
}

// Register binds name to T in r.
func Register[T any](r *Registry, name string) error {
	return r.Register(name, reflect.TypeOf((*T)(nil)).Elem())
}

// MustRegister is like Register but panics on error. Intended for package
// init of application kinds.
func MustRegister[T any](r *Registry, name string) {
	if err := Register[T](r, name); err != nil {
		panic(err)
	}
}

// Resolve returns the Go type bound to name.
func (r *Registry) Resolve(name string) (reflect.Type, error) {
	r.mu.RLock()
	t, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &models.TypeResolutionError{Name: name}
	}
	return t, nil
}

// NameOf returns the registered name of t, dereferencing pointers.
func (r *Registry) NameOf(t reflect.Type) (string, error) {
	if t == nil {
		return "", &models.TypeResolutionError{Name: "nil"}
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	r.mu.RLock()
	name, ok := r.byType[t]
	r.mu.RUnlock()
	if !ok {
		return "", &models.TypeResolutionError{Name: t.String()}
	}
	return name, nil
}

// Has reports whether t has a registered name.
func (r *Registry) Has(t reflect.Type) bool {
	_, err := r.NameOf(t)
	return err == nil
}
