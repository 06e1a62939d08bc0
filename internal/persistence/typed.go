package persistence

import (
	"context"
	"fmt"
	"reflect"

	"github.com/MKhiriev/go-vault-store/models"
)

// Reader is satisfied by [Facade] and [Handle].
type Reader interface {
	Get(ctx context.Context, key string) any
	GetE(ctx context.Context, key string) (any, error)
}

// Get returns the value under key as a T. ok is false when the key is
// absent, unreadable (logged by the reader) or holds something other than a
// T. T may be a pointer to the stored type.
func Get[T any](ctx context.Context, r Reader, key string) (T, bool) {
	v := r.Get(ctx, key)
	if v == nil {
		var zero T
		return zero, false
	}
	return as[T](v)
}

// GetOrDefault is Get returning def instead of false.
func GetOrDefault[T any](ctx context.Context, r Reader, key string, def T) T {
	if v, ok := Get[T](ctx, r, key); ok {
		return v
	}
	return def
}

// GetAs is Get with the failure reported. A value of another type yields a
// [models.TypeResolutionError].
func GetAs[T any](ctx context.Context, r Reader, key string) (T, error) {
	var zero T
	v, err := r.GetE(ctx, key)
	if err != nil {
		return zero, err
	}
	t, ok := as[T](v)
	if !ok {
		return zero, &models.TypeResolutionError{
			Name: fmt.Sprintf("%T", v),
			Err:  fmt.Errorf("stored value is not a %s", reflect.TypeFor[T]()),
		}
	}
	return t, nil
}

func as[T any](v any) (T, bool) {
	if t, ok := v.(T); ok {
		return t, true
	}

	var zero T
	want := reflect.TypeFor[T]()
	rv := reflect.ValueOf(v)
	if want.Kind() == reflect.Pointer && rv.IsValid() && rv.Type() == want.Elem() {
		ptr := reflect.New(want.Elem())
		ptr.Elem().Set(rv)
		return ptr.Interface().(T), true
	}
	return zero, false
}
