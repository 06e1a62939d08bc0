// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/MKhiriev/go-vault-store/models"
)

// DefaultMaxPayloadSize bounds both serialized output and parsed input.
const DefaultMaxPayloadSize = 50 * 1024 * 1024

// JSONParser is the default [Parser]. Map keys are emitted in sorted order by
// encoding/json, which keeps output deterministic.
type JSONParser struct {
	maxSize int
}

// Option configures a JSONParser.
type Option func(*JSONParser)

// WithMaxPayloadSize sets the limit in bytes. Zero or negative disables it.
func WithMaxPayloadSize(n int) Option {
	return func(p *JSONParser) {
		p.maxSize = n
	}
}

// NewJSONParser returns a JSONParser limited to DefaultMaxPayloadSize unless
// overridden.
func NewJSONParser(opts ...Option) *JSONParser {
	p := &JSONParser{maxSize: DefaultMaxPayloadSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *JSONParser) Name() string { return "json" }

func (p *JSONParser) Serialize(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", &models.SerializationError{Type: typeName(v), Err: err}
	}
	if err := p.checkSize(len(b)); err != nil {
		return "", &models.SerializationError{Type: typeName(v), Err: err}
	}
	return string(b), nil
}

func (p *JSONParser) Deserialize(text string, target any) error {
	if err := p.checkSize(len(text)); err != nil {
		return &models.SerializationError{Type: typeName(target), Err: err}
	}

	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &models.SerializationError{
			Type: typeName(target),
			Err:  errors.New("target must be a non-nil pointer"),
		}
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	if err := dec.Decode(target); err != nil {
		return &models.SerializationError{Type: typeName(target), Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return &models.SerializationError{
			Type: typeName(target),
			Err:  errors.New("unexpected data after top-level value"),
		}
	}
	return nil
}

func (p *JSONParser) checkSize(n int) error {
	if p.maxSize > 0 && n > p.maxSize {
		return fmt.Errorf("%w: %d > %d bytes", models.ErrPayloadTooLarge, n, p.maxSize)
	}
	return nil
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
