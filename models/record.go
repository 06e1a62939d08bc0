// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Shape tells the codec how a decrypted payload is reconstructed.
// The values are the single-character tags stored in the "dataType" field.
type Shape string

const (
	ShapeObject Shape = "0"
	ShapeList   Shape = "1"
	ShapeMap    Shape = "2"
	ShapeSet    Shape = "3"
)

// String returns a human-readable shape name for logs.
func (s Shape) String() string {
	switch s {
	case ShapeObject:
		return "object"
	case ShapeList:
		return "list"
	case ShapeMap:
		return "map"
	case ShapeSet:
		return "set"
	default:
		return "unknown(" + string(s) + ")"
	}
}

// Valid reports whether s is one of the four known shapes.
func (s Shape) Valid() bool {
	switch s {
	case ShapeObject, ShapeList, ShapeMap, ShapeSet:
		return true
	}
	return false
}

// Record is the unit persisted under one backend key.
//
// KeyType is set only for ShapeMap and ShapeSet; for a set it names the
// element type and ValueType is empty. ValueType names the object type for
// ShapeObject and the element type of a list or the values of a map. CipherText is base64
// encoded on the wire by encoding/json.
//
// Generation is set on partition and chunk records only and must match the
// generation of the manifest that references them.
type Record struct {
	Shape      Shape  `json:"dataType"`
	KeyType    string `json:"keyClassName,omitempty"`
	ValueType  string `json:"valueClassName"`
	CipherText []byte `json:"cipherText,omitempty"`
	Generation string `json:"generation,omitempty"`
}

// Validate checks the structural invariants of a decoded record.
func (r Record) Validate() error {
	if !r.Shape.Valid() {
		return fmt.Errorf("unknown shape tag %q", string(r.Shape))
	}
	// A set stores its element type in KeyType only.
	if r.Shape != ShapeSet && r.ValueType == "" {
		return errors.New("value type name is missing")
	}
	if (r.Shape == ShapeMap || r.Shape == ShapeSet) && r.KeyType == "" {
		return fmt.Errorf("key type name is missing for %s", r.Shape)
	}
	return nil
}

// EncodeRecord renders r as the string stored in the backend.
func EncodeRecord(r Record) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", &SerializationError{Type: "record", Err: err}
	}
	return string(b), nil
}

// DecodeRecord parses a backend string into a Record and validates it.
func DecodeRecord(s string) (Record, error) {
	var r Record
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return Record{}, &SerializationError{Type: "record", Err: err}
	}
	if err := r.Validate(); err != nil {
		return Record{}, &SerializationError{Type: "record", Err: err}
	}
	return r, nil
}
