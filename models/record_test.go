package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_WireShape(t *testing.T) {
	s, err := EncodeRecord(Record{
		Shape:      ShapeMap,
		KeyType:    "string",
		ValueType:  "int",
		CipherText: []byte{0x00, 'h', 'i'},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"dataType":"2","keyClassName":"string","valueClassName":"int","cipherText":"AGhp"}`, s)

	rec, err := DecodeRecord(s)
	require.NoError(t, err)
	assert.Equal(t, ShapeMap, rec.Shape)
	assert.Equal(t, []byte{0x00, 'h', 'i'}, rec.CipherText)
}

func TestRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		wantErr bool
	}{
		{"object", Record{Shape: ShapeObject, ValueType: "string"}, false},
		{"set without value type", Record{Shape: ShapeSet, KeyType: "string"}, false},
		{"unknown shape", Record{Shape: "9", ValueType: "string"}, true},
		{"missing value type", Record{Shape: ShapeList}, true},
		{"map without key type", Record{Shape: ShapeMap, ValueType: "int"}, true},
		{"set without key type", Record{Shape: ShapeSet}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDecodeRecord_Errors(t *testing.T) {
	_, err := DecodeRecord("{broken")
	assert.ErrorIs(t, err, ErrSerialization)

	_, err = DecodeRecord(`{"dataType":"7","valueClassName":"x"}`)
	assert.ErrorIs(t, err, ErrSerialization)
}

func TestRecord_EngineKinds(t *testing.T) {
	assert.True(t, Record{ValueType: ManifestType}.IsManifest())
	assert.True(t, Record{ValueType: ChunkType}.IsChunk())
	assert.False(t, Record{ValueType: "string"}.IsManifest())
	assert.True(t, Manifest{Count: 2, Generation: "g"}.Chunked())
	assert.False(t, Manifest{Kind: "album"}.Chunked())
}

func TestErrors_Classification(t *testing.T) {
	cause := errors.New("cause")
	tests := []struct {
		err      error
		sentinel error
	}{
		{&SerializationError{Type: "t", Err: cause}, ErrSerialization},
		{&DecryptionError{Cipher: "c", Err: cause}, ErrDecryption},
		{&TypeResolutionError{Name: "n", Err: cause}, ErrTypeResolution},
		{&PartitionIntegrityError{Key: "k", Index: 1, Err: cause}, ErrPartitionIntegrity},
		{&BackendError{Op: "put", Key: "k", Err: cause}, ErrBackend},
	}

	sentinels := []error{ErrSerialization, ErrDecryption, ErrTypeResolution, ErrPartitionIntegrity, ErrBackend}
	for _, tt := range tests {
		assert.ErrorIs(t, tt.err, tt.sentinel)
		assert.ErrorIs(t, tt.err, cause)
		for _, s := range sentinels {
			if s != tt.sentinel {
				assert.NotErrorIs(t, tt.err, s)
			}
		}
		assert.NotEmpty(t, tt.err.Error())
	}

	assert.Equal(t, `type "x" is not registered`, (&TypeResolutionError{Name: "x"}).Error())
	assert.Equal(t, `partition set "k": cause`, (&PartitionIntegrityError{Key: "k", Index: -1, Err: cause}).Error())
}
