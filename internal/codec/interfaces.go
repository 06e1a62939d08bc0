package codec

import "github.com/MKhiriev/go-vault-store/models"

//go:generate mockgen -source=interfaces.go -destination=../mock/codec_mock.go -package=mock

// Codec turns typed values into persisted records and back.
type Codec interface {
	// ToRecord detects the value's shape, serializes and encrypts it.
	ToRecord(value any) (models.Record, error)
	// FromRecord decrypts the record and rebuilds the value in its shape.
	FromRecord(rec models.Record) (any, error)

	// EncodeManifest seals a manifest into the record stored at a base key.
	EncodeManifest(m models.Manifest) (models.Record, error)
	// DecodeManifest opens a record produced by EncodeManifest.
	DecodeManifest(rec models.Record) (models.Manifest, error)

	// Registry returns the type registry used to resolve type names.
	Registry() *Registry
}
