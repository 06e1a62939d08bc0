package models

// Reserved type names used by the engine itself. They are registered in every
// codec registry and cannot be claimed by application kinds.
const (
	// ManifestType is the value type of the record stored at the base key of
	// a partitioned or chunked value.
	ManifestType = "vault.manifest"

	// ChunkType is the value type of a record holding a slice of a larger
	// record's ciphertext.
	ChunkType = "vault.chunk"
)

// Manifest describes a value spread across several backend records.
//
// For a partitioned value Kind is the registered name of the value's type.
// For a chunked record Kind is empty and Shape/KeyType/ValueType describe the
// inner record whose ciphertext is the concatenation of the chunks.
type Manifest struct {
	Kind       string `json:"kind,omitempty"`
	Count      int    `json:"count"`
	Generation string `json:"generation"`

	Shape     Shape  `json:"shape,omitempty"`
	KeyType   string `json:"keyClassName,omitempty"`
	ValueType string `json:"valueClassName,omitempty"`
}

// Chunked reports whether the manifest describes a chunked record rather
// than a partitioned value.
func (m Manifest) Chunked() bool {
	return m.Kind == ""
}

// Partitioned is implemented by values that persist themselves as several
// independently encoded partitions.
//
// Partition(i) returns the data of partition i; it must be a value the codec
// can encode (a builtin, a registered kind, or a list/map/set of those).
// SetPartition receives the decoded data of partition i on read and must be
// implemented on a pointer receiver, since reads construct a fresh *T.
type Partitioned interface {
	PartitionCount() int
	Partition(i int) any
	SetPartition(i int, data any) error
}

// PartitionToggle lets a partitioned value opt out of partitioning at
// runtime. Values that do not implement it are always partitioned.
type PartitionToggle interface {
	PartitioningEnabled() bool
}

// ParallelPartitioned lets a partitioned value ask for its partitions to be
// written and read concurrently.
type ParallelPartitioned interface {
	PartitionsParallel() bool
}

// IsManifest reports whether r is the manifest of a partitioned or chunked
// value rather than a value record.
func (r Record) IsManifest() bool {
	return r.ValueType == ManifestType
}

// IsChunk reports whether r holds a slice of a chunked record's ciphertext.
func (r Record) IsChunk() bool {
	return r.ValueType == ChunkType
}
