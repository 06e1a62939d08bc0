package parser

// Parser converts values to and from their text representation. It knows
// nothing about encryption or type metadata.
type Parser interface {
	// Serialize renders v as text. The output is deterministic for a fixed v.
	Serialize(v any) (string, error)
	// Deserialize parses text into target, which must be a non-nil pointer.
	Deserialize(text string, target any) error
	// Name identifies the format in logs.
	Name() string
}
