package utils

import "github.com/google/uuid"

// IDGenerator produces unique identifiers. The partitioner stamps every
// partition set with one so leftovers of an earlier write are detectable.
type IDGenerator interface {
	Generate() string
}

// UUIDGenerator generates time-ordered UUIDv7 strings.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}

// SequenceGenerator returns the given ids in order and then repeats the last
// one. Useful where a test needs to predict generations.
type SequenceGenerator struct {
	ids  []string
	next int
}

func NewSequenceGenerator(ids ...string) *SequenceGenerator {
	return &SequenceGenerator{ids: ids}
}

func (g *SequenceGenerator) Generate() string {
	if len(g.ids) == 0 {
		return ""
	}
	id := g.ids[g.next]
	if g.next < len(g.ids)-1 {
		g.next++
	}
	return id
}
