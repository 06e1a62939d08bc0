package partition

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-vault-store/models"
)

// NeedsChunking reports whether an encoded record is too long to be stored
// under a single key.
func (p *Partitioner) NeedsChunking(encoded string) bool {
	return len(encoded) > p.maxRecordSize
}

// ChunkSize is the number of ciphertext bytes per chunk. Base64 grows the
// bytes by 4/3, and the record envelope takes roughly recordOverhead more.
func (p *Partitioner) ChunkSize() int {
	return max((p.maxRecordSize-recordOverhead)*3/4, minChunkBytes)
}

// WriteChunks stores rec, whose encoding is too large, as ciphertext chunks
// under key#i and a manifest describing rec's shape at key. Failure rolls
// back like [Partitioner.Write].
func (p *Partitioner) WriteChunks(ctx context.Context, key string, rec models.Record) error {
	size := p.ChunkSize()
	chunks := split(rec.CipherText, size)

	previous := p.previousCount(ctx, key)
	generation := p.ids.Generate()

	err := p.forEach(ctx, len(chunks), p.parallel, func(ctx context.Context, i int) error {
		encoded, err := models.EncodeRecord(models.Record{
			Shape:      models.ShapeObject,
			ValueType:  models.ChunkType,
			CipherText: chunks[i],
			Generation: generation,
		})
		if err == nil {
			err = p.backend.Put(ctx, Key(key, i), encoded)
		}
		if err != nil {
			return &models.PartitionIntegrityError{Key: key, Index: i, Err: err}
		}
		return nil
	})
	if err == nil {
		err = p.commit(ctx, key, models.Manifest{
			Count:      len(chunks),
			Generation: generation,
			Shape:      rec.Shape,
			KeyType:    rec.KeyType,
			ValueType:  rec.ValueType,
		})
	}
	if err != nil {
		p.rollback(ctx, key, max(len(chunks), previous))
		return err
	}

	p.logger.Debug().
		Str("func", "Partitioner.WriteChunks").
		Str("key", key).
		Int("chunks", len(chunks)).
		Int("chunk_size", size).
		Msg("record chunked")

	p.removeStale(ctx, key, len(chunks), previous)
	return nil
}

// ReadChunks reassembles the record described by the chunked manifest m.
func (p *Partitioner) ReadChunks(ctx context.Context, key string, m models.Manifest) (models.Record, error) {
	if !m.Chunked() {
		return models.Record{}, &models.PartitionIntegrityError{Key: key, Index: -1, Err: errors.New("manifest describes a partitioned value")}
	}

	chunks := make([][]byte, m.Count)
	err := p.forEach(ctx, m.Count, p.parallel, func(ctx context.Context, i int) error {
		rec, err := p.readMember(ctx, key, m.Generation, i)
		if err != nil {
			return err
		}
		if !rec.IsChunk() {
			return &models.PartitionIntegrityError{Key: key, Index: i, Err: errors.New("member is not a chunk")}
		}
		chunks[i] = rec.CipherText
		return nil
	})
	if err != nil {
		return models.Record{}, err
	}

	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	cipherText := make([]byte, 0, total)
	for _, c := range chunks {
		cipherText = append(cipherText, c...)
	}

	return models.Record{
		Shape:      m.Shape,
		KeyType:    m.KeyType,
		ValueType:  m.ValueType,
		CipherText: cipherText,
	}, nil
}

func split(b []byte, size int) [][]byte {
	out := make([][]byte, 0, (len(b)+size-1)/size)
	for len(b) > size {
		out = append(out, b[:size])
		b = b[size:]
	}
	if len(b) > 0 {
		out = append(out, b)
	}
	return out
}
