// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package persistence

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-vault-store/internal/codec"
	"github.com/MKhiriev/go-vault-store/internal/crypto"
	"github.com/MKhiriev/go-vault-store/internal/logger"
	"github.com/MKhiriev/go-vault-store/internal/metrics"
	"github.com/MKhiriev/go-vault-store/internal/parser"
	"github.com/MKhiriev/go-vault-store/internal/partition"
	"github.com/MKhiriev/go-vault-store/internal/store"
	"github.com/MKhiriev/go-vault-store/internal/utils"
)

var (
	ErrNilBackend = errors.New("backend must not be nil")
	ErrEmptyTag   = errors.New("storage tag must not be empty")
)

// CodecFactory builds the codec from the parser, the initialized (possibly
// fallback) cipher and the type registry.
type CodecFactory func(p parser.Parser, c crypto.Cipher, reg *codec.Registry) codec.Codec

// Builder assembles a [Facade]. Every With method is optional: with none of
// them the facade uses the JSON parser, an AES-GCM cipher keyed by the tag
// and the default codec.
type Builder struct {
	backend store.Backend
	tag     string
	salt    string

	parser       parser.Parser
	maxPayload   int
	cipher       crypto.Cipher
	cipherName   string
	kdf          crypto.KDFParams
	policy       crypto.InitPolicy
	codecFactory CodecFactory
	registry     *codec.Registry

	maxRecordSize int
	parallel      bool
	ids           utils.IDGenerator

	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewBuilder starts a builder for backend. tag namespaces the derived keys
// and is the default salt.
func NewBuilder(backend store.Backend, tag string) *Builder {
	return &Builder{
		backend: backend,
		tag:     tag,
		kdf:     crypto.DefaultKDFParams(),
		policy:  crypto.PolicyFallback,
		logger:  logger.Nop(),
	}
}

// WithSalt sets the secret the cipher key is derived from.
func (b *Builder) WithSalt(salt string) *Builder {
	b.salt = salt
	return b
}

func (b *Builder) WithParser(p parser.Parser) *Builder {
	b.parser = p
	return b
}

// WithMaxPayloadSize limits serialized values of the default parser. It has
// no effect together with WithParser.
func (b *Builder) WithMaxPayloadSize(n int) *Builder {
	b.maxPayload = n
	return b
}

// WithCipher sets the cipher instance. It takes precedence over
// WithCipherName.
func (b *Builder) WithCipher(c crypto.Cipher) *Builder {
	b.cipher = c
	return b
}

// WithCipherName selects a built-in cipher by name (see [crypto.New]).
func (b *Builder) WithCipherName(name string) *Builder {
	b.cipherName = name
	return b
}

func (b *Builder) WithKDFParams(p crypto.KDFParams) *Builder {
	b.kdf = p
	return b
}

// WithCipherPolicy decides what Build does when the cipher fails to
// initialize.
func (b *Builder) WithCipherPolicy(p crypto.InitPolicy) *Builder {
	b.policy = p
	return b
}

func (b *Builder) WithCodec(f CodecFactory) *Builder {
	b.codecFactory = f
	return b
}

// WithRegistry sets the registry of application kinds.
func (b *Builder) WithRegistry(reg *codec.Registry) *Builder {
	b.registry = reg
	return b
}

func (b *Builder) WithMaxRecordSize(n int) *Builder {
	b.maxRecordSize = n
	return b
}

func (b *Builder) WithParallelPartitions(parallel bool) *Builder {
	b.parallel = parallel
	return b
}

func (b *Builder) WithIDGenerator(g utils.IDGenerator) *Builder {
	b.ids = g
	return b
}

func (b *Builder) WithLogger(l *logger.Logger) *Builder {
	if l != nil {
		b.logger = l
	}
	return b
}

func (b *Builder) WithMetrics(m *metrics.Metrics) *Builder {
	b.metrics = m
	return b
}

// Build initializes the cipher and returns the facade. Under the fallback
// policy a cipher that fails to initialize is replaced by the no-op cipher
// and a single warning is logged; under the strict policy Build fails.
func (b *Builder) Build() (*Facade, error) {
	if b.backend == nil {
		return nil, ErrNilBackend
	}
	if b.tag == "" {
		return nil, ErrEmptyTag
	}

	base := &logger.Logger{Logger: b.logger.With().Str("tag", b.tag).Logger()}
	log := base.WithComponent("persistence")

	salt := b.salt
	if salt == "" {
		salt = b.tag
	}

	p := b.parser
	if p == nil {
		var opts []parser.Option
		if b.maxPayload > 0 {
			opts = append(opts, parser.WithMaxPayloadSize(b.maxPayload))
		}
		p = parser.NewJSONParser(opts...)
	}

	c := b.cipher
	if c == nil {
		var err error
		if c, err = crypto.New(b.cipherName, salt, b.tag, b.kdf); err != nil {
			return nil, fmt.Errorf("build persistence: %w", err)
		}
	}

	res, err := crypto.Initialize(c, b.policy)
	if err != nil {
		return nil, fmt.Errorf("build persistence: %w", err)
	}
	if res.FellBack {
		log.Warn().
			Err(res.Cause).
			Str("func", "Builder.Build").
			Str("cipher", c.Name()).
			Msg("cipher initialization failed, values will be stored unencrypted")
	}
	b.metrics.SetCipherFallback(res.FellBack)

	reg := b.registry
	if reg == nil {
		reg = codec.NewRegistry()
	}

	var cd codec.Codec
	if b.codecFactory != nil {
		cd = b.codecFactory(p, res.Cipher, reg)
	} else {
		cd = codec.New(p, res.Cipher, reg)
	}

	opts := []partition.Option{
		partition.WithParallel(b.parallel),
		partition.WithMaxRecordSize(b.maxRecordSize),
		partition.WithLogger(base.WithComponent("partition")),
	}
	if b.ids != nil {
		opts = append(opts, partition.WithIDGenerator(b.ids))
	}

	f := &Facade{
		tag:         b.tag,
		backend:     b.backend,
		codec:       cd,
		cipher:      res.Cipher,
		fellBack:    res.FellBack,
		partitioner: partition.New(cd, b.backend, opts...),
		logger:      log,
		metrics:     b.metrics,
		locks:       newKeyLocks(),
	}

	log.Info().
		Str("func", "Builder.Build").
		Str("cipher", res.Cipher.Name()).
		Bool("fallback", res.FellBack).
		Msg("persistence ready")
	return f, nil
}
