package crypto

import (
	"github.com/MKhiriev/go-vault-store/models"
)

// NoopCipher passes bytes through unmodified behind the [AlgorithmNone] tag.
// It is the fallback used when a real cipher cannot be initialized.
type NoopCipher struct{}

// NewNoopCipher returns the pass-through cipher.
func NewNoopCipher() *NoopCipher {
	return &NoopCipher{}
}

func (NoopCipher) Name() string { return "none" }

func (NoopCipher) Initialize() error { return nil }

func (NoopCipher) Encrypt(plaintext []byte) ([]byte, error) {
	out := make([]byte, 0, len(plaintext)+1)
	out = append(out, byte(AlgorithmNone))
	return append(out, plaintext...), nil
}

// Decrypt rejects payloads sealed by a real cipher so that a store switched
// to the fallback never hands ciphertext back as plaintext.
func (n NoopCipher) Decrypt(data []byte) ([]byte, error) {
	if err := checkTag(data, AlgorithmNone); err != nil {
		return nil, &models.DecryptionError{Cipher: n.Name(), Err: err}
	}
	out := make([]byte, len(data)-1)
	copy(out, data[1:])
	return out, nil
}
