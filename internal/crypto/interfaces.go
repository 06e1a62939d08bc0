package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/cipher_mock.go -package=mock

// Cipher encrypts and decrypts record payloads.
//
// Every implementation prefixes its output with a one-byte algorithm tag
// (see [Algorithm]) so that data produced by one cipher is rejected by
// another with a [models.DecryptionError] instead of decoding as garbage.
type Cipher interface {
	// Initialize derives the key material. It must be called once before
	// Encrypt or Decrypt; failure means the cipher is unusable.
	Initialize() error

	// Encrypt seals plaintext and returns tag || nonce || ciphertext.
	Encrypt(plaintext []byte) ([]byte, error)

	// Decrypt opens data produced by Encrypt of a cipher with the same
	// algorithm and key. Any mismatch yields a *models.DecryptionError.
	Decrypt(data []byte) ([]byte, error)

	// Name returns the algorithm name used in logs and metrics.
	Name() string
}
