package crypto

import (
	"bytes"
	"errors"
	"testing"

	"github.com/MKhiriev/go-vault-store/models"
)

// cheap argon2 parameters so the tests stay fast
var testKDF = KDFParams{Time: 1, Memory: 8 * 1024, Threads: 1}

func mustInit(t *testing.T, c Cipher) Cipher {
	t.Helper()
	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize(%s) error: %v", c.Name(), err)
	}
	return c
}

func TestDeriveArgon2Key_Deterministic(t *testing.T) {
	k1, err := deriveArgon2Key("secret", "Data", testKDF)
	if err != nil {
		t.Fatalf("deriveArgon2Key error: %v", err)
	}
	k2, err := deriveArgon2Key("secret", "Data", testKDF)
	if err != nil {
		t.Fatalf("deriveArgon2Key error: %v", err)
	}

	if len(k1) != keySize {
		t.Fatalf("key length = %d, want %d", len(k1), keySize)
	}
	if !bytes.Equal(k1, k2) {
		t.Fatalf("expected keys to match for same salt+namespace")
	}
}

func TestDeriveArgon2Key_NamespaceSeparates(t *testing.T) {
	k1, _ := deriveArgon2Key("secret", "Data", testKDF)
	k2, _ := deriveArgon2Key("secret", "Other", testKDF)
	if bytes.Equal(k1, k2) {
		t.Fatalf("expected different keys for different namespaces")
	}
}

func TestDeriveArgon2Key_InvalidParams(t *testing.T) {
	if _, err := deriveArgon2Key("secret", "Data", KDFParams{}); err == nil {
		t.Fatalf("expected error for zero parameters")
	}
}

func TestDeriveHKDFKey_DeterministicAndSeparated(t *testing.T) {
	k1, err := deriveHKDFKey("secret", "Data")
	if err != nil {
		t.Fatalf("deriveHKDFKey error: %v", err)
	}
	k2, _ := deriveHKDFKey("secret", "Data")
	k3, _ := deriveHKDFKey("other", "Data")

	if !bytes.Equal(k1, k2) {
		t.Fatalf("expected HKDF output to be deterministic")
	}
	if bytes.Equal(k1, k3) {
		t.Fatalf("expected HKDF output to differ for different salts")
	}
}

func TestDerive_EmptySalt(t *testing.T) {
	if _, err := deriveArgon2Key("", "Data", testKDF); !errors.Is(err, ErrEmptySalt) {
		t.Fatalf("argon2: err = %v, want ErrEmptySalt", err)
	}
	if _, err := deriveHKDFKey("", "Data"); !errors.Is(err, ErrEmptySalt) {
		t.Fatalf("hkdf: err = %v, want ErrEmptySalt", err)
	}
}

func TestCiphers_RoundTrip(t *testing.T) {
	ciphers := []Cipher{
		NewAESGCMCipher("secret", "Data", testKDF),
		NewXChaCha20Cipher("secret", "Data"),
		NewNoopCipher(),
	}
	payloads := [][]byte{
		[]byte("hello"),
		{},
		bytes.Repeat([]byte{0x42}, 4096),
	}

	for _, c := range ciphers {
		mustInit(t, c)
		for _, p := range payloads {
			blob, err := c.Encrypt(p)
			if err != nil {
				t.Fatalf("%s Encrypt error: %v", c.Name(), err)
			}
			got, err := c.Decrypt(blob)
			if err != nil {
				t.Fatalf("%s Decrypt error: %v", c.Name(), err)
			}
			if !bytes.Equal(got, p) {
				t.Fatalf("%s round trip mismatch: got %q want %q", c.Name(), got, p)
			}
		}
	}
}

func TestCiphers_TagPrefix(t *testing.T) {
	tests := []struct {
		c   Cipher
		tag Algorithm
	}{
		{NewAESGCMCipher("secret", "Data", testKDF), AlgorithmAESGCM},
		{NewXChaCha20Cipher("secret", "Data"), AlgorithmXChaCha20},
		{NewNoopCipher(), AlgorithmNone},
	}

	for _, tt := range tests {
		mustInit(t, tt.c)
		blob, err := tt.c.Encrypt([]byte("x"))
		if err != nil {
			t.Fatalf("%s Encrypt error: %v", tt.c.Name(), err)
		}
		if Algorithm(blob[0]) != tt.tag {
			t.Fatalf("%s tag = 0x%02x, want 0x%02x", tt.c.Name(), blob[0], byte(tt.tag))
		}
	}
}

func TestAEAD_NonceRandomness(t *testing.T) {
	c := mustInit(t, NewXChaCha20Cipher("secret", "Data"))

	b1, _ := c.Encrypt([]byte("same"))
	b2, _ := c.Encrypt([]byte("same"))
	if bytes.Equal(b1, b2) {
		t.Fatalf("expected ciphertexts to differ for the same plaintext")
	}
}

func TestAEAD_SaltMismatch(t *testing.T) {
	tests := []struct {
		name   string
		writer Cipher
		reader Cipher
	}{
		{"aes-gcm", NewAESGCMCipher("alice", "Data", testKDF), NewAESGCMCipher("bob", "Data", testKDF)},
		{"xchacha20", NewXChaCha20Cipher("alice", "Data"), NewXChaCha20Cipher("bob", "Data")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustInit(t, tt.writer)
			mustInit(t, tt.reader)

			blob, err := tt.writer.Encrypt([]byte("top secret"))
			if err != nil {
				t.Fatalf("Encrypt error: %v", err)
			}

			_, err = tt.reader.Decrypt(blob)
			var decErr *models.DecryptionError
			if !errors.As(err, &decErr) {
				t.Fatalf("err = %v, want *models.DecryptionError", err)
			}
			if !errors.Is(err, models.ErrDecryption) {
				t.Fatalf("expected errors.Is(err, ErrDecryption)")
			}
		})
	}
}

func TestDecrypt_CrossAlgorithm(t *testing.T) {
	aesC := mustInit(t, NewAESGCMCipher("secret", "Data", testKDF))
	xc := mustInit(t, NewXChaCha20Cipher("secret", "Data"))
	noop := mustInit(t, NewNoopCipher())

	sealed, _ := aesC.Encrypt([]byte("payload"))
	plain, _ := noop.Encrypt([]byte("payload"))

	if _, err := noop.Decrypt(sealed); !errors.Is(err, models.ErrDecryption) {
		t.Fatalf("noop reading aes data: err = %v, want ErrDecryption", err)
	}
	if _, err := aesC.Decrypt(plain); !errors.Is(err, models.ErrDecryption) {
		t.Fatalf("aes reading noop data: err = %v, want ErrDecryption", err)
	}
	if _, err := xc.Decrypt(sealed); !errors.Is(err, models.ErrDecryption) {
		t.Fatalf("xchacha reading aes data: err = %v, want ErrDecryption", err)
	}
}

func TestDecrypt_Malformed(t *testing.T) {
	c := mustInit(t, NewAESGCMCipher("secret", "Data", testKDF))

	cases := [][]byte{
		nil,
		{byte(AlgorithmAESGCM)},
		{byte(AlgorithmAESGCM), 1, 2, 3},
	}
	for _, data := range cases {
		if _, err := c.Decrypt(data); !errors.Is(err, models.ErrDecryption) {
			t.Fatalf("Decrypt(%v) err = %v, want ErrDecryption", data, err)
		}
	}

	blob, _ := c.Encrypt([]byte("payload"))
	blob[len(blob)-1] ^= 0xFF
	if _, err := c.Decrypt(blob); !errors.Is(err, models.ErrDecryption) {
		t.Fatalf("tampered blob: err = %v, want ErrDecryption", err)
	}
}

func TestAEAD_NotInitialized(t *testing.T) {
	c := NewXChaCha20Cipher("secret", "Data")

	if _, err := c.Encrypt([]byte("x")); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Encrypt err = %v, want ErrNotInitialized", err)
	}
	if _, err := c.Decrypt([]byte{byte(AlgorithmXChaCha20)}); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Decrypt err = %v, want ErrNotInitialized", err)
	}
}

func TestInitialize_Policy(t *testing.T) {
	t.Run("success keeps requested cipher", func(t *testing.T) {
		want := NewXChaCha20Cipher("secret", "Data")
		res, err := Initialize(want, PolicyStrict)
		if err != nil {
			t.Fatalf("Initialize error: %v", err)
		}
		if res.Cipher != want || res.FellBack || res.Cause != nil {
			t.Fatalf("unexpected result: %+v", res)
		}
	})

	t.Run("fallback substitutes noop", func(t *testing.T) {
		res, err := Initialize(NewAESGCMCipher("", "Data", testKDF), PolicyFallback)
		if err != nil {
			t.Fatalf("Initialize error: %v", err)
		}
		if !res.FellBack {
			t.Fatalf("expected FellBack")
		}
		if res.Cipher.Name() != "none" {
			t.Fatalf("fallback cipher = %s, want none", res.Cipher.Name())
		}
		if !errors.Is(res.Cause, ErrEmptySalt) {
			t.Fatalf("Cause = %v, want ErrEmptySalt", res.Cause)
		}
	})

	t.Run("strict propagates", func(t *testing.T) {
		res, err := Initialize(NewXChaCha20Cipher("", "Data"), PolicyStrict)
		if !errors.Is(err, ErrEmptySalt) {
			t.Fatalf("err = %v, want ErrEmptySalt", err)
		}
		if res.Cipher != nil {
			t.Fatalf("expected no cipher on strict failure")
		}
	})

	t.Run("nil cipher means noop", func(t *testing.T) {
		res, err := Initialize(nil, PolicyStrict)
		if err != nil {
			t.Fatalf("Initialize error: %v", err)
		}
		if res.Cipher.Name() != "none" || res.FellBack {
			t.Fatalf("unexpected result: %+v", res)
		}
	})
}

func TestParseInitPolicy(t *testing.T) {
	tests := map[string]InitPolicy{
		"":         PolicyFallback,
		"fallback": PolicyFallback,
		"STRICT":   PolicyStrict,
	}
	for in, want := range tests {
		got, err := ParseInitPolicy(in)
		if err != nil || got != want {
			t.Fatalf("ParseInitPolicy(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseInitPolicy("lenient"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func TestNew_ByName(t *testing.T) {
	tests := map[string]string{
		"aes-gcm":   "aes-gcm",
		"xchacha20": "xchacha20-poly1305",
		"none":      "none",
	}
	for in, want := range tests {
		c, err := New(in, "secret", "Data", testKDF)
		if err != nil {
			t.Fatalf("New(%q) error: %v", in, err)
		}
		if c.Name() != want {
			t.Fatalf("New(%q).Name() = %s, want %s", in, c.Name(), want)
		}
	}
	if _, err := New("rot13", "secret", "Data", testKDF); err == nil {
		t.Fatalf("expected error for unknown cipher")
	}
}
