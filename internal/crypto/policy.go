package crypto

import (
	"fmt"
	"strings"
)

// InitPolicy decides what happens when a cipher fails to initialize.
type InitPolicy int

const (
	// PolicyFallback substitutes the [NoopCipher]. Availability wins over
	// confidentiality, so the store stays usable but unencrypted.
	PolicyFallback InitPolicy = iota
	// PolicyStrict returns the initialization error to the caller.
	PolicyStrict
)

func (p InitPolicy) String() string {
	switch p {
	case PolicyFallback:
		return "fallback"
	case PolicyStrict:
		return "strict"
	default:
		return fmt.Sprintf("InitPolicy(%d)", int(p))
	}
}

// ParseInitPolicy maps a config value onto an InitPolicy. Empty means fallback.
func ParseInitPolicy(s string) (InitPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fallback":
		return PolicyFallback, nil
	case "strict":
		return PolicyStrict, nil
	default:
		return PolicyFallback, fmt.Errorf("unknown cipher policy %q", s)
	}
}

// InitResult is the outcome of [Initialize].
type InitResult struct {
	// Cipher is ready to use: either the requested one or the fallback.
	Cipher Cipher
	// FellBack is true when Cipher is the fallback.
	FellBack bool
	// Cause is the initialization error of the requested cipher, if any.
	Cause error
}

// Initialize runs c.Initialize and applies policy to the outcome.
// A nil cipher is treated as a request for the fallback itself.
func Initialize(c Cipher, policy InitPolicy) (InitResult, error) {
	if c == nil {
		return InitResult{Cipher: NewNoopCipher()}, nil
	}

	err := c.Initialize()
	if err == nil {
		return InitResult{Cipher: c}, nil
	}

	if policy == PolicyStrict {
		return InitResult{Cause: err}, fmt.Errorf("initialize cipher %s: %w", c.Name(), err)
	}

	return InitResult{
		Cipher:   NewNoopCipher(),
		FellBack: true,
		Cause:    err,
	}, nil
}

// New builds a cipher by config name. Recognized names are "aes-gcm",
// "xchacha20" and "none".
func New(name, salt, namespace string, params KDFParams) (Cipher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "aes-gcm", "aes":
		return NewAESGCMCipher(salt, namespace, params), nil
	case "xchacha20", "xchacha20-poly1305":
		return NewXChaCha20Cipher(salt, namespace), nil
	case "none", "noop":
		return NewNoopCipher(), nil
	default:
		return nil, fmt.Errorf("unknown cipher %q", name)
	}
}
