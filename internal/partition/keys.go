// Package partition spreads values over several backend records.
//
// Two layouts share the same on-disk form: a manifest record at the base key
// and member records at "<key>#<index>". Partitioned values (see
// [models.Partitioned]) store one independently encoded record per
// partition; oversized plain records are cut into ciphertext chunks.
// Every member carries the manifest's generation so members left behind by
// an earlier write are never mixed into a newer set.
package partition

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-vault-store/models"
)

// Delimiter separates a base key from a member index. Logical keys must not
// contain it.
const Delimiter = "#"

// Key returns the backend key of member i of base.
func Key(base string, i int) string {
	return base + Delimiter + strconv.Itoa(i)
}

// ValidateKey rejects keys that are empty or would collide with member keys.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", models.ErrInvalidKey)
	}
	if strings.Contains(key, Delimiter) {
		return fmt.Errorf("%w: %q contains reserved delimiter %q", models.ErrInvalidKey, key, Delimiter)
	}
	return nil
}

// IsMemberKey reports whether key addresses a partition or chunk record.
func IsMemberKey(key string) bool {
	return strings.Contains(key, Delimiter)
}

// ParseMemberKey splits a member key into its base key and index.
func ParseMemberKey(key string) (base string, index int, ok bool) {
	i := strings.LastIndex(key, Delimiter)
	if i <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(key[i+len(Delimiter):])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return key[:i], n, true
}
