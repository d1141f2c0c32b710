// Package secrets generates signing keys for app tokens.
package secrets

import (
	"crypto/rand"
	"encoding/base64"

	dErrors "pbd/pkg/domain-errors"
)

// MinKeyBytes is the smallest key Generate will produce. HS256 keys shorter
// than the hash output weaken the signature.
const MinKeyBytes = 32

// Generate returns n random bytes, base64url encoded without padding.
func Generate(n int) (string, error) {
	if n < MinKeyBytes {
		return "", dErrors.New(dErrors.CodeValidation, "key must be at least 32 bytes")
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate key")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
