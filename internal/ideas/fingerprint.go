package ideas

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// FingerprintLength is the number of hex characters kept from the hash.
const FingerprintLength = 12

// Fingerprint hashes the normalized name and description. Case and
// whitespace differences do not change the result.
func Fingerprint(name, description string) string {
	h := sha256.Sum256([]byte(canonical(name) + "\x1f" + canonical(description)))
	return hex.EncodeToString(h[:])[:FingerprintLength]
}

func canonical(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
