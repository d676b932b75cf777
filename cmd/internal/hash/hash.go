package hash

import (
	"encoding/hex"
	"github.com/zeebo/xxh3"
)

// Fingerprint returns a stable, non-reversible identifier for a sensitive input such as an access token.
// It is used to check that cached state belongs to a credential without storing the credential itself.
func Fingerprint(input string) string {
	h := xxh3.HashString128(input).Bytes()
	return hex.EncodeToString(h[:])
}
