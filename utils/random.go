package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// Secret returns a cryptographically random hex string of n bytes of entropy.
func Secret(n int) string {
	if n <= 0 {
		panic("invalid args n")
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
