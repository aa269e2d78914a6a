// Package shared provides utility functions for random secret material and
// secure memory wiping.
package shared

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

// passwordCharset is the alphabet used by GeneratePassword. Ambiguous
// characters (0/O, 1/l/I) are excluded.
const passwordCharset = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789!@#$%^&*-_=+"

// MakeRandHexString generates a random hexadecimal string of the given size.
// The size parameter is the number of random bytes to generate, so the
// resulting string is twice as long. The process-lifetime pairing token for
// the extension bridge is produced this way.
//
// It returns an error if the random number generator fails.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// GeneratePassword returns a random password of the given length drawn from
// a fixed alphanumeric-plus-symbols alphabet using crypto/rand.
func GeneratePassword(length int) (string, error) {
	max := big.NewInt(int64(len(passwordCharset)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = passwordCharset[n.Int64()]
	}
	return string(out), nil
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// This is useful for removing sensitive data such as a master password or a
// derived key from memory after use.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
