package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// TempPasswordLength is the length of generated temporary VPN passwords.
const TempPasswordLength = 16

// Alphanumeric without lookalikes (0/O, 1/l/I) so operators can read a
// temporary password to a user over the phone without ambiguity.
const tempPasswordCharset = "23456789abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ"

// GenerateTempPassword creates a random one-time password for a newly
// provisioned VPN account. The value is surfaced to the caller exactly once
// and never persisted.
func GenerateTempPassword() (string, error) {
	buf := make([]byte, TempPasswordLength)
	maxIdx := big.NewInt(int64(len(tempPasswordCharset)))

	for i := range buf {
		n, err := rand.Int(rand.Reader, maxIdx)
		if err != nil {
			return "", fmt.Errorf("cryptox: failed to generate temp password: %w", err)
		}
		buf[i] = tempPasswordCharset[n.Int64()]
	}

	return string(buf), nil
}
