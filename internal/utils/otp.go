package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// NewOtpCode draws a 6-digit code uniformly from [100000, 999999].
// crypto/rand keeps the draw unbiased; the code is bcrypt-hashed
// before storage and rate-limited by the attempts cap, so the digits
// themselves are not a long-term secret.
func NewOtpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
