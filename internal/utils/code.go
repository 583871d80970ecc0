package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	verificationCodeMin  = 100000
	verificationCodeSpan = 900000
)

// GenerateVerificationCode returns a uniformly random six-digit code in
// [100000, 999999].
func GenerateVerificationCode() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(verificationCodeSpan))
	if err != nil {
		return 0, err
	}
	return verificationCodeMin + int(n.Int64()), nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
