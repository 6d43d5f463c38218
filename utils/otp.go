package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// OTPTTL is how long a password-reset code stays valid.
const OTPTTL = 5 * time.Minute

// GenerateOTP returns a 4-digit one-time passcode.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()+1000), nil
}

// IsOTPExpired reports whether a code issued at createdAt is past its TTL.
// A nil createdAt counts as expired.
func IsOTPExpired(createdAt *time.Time) bool {
	if createdAt == nil {
		return true
	}
	return time.Since(*createdAt) > OTPTTL
}
