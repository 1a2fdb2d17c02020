package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateResetCode generates a 6-digit one-time password reset code.
func GenerateResetCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// Fallback to a timestamp-derived code if crypto/rand fails.
		// This should never happen in practice.
		return fmt.Sprintf("%06d", time.Now().UnixNano()%900000+100000)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}
