package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// NewResetCode returns a six-digit numeric one-time code in [100000,999999]
// drawn from crypto/rand. The code is returned as a string so leading
// digits are never dropped downstream.
func NewResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
