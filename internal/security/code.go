package security

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// NewNumericCode returns a random decimal string of exactly n digits.
// Leading zeros are allowed; the value is drawn from crypto/rand.
func NewNumericCode(n int) (string, error) {
	if n <= 0 {
		n = 6
	}
	max := big.NewInt(10)
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		digit, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + digit.Int64()))
	}
	return sb.String(), nil
}

// NewCertificateCode derives a 16-character uppercase hex code from a random
// UUID, matching the certificate code format users already hold.
func NewCertificateCode() string {
	id := uuid.New()
	return strings.ToUpper(hex.EncodeToString(id[:])[:16])
}
