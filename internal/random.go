package internal

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
)

const (
	// MinCodeDigits is the smallest supported code length.
	MinCodeDigits = 4
	// MaxCodeDigits is the largest code length that still fits an int64 range draw.
	MaxCodeDigits = 10
)

// NewCode returns a decimal code of exactly digits digits, drawn uniformly
// from [10^(digits-1), 10^digits - 1]. rand.Int rejects and redraws internally,
// so the result carries no modulo-reduction bias.
func NewCode(digits int) (string, error) {
	if digits < MinCodeDigits || digits > MaxCodeDigits {
		return "", errors.New("invalid code digits")
	}

	lower := int64(1)
	for i := 1; i < digits; i++ {
		lower *= 10
	}
	span := big.NewInt(lower * 9)

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", err
	}

	code := strconv.FormatInt(lower+n.Int64(), 10)
	if len(code) != digits {
		return "", errors.New("invalid code generation length")
	}
	return code, nil
}
