package reference

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
)

var ErrMalformedReference = errors.New("reference: empty reference")

// suffixMax bounds the disambiguation suffix. Wompi permanently blocks
// reuse of a reference string, even for failed payments, so every checkout
// attempt needs a fresh suffix.
const suffixMax = 1000000

// Encode appends a random disambiguation suffix to the order reference.
// Only the part left of the first underscore is meaningful to the rest of
// the pipeline, so the suffix can be widened without breaking decoding.
func Encode(orderRef string) string {
	n, err := rand.Int(rand.Reader, big.NewInt(suffixMax))
	if err != nil {
		// fallback: time-based entropy
		n = big.NewInt(time.Now().UnixNano() % suffixMax)
	}
	return fmt.Sprintf("%s_%06d", orderRef, n.Int64())
}

// Decode strips the disambiguation suffix, returning everything left of the
// first underscore. Inputs without an underscore come back unchanged, so
// Decode is safe to apply more than once.
func Decode(providerRef string) (string, error) {
	if providerRef == "" {
		return "", ErrMalformedReference
	}
	orderRef, _, _ := strings.Cut(providerRef, "_")
	return orderRef, nil
}
