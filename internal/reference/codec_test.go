package reference

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	refs := []string{"SO001", "wompi-test-transaction", "MZQ3X2DE2SMX", "a"}

	for _, ref := range refs {
		encoded := Encode(ref)

		require.True(t, strings.HasPrefix(encoded, ref+"_"), "encoded %q must keep %q as prefix", encoded, ref)

		decoded, err := Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, ref, decoded)
	}
}

func TestEncodeSuffixFormat(t *testing.T) {
	encoded := Encode("SO001")

	_, suffix, found := strings.Cut(encoded, "_")
	require.True(t, found)
	assert.Len(t, suffix, 6)
	for _, c := range suffix {
		assert.True(t, c >= '0' && c <= '9', "suffix %q must be numeric", suffix)
	}
}

func TestDecode(t *testing.T) {
	t.Run("NoUnderscoreIsNoOp", func(t *testing.T) {
		decoded, err := Decode("SO001")
		assert.NoError(t, err)
		assert.Equal(t, "SO001", decoded)
	})

	t.Run("SplitsOnFirstUnderscore", func(t *testing.T) {
		decoded, err := Decode("SO001_123_456")
		assert.NoError(t, err)
		assert.Equal(t, "SO001", decoded)
	})

	t.Run("Idempotent", func(t *testing.T) {
		once, err := Decode("ref_123")
		require.NoError(t, err)
		twice, err := Decode(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	})

	t.Run("EmptyInput", func(t *testing.T) {
		_, err := Decode("")
		assert.ErrorIs(t, err, ErrMalformedReference)
	})
}
