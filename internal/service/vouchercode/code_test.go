package vouchercode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	seen := make(map[string]struct{})
	for range 100 {
		code, err := Generate()
		require.NoError(t, err)
		assert.Len(t, code, Length)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(alphabet, r), "unexpected rune %q in %s", r, code)
		}
		seen[code] = struct{}{}
	}
	// 100 кодов из пространства 36^8 не должны коллизить между собой.
	assert.Len(t, seen, 100)
}
