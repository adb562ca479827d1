package sha256

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashIsStable(t *testing.T) {
	t.Parallel()

	h := New()
	first, err := h.Hash([]byte("decision text"))
	require.NoError(t, err)
	second, err := h.Hash([]byte("decision text"))
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Len(t, first, 64)
}

func TestHashDistinguishesContent(t *testing.T) {
	t.Parallel()

	h := New()
	a, err := h.Hash([]byte("a"))
	require.NoError(t, err)
	b, err := h.Hash([]byte("b"))
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestHashKnownVector(t *testing.T) {
	t.Parallel()

	h := New()
	got, err := h.Hash([]byte(""))
	require.NoError(t, err)
	require.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", got)
}
