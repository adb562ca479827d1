package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kedra-data/wrc-harvester/internal/harvest"
)

func TestBlobStorePutGet(t *testing.T) {
	t.Parallel()

	s := NewBlobStore("landing")
	path, err := s.Put(context.Background(), "3_01-01-2024/ADJ-1.pdf", []byte("content"))
	require.NoError(t, err)
	require.Equal(t, "landing/3_01-01-2024/ADJ-1.pdf", path)

	data, err := s.Get(context.Background(), "3_01-01-2024/ADJ-1.pdf")
	require.NoError(t, err)
	require.Equal(t, []byte("content"), data)
}

func TestBlobStoreGetMissing(t *testing.T) {
	t.Parallel()

	s := NewBlobStore("landing")
	_, err := s.Get(context.Background(), "absent")
	require.ErrorIs(t, err, harvest.ErrObjectNotFound)
}

func TestBlobStorePutOverwrites(t *testing.T) {
	t.Parallel()

	s := NewBlobStore("landing")
	_, err := s.Put(context.Background(), "key", []byte("old"))
	require.NoError(t, err)
	_, err = s.Put(context.Background(), "key", []byte("new"))
	require.NoError(t, err)

	data, err := s.Get(context.Background(), "key")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), data)
	require.Equal(t, 1, s.Len())
}

func TestBlobStoreCopiesData(t *testing.T) {
	t.Parallel()

	s := NewBlobStore("landing")
	src := []byte("immutable")
	_, err := s.Put(context.Background(), "key", src)
	require.NoError(t, err)
	src[0] = 'X'

	data, err := s.Get(context.Background(), "key")
	require.NoError(t, err)
	require.Equal(t, []byte("immutable"), data)
}
