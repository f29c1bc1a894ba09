package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStorage(root, "/media")
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "branding/logo.png", []byte("png")))
	data, err := s.Open(ctx, "branding/logo.png")
	require.NoError(t, err)
	require.Equal(t, "png", string(data))
	require.Equal(t, "/media/branding/logo.png", s.URL("branding/logo.png"))

	require.NoError(t, s.Delete(ctx, "branding/logo.png"))
	require.NoError(t, s.Delete(ctx, "branding/logo.png"))
	_, err = os.Stat(filepath.Join(root, "branding", "logo.png"))
	require.True(t, os.IsNotExist(err))
}

func TestLocalStorageStaysInRoot(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStorage(root, "/media/")
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "../../escape.txt", []byte("x")))
	_, err := os.Stat(filepath.Join(root, "escape.txt"))
	require.NoError(t, err)

	require.ErrorIs(t, s.Save(ctx, "", nil), ErrInvalidName)
	require.Equal(t, "", s.URL(""))
}
