package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/crehm/artflow/configs"
)

// Minimal valid PNG magic followed by padding.
var pngHeader = append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 32)...)

func writeTestAsset(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func newLocalResolver(t *testing.T) AssetResolver {
	t.Helper()
	cfg := config.Config{AssetCacheDir: t.TempDir()}
	return NewAssetResolver(cfg, slog.Default())
}

func TestResolveLocalImage(t *testing.T) {
	r := newLocalResolver(t)
	path := writeTestAsset(t, "painting.png", pngHeader)

	got, kind, err := r.Resolve(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Equal(t, AssetKindImage, kind)
}

func TestResolveRejectsEmptyRef(t *testing.T) {
	r := newLocalResolver(t)

	_, _, err := r.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

func TestResolveRejectsMissingFile(t *testing.T) {
	r := newLocalResolver(t)

	_, _, err := r.Resolve(context.Background(), filepath.Join(t.TempDir(), "gone.png"))
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

func TestResolveRejectsUnknownMediaType(t *testing.T) {
	r := newLocalResolver(t)
	path := writeTestAsset(t, "notes.txt", []byte("just some text"))

	_, _, err := r.Resolve(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported media type")
}

func TestSniffAssetKindVideo(t *testing.T) {
	// ftyp box marks an MP4 container.
	mp4Header := append([]byte{0x00, 0x00, 0x00, 0x18, 0x66, 0x74, 0x79, 0x70, 0x6D, 0x70, 0x34, 0x32}, make([]byte, 32)...)
	path := writeTestAsset(t, "clip.mp4", mp4Header)

	kind, err := sniffAssetKind(path)
	require.NoError(t, err)
	assert.Equal(t, AssetKindVideo, kind)
}
