package platform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticAdapter struct {
	name string
}

func (s *staticAdapter) Name() string               { return s.name }
func (s *staticAdapter) DisplayName() string        { return s.name }
func (s *staticAdapter) Capabilities() Capabilities { return Capabilities{SupportsImages: true} }
func (s *staticAdapter) IsConfigured() bool         { return true }
func (s *staticAdapter) VerifyCredentials(ctx context.Context) (bool, error) {
	return true, nil
}
func (s *staticAdapter) PostImage(ctx context.Context, imagePath, text, altText string) PublishResult {
	return successResult("https://example.test/1")
}
func (s *staticAdapter) PostVideo(ctx context.Context, videoPath, text string) PublishResult {
	return videoUnsupported(s.name)
}

func TestRegistryResolveUnknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Resolve("friendster")
	assert.ErrorIs(t, err, ErrUnknownDestination)
	assert.Contains(t, err.Error(), "friendster")
}

func TestRegistryResolveFreshInstance(t *testing.T) {
	r := NewRegistry()
	built := 0
	r.Register("a", func() Platform {
		built++
		return &staticAdapter{name: "a"}
	})

	first, err := r.Resolve("a")
	require.NoError(t, err)
	second, err := r.Resolve("a")
	require.NoError(t, err)

	assert.Equal(t, 2, built, "factory runs once per resolve")
	assert.NotSame(t, first, second)
}

func TestRegistryNamesPreserveOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"mastodon", "pixelfed", "flickr", "cara"} {
		r.Register(name, func() Platform { return &staticAdapter{name: name} })
	}

	assert.Equal(t, []string{"mastodon", "pixelfed", "flickr", "cara"}, r.Names())

	// Re-registering replaces the factory without duplicating the name.
	r.Register("pixelfed", func() Platform { return &staticAdapter{name: "pixelfed"} })
	assert.Equal(t, []string{"mastodon", "pixelfed", "flickr", "cara"}, r.Names())

	names := r.Names()
	names[0] = "mutated"
	assert.Equal(t, "mastodon", r.Names()[0])
}

func TestVideoUnsupportedIsFailure(t *testing.T) {
	a := &staticAdapter{name: "pixelfed"}

	result := a.PostVideo(context.Background(), "/tmp/clip.mp4", "text")
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "does not support video")
}
