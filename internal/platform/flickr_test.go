package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"

	config "github.com/crehm/artflow/configs"
)

func TestOAuthEscape(t *testing.T) {
	assert.Equal(t, "abcXYZ019-._~", oauthEscape("abcXYZ019-._~"))
	assert.Equal(t, "a%20b", oauthEscape("a b"), "spaces must not become '+'")
	assert.Equal(t, "%26%3D%2B%2F", oauthEscape("&=+/"))
	assert.Equal(t, "caf%C3%A9", oauthEscape("café"))
}

func TestFlickrIsConfigured(t *testing.T) {
	assert.False(t, NewFlickr(config.Flickr{}).IsConfigured())
	assert.False(t, NewFlickr(config.Flickr{APIKey: "k", APISecret: "s"}).IsConfigured())

	full := config.Flickr{APIKey: "k", APISecret: "s", OAuthToken: "t", OAuthSecret: "ts"}
	assert.True(t, NewFlickr(full).IsConfigured())
}
