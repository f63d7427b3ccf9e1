// Package platform defines the capability contract every publishing
// destination satisfies, and the registry that resolves destination names to
// adapter instances. The orchestration layer never branches on how an adapter
// talks to its destination (bearer REST, signed REST, or a replayed browser
// session).
package platform

import (
	"context"
	"errors"
	"fmt"
)

var ErrUnknownDestination = errors.New("unknown destination")

type Capabilities struct {
	SupportsImages bool `json:"supports_images"`
	SupportsVideo  bool `json:"supports_video"`
	MaxTextLength  int  `json:"max_text_length"`
}

// PublishResult is the outcome of a single post attempt. URL is meaningful
// only on success, Error only on failure.
type PublishResult struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Platform interface {
	Name() string
	DisplayName() string
	Capabilities() Capabilities

	// IsConfigured reports whether required credentials or session state are
	// present. It performs no I/O.
	IsConfigured() bool

	// VerifyCredentials performs a live, idempotent who-am-I check. The error
	// carries the destination's own wording and is surfaced verbatim.
	VerifyCredentials(ctx context.Context) (bool, error)

	PostImage(ctx context.Context, imagePath, text, altText string) PublishResult
	PostVideo(ctx context.Context, videoPath, text string) PublishResult
}

func successResult(url string) PublishResult {
	return PublishResult{Success: true, URL: url}
}

func failureResult(err error) PublishResult {
	return PublishResult{Success: false, Error: err.Error()}
}

func failuref(format string, args ...any) PublishResult {
	return PublishResult{Success: false, Error: fmt.Sprintf(format, args...)}
}

// videoUnsupported is the distinguishable failure for destinations without
// video support. Never a silent no-op success.
func videoUnsupported(displayName string) PublishResult {
	return failuref("%s does not support video posts", displayName)
}

func imagesUnsupported(displayName string) PublishResult {
	return failuref("%s does not support image posts", displayName)
}

func notConfigured(displayName string) PublishResult {
	return failuref("%s is not configured", displayName)
}
