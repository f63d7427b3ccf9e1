package platform

import "context"

// upscrolledPlatform is a placeholder: UpScrolled has no public API yet. It
// stays registered so operators see it in destination listings, but it never
// reports itself configured.
type upscrolledPlatform struct{}

func NewUpScrolled() Platform {
	return &upscrolledPlatform{}
}

func (p *upscrolledPlatform) Name() string        { return "upscrolled" }
func (p *upscrolledPlatform) DisplayName() string { return "UpScrolled" }

func (p *upscrolledPlatform) Capabilities() Capabilities {
	return Capabilities{SupportsImages: true, SupportsVideo: true, MaxTextLength: 2200}
}

func (p *upscrolledPlatform) IsConfigured() bool { return false }

func (p *upscrolledPlatform) VerifyCredentials(ctx context.Context) (bool, error) {
	return false, nil
}

func (p *upscrolledPlatform) PostImage(ctx context.Context, imagePath, text, altText string) PublishResult {
	return failuref("UpScrolled integration not available: no public API")
}

func (p *upscrolledPlatform) PostVideo(ctx context.Context, videoPath, text string) PublishResult {
	return failuref("UpScrolled integration not available: no public API")
}
