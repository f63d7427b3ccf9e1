package platform

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	config "github.com/crehm/artflow/configs"
)

// youtubePlatform uploads videos through the YouTube Data API using a stored
// OAuth refresh token. Image posts are not a thing on YouTube.
type youtubePlatform struct {
	cfg config.YouTube
}

func NewYouTube(cfg config.YouTube) Platform {
	return &youtubePlatform{cfg: cfg}
}

func (p *youtubePlatform) Name() string        { return "youtube" }
func (p *youtubePlatform) DisplayName() string { return "YouTube" }

func (p *youtubePlatform) Capabilities() Capabilities {
	return Capabilities{SupportsImages: false, SupportsVideo: true, MaxTextLength: 5000}
}

func (p *youtubePlatform) IsConfigured() bool {
	return p.cfg.ClientID != "" && p.cfg.ClientSecret != "" && p.cfg.RefreshToken != ""
}

func (p *youtubePlatform) service(ctx context.Context, scope string) (*youtube.Service, error) {
	conf := &oauth2.Config{
		ClientID:     p.cfg.ClientID,
		ClientSecret: p.cfg.ClientSecret,
		Scopes:       []string{scope},
		Endpoint:     google.Endpoint,
	}
	source := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: p.cfg.RefreshToken})
	return youtube.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, source)))
}

func (p *youtubePlatform) VerifyCredentials(ctx context.Context) (bool, error) {
	if !p.IsConfigured() {
		return false, nil
	}
	svc, err := p.service(ctx, youtube.YoutubeReadonlyScope)
	if err != nil {
		return false, err
	}
	resp, err := svc.Channels.List([]string{"id"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return false, err
	}
	return len(resp.Items) > 0, nil
}

func (p *youtubePlatform) PostImage(ctx context.Context, imagePath, text, altText string) PublishResult {
	return imagesUnsupported(p.DisplayName())
}

func (p *youtubePlatform) PostVideo(ctx context.Context, videoPath, text string) PublishResult {
	if !p.IsConfigured() {
		return notConfigured(p.DisplayName())
	}

	svc, err := p.service(ctx, youtube.YoutubeUploadScope)
	if err != nil {
		return failuref("failed to create YouTube client: %v", err)
	}

	file, err := os.Open(videoPath)
	if err != nil {
		return failureResult(err)
	}
	defer file.Close()

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       videoTitle(text),
			Description: text,
			CategoryId:  "22",
		},
		Status: &youtube.VideoStatus{PrivacyStatus: "public"},
	}

	call := svc.Videos.Insert([]string{"snippet", "status"}, video)
	resp, err := call.Media(file).Context(ctx).Do()
	if err != nil {
		return failuref("upload failed: %v", err)
	}
	return successResult(fmt.Sprintf("https://youtu.be/%s", resp.Id))
}

// videoTitle takes the first line of the post text, within YouTube's
// 100-character title limit.
func videoTitle(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		line = "Untitled"
	}
	if len(line) > 100 {
		line = line[:97] + "..."
	}
	return line
}
