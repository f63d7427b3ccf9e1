package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	config "github.com/crehm/artflow/configs"
)

// pixelfedPlatform speaks the Mastodon-compatible v1 API. Pixelfed rejects
// the v2 media endpoint and requires at least one attachment per status.
type pixelfedPlatform struct {
	instanceURL string
	accessToken string
	client      *http.Client
}

func NewPixelfed(cfg config.Pixelfed) Platform {
	return &pixelfedPlatform{
		instanceURL: strings.TrimRight(cfg.InstanceURL, "/"),
		accessToken: cfg.AccessToken,
		client:      bearerClient(cfg.AccessToken, 2*time.Minute),
	}
}

func (p *pixelfedPlatform) Name() string        { return "pixelfed" }
func (p *pixelfedPlatform) DisplayName() string { return "Pixelfed" }

func (p *pixelfedPlatform) Capabilities() Capabilities {
	return Capabilities{SupportsImages: true, SupportsVideo: false, MaxTextLength: 2000}
}

func (p *pixelfedPlatform) IsConfigured() bool {
	return p.instanceURL != "" && p.accessToken != ""
}

func (p *pixelfedPlatform) VerifyCredentials(ctx context.Context) (bool, error) {
	if !p.IsConfigured() {
		return false, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.instanceURL+"/api/v1/accounts/verify_credentials", nil)
	if err != nil {
		return false, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

func (p *pixelfedPlatform) PostImage(ctx context.Context, imagePath, text, altText string) PublishResult {
	if !p.IsConfigured() {
		return notConfigured(p.DisplayName())
	}

	fields := map[string]string{}
	if altText != "" {
		fields["description"] = altText
	}
	body, status, err := postMultipartFile(ctx, p.client, p.instanceURL+"/api/v1/media", "file", imagePath, fields)
	if err != nil {
		return failureResult(err)
	}
	if status != http.StatusOK {
		return failuref("HTTP %d: %s", status, truncateBody(body))
	}

	var media struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &media); err != nil || media.ID == "" {
		return failuref("no media ID in upload response: %s", truncateBody(body))
	}

	return p.createStatus(ctx, text, media.ID)
}

func (p *pixelfedPlatform) PostVideo(ctx context.Context, videoPath, text string) PublishResult {
	return videoUnsupported(p.DisplayName())
}

func (p *pixelfedPlatform) createStatus(ctx context.Context, text, mediaID string) PublishResult {
	payload := map[string]any{
		"status":     text,
		"media_ids":  []string{mediaID},
		"visibility": "public",
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return failureResult(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.instanceURL+"/api/v1/statuses", bytes.NewReader(raw))
	if err != nil {
		return failureResult(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return failuref("connection error: %v", err)
	}
	defer resp.Body.Close()

	var result struct {
		URL string `json:"url"`
		URI string `json:"uri"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return failuref("non-JSON status response (HTTP %d)", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return failuref("HTTP %d creating status", resp.StatusCode)
	}

	url := result.URL
	if url == "" {
		url = result.URI
	}
	if url == "" {
		return failuref("status created but no URL returned")
	}
	return successResult(url)
}
