package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	config "github.com/crehm/artflow/configs"
)

// mastodonPlatform posts to a Mastodon instance over the bearer-token REST
// API: upload media via v2/media, then create a status referencing it.
type mastodonPlatform struct {
	instanceURL string
	accessToken string
	client      *http.Client
}

func NewMastodon(cfg config.Mastodon) Platform {
	p := &mastodonPlatform{
		instanceURL: strings.TrimRight(cfg.InstanceURL, "/"),
		accessToken: cfg.AccessToken,
	}
	p.client = bearerClient(cfg.AccessToken, 2*time.Minute)
	return p
}

// bearerClient wraps http with an oauth2 static token source so every request
// carries the Authorization header.
func bearerClient(token string, timeout time.Duration) *http.Client {
	if token == "" {
		return &http.Client{Timeout: timeout}
	}
	client := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	client.Timeout = timeout
	return client
}

func (p *mastodonPlatform) Name() string        { return "mastodon" }
func (p *mastodonPlatform) DisplayName() string { return "Mastodon" }

func (p *mastodonPlatform) Capabilities() Capabilities {
	return Capabilities{SupportsImages: true, SupportsVideo: true, MaxTextLength: 500}
}

func (p *mastodonPlatform) IsConfigured() bool {
	return p.instanceURL != "" && p.accessToken != ""
}

func (p *mastodonPlatform) VerifyCredentials(ctx context.Context) (bool, error) {
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

func (p *mastodonPlatform) PostImage(ctx context.Context, imagePath, text, altText string) PublishResult {
	return p.post(ctx, imagePath, text, altText)
}

func (p *mastodonPlatform) PostVideo(ctx context.Context, videoPath, text string) PublishResult {
	return p.post(ctx, videoPath, text, "")
}

func (p *mastodonPlatform) post(ctx context.Context, mediaPath, text, altText string) PublishResult {
	if !p.IsConfigured() {
		return notConfigured(p.DisplayName())
	}

	mediaID, err := p.uploadMedia(ctx, mediaPath, altText)
	if err != nil {
		return failureResult(err)
	}
	return p.createStatus(ctx, text, mediaID)
}

func (p *mastodonPlatform) uploadMedia(ctx context.Context, mediaPath, description string) (string, error) {
	fields := map[string]string{}
	if description != "" {
		fields["description"] = description
	}

	body, status, err := postMultipartFile(ctx, p.client, p.instanceURL+"/api/v2/media", "file", mediaPath, fields)
	if err != nil {
		return "", err
	}
	// 202 means the attachment is still processing; the returned id is valid
	// for status creation either way.
	if status != http.StatusOK && status != http.StatusAccepted {
		return "", fmt.Errorf("HTTP %d: %s", status, truncateBody(body))
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("non-JSON media response: %s", truncateBody(body))
	}
	if result.ID == "" {
		return "", fmt.Errorf("no media ID returned")
	}
	return result.ID, nil
}

func (p *mastodonPlatform) createStatus(ctx context.Context, text, mediaID string) PublishResult {
	payload := map[string]any{
		"status":     text,
		"media_ids":  []string{mediaID},
		"visibility": "public",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return failureResult(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.instanceURL+"/api/v1/statuses", bytes.NewReader(body))
	if err != nil {
		return failureResult(err)
	}
	req.Header.Set("Content-Type", "application/json")

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
	return successResult(url)
}

func truncateBody(body []byte) string {
	const max = 300
	s := string(body)
	if len(s) > max {
		return s[:max]
	}
	return s
}
