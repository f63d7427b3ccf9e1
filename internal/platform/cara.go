package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

const caraBaseURL = "https://cara.app"

// caraPlatform is the browser-session family: Cara has no public API, so the
// adapter replays a session captured by a manual browser login. The login
// helper writes the cookie file and diagnostic screenshots; the session
// tracker warns before the session ages out.
type caraPlatform struct {
	sessionFile string
	client      *http.Client
}

type caraCookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path"`
}

func NewCara(sessionsDir string) Platform {
	return &caraPlatform{
		sessionFile: filepath.Join(sessionsDir, "cara_session.json"),
	}
}

func (p *caraPlatform) Name() string        { return "cara" }
func (p *caraPlatform) DisplayName() string { return "Cara" }

func (p *caraPlatform) Capabilities() Capabilities {
	return Capabilities{SupportsImages: true, SupportsVideo: false, MaxTextLength: 2000}
}

// IsConfigured is true once the login helper has captured a session.
func (p *caraPlatform) IsConfigured() bool {
	info, err := os.Stat(p.sessionFile)
	return err == nil && !info.IsDir()
}

func (p *caraPlatform) VerifyCredentials(ctx context.Context) (bool, error) {
	if !p.IsConfigured() {
		return false, nil
	}
	client, err := p.sessionClient()
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, caraBaseURL+"/api/auth/session", nil)
	if err != nil {
		return false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

func (p *caraPlatform) PostImage(ctx context.Context, imagePath, text, altText string) PublishResult {
	if !p.IsConfigured() {
		return failuref("Cara session not set up: run the login helper first")
	}

	client, err := p.sessionClient()
	if err != nil {
		return failureResult(err)
	}

	fields := map[string]string{"caption": text}
	if altText != "" {
		fields["alt_text"] = altText
	}
	body, status, err := postMultipartFile(ctx, client, caraBaseURL+"/api/posts", "image", imagePath, fields)
	if err != nil {
		return failuref("connection error: %v", err)
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return failuref("session rejected (HTTP %d): browser session expired, re-run the login helper", status)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return failuref("HTTP %d: %s", status, truncateBody(body))
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil || result.ID == "" {
		return failuref("post accepted but no post ID returned: %s", truncateBody(body))
	}
	return successResult(fmt.Sprintf("%s/post/%s", caraBaseURL, result.ID))
}

func (p *caraPlatform) PostVideo(ctx context.Context, videoPath, text string) PublishResult {
	return videoUnsupported(p.DisplayName())
}

// sessionClient loads the captured cookies into a jar, built once per
// adapter instance. The registry resolves a fresh adapter for every publish
// attempt, so cookies are still re-read from disk between attempts.
func (p *caraPlatform) sessionClient() (*http.Client, error) {
	if p.client != nil {
		return p.client, nil
	}

	raw, err := os.ReadFile(p.sessionFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	var cookies []caraCookie
	if err := json.Unmarshal(raw, &cookies); err != nil {
		return nil, fmt.Errorf("malformed session file %s: %w", p.sessionFile, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(caraBaseURL)
	if err != nil {
		return nil, err
	}

	httpCookies := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		httpCookies = append(httpCookies, &http.Cookie{
			Name:   c.Name,
			Value:  c.Value,
			Domain: c.Domain,
			Path:   c.Path,
		})
	}
	jar.SetCookies(base, httpCookies)

	p.client = &http.Client{Jar: jar, Timeout: 2 * time.Minute}
	return p.client, nil
}
