package platform

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	config "github.com/crehm/artflow/configs"
)

const (
	flickrUploadURL = "https://up.flickr.com/services/upload/"
	flickrRestURL   = "https://www.flickr.com/services/rest/"
)

// flickrPlatform posts photos over Flickr's OAuth 1.0a signed REST API.
// Every request carries an HMAC-SHA1 signature over the sorted parameter set.
type flickrPlatform struct {
	apiKey      string
	apiSecret   string
	oauthToken  string
	oauthSecret string
	client      *http.Client
}

func NewFlickr(cfg config.Flickr) Platform {
	return &flickrPlatform{
		apiKey:      cfg.APIKey,
		apiSecret:   cfg.APISecret,
		oauthToken:  cfg.OAuthToken,
		oauthSecret: cfg.OAuthSecret,
		client:      &http.Client{Timeout: 2 * time.Minute},
	}
}

func (p *flickrPlatform) Name() string        { return "flickr" }
func (p *flickrPlatform) DisplayName() string { return "Flickr" }

func (p *flickrPlatform) Capabilities() Capabilities {
	return Capabilities{SupportsImages: true, SupportsVideo: false, MaxTextLength: 63206}
}

func (p *flickrPlatform) IsConfigured() bool {
	return p.apiKey != "" && p.apiSecret != "" && p.oauthToken != "" && p.oauthSecret != ""
}

func (p *flickrPlatform) VerifyCredentials(ctx context.Context) (bool, error) {
	if !p.IsConfigured() {
		return false, nil
	}
	_, err := p.testLogin(ctx)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *flickrPlatform) PostImage(ctx context.Context, imagePath, text, altText string) PublishResult {
	if !p.IsConfigured() {
		return notConfigured(p.DisplayName())
	}

	title := altText
	if title == "" {
		base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
		title = strings.ReplaceAll(base, "_", " ")
	}

	photoID, err := p.uploadPhoto(ctx, imagePath, title, text)
	if err != nil {
		return failureResult(err)
	}
	if photoID == "" {
		return failuref("upload succeeded but no photo ID returned")
	}

	// The photo page needs the account NSID; fall back to the "me" alias when
	// the lookup fails so the result still points somewhere useful.
	nsid, err := p.testLogin(ctx)
	if err != nil || nsid == "" {
		nsid = "me"
	}
	return successResult(fmt.Sprintf("https://www.flickr.com/photos/%s/%s", nsid, photoID))
}

func (p *flickrPlatform) PostVideo(ctx context.Context, videoPath, text string) PublishResult {
	return videoUnsupported(p.DisplayName())
}

// testLogin calls flickr.test.login and returns the account NSID.
func (p *flickrPlatform) testLogin(ctx context.Context) (string, error) {
	params := map[string]string{
		"method":         "flickr.test.login",
		"format":         "json",
		"nojsoncallback": "1",
	}
	p.addOAuthParams(params)
	params["oauth_signature"] = p.sign(http.MethodGet, flickrRestURL, params)

	query := url.Values{}
	for key, value := range params {
		query.Set(key, value)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, flickrRestURL+"?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result struct {
		Stat string `json:"stat"`
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("non-JSON response from flickr.test.login (HTTP %d)", resp.StatusCode)
	}
	if result.Stat != "ok" {
		return "", fmt.Errorf("flickr.test.login failed: %s", result.Message)
	}
	return result.User.ID, nil
}

func (p *flickrPlatform) uploadPhoto(ctx context.Context, imagePath, title, description string) (string, error) {
	fields := map[string]string{
		"title":       title,
		"description": description,
	}
	p.addOAuthParams(fields)
	// The file part is excluded from the signature base string.
	fields["oauth_signature"] = p.sign(http.MethodPost, flickrUploadURL, fields)

	body, status, err := postMultipartFile(ctx, p.client, flickrUploadURL, "photo", imagePath, fields)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", status, truncateBody(body))
	}

	// Upload responses are XML even when the REST API is asked for JSON.
	var rsp struct {
		Stat    string `xml:"stat,attr"`
		PhotoID string `xml:"photoid"`
		Err     struct {
			Msg string `xml:"msg,attr"`
		} `xml:"err"`
	}
	if err := xml.Unmarshal(body, &rsp); err != nil {
		return "", fmt.Errorf("unparseable upload response: %s", truncateBody(body))
	}
	if rsp.Stat != "ok" {
		return "", fmt.Errorf("flickr upload failed: %s", rsp.Err.Msg)
	}
	return rsp.PhotoID, nil
}

func (p *flickrPlatform) addOAuthParams(params map[string]string) {
	nonce, err := gonanoid.New()
	if err != nil {
		nonce = strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	params["oauth_consumer_key"] = p.apiKey
	params["oauth_token"] = p.oauthToken
	params["oauth_nonce"] = nonce
	params["oauth_timestamp"] = strconv.FormatInt(time.Now().Unix(), 10)
	params["oauth_signature_method"] = "HMAC-SHA1"
	params["oauth_version"] = "1.0"
}

// sign computes the OAuth 1.0a HMAC-SHA1 signature over the sorted,
// percent-encoded parameter set.
func (p *flickrPlatform) sign(method, requestURL string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, oauthEscape(key)+"="+oauthEscape(params[key]))
	}
	base := strings.Join([]string{
		method,
		oauthEscape(requestURL),
		oauthEscape(strings.Join(pairs, "&")),
	}, "&")

	key := oauthEscape(p.apiSecret) + "&" + oauthEscape(p.oauthSecret)
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// oauthEscape percent-encodes per RFC 3986: only ALPHA / DIGIT / "-" / "." /
// "_" / "~" pass through. url.QueryEscape is close but turns spaces into "+",
// which breaks the signature base string.
func oauthEscape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '-', c == '.', c == '_', c == '~':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}
