package config

import (
	"os"
	"strconv"
	"strings"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
}

type Mastodon struct {
	InstanceURL string
	AccessToken string
}

type Pixelfed struct {
	InstanceURL string
	AccessToken string
}

type Flickr struct {
	APIKey      string
	APISecret   string
	OAuthToken  string
	OAuthSecret string
}

type YouTube struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

type Config struct {
	ListenAddr     string
	DatabasePath   string
	AssetCacheDir  string
	ScreenshotsDir string
	SessionsDir    string

	// Destinations included in the daily rotation run, in posting order.
	RotationDestinations []string
	MaxDescriptionWords  int

	Mastodon Mastodon
	Pixelfed Pixelfed
	Flickr   Flickr
	YouTube  YouTube
	R2       R2

	AdminAPIKey string
	SecretKey   string
	CookieName  string
}

func LoadConfig() *Config {
	return &Config{
		ListenAddr:     getEnv("LISTEN_ADDR", ":3000"),
		DatabasePath:   getEnv("DATABASE_PATH", "artflow.db"),
		AssetCacheDir:  getEnv("ASSET_CACHE_DIR", "data/assets"),
		ScreenshotsDir: getEnv("SCREENSHOTS_DIR", "data/screenshots"),
		SessionsDir:    getEnv("SESSIONS_DIR", "data/sessions"),

		RotationDestinations: getEnvList("ROTATION_DESTINATIONS", "mastodon,pixelfed,flickr,cara"),
		MaxDescriptionWords:  getEnvInt("MAX_DESCRIPTION_WORDS", 75),

		Mastodon: Mastodon{
			InstanceURL: getEnv("MASTODON_INSTANCE_URL", ""),
			AccessToken: getEnv("MASTODON_ACCESS_TOKEN", ""),
		},
		Pixelfed: Pixelfed{
			InstanceURL: getEnv("PIXELFED_INSTANCE_URL", ""),
			AccessToken: getEnv("PIXELFED_ACCESS_TOKEN", ""),
		},
		Flickr: Flickr{
			APIKey:      getEnv("FLICKR_API_KEY", ""),
			APISecret:   getEnv("FLICKR_API_SECRET", ""),
			OAuthToken:  getEnv("FLICKR_OAUTH_TOKEN", ""),
			OAuthSecret: getEnv("FLICKR_OAUTH_SECRET", ""),
		},
		YouTube: YouTube{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RefreshToken: getEnv("GOOGLE_REFRESH_TOKEN", ""),
		},
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
		},

		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
		SecretKey:   getEnv("SECRET_KEY", ""),
		CookieName:  getEnv("COOKIE_NAME", "artflow_session"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	value := getEnv(key, defaultValue)
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
