package transfer

import "time"

type LoginRequest struct {
	APIKey string `json:"api_key"`
}

type CreateContentRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Subject     string `json:"subject"`
	AssetRef    string `json:"asset_ref"`
}

type SchedulePostRequest struct {
	ContentID     string    `json:"content_id"`
	ContentRef    string    `json:"content_ref"`
	Destination   string    `json:"destination"`
	ScheduledTime time.Time `json:"scheduled_time"`
}

type RecordLoginRequest struct {
	Destination string `json:"destination"`
}

type DestinationInfo struct {
	Name           string `json:"name"`
	DisplayName    string `json:"display_name"`
	Configured     bool   `json:"configured"`
	SupportsImages bool   `json:"supports_images"`
	SupportsVideo  bool   `json:"supports_video"`
	MaxTextLength  int    `json:"max_text_length"`
}

type VerifyResponse struct {
	Destination string `json:"destination"`
	Valid       bool   `json:"valid"`
	Error       string `json:"error,omitempty"`
}
