package models

import (
	"database/sql"
	"time"
)

// ContentItem is one painting in the library. AssetRef is an opaque
// locator ("r2://key" or a local path) resolved by the asset service.
type ContentItem struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Subject     string    `db:"subject" json:"subject"`
	AssetRef    string    `db:"asset_ref" json:"asset_ref"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	// Records keyed by destination name. Populated by the repository
	// when loading with tracking data.
	Records map[string]*PublishRecord `json:"records,omitempty"`
}

// PublishRecord tracks publish state for one content item on one destination.
// PublishCount is monotonically non-decreasing per destination.
type PublishRecord struct {
	ContentID       string       `db:"content_id" json:"content_id"`
	Destination     string       `db:"destination" json:"destination"`
	PublishCount    int          `db:"publish_count" json:"publish_count"`
	LastPublishedAt sql.NullTime `db:"last_published_at" json:"last_published_at"`
	PublishedURL    string       `db:"published_url" json:"published_url"`
}

// PublishCountFor returns the recorded publish count for a destination,
// or zero when the item has never been published there.
func (c *ContentItem) PublishCountFor(destination string) int {
	if rec, ok := c.Records[destination]; ok {
		return rec.PublishCount
	}
	return 0
}
