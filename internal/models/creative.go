package models

import "errors"

type CreativeType string

const (
	CreativeBanner    CreativeType = "banner"
	CreativeVideo     CreativeType = "video"
	CreativeNative    CreativeType = "native"
	CreativeRichMedia CreativeType = "rich_media"
	CreativeAudio     CreativeType = "audio"
)

// CreativeTypes lists every valid creative type.
var CreativeTypes = []CreativeType{
	CreativeBanner, CreativeVideo, CreativeNative,
	CreativeRichMedia, CreativeAudio,
}

// CreativeDimensions is the fixed set of display sizes.  Video
// creatives always use 1920x1080.
var CreativeDimensions = []string{
	"300x250", "728x90", "160x600", "320x50", "970x250", "300x600",
}

// VideoDimensions is the single size used for video creatives.
const VideoDimensions = "1920x1080"

// Creative is a dimension row belonging to exactly one campaign.
type Creative struct {
	ID         string       `json:"creative_id"`
	CampaignID string       `json:"campaign_id"`
	Type       CreativeType `json:"creative_type"`
	Dimensions string       `json:"dimensions"`
	FileSizeKB int          `json:"file_size_kb"`
	ClickURL   string       `json:"click_url"`
}

// Validate checks structural invariants on a single creative row.
func (c *Creative) Validate() error {
	if c.ID == "" {
		return errors.New("creative_id is required")
	}
	if c.CampaignID == "" {
		return errors.New("campaign_id is required")
	}
	if c.FileSizeKB <= 0 {
		return errors.New("file_size_kb must be > 0")
	}
	return nil
}
