package models

import "time"

// ===========================================
// IMPRESSION EVENT
// ===========================================

type DeviceType string

const (
	DeviceDesktop DeviceType = "desktop"
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
	DeviceCTV     DeviceType = "CTV"
)

// DeviceTypes lists every valid device type.
var DeviceTypes = []DeviceType{DeviceDesktop, DeviceMobile, DeviceTablet, DeviceCTV}

type AuctionType string

const (
	AuctionOpen   AuctionType = "open"
	AuctionPMP    AuctionType = "PMP"
	AuctionDirect AuctionType = "direct"
)

// AuctionTypes lists every valid auction type.
var AuctionTypes = []AuctionType{AuctionOpen, AuctionPMP, AuctionDirect}

type ImpressionOutcome string

const (
	OutcomeWon  ImpressionOutcome = "won"
	OutcomeLost ImpressionOutcome = "lost"
)

// GeoCountries is the fixed country set sampled by the generator.
var GeoCountries = []string{"US", "CA", "UK", "DE", "FR", "AU", "JP", "BR"}

// Impression is an auction-level fact row.  Prices are on a CPM basis;
// only won impressions generate downstream spend, clicks and
// conversions.
type Impression struct {
	ID           string            `json:"impression_id"`
	Timestamp    time.Time         `json:"timestamp"`
	CampaignID   string            `json:"campaign_id"`
	CreativeID   string            `json:"creative_id"`
	PublisherID  string            `json:"publisher_id"`
	PlacementID  string            `json:"placement_id"`
	DeviceType   DeviceType        `json:"device_type"`
	GeoCountry   string            `json:"geo_country"`
	GeoRegion    string            `json:"geo_region"`
	GeoCity      string            `json:"geo_city"`
	AuctionType  AuctionType       `json:"auction_type"`
	BidRequestID string            `json:"bid_request_id"`
	BidPrice     float64           `json:"bid_price"`
	WinPrice     float64           `json:"win_price"`
	Outcome      ImpressionOutcome `json:"impression_outcome"`
}

// Won reports whether the auction was won.
func (i *Impression) Won() bool { return i.Outcome == OutcomeWon }

// ===========================================
// CLICK EVENT
// ===========================================

// Click traces to exactly one won impression.  Its timestamp is always
// at or after the impression timestamp.
type Click struct {
	ID           string     `json:"click_id"`
	ImpressionID string     `json:"impression_id"`
	Timestamp    time.Time  `json:"timestamp"`
	CampaignID   string     `json:"campaign_id"`
	CreativeID   string     `json:"creative_id"`
	PublisherID  string     `json:"publisher_id"`
	DeviceType   DeviceType `json:"device_type"`
	GeoCountry   string     `json:"geo_country"`
	ClickCost    float64    `json:"click_cost"`
}

// ===========================================
// CONVERSION EVENT
// ===========================================

type ConversionType string

const (
	ConversionPurchase ConversionType = "purchase"
	ConversionSignup   ConversionType = "signup"
	ConversionInstall  ConversionType = "install"
	ConversionLead     ConversionType = "lead"
	ConversionDownload ConversionType = "download"
)

// ConversionTypes lists every valid conversion type.
var ConversionTypes = []ConversionType{
	ConversionPurchase, ConversionSignup, ConversionInstall,
	ConversionLead, ConversionDownload,
}

type AttributionModel string

const (
	AttributionLastClick   AttributionModel = "last_click"
	AttributionFirstClick  AttributionModel = "first_click"
	AttributionLinear      AttributionModel = "linear"
	AttributionViewThrough AttributionModel = "view_through"
)

// Conversion is attributed to exactly one upstream event: ClickID is
// set for click-attributed models, ImpressionID for view-through.
type Conversion struct {
	ID           string           `json:"conversion_id"`
	ClickID      string           `json:"click_id,omitempty"`
	ImpressionID string           `json:"impression_id,omitempty"`
	Timestamp    time.Time        `json:"timestamp"`
	CampaignID   string           `json:"campaign_id"`
	Type         ConversionType   `json:"conversion_type"`
	Value        float64          `json:"conversion_value"`
	Attribution  AttributionModel `json:"attribution_model"`
}
