package models

import "time"

// Dataset is one consistent snapshot of the five generated tables.
// Snapshots are immutable after generation: consumers share them
// read-only, and a regeneration run always produces a fresh Dataset.
type Dataset struct {
	// ID identifies the snapshot for caching.  It is drawn from the
	// seeded random source, so identical (seed, params) runs produce
	// the same ID.
	ID           string    `json:"dataset_id"`
	Seed         int64     `json:"seed"`
	GeneratedAt  time.Time `json:"generated_at"`
	HorizonStart time.Time `json:"horizon_start"`
	HorizonEnd   time.Time `json:"horizon_end"`

	Advertisers []Advertiser `json:"advertisers"`
	Campaigns   []Campaign   `json:"campaigns"`
	Creatives   []Creative   `json:"creatives"`
	Impressions []Impression `json:"impressions"`
	Clicks      []Click      `json:"clicks"`
	Conversions []Conversion `json:"conversions"`
}

// TableCounts summarizes row counts per table.
type TableCounts struct {
	Advertisers int `json:"advertisers"`
	Campaigns   int `json:"campaigns"`
	Creatives   int `json:"creatives"`
	Impressions int `json:"impressions"`
	Clicks      int `json:"clicks"`
	Conversions int `json:"conversions"`
}

// Counts returns the row count of every table.
func (d *Dataset) Counts() TableCounts {
	return TableCounts{
		Advertisers: len(d.Advertisers),
		Campaigns:   len(d.Campaigns),
		Creatives:   len(d.Creatives),
		Impressions: len(d.Impressions),
		Clicks:      len(d.Clicks),
		Conversions: len(d.Conversions),
	}
}

// AdvertiserByID builds a lookup map over the advertiser table.
func (d *Dataset) AdvertiserByID() map[string]*Advertiser {
	m := make(map[string]*Advertiser, len(d.Advertisers))
	for i := range d.Advertisers {
		m[d.Advertisers[i].ID] = &d.Advertisers[i]
	}
	return m
}

// CampaignByID builds a lookup map over the campaign table.
func (d *Dataset) CampaignByID() map[string]*Campaign {
	m := make(map[string]*Campaign, len(d.Campaigns))
	for i := range d.Campaigns {
		m[d.Campaigns[i].ID] = &d.Campaigns[i]
	}
	return m
}
