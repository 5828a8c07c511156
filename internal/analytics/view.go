package analytics

import (
	"github.com/acmecorp/campaign-pulse/internal/models"
)

// view is a filtered projection of a dataset.  Events are pre-filtered
// once so every metric family aggregates over the same rows; the
// by-ID maps cover the whole dataset so conversions can still be
// attributed to parent events that fall outside the filter window.
type view struct {
	filter Filter

	advertisers  map[string]*models.Advertiser
	campaigns    []*models.Campaign
	campaignByID map[string]*models.Campaign

	won         []*models.Impression
	clicks      []*models.Click
	conversions []*models.Conversion

	impressionByID map[string]*models.Impression
	clickByID      map[string]*models.Click
}

func newView(ds *models.Dataset, f Filter) *view {
	v := &view{
		filter:         f,
		advertisers:    make(map[string]*models.Advertiser, len(ds.Advertisers)),
		campaignByID:   make(map[string]*models.Campaign),
		impressionByID: make(map[string]*models.Impression, len(ds.Impressions)),
		clickByID:      make(map[string]*models.Click, len(ds.Clicks)),
	}

	for i := range ds.Advertisers {
		adv := &ds.Advertisers[i]
		v.advertisers[adv.ID] = adv
	}

	for i := range ds.Campaigns {
		c := &ds.Campaigns[i]
		if !f.matchAdvertiser(c.AdvertiserID) || !f.matchStatus(c.Status) {
			continue
		}
		v.campaigns = append(v.campaigns, c)
		v.campaignByID[c.ID] = c
	}

	for i := range ds.Impressions {
		imp := &ds.Impressions[i]
		v.impressionByID[imp.ID] = imp
		if !imp.Won() {
			continue
		}
		if _, ok := v.campaignByID[imp.CampaignID]; !ok {
			continue
		}
		if !f.matchDate(imp.Timestamp) || !f.matchDevice(imp.DeviceType) {
			continue
		}
		v.won = append(v.won, imp)
	}

	for i := range ds.Clicks {
		clk := &ds.Clicks[i]
		v.clickByID[clk.ID] = clk
		if _, ok := v.campaignByID[clk.CampaignID]; !ok {
			continue
		}
		if !f.matchDate(clk.Timestamp) || !f.matchDevice(clk.DeviceType) {
			continue
		}
		v.clicks = append(v.clicks, clk)
	}

	for i := range ds.Conversions {
		conv := &ds.Conversions[i]
		if _, ok := v.campaignByID[conv.CampaignID]; !ok {
			continue
		}
		if !f.matchDate(conv.Timestamp) {
			continue
		}
		if len(f.DeviceTypes) > 0 && !f.matchDevice(v.conversionDevice(conv)) {
			continue
		}
		v.conversions = append(v.conversions, conv)
	}

	return v
}

// conversionDevice resolves the device of the parent click or
// impression.  Conversions carry no device of their own.
func (v *view) conversionDevice(conv *models.Conversion) models.DeviceType {
	if conv.ClickID != "" {
		if clk, ok := v.clickByID[conv.ClickID]; ok {
			return clk.DeviceType
		}
	}
	if conv.ImpressionID != "" {
		if imp, ok := v.impressionByID[conv.ImpressionID]; ok {
			return imp.DeviceType
		}
	}
	return ""
}

// conversionImpression resolves the won impression behind a conversion,
// directly for view-through and via the click for click-attributed.
func (v *view) conversionImpression(conv *models.Conversion) *models.Impression {
	if conv.ImpressionID != "" {
		return v.impressionByID[conv.ImpressionID]
	}
	if clk, ok := v.clickByID[conv.ClickID]; ok {
		return v.impressionByID[clk.ImpressionID]
	}
	return nil
}
