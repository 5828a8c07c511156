package analytics

import (
	"sort"

	"github.com/acmecorp/campaign-pulse/internal/models"
)

// Breakdown dimension names, the keys of Report.Breakdowns.
const (
	DimensionDevice    = "device"
	DimensionGeo       = "geo"
	DimensionAuction   = "auction"
	DimensionIndustry  = "industry"
	DimensionPublisher = "publisher"
)

// Dimensions lists every breakdown dimension the engine computes.
var Dimensions = []string{
	DimensionDevice, DimensionGeo, DimensionAuction,
	DimensionIndustry, DimensionPublisher,
}

// dimensionKeys resolves the group key of each event kind for one
// dimension.  Conversions inherit the key of their parent event.
type dimensionKeys struct {
	impression func(*models.Impression) string
	click      func(v *view, c *models.Click) string
}

func (v *view) industryOf(campaignID string) string {
	c, ok := v.campaignByID[campaignID]
	if !ok {
		return ""
	}
	adv, ok := v.advertisers[c.AdvertiserID]
	if !ok {
		return ""
	}
	return string(adv.Industry)
}

func breakdowns(v *view) map[string][]BreakdownRow {
	dims := map[string]dimensionKeys{
		DimensionDevice: {
			impression: func(i *models.Impression) string { return string(i.DeviceType) },
			click:      func(_ *view, c *models.Click) string { return string(c.DeviceType) },
		},
		DimensionGeo: {
			impression: func(i *models.Impression) string { return i.GeoCountry },
			click:      func(_ *view, c *models.Click) string { return c.GeoCountry },
		},
		DimensionAuction: {
			impression: func(i *models.Impression) string { return string(i.AuctionType) },
			click: func(v *view, c *models.Click) string {
				if imp, ok := v.impressionByID[c.ImpressionID]; ok {
					return string(imp.AuctionType)
				}
				return ""
			},
		},
		DimensionIndustry: {
			impression: func(i *models.Impression) string { return v.industryOf(i.CampaignID) },
			click:      func(v *view, c *models.Click) string { return v.industryOf(c.CampaignID) },
		},
		DimensionPublisher: {
			impression: func(i *models.Impression) string { return i.PublisherID },
			click:      func(_ *view, c *models.Click) string { return c.PublisherID },
		},
	}

	out := make(map[string][]BreakdownRow, len(dims))
	for name, keys := range dims {
		out[name] = breakdown(v, keys)
	}
	return out
}

func breakdown(v *view, keys dimensionKeys) []BreakdownRow {
	groups := make(map[string]*funnel)
	at := func(key string) *funnel {
		fn, ok := groups[key]
		if !ok {
			fn = &funnel{}
			groups[key] = fn
		}
		return fn
	}

	for _, imp := range v.won {
		at(keys.impression(imp)).addImpression(imp)
	}
	for _, clk := range v.clicks {
		at(keys.click(v, clk)).addClick()
	}
	for _, conv := range v.conversions {
		key := ""
		if conv.ClickID != "" {
			if clk, ok := v.clickByID[conv.ClickID]; ok {
				key = keys.click(v, clk)
			}
		} else if imp := v.conversionImpression(conv); imp != nil {
			key = keys.impression(imp)
		}
		at(key).addConversion(conv)
	}

	rows := make([]BreakdownRow, 0, len(groups))
	for key, fn := range groups {
		rows = append(rows, BreakdownRow{
			Key:             key,
			Impressions:     fn.impressions,
			Clicks:          fn.clicks,
			Conversions:     fn.conversions,
			Spend:           fn.spend,
			ConversionValue: fn.value,
			CTR:             fn.ctr(),
			CPC:             fn.cpc(),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Spend != rows[j].Spend {
			return rows[i].Spend > rows[j].Spend
		}
		return rows[i].Key < rows[j].Key
	})
	return rows
}
