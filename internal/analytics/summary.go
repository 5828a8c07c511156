package analytics

import (
	"sort"

	"github.com/acmecorp/campaign-pulse/internal/models"
)

// funnel accumulates the shared counters every metric family derives
// its rates from.
type funnel struct {
	impressions int64
	clicks      int64
	conversions int64
	spend       float64
	value       float64
}

func (f *funnel) addImpression(imp *models.Impression) {
	f.impressions++
	f.spend += imp.WinPrice / 1000
}

func (f *funnel) addClick() { f.clicks++ }

func (f *funnel) addConversion(c *models.Conversion) {
	f.conversions++
	f.value += c.Value
}

func (f *funnel) ctr() float64 { return safeDiv(float64(f.clicks), float64(f.impressions)) * 100 }
func (f *funnel) cpc() float64 { return safeDiv(f.spend, float64(f.clicks)) }
func (f *funnel) cpa() float64 { return safeDiv(f.spend, float64(f.conversions)) }
func (f *funnel) conversionRate() float64 {
	return safeDiv(float64(f.conversions), float64(f.clicks)) * 100
}
func (f *funnel) ecpm() Ratio { return ratio(f.spend*1000, float64(f.impressions)) }
func (f *funnel) roas() Ratio { return ratio(f.value, f.spend) }

func summarize(v *view) Summary {
	var fn funnel
	for _, imp := range v.won {
		fn.addImpression(imp)
	}
	for range v.clicks {
		fn.addClick()
	}
	for _, conv := range v.conversions {
		fn.addConversion(conv)
	}

	advs := make(map[string]struct{})
	for _, c := range v.campaigns {
		advs[c.AdvertiserID] = struct{}{}
	}

	return Summary{
		Advertisers:     len(advs),
		Campaigns:       len(v.campaigns),
		Impressions:     fn.impressions,
		Clicks:          fn.clicks,
		Conversions:     fn.conversions,
		Spend:           fn.spend,
		ConversionValue: fn.value,
		CTR:             fn.ctr(),
		CPC:             fn.cpc(),
		CPA:             fn.cpa(),
		ConversionRate:  fn.conversionRate(),
		ECPM:            fn.ecpm(),
		ROAS:            fn.roas(),
	}
}

func campaignPerformance(v *view) []CampaignPerformance {
	byCampaign := make(map[string]*funnel, len(v.campaigns))
	for _, c := range v.campaigns {
		byCampaign[c.ID] = &funnel{}
	}
	for _, imp := range v.won {
		byCampaign[imp.CampaignID].addImpression(imp)
	}
	for _, clk := range v.clicks {
		byCampaign[clk.CampaignID].addClick()
	}
	for _, conv := range v.conversions {
		byCampaign[conv.CampaignID].addConversion(conv)
	}

	rows := make([]CampaignPerformance, 0, len(v.campaigns))
	for _, c := range v.campaigns {
		fn := byCampaign[c.ID]
		rows = append(rows, CampaignPerformance{
			CampaignID:      c.ID,
			CampaignName:    c.Name,
			AdvertiserID:    c.AdvertiserID,
			Objective:       c.Objective,
			Status:          c.Status,
			Impressions:     fn.impressions,
			Clicks:          fn.clicks,
			Conversions:     fn.conversions,
			Spend:           fn.spend,
			ConversionValue: fn.value,
			CTR:             fn.ctr(),
			CPC:             fn.cpc(),
			CPA:             fn.cpa(),
			ConversionRate:  fn.conversionRate(),
			ECPM:            fn.ecpm(),
			ROAS:            fn.roas(),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Spend != rows[j].Spend {
			return rows[i].Spend > rows[j].Spend
		}
		return rows[i].CampaignID < rows[j].CampaignID
	})
	return rows
}
