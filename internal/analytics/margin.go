package analytics

import (
	"sort"

	"github.com/acmecorp/campaign-pulse/internal/models"
)

// margin splits each won impression's revenue into publisher cost and
// retained margin using the configured cost rate, then rolls the split
// up by campaign, device and auction type.
func (e *Engine) margin(v *view) MarginReport {
	return MarginReport{
		ByCampaign: e.marginRows(v, func(i *models.Impression) string { return i.CampaignID }),
		ByDevice:   e.marginRows(v, func(i *models.Impression) string { return string(i.DeviceType) }),
		ByAuction:  e.marginRows(v, func(i *models.Impression) string { return string(i.AuctionType) }),
	}
}

func (e *Engine) marginRows(v *view, key func(*models.Impression) string) []MarginRow {
	type accum struct {
		impressions int64
		revenue     float64
	}
	groups := make(map[string]*accum)
	for _, imp := range v.won {
		k := key(imp)
		a, ok := groups[k]
		if !ok {
			a = &accum{}
			groups[k] = a
		}
		a.impressions++
		a.revenue += imp.WinPrice / 1000
	}

	rows := make([]MarginRow, 0, len(groups))
	for k, a := range groups {
		cost := a.revenue * e.cfg.PublisherCostRate
		margin := a.revenue - cost
		rows = append(rows, MarginRow{
			Key:                 k,
			Impressions:         a.impressions,
			Revenue:             a.revenue,
			PublisherCost:       cost,
			Margin:              margin,
			MarginPct:           safeDiv(margin, a.revenue) * 100,
			MarginPerImpression: safeDiv(margin, float64(a.impressions)),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Revenue != rows[j].Revenue {
			return rows[i].Revenue > rows[j].Revenue
		}
		return rows[i].Key < rows[j].Key
	})
	return rows
}
