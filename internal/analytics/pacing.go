package analytics

import (
	"sort"
	"time"
)

// pacing compares the budget fraction spent against the flight
// fraction elapsed, per campaign.  A campaign is ahead or behind when
// the two diverge by more than the tolerance band.
func (e *Engine) pacing(v *view, asOf time.Time) []CampaignPacing {
	spend := make(map[string]float64, len(v.campaigns))
	days := make(map[string]map[time.Time]struct{}, len(v.campaigns))
	for _, imp := range v.won {
		spend[imp.CampaignID] += imp.WinPrice / 1000
		d, ok := days[imp.CampaignID]
		if !ok {
			d = make(map[time.Time]struct{})
			days[imp.CampaignID] = d
		}
		d[bucketDay(imp.Timestamp)] = struct{}{}
	}

	rows := make([]CampaignPacing, 0, len(v.campaigns))
	for _, c := range v.campaigns {
		elapsed := elapsedFraction(c.StartDate, c.EndDate, asOf)
		pctSpent := safeDiv(spend[c.ID], c.BudgetTotal) * 100
		pctElapsed := elapsed * 100

		status := PacingOnPace
		switch diff := pctSpent - pctElapsed; {
		case diff > e.cfg.PacingTolerancePct:
			status = PacingAhead
		case diff < -e.cfg.PacingTolerancePct:
			status = PacingBehind
		}

		rows = append(rows, CampaignPacing{
			CampaignID:    c.ID,
			CampaignName:  c.Name,
			Status:        c.Status,
			BudgetTotal:   c.BudgetTotal,
			Spend:         spend[c.ID],
			PctSpent:      pctSpent,
			PctElapsed:    pctElapsed,
			DaysActive:    len(days[c.ID]),
			TotalDays:     c.DurationDays(),
			Pacing:        status,
			ForecastSpend: ratio(spend[c.ID], elapsed),
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].CampaignID < rows[j].CampaignID })
	return rows
}

// elapsedFraction clamps to [0, 1]; flights that have not started are
// 0, finished flights are 1.
func elapsedFraction(start, end, asOf time.Time) float64 {
	if !asOf.After(start) {
		return 0
	}
	if !asOf.Before(end) {
		return 1
	}
	total := end.Sub(start)
	if total <= 0 {
		return 1
	}
	return float64(asOf.Sub(start)) / float64(total)
}
