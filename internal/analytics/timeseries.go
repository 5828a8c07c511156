package analytics

import (
	"sort"
	"time"
)

type bucketFunc func(time.Time) time.Time

func bucketDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// bucketWeek snaps to the Monday of the ISO week.
func bucketWeek(t time.Time) time.Time {
	day := bucketDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func bucketMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func trend(v *view, bucket bucketFunc) []TrendPoint {
	type accum struct {
		funnel
		winPriceSum float64
	}
	buckets := make(map[time.Time]*accum)
	at := func(ts time.Time) *accum {
		key := bucket(ts)
		a, ok := buckets[key]
		if !ok {
			a = &accum{}
			buckets[key] = a
		}
		return a
	}

	for _, imp := range v.won {
		a := at(imp.Timestamp)
		a.addImpression(imp)
		a.winPriceSum += imp.WinPrice
	}
	for _, clk := range v.clicks {
		at(clk.Timestamp).addClick()
	}
	for _, conv := range v.conversions {
		at(conv.Timestamp).addConversion(conv)
	}

	points := make([]TrendPoint, 0, len(buckets))
	for key, a := range buckets {
		points = append(points, TrendPoint{
			Bucket:          key,
			Impressions:     a.impressions,
			Clicks:          a.clicks,
			Conversions:     a.conversions,
			Spend:           a.spend,
			ConversionValue: a.value,
			CTR:             a.ctr(),
			CPC:             a.cpc(),
			CPA:             a.cpa(),
			AvgCPM:          safeDiv(a.winPriceSum, float64(a.impressions)),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Bucket.Before(points[j].Bucket) })
	return points
}
