package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/acmecorp/campaign-pulse/internal/models"
)

// Filter narrows a snapshot before aggregation.  Zero-valued dates and
// empty sets mean "all"; an event is included only when every active
// constraint matches.
type Filter struct {
	DateStart     time.Time               `json:"date_start,omitempty"`
	DateEnd       time.Time               `json:"date_end,omitempty"`
	AdvertiserIDs []string                `json:"advertiser_ids,omitempty"`
	DeviceTypes   []models.DeviceType     `json:"device_types,omitempty"`
	Statuses      []models.CampaignStatus `json:"statuses,omitempty"`
}

// Key returns a canonical string for cache keying: equal filters always
// produce equal keys regardless of slice order.
func (f Filter) Key() string {
	advs := append([]string(nil), f.AdvertiserIDs...)
	sort.Strings(advs)

	devs := make([]string, 0, len(f.DeviceTypes))
	for _, d := range f.DeviceTypes {
		devs = append(devs, string(d))
	}
	sort.Strings(devs)

	sts := make([]string, 0, len(f.Statuses))
	for _, s := range f.Statuses {
		sts = append(sts, string(s))
	}
	sort.Strings(sts)

	var b strings.Builder
	if !f.DateStart.IsZero() {
		b.WriteString(f.DateStart.Format("2006-01-02"))
	}
	b.WriteByte('|')
	if !f.DateEnd.IsZero() {
		b.WriteString(f.DateEnd.Format("2006-01-02"))
	}
	b.WriteByte('|')
	b.WriteString(strings.Join(advs, ","))
	b.WriteByte('|')
	b.WriteString(strings.Join(devs, ","))
	b.WriteByte('|')
	b.WriteString(strings.Join(sts, ","))
	return b.String()
}

// matchDate checks the [DateStart, DateEnd] range; the end date is
// inclusive through end of day.
func (f Filter) matchDate(ts time.Time) bool {
	if !f.DateStart.IsZero() && ts.Before(f.DateStart) {
		return false
	}
	if !f.DateEnd.IsZero() && !ts.Before(f.DateEnd.AddDate(0, 0, 1)) {
		return false
	}
	return true
}

func (f Filter) matchDevice(d models.DeviceType) bool {
	if len(f.DeviceTypes) == 0 {
		return true
	}
	for _, want := range f.DeviceTypes {
		if want == d {
			return true
		}
	}
	return false
}

func (f Filter) matchAdvertiser(id string) bool {
	if len(f.AdvertiserIDs) == 0 {
		return true
	}
	for _, want := range f.AdvertiserIDs {
		if want == id {
			return true
		}
	}
	return false
}

func (f Filter) matchStatus(s models.CampaignStatus) bool {
	if len(f.Statuses) == 0 {
		return true
	}
	for _, want := range f.Statuses {
		if want == s {
			return true
		}
	}
	return false
}
