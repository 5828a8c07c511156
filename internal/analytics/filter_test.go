package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/acmecorp/campaign-pulse/internal/analytics"
	"github.com/acmecorp/campaign-pulse/internal/models"
)

func TestFilterKey_OrderIndependent(t *testing.T) {
	a := analytics.Filter{
		AdvertiserIDs: []string{"ADV_0002", "ADV_0001"},
		DeviceTypes:   []models.DeviceType{models.DeviceMobile, models.DeviceDesktop},
		Statuses:      []models.CampaignStatus{models.CampaignStatusPaused, models.CampaignStatusActive},
	}
	b := analytics.Filter{
		AdvertiserIDs: []string{"ADV_0001", "ADV_0002"},
		DeviceTypes:   []models.DeviceType{models.DeviceDesktop, models.DeviceMobile},
		Statuses:      []models.CampaignStatus{models.CampaignStatusActive, models.CampaignStatusPaused},
	}
	assert.Equal(t, a.Key(), b.Key())
}

func TestFilterKey_DistinguishesFilters(t *testing.T) {
	base := analytics.Filter{}
	byAdv := analytics.Filter{AdvertiserIDs: []string{"ADV_0001"}}
	byDates := analytics.Filter{DateStart: day(2024, 1, 1), DateEnd: day(2024, 1, 31)}

	assert.NotEqual(t, base.Key(), byAdv.Key())
	assert.NotEqual(t, base.Key(), byDates.Key())
	assert.NotEqual(t, byAdv.Key(), byDates.Key())
}

func TestFilterKey_DoesNotMutateInput(t *testing.T) {
	f := analytics.Filter{AdvertiserIDs: []string{"b", "a"}}
	_ = f.Key()
	assert.Equal(t, []string{"b", "a"}, f.AdvertiserIDs)
}
