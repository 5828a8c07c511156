package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acmecorp/campaign-pulse/internal/analytics"
	"github.com/acmecorp/campaign-pulse/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fixtureDataset is a small hand-built snapshot: two advertisers, two
// campaigns, four won impressions, two clicks and one conversion.
func fixtureDataset() *models.Dataset {
	return &models.Dataset{
		ID: "ds-fixture",
		Advertisers: []models.Advertiser{
			{ID: "ADV_0001", Name: "Northwind Retail", Industry: models.IndustryEcommerce, AccountManager: "Dana Reyes"},
			{ID: "ADV_0002", Name: "Globex Motors", Industry: models.IndustryAutomotive, AccountManager: "Lee Park"},
		},
		Campaigns: []models.Campaign{
			{
				ID: "CAMP_000001", AdvertiserID: "ADV_0001", Name: "Retail Spring Push",
				StartDate: day(2024, 1, 1), EndDate: day(2024, 1, 21),
				BudgetTotal: 10000, BudgetDaily: 450,
				Objective: models.ObjectivePerformance, Status: models.CampaignStatusActive,
			},
			{
				ID: "CAMP_000002", AdvertiserID: "ADV_0002", Name: "Motors Awareness",
				StartDate: day(2024, 1, 1), EndDate: day(2024, 1, 31),
				BudgetTotal: 5000, BudgetDaily: 150,
				Objective: models.ObjectiveAwareness, Status: models.CampaignStatusPaused,
			},
		},
		Impressions: []models.Impression{
			{
				ID: "IMP_0000000001", Timestamp: day(2024, 1, 2).Add(10 * time.Hour),
				CampaignID: "CAMP_000001", CreativeID: "CREAT_00000001",
				PublisherID: "PUB_0001", PlacementID: "PLACE_000001",
				DeviceType: models.DeviceDesktop, GeoCountry: "US",
				AuctionType: models.AuctionOpen, BidRequestID: "br-1",
				BidPrice: 8, WinPrice: 4000000, Outcome: models.OutcomeWon,
			},
			{
				ID: "IMP_0000000002", Timestamp: day(2024, 1, 3).Add(12 * time.Hour),
				CampaignID: "CAMP_000001", CreativeID: "CREAT_00000001",
				PublisherID: "PUB_0002", PlacementID: "PLACE_000002",
				DeviceType: models.DeviceMobile, GeoCountry: "CA",
				AuctionType: models.AuctionPMP, BidRequestID: "br-2",
				BidPrice: 6, WinPrice: 2000000, Outcome: models.OutcomeWon,
			},
			{
				ID: "IMP_0000000003", Timestamp: day(2024, 1, 4).Add(9 * time.Hour),
				CampaignID: "CAMP_000002", CreativeID: "CREAT_00000002",
				PublisherID: "PUB_0001", PlacementID: "PLACE_000003",
				DeviceType: models.DeviceDesktop, GeoCountry: "US",
				AuctionType: models.AuctionDirect, BidRequestID: "br-3",
				BidPrice: 5, WinPrice: 1000000, Outcome: models.OutcomeWon,
			},
			{
				ID: "IMP_0000000004", Timestamp: day(2024, 1, 5).Add(15 * time.Hour),
				CampaignID: "CAMP_000002", CreativeID: "CREAT_00000002",
				PublisherID: "PUB_0002", PlacementID: "PLACE_000004",
				DeviceType: models.DeviceCTV, GeoCountry: "UK",
				AuctionType: models.AuctionOpen, BidRequestID: "br-4",
				BidPrice: 7, Outcome: models.OutcomeLost,
			},
		},
		Clicks: []models.Click{
			{
				ID: "CLK_1", ImpressionID: "IMP_0000000001",
				Timestamp: day(2024, 1, 2).Add(10*time.Hour + 5*time.Minute),
				CampaignID: "CAMP_000001", CreativeID: "CREAT_00000001",
				PublisherID: "PUB_0001", DeviceType: models.DeviceDesktop,
				GeoCountry: "US", ClickCost: 4000,
			},
			{
				ID: "CLK_2", ImpressionID: "IMP_0000000002",
				Timestamp: day(2024, 1, 3).Add(13 * time.Hour),
				CampaignID: "CAMP_000001", CreativeID: "CREAT_00000001",
				PublisherID: "PUB_0002", DeviceType: models.DeviceMobile,
				GeoCountry: "CA", ClickCost: 2000,
			},
		},
		Conversions: []models.Conversion{
			{
				ID: "CONV_1", ClickID: "CLK_1",
				Timestamp: day(2024, 1, 2).Add(16 * time.Hour),
				CampaignID: "CAMP_000001", Type: models.ConversionPurchase,
				Value: 250, Attribution: models.AttributionLastClick,
			},
		},
	}
}

func newTestEngine(now time.Time) *analytics.Engine {
	e := analytics.NewEngine(analytics.DefaultConfig(), nil, nil)
	e.Now = func() time.Time { return now }
	return e
}

func TestCompute_Summary(t *testing.T) {
	e := newTestEngine(day(2024, 2, 1))
	rep, err := e.Compute(context.Background(), fixtureDataset(), analytics.Filter{})
	require.NoError(t, err)

	s := rep.Summary
	assert.Equal(t, 2, s.Advertisers)
	assert.Equal(t, 2, s.Campaigns)
	assert.Equal(t, int64(3), s.Impressions, "lost impressions do not count")
	assert.Equal(t, int64(2), s.Clicks)
	assert.Equal(t, int64(1), s.Conversions)
	assert.InDelta(t, 7000, s.Spend, 1e-9)
	assert.InDelta(t, 250, s.ConversionValue, 1e-9)

	assert.InDelta(t, 100.0*2/3, s.CTR, 1e-9)
	assert.InDelta(t, 3500, s.CPC, 1e-9)
	assert.InDelta(t, 7000, s.CPA, 1e-9)
	assert.InDelta(t, 50, s.ConversionRate, 1e-9)

	require.True(t, s.ECPM.Defined)
	assert.InDelta(t, 7000*1000.0/3, s.ECPM.Value, 1e-6)
	require.True(t, s.ROAS.Defined)
	assert.InDelta(t, 250.0/7000, s.ROAS.Value, 1e-9)
}

func TestCompute_EmptyViewRatioPolicy(t *testing.T) {
	e := newTestEngine(day(2024, 2, 1))
	ds := &models.Dataset{ID: "ds-empty"}
	rep, err := e.Compute(context.Background(), ds, analytics.Filter{})
	require.NoError(t, err)

	s := rep.Summary
	assert.Zero(t, s.CTR)
	assert.Zero(t, s.CPC)
	assert.Zero(t, s.CPA)
	assert.Zero(t, s.ConversionRate)
	assert.False(t, s.ECPM.Defined)
	assert.False(t, s.ROAS.Defined)
	assert.Empty(t, rep.Daily)
	assert.Empty(t, rep.Pacing)
}

func TestCompute_CampaignRows(t *testing.T) {
	e := newTestEngine(day(2024, 2, 1))
	rep, err := e.Compute(context.Background(), fixtureDataset(), analytics.Filter{})
	require.NoError(t, err)

	require.Len(t, rep.Campaigns, 2)
	// Sorted by spend, largest first.
	assert.Equal(t, "CAMP_000001", rep.Campaigns[0].CampaignID)
	assert.InDelta(t, 6000, rep.Campaigns[0].Spend, 1e-9)
	assert.Equal(t, "CAMP_000002", rep.Campaigns[1].CampaignID)
	assert.InDelta(t, 1000, rep.Campaigns[1].Spend, 1e-9)
	assert.Zero(t, rep.Campaigns[1].CTR)
	require.True(t, rep.Campaigns[1].ROAS.Defined)
	assert.Zero(t, rep.Campaigns[1].ROAS.Value, "no conversion value against real spend")
}

func TestCompute_FilterByAdvertiser(t *testing.T) {
	e := newTestEngine(day(2024, 2, 1))
	f := analytics.Filter{AdvertiserIDs: []string{"ADV_0001"}}
	rep, err := e.Compute(context.Background(), fixtureDataset(), f)
	require.NoError(t, err)

	assert.Equal(t, 1, rep.Summary.Campaigns)
	assert.Equal(t, int64(2), rep.Summary.Impressions)
	assert.Equal(t, int64(2), rep.Summary.Clicks)
	assert.InDelta(t, 6000, rep.Summary.Spend, 1e-9)
}

func TestCompute_FilterByDevice(t *testing.T) {
	e := newTestEngine(day(2024, 2, 1))
	f := analytics.Filter{DeviceTypes: []models.DeviceType{models.DeviceDesktop}}
	rep, err := e.Compute(context.Background(), fixtureDataset(), f)
	require.NoError(t, err)

	assert.Equal(t, int64(2), rep.Summary.Impressions)
	assert.Equal(t, int64(1), rep.Summary.Clicks)
	// The conversion's parent click was on desktop, so it stays.
	assert.Equal(t, int64(1), rep.Summary.Conversions)
}

func TestCompute_FilterByDateRange(t *testing.T) {
	e := newTestEngine(day(2024, 2, 1))
	f := analytics.Filter{DateStart: day(2024, 1, 3), DateEnd: day(2024, 1, 4)}
	rep, err := e.Compute(context.Background(), fixtureDataset(), f)
	require.NoError(t, err)

	assert.Equal(t, int64(2), rep.Summary.Impressions)
	assert.Equal(t, int64(1), rep.Summary.Clicks)
	assert.Equal(t, int64(0), rep.Summary.Conversions)
}

func TestCompute_FilterByStatus(t *testing.T) {
	e := newTestEngine(day(2024, 2, 1))
	f := analytics.Filter{Statuses: []models.CampaignStatus{models.CampaignStatusPaused}}
	rep, err := e.Compute(context.Background(), fixtureDataset(), f)
	require.NoError(t, err)

	assert.Equal(t, 1, rep.Summary.Campaigns)
	assert.Equal(t, int64(1), rep.Summary.Impressions)
	assert.InDelta(t, 1000, rep.Summary.Spend, 1e-9)
}

func TestCompute_Timeseries(t *testing.T) {
	e := newTestEngine(day(2024, 2, 1))
	rep, err := e.Compute(context.Background(), fixtureDataset(), analytics.Filter{})
	require.NoError(t, err)

	// Events span Jan 2 to Jan 5, one won impression per day for the
	// first three days.
	require.Len(t, rep.Daily, 3)
	assert.Equal(t, day(2024, 1, 2), rep.Daily[0].Bucket)
	assert.Equal(t, int64(1), rep.Daily[0].Impressions)
	assert.Equal(t, int64(1), rep.Daily[0].Clicks)
	assert.Equal(t, int64(1), rep.Daily[0].Conversions)
	assert.InDelta(t, 4000000, rep.Daily[0].AvgCPM, 1e-6)

	// All of Jan 2-5 falls in the same ISO week starting Monday Jan 1.
	require.Len(t, rep.Weekly, 1)
	assert.Equal(t, day(2024, 1, 1), rep.Weekly[0].Bucket)
	assert.Equal(t, int64(3), rep.Weekly[0].Impressions)

	require.Len(t, rep.Monthly, 1)
	assert.Equal(t, day(2024, 1, 1), rep.Monthly[0].Bucket)
	assert.InDelta(t, 7000, rep.Monthly[0].Spend, 1e-9)
}

func TestCompute_Pacing(t *testing.T) {
	// Midpoint of CAMP_000001's 20-day flight: 60% of budget spent at
	// 50% elapsed is outside the 5 point band.
	e := newTestEngine(day(2024, 1, 11))
	rep, err := e.Compute(context.Background(), fixtureDataset(), analytics.Filter{})
	require.NoError(t, err)

	require.Len(t, rep.Pacing, 2)
	p1 := rep.Pacing[0]
	require.Equal(t, "CAMP_000001", p1.CampaignID)
	assert.InDelta(t, 60, p1.PctSpent, 1e-9)
	assert.InDelta(t, 50, p1.PctElapsed, 1e-9)
	assert.Equal(t, analytics.PacingAhead, p1.Pacing)
	require.True(t, p1.ForecastSpend.Defined)
	assert.InDelta(t, 12000, p1.ForecastSpend.Value, 1e-9)
	assert.Equal(t, 2, p1.DaysActive)
	assert.Equal(t, 21, p1.TotalDays)

	// CAMP_000002: 1000/5000 = 20% spent at 33% elapsed.
	p2 := rep.Pacing[1]
	require.Equal(t, "CAMP_000002", p2.CampaignID)
	assert.Equal(t, analytics.PacingBehind, p2.Pacing)
}

func TestCompute_PacingClamps(t *testing.T) {
	ds := fixtureDataset()

	// Before the flight starts: nothing elapsed, forecast undefined.
	e := newTestEngine(day(2023, 12, 1))
	rep, err := e.Compute(context.Background(), ds, analytics.Filter{})
	require.NoError(t, err)
	assert.InDelta(t, 0, rep.Pacing[0].PctElapsed, 1e-9)
	assert.False(t, rep.Pacing[0].ForecastSpend.Defined)

	// Long after the flight ends: fully elapsed.
	e = newTestEngine(day(2025, 6, 1))
	rep, err = e.Compute(context.Background(), ds, analytics.Filter{})
	require.NoError(t, err)
	assert.InDelta(t, 100, rep.Pacing[0].PctElapsed, 1e-9)
}

func TestCompute_OnPaceWithinBand(t *testing.T) {
	ds := fixtureDataset()
	// Shrink spend so CAMP_000001 sits at 52% spent vs 50% elapsed.
	ds.Impressions[0].WinPrice = 3200000
	ds.Impressions[1].WinPrice = 2000000

	e := newTestEngine(day(2024, 1, 11))
	rep, err := e.Compute(context.Background(), ds, analytics.Filter{})
	require.NoError(t, err)

	p := rep.Pacing[0]
	require.Equal(t, "CAMP_000001", p.CampaignID)
	assert.InDelta(t, 52, p.PctSpent, 1e-9)
	assert.Equal(t, analytics.PacingOnPace, p.Pacing)
}

func TestCompute_Margin(t *testing.T) {
	e := newTestEngine(day(2024, 2, 1))
	rep, err := e.Compute(context.Background(), fixtureDataset(), analytics.Filter{})
	require.NoError(t, err)

	require.Len(t, rep.Margin.ByCampaign, 2)
	row := rep.Margin.ByCampaign[0]
	assert.Equal(t, "CAMP_000001", row.Key)
	assert.InDelta(t, 6000, row.Revenue, 1e-9)
	assert.InDelta(t, 4500, row.PublisherCost, 1e-9)
	assert.InDelta(t, 1500, row.Margin, 1e-9)
	assert.InDelta(t, 25, row.MarginPct, 1e-9)
	assert.InDelta(t, 750, row.MarginPerImpression, 1e-9)

	// Margin percent is the cost-rate complement on every grouping.
	for _, r := range rep.Margin.ByDevice {
		assert.InDelta(t, 25, r.MarginPct, 1e-9)
	}
	require.Len(t, rep.Margin.ByAuction, 3)
}

func TestCompute_CachedReportReused(t *testing.T) {
	cache := analytics.NewInMemoryReportCache()
	e := analytics.NewEngine(analytics.DefaultConfig(), cache, nil)
	e.Now = func() time.Time { return day(2024, 2, 1) }

	ds := fixtureDataset()
	first, err := e.Compute(context.Background(), ds, analytics.Filter{})
	require.NoError(t, err)
	second, err := e.Compute(context.Background(), ds, analytics.Filter{})
	require.NoError(t, err)
	assert.Same(t, first, second, "second compute should be served from cache")

	// Different filters compute independently.
	filtered, err := e.Compute(context.Background(), ds, analytics.Filter{AdvertiserIDs: []string{"ADV_0001"}})
	require.NoError(t, err)
	assert.NotSame(t, first, filtered)

	// Invalidation forces recomputation.
	e.Invalidate(context.Background(), ds.ID)
	third, err := e.Compute(context.Background(), ds, analytics.Filter{})
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}
