// Package generator produces a fabricated but internally consistent
// campaign-delivery dataset: advertisers, campaigns, creatives and the
// impression/click/conversion funnel beneath them.  Generation is a
// single pass, stage by stage, with every random draw flowing through
// one seeded sample.Source so a snapshot is reproducible from its seed.
package generator

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/acmecorp/campaign-pulse/internal/models"
	"github.com/acmecorp/campaign-pulse/internal/sample"
)

const (
	publisherCount = 25
	placementCount = 100
)

// Params controls a generation run.
type Params struct {
	// Seed makes the run reproducible.  Zero draws a time-based seed.
	Seed int64

	HorizonStart time.Time
	HorizonEnd   time.Time

	Advertisers             int
	Campaigns               int
	Impressions             int
	MaxCreativesPerCampaign int

	// Funnel probabilities, all in [0,1].
	WinRate             float64
	BaseCTR             float64
	ClickConversionRate float64
	ViewThroughRate     float64
}

// DefaultParams mirrors the demo dataset: 20 advertisers, 50 campaigns
// and 50K auctions over the 2020-2024 horizon.
func DefaultParams() Params {
	return Params{
		HorizonStart:            time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		HorizonEnd:              time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Advertisers:             20,
		Campaigns:               50,
		Impressions:             50000,
		MaxCreativesPerCampaign: 3,
		WinRate:                 0.25,
		BaseCTR:                 0.015,
		ClickConversionRate:     0.08,
		ViewThroughRate:         0.003,
	}
}

// Validate rejects invalid parameterizations before any table is built.
func (p *Params) Validate() error {
	if p.Advertisers <= 0 {
		return &ConfigError{Param: "advertisers", Value: p.Advertisers, Reason: "must be positive"}
	}
	if p.Campaigns <= 0 {
		return &ConfigError{Param: "campaigns", Value: p.Campaigns, Reason: "must be positive"}
	}
	if p.Impressions <= 0 {
		return &ConfigError{Param: "impressions", Value: p.Impressions, Reason: "must be positive"}
	}
	if p.MaxCreativesPerCampaign <= 0 {
		return &ConfigError{Param: "max_creatives_per_campaign", Value: p.MaxCreativesPerCampaign, Reason: "must be positive"}
	}
	if p.HorizonStart.IsZero() || p.HorizonEnd.IsZero() {
		return &ConfigError{Param: "horizon", Value: "", Reason: "horizon start and end are required"}
	}
	if p.HorizonEnd.Before(p.HorizonStart) {
		return &ConfigError{
			Param:  "horizon",
			Value:  fmt.Sprintf("%s..%s", p.HorizonStart.Format("2006-01-02"), p.HorizonEnd.Format("2006-01-02")),
			Reason: "horizon end precedes start",
		}
	}
	for _, pr := range []struct {
		name  string
		value float64
	}{
		{"win_rate", p.WinRate},
		{"base_ctr", p.BaseCTR},
		{"click_conversion_rate", p.ClickConversionRate},
		{"view_through_rate", p.ViewThroughRate},
	} {
		if pr.value < 0 || pr.value > 1 {
			return &ConfigError{Param: pr.name, Value: pr.value, Reason: "probability must be within [0,1]"}
		}
	}
	return nil
}

// Generate materializes one consistent snapshot.  It either returns
// five internally consistent tables or an error before any table is
// exposed; there is no partial-failure mode.
func Generate(p Params) (*models.Dataset, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	src := sample.NewSource(p.Seed)
	b := &builder{params: p, src: src}

	ds := &models.Dataset{
		ID:           datasetID(p, src.Seed()),
		Seed:         src.Seed(),
		GeneratedAt:  time.Now().UTC(),
		HorizonStart: p.HorizonStart,
		HorizonEnd:   p.HorizonEnd,
	}

	ds.Advertisers = b.advertisers()
	ds.Campaigns = b.campaigns(ds.Advertisers)
	ds.Creatives = b.creatives(ds.Campaigns)
	ds.Impressions = b.impressions(ds.Campaigns, ds.Creatives)
	ds.Clicks = b.clicks(ds.Impressions)
	ds.Conversions = b.conversions(ds.Clicks, ds.Impressions)

	if err := VerifyDataset(ds); err != nil {
		return nil, err
	}
	return ds, nil
}

type builder struct {
	params Params
	src    *sample.Source
}

// datasetNamespace scopes the name-based dataset UUIDs to this service.
var datasetNamespace = uuid.MustParse("7f1c1f7a-02f3-4a9b-a6de-9d5c3c41b8e2")

// datasetID derives the snapshot identity from the effective seed and
// the full parameter set.  Two runs share an ID only when every input
// matches, so report cache entries keyed on the ID can never serve a
// report computed over a differently parameterized snapshot.
func datasetID(p Params, seed int64) string {
	fp := fmt.Sprintf("%d|%s|%s|%d|%d|%d|%d|%v|%v|%v|%v",
		seed,
		p.HorizonStart.UTC().Format("2006-01-02"),
		p.HorizonEnd.UTC().Format("2006-01-02"),
		p.Advertisers, p.Campaigns, p.Impressions, p.MaxCreativesPerCampaign,
		p.WinRate, p.BaseCTR, p.ClickConversionRate, p.ViewThroughRate)
	return uuid.NewSHA1(datasetNamespace, []byte(fp)).String()
}

// statusTable matches the observed status mix of a mature account:
// most campaigns have already completed.
var statusTable = sample.MustTable([]sample.Weighted[models.CampaignStatus]{
	{Item: models.CampaignStatusActive, Weight: 0.3},
	{Item: models.CampaignStatusPaused, Weight: 0.1},
	{Item: models.CampaignStatusCompleted, Weight: 0.6},
})

// budgetSkew conditions spend levels on the campaign objective;
// awareness buys skew larger than retargeting.
var budgetSkew = map[models.CampaignObjective]float64{
	models.ObjectiveAwareness:      1.5,
	models.ObjectiveBrandBuilding:  1.3,
	models.ObjectivePerformance:    1.0,
	models.ObjectiveLeadGeneration: 0.9,
	models.ObjectiveRetargeting:    0.7,
}

// hourTable gives impression timestamps a mild time-of-day shape
// instead of a flat 24h distribution.
var hourTable = func() *sample.Table[int] {
	entries := make([]sample.Weighted[int], 24)
	for h := 0; h < 24; h++ {
		w := 1.0
		switch {
		case h < 7:
			w = 0.5
		case h >= 8 && h <= 18:
			w = 1.3
		}
		entries[h] = sample.Weighted[int]{Item: h, Weight: w}
	}
	return sample.MustTable(entries)
}()

// ctrDeviceWeight and ctrAuctionWeight condition click probability on
// the impression's device and auction type.
var ctrDeviceWeight = map[models.DeviceType]float64{
	models.DeviceDesktop: 1.0,
	models.DeviceMobile:  1.3,
	models.DeviceTablet:  0.9,
	models.DeviceCTV:     0.35,
}

var ctrAuctionWeight = map[models.AuctionType]float64{
	models.AuctionOpen:   1.0,
	models.AuctionPMP:    1.2,
	models.AuctionDirect: 1.4,
}

var attributionTable = sample.MustTable([]sample.Weighted[models.AttributionModel]{
	{Item: models.AttributionLastClick, Weight: 0.7},
	{Item: models.AttributionFirstClick, Weight: 0.2},
	{Item: models.AttributionLinear, Weight: 0.1},
})

// valueProfile describes the monetary-value distribution per
// conversion type: probability of a non-zero value and its range.
type valueProfile struct {
	pMonetary float64
	lo, hi    float64
}

var valueProfiles = map[models.ConversionType]valueProfile{
	models.ConversionPurchase: {0.95, 50, 500},
	models.ConversionSignup:   {0.30, 10, 80},
	models.ConversionInstall:  {0.40, 5, 60},
	models.ConversionLead:     {0.60, 20, 200},
	models.ConversionDownload: {0.30, 5, 40},
}

func (b *builder) advertisers() []models.Advertiser {
	out := make([]models.Advertiser, 0, b.params.Advertisers)
	for i := 1; i <= b.params.Advertisers; i++ {
		out = append(out, models.Advertiser{
			ID:             fmt.Sprintf("ADV_%04d", i),
			Name:           companyName(b.src),
			Industry:       sample.Pick(b.src, models.Industries),
			AccountManager: personName(b.src),
		})
	}
	return out
}

func (b *builder) campaigns(advertisers []models.Advertiser) []models.Campaign {
	horizonDays := int(b.params.HorizonEnd.Sub(b.params.HorizonStart).Hours() / 24)

	out := make([]models.Campaign, 0, b.params.Campaigns)
	for i := 1; i <= b.params.Campaigns; i++ {
		adv := sample.Pick(b.src, advertisers)

		startOffset := b.src.IntBetween(0, horizonDays)
		endOffset := b.src.IntBetween(startOffset, horizonDays)
		start := b.params.HorizonStart.AddDate(0, 0, startOffset)
		end := b.params.HorizonStart.AddDate(0, 0, endOffset)
		duration := endOffset - startOffset + 1

		objective := sample.Pick(b.src, models.CampaignObjectives)
		dailyBase := b.src.FloatBetween(100, 10000) * budgetSkew[objective]
		total := round2(dailyBase * float64(duration))
		// Jitter the daily cap downward only, preserving
		// budget_daily <= budget_total / duration.
		daily := floor2(total / float64(duration) * b.src.FloatBetween(0.85, 1.0))

		out = append(out, models.Campaign{
			ID:           fmt.Sprintf("CAMP_%06d", i),
			AdvertiserID: adv.ID,
			Name:         adv.Name + " - " + campaignPhrase(b.src),
			StartDate:    start,
			EndDate:      end,
			BudgetTotal:  total,
			BudgetDaily:  daily,
			Objective:    objective,
			Status:       statusTable.Pick(b.src),
		})
	}
	return out
}

func (b *builder) creatives(campaigns []models.Campaign) []models.Creative {
	out := make([]models.Creative, 0, len(campaigns)*2)
	for _, c := range campaigns {
		n := b.src.IntBetween(1, b.params.MaxCreativesPerCampaign)
		for j := 0; j < n; j++ {
			ct := sample.Pick(b.src, models.CreativeTypes)
			dims := models.VideoDimensions
			if ct != models.CreativeVideo {
				dims = sample.Pick(b.src, models.CreativeDimensions)
			}
			out = append(out, models.Creative{
				ID:         fmt.Sprintf("CREAT_%08d", len(out)+1),
				CampaignID: c.ID,
				Type:       ct,
				Dimensions: dims,
				FileSizeKB: b.src.IntBetween(50, 2000),
				ClickURL:   clickURL(b.src, c.ID),
			})
		}
	}
	return out
}

func (b *builder) impressions(campaigns []models.Campaign, creatives []models.Creative) []models.Impression {
	creativesByCampaign := make(map[string][]models.Creative, len(campaigns))
	for _, cr := range creatives {
		creativesByCampaign[cr.CampaignID] = append(creativesByCampaign[cr.CampaignID], cr)
	}

	// Weight campaign selection by total budget so delivered volume
	// roughly tracks what each campaign has to spend.
	entries := make([]sample.Weighted[int], len(campaigns))
	for i, c := range campaigns {
		entries[i] = sample.Weighted[int]{Item: i, Weight: c.BudgetTotal}
	}
	campaignTable := sample.MustTable(entries)

	out := make([]models.Impression, 0, b.params.Impressions)
	for i := 0; i < b.params.Impressions; i++ {
		c := &campaigns[campaignTable.Pick(b.src)]
		cr := sample.Pick(b.src, creativesByCampaign[c.ID])

		ts := b.eventTime(c)
		country := sample.Pick(b.src, models.GeoCountries)

		bid := round2(b.src.FloatBetween(0.50, 15.00))

		// Lost auctions carry no clearing price.
		var win float64
		outcome := models.OutcomeLost
		if b.src.Bool(b.params.WinRate) {
			outcome = models.OutcomeWon
			win = round2(bid * b.src.FloatBetween(0.70, 0.95))
		}

		out = append(out, models.Impression{
			ID:           fmt.Sprintf("IMP_%010d", len(out)+1),
			Timestamp:    ts,
			CampaignID:   c.ID,
			CreativeID:   cr.ID,
			PublisherID:  fmt.Sprintf("PUB_%04d", b.src.IntBetween(1, publisherCount)),
			PlacementID:  fmt.Sprintf("PLACE_%06d", b.src.IntBetween(1, placementCount)),
			DeviceType:   sample.Pick(b.src, models.DeviceTypes),
			GeoCountry:   country,
			GeoRegion:    fmt.Sprintf("%s_Region_%d", country, b.src.IntBetween(1, 10)),
			GeoCity:      fmt.Sprintf("%s_City_%d", country, b.src.IntBetween(1, 50)),
			AuctionType:  sample.Pick(b.src, models.AuctionTypes),
			BidRequestID: b.src.UUID(),
			BidPrice:     bid,
			WinPrice:     win,
			Outcome:      outcome,
		})
	}
	return out
}

// eventTime samples a timestamp inside the campaign flight with a mild
// hour-of-day weighting.
func (b *builder) eventTime(c *models.Campaign) time.Time {
	day := b.src.IntBetween(0, c.DurationDays()-1)
	hour := hourTable.Pick(b.src)
	return c.StartDate.AddDate(0, 0, day).
		Add(time.Duration(hour)*time.Hour +
			time.Duration(b.src.Intn(60))*time.Minute +
			time.Duration(b.src.Intn(60))*time.Second)
}

func (b *builder) clicks(impressions []models.Impression) []models.Click {
	var out []models.Click
	for i := range impressions {
		imp := &impressions[i]
		if !imp.Won() {
			continue
		}
		ctr := b.params.BaseCTR * ctrDeviceWeight[imp.DeviceType] * ctrAuctionWeight[imp.AuctionType]
		if ctr > 1 {
			ctr = 1
		}
		if !b.src.Bool(ctr) {
			continue
		}
		out = append(out, models.Click{
			ID:           b.src.UUID(),
			ImpressionID: imp.ID,
			Timestamp:    imp.Timestamp.Add(b.src.DurationBetween(time.Second, time.Hour)),
			CampaignID:   imp.CampaignID,
			CreativeID:   imp.CreativeID,
			PublisherID:  imp.PublisherID,
			DeviceType:   imp.DeviceType,
			GeoCountry:   imp.GeoCountry,
			ClickCost:    round4(imp.WinPrice / 1000),
		})
	}
	return out
}

func (b *builder) conversions(clicks []models.Click, impressions []models.Impression) []models.Conversion {
	var out []models.Conversion

	// Click-attributed conversions.
	for i := range clicks {
		cl := &clicks[i]
		if !b.src.Bool(b.params.ClickConversionRate) {
			continue
		}
		ct := sample.Pick(b.src, models.ConversionTypes)
		out = append(out, models.Conversion{
			ID:          b.src.UUID(),
			ClickID:     cl.ID,
			Timestamp:   cl.Timestamp.Add(b.src.DurationBetween(time.Hour, 168*time.Hour)),
			CampaignID:  cl.CampaignID,
			Type:        ct,
			Value:       b.conversionValue(ct, 1.0),
			Attribution: attributionTable.Pick(b.src),
		})
	}

	// View-through conversions off won impressions, at a much lower
	// rate and discounted value.
	for i := range impressions {
		imp := &impressions[i]
		if !imp.Won() || !b.src.Bool(b.params.ViewThroughRate) {
			continue
		}
		ct := sample.Pick(b.src, models.ConversionTypes)
		out = append(out, models.Conversion{
			ID:           b.src.UUID(),
			ImpressionID: imp.ID,
			Timestamp:    imp.Timestamp.Add(b.src.DurationBetween(time.Hour, 720*time.Hour)),
			CampaignID:   imp.CampaignID,
			Type:         ct,
			Value:        b.conversionValue(ct, 0.5),
			Attribution:  models.AttributionViewThrough,
		})
	}
	return out
}

func (b *builder) conversionValue(ct models.ConversionType, scale float64) float64 {
	prof := valueProfiles[ct]
	if !b.src.Bool(prof.pMonetary) {
		return 0
	}
	return round2(b.src.FloatBetween(prof.lo*scale, prof.hi*scale))
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }

func round4(x float64) float64 { return math.Round(x*10000) / 10000 }

func floor2(x float64) float64 { return math.Floor(x*100) / 100 }
