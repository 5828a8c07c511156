package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/acmecorp/campaign-pulse/internal/models"
)

// Ratio is a quotient that distinguishes "zero" from "undefined".
// Defined is false when the denominator was zero.
type Ratio struct {
	Value   float64 `json:"value"`
	Defined bool    `json:"defined"`
}

func ratio(numerator, denominator float64) Ratio {
	if denominator == 0 {
		return Ratio{}
	}
	return Ratio{Value: numerator / denominator, Defined: true}
}

// safeDiv returns 0 when the denominator is zero.  Used for the rate
// metrics (ctr, cpc, cpa, conversion rate) where a dashboard renders a
// flat zero rather than "n/a".
func safeDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// Report is a full analytics snapshot for one dataset and filter.
type Report struct {
	DatasetID string    `json:"dataset_id"`
	AsOf      time.Time `json:"as_of"`
	Filter    Filter    `json:"filter"`

	Summary   Summary               `json:"summary"`
	Campaigns []CampaignPerformance `json:"campaigns"`

	Daily   []TrendPoint `json:"daily"`
	Weekly  []TrendPoint `json:"weekly"`
	Monthly []TrendPoint `json:"monthly"`

	Breakdowns map[string][]BreakdownRow `json:"breakdowns"`

	Pacing   []CampaignPacing `json:"pacing"`
	Margin   MarginReport     `json:"margin"`
	CashFlow CashFlowReport   `json:"cash_flow"`
}

// Summary holds the funnel totals and the derived rates over the whole
// filtered view.
type Summary struct {
	Advertisers int `json:"advertisers"`
	Campaigns   int `json:"campaigns"`

	Impressions int64 `json:"impressions"`
	Clicks      int64 `json:"clicks"`
	Conversions int64 `json:"conversions"`

	Spend           float64 `json:"spend"`
	ConversionValue float64 `json:"conversion_value"`

	CTR            float64 `json:"ctr"`
	CPC            float64 `json:"cpc"`
	CPA            float64 `json:"cpa"`
	ConversionRate float64 `json:"conversion_rate"`
	ECPM           Ratio   `json:"ecpm"`
	ROAS           Ratio   `json:"roas"`
}

// CampaignPerformance is the per-campaign row of the summary table.
type CampaignPerformance struct {
	CampaignID   string                 `json:"campaign_id"`
	CampaignName string                 `json:"campaign_name"`
	AdvertiserID string                 `json:"advertiser_id"`
	Objective    models.CampaignObjective `json:"objective"`
	Status       models.CampaignStatus  `json:"status"`

	Impressions int64 `json:"impressions"`
	Clicks      int64 `json:"clicks"`
	Conversions int64 `json:"conversions"`

	Spend           float64 `json:"spend"`
	ConversionValue float64 `json:"conversion_value"`

	CTR            float64 `json:"ctr"`
	CPC            float64 `json:"cpc"`
	CPA            float64 `json:"cpa"`
	ConversionRate float64 `json:"conversion_rate"`
	ECPM           Ratio   `json:"ecpm"`
	ROAS           Ratio   `json:"roas"`
}

// TrendPoint is one time bucket of the trend series.
type TrendPoint struct {
	Bucket time.Time `json:"bucket"`

	Impressions int64 `json:"impressions"`
	Clicks      int64 `json:"clicks"`
	Conversions int64 `json:"conversions"`

	Spend           float64 `json:"spend"`
	ConversionValue float64 `json:"conversion_value"`

	CTR    float64 `json:"ctr"`
	CPC    float64 `json:"cpc"`
	CPA    float64 `json:"cpa"`
	AvgCPM float64 `json:"avg_cpm"`
}

// BreakdownRow is one group of a single-dimension breakdown.
type BreakdownRow struct {
	Key string `json:"key"`

	Impressions int64 `json:"impressions"`
	Clicks      int64 `json:"clicks"`
	Conversions int64 `json:"conversions"`

	Spend           float64 `json:"spend"`
	ConversionValue float64 `json:"conversion_value"`

	CTR float64 `json:"ctr"`
	CPC float64 `json:"cpc"`
}

// PacingStatus classifies budget delivery against schedule.
type PacingStatus string

const (
	PacingAhead  PacingStatus = "ahead"
	PacingOnPace PacingStatus = "on_pace"
	PacingBehind PacingStatus = "behind"
)

// CampaignPacing compares percent of budget spent against percent of
// flight elapsed.
type CampaignPacing struct {
	CampaignID   string                `json:"campaign_id"`
	CampaignName string                `json:"campaign_name"`
	Status       models.CampaignStatus `json:"campaign_status"`

	BudgetTotal float64 `json:"budget_total"`
	Spend       float64 `json:"spend"`

	PctSpent   float64 `json:"pct_spent"`
	PctElapsed float64 `json:"pct_elapsed"`

	DaysActive int `json:"days_active"`
	TotalDays  int `json:"total_days"`

	Pacing        PacingStatus `json:"pacing"`
	ForecastSpend Ratio        `json:"forecast_spend"`
}

// MarginRow is the buy-side vs sell-side economics of one group.
type MarginRow struct {
	Key string `json:"key"`

	Impressions int64 `json:"impressions"`

	Revenue       float64 `json:"revenue"`
	PublisherCost float64 `json:"publisher_cost"`
	Margin        float64 `json:"margin"`

	MarginPct           float64 `json:"margin_pct"`
	MarginPerImpression float64 `json:"margin_per_impression"`
}

// MarginReport groups margin by campaign, device and auction type.
type MarginReport struct {
	ByCampaign []MarginRow `json:"by_campaign"`
	ByDevice   []MarginRow `json:"by_device"`
	ByAuction  []MarginRow `json:"by_auction"`
}

// AgingBucket classifies how overdue an outstanding invoice is.
type AgingBucket string

const (
	AgingCurrent AgingBucket = "current"
	Aging1To30   AgingBucket = "1_30"
	Aging31To60  AgingBucket = "31_60"
	Aging61To90  AgingBucket = "61_90"
	Aging90Plus  AgingBucket = "90_plus"
)

// Invoice is one monthly receivable or payable.
type Invoice struct {
	PartyID   string    `json:"party_id"`
	PartyName string    `json:"party_name"`
	Month     time.Time `json:"month"`

	Amount  decimal.Decimal `json:"amount"`
	DueDate time.Time       `json:"due_date"`

	DaysPastDue int         `json:"days_past_due"`
	Aging       AgingBucket `json:"aging"`

	Outstanding       bool            `json:"outstanding"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
}

// AgingTotal is the outstanding amount in one aging bucket.
type AgingTotal struct {
	Bucket      AgingBucket     `json:"bucket"`
	Invoices    int             `json:"invoices"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// MonthlyFlow nets receivables against payables for one month.
type MonthlyFlow struct {
	Month       time.Time       `json:"month"`
	Receivables decimal.Decimal `json:"receivables"`
	Payables    decimal.Decimal `json:"payables"`
	Net         decimal.Decimal `json:"net"`
}

// CashFlowReport is the receivables ledger (advertiser invoices), the
// payables ledger (publisher invoices) and the aging rollups.
type CashFlowReport struct {
	Receivables []Invoice `json:"receivables"`
	Payables    []Invoice `json:"payables"`

	TotalReceivables       decimal.Decimal `json:"total_receivables"`
	OutstandingReceivables decimal.Decimal `json:"outstanding_receivables"`
	TotalPayables          decimal.Decimal `json:"total_payables"`
	OutstandingPayables    decimal.Decimal `json:"outstanding_payables"`

	ReceivablesAging []AgingTotal `json:"receivables_aging"`
	PayablesAging    []AgingTotal `json:"payables_aging"`

	Monthly []MonthlyFlow `json:"monthly"`
}
