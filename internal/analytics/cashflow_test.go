package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acmecorp/campaign-pulse/internal/analytics"
)

func TestCashFlow_InvoiceAmountsAndParties(t *testing.T) {
	e := newTestEngine(day(2024, 2, 1))
	rep, err := e.Compute(context.Background(), fixtureDataset(), analytics.Filter{})
	require.NoError(t, err)

	cf := rep.CashFlow

	// One receivable per advertiser for January.
	require.Len(t, cf.Receivables, 2)
	byParty := map[string]analytics.Invoice{}
	for _, inv := range cf.Receivables {
		byParty[inv.PartyID] = inv
	}

	adv1 := byParty["ADV_0001"]
	assert.Equal(t, "Northwind Retail", adv1.PartyName)
	assert.Equal(t, day(2024, 1, 1), adv1.Month)
	assert.True(t, adv1.Amount.Equal(decimal.NewFromInt(6000)), "got %s", adv1.Amount)

	adv2 := byParty["ADV_0002"]
	assert.True(t, adv2.Amount.Equal(decimal.NewFromInt(1000)), "got %s", adv2.Amount)

	// Payables carry the publisher revenue share.
	require.Len(t, cf.Payables, 2)
	var payableTotal decimal.Decimal
	for _, inv := range cf.Payables {
		payableTotal = payableTotal.Add(inv.Amount)
		assert.Contains(t, inv.PartyName, "Publisher")
	}
	assert.True(t, payableTotal.Equal(decimal.NewFromInt(5250)), "75%% of 7000, got %s", payableTotal)
}

func TestCashFlow_PaymentTerms(t *testing.T) {
	e := newTestEngine(day(2024, 2, 1))
	rep, err := e.Compute(context.Background(), fixtureDataset(), analytics.Filter{})
	require.NoError(t, err)

	// January invoices: receivables due 45 days after Jan 31,
	// payables 30 days after.
	for _, inv := range rep.CashFlow.Receivables {
		assert.Equal(t, day(2024, 1, 31).AddDate(0, 0, 45), inv.DueDate)
	}
	for _, inv := range rep.CashFlow.Payables {
		assert.Equal(t, day(2024, 1, 31).AddDate(0, 0, 30), inv.DueDate)
	}
}

func TestCashFlow_AgingBuckets(t *testing.T) {
	cases := []struct {
		asOf   time.Time
		bucket analytics.AgingBucket
	}{
		{day(2024, 2, 1), analytics.AgingCurrent},
		{day(2024, 3, 31), analytics.Aging1To30},
		{day(2024, 4, 30), analytics.Aging31To60},
		{day(2024, 5, 30), analytics.Aging61To90},
		{day(2024, 9, 1), analytics.Aging90Plus},
	}

	for _, tc := range cases {
		e := newTestEngine(tc.asOf)
		rep, err := e.Compute(context.Background(), fixtureDataset(), analytics.Filter{})
		require.NoError(t, err)
		for _, inv := range rep.CashFlow.Receivables {
			assert.Equal(t, tc.bucket, inv.Aging, "as of %s", tc.asOf.Format("2006-01-02"))
		}
	}
}

func TestCashFlow_OutstandingDeterministic(t *testing.T) {
	e := newTestEngine(day(2024, 2, 1))
	ds := fixtureDataset()

	a, err := e.Compute(context.Background(), ds, analytics.Filter{})
	require.NoError(t, err)
	b, err := newTestEngine(day(2024, 2, 1)).Compute(context.Background(), ds, analytics.Filter{})
	require.NoError(t, err)

	for i := range a.CashFlow.Receivables {
		assert.Equal(t, a.CashFlow.Receivables[i].Outstanding, b.CashFlow.Receivables[i].Outstanding)
	}
	assert.True(t, a.CashFlow.OutstandingReceivables.Equal(b.CashFlow.OutstandingReceivables))
}

func TestCashFlow_AgingTotalsCoverAllBuckets(t *testing.T) {
	e := newTestEngine(day(2024, 2, 1))
	rep, err := e.Compute(context.Background(), fixtureDataset(), analytics.Filter{})
	require.NoError(t, err)

	require.Len(t, rep.CashFlow.ReceivablesAging, 5)
	require.Len(t, rep.CashFlow.PayablesAging, 5)

	var agingSum decimal.Decimal
	for _, tot := range rep.CashFlow.ReceivablesAging {
		agingSum = agingSum.Add(tot.Outstanding)
	}
	assert.True(t, agingSum.Equal(rep.CashFlow.OutstandingReceivables))
}

func TestCashFlow_MonthlyNet(t *testing.T) {
	e := newTestEngine(day(2024, 2, 1))
	rep, err := e.Compute(context.Background(), fixtureDataset(), analytics.Filter{})
	require.NoError(t, err)

	require.Len(t, rep.CashFlow.Monthly, 1)
	flow := rep.CashFlow.Monthly[0]
	assert.Equal(t, day(2024, 1, 1), flow.Month)
	assert.True(t, flow.Receivables.Equal(decimal.NewFromInt(7000)))
	assert.True(t, flow.Payables.Equal(decimal.NewFromInt(5250)))
	assert.True(t, flow.Net.Equal(decimal.NewFromInt(1750)))
}
