package analytics

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// cashFlow builds monthly invoices from the billed spend: advertisers
// are invoiced for delivered impressions (receivables) and publishers
// for their revenue share (payables).  Which invoices remain unpaid is
// derived from a hash of the invoice key so the ledger is stable for a
// given dataset.
func (e *Engine) cashFlow(v *view, asOf time.Time) CashFlowReport {
	type accum map[string]map[time.Time]float64

	receivable := accum{}
	payable := accum{}
	add := func(a accum, party string, ts time.Time, amount float64) {
		months, ok := a[party]
		if !ok {
			months = make(map[time.Time]float64)
			a[party] = months
		}
		months[bucketMonth(ts)] += amount
	}

	for _, imp := range v.won {
		spend := imp.WinPrice / 1000
		if c, ok := v.campaignByID[imp.CampaignID]; ok {
			add(receivable, c.AdvertiserID, imp.Timestamp, spend)
		}
		add(payable, imp.PublisherID, imp.Timestamp, spend*e.cfg.PublisherCostRate)
	}

	report := CashFlowReport{
		Receivables: e.invoices(v, receivable, e.cfg.ReceivableTermsDays, receivableOutstandingPct, asOf),
		Payables:    e.invoices(v, payable, e.cfg.PayableTermsDays, payableOutstandingPct, asOf),
	}

	report.TotalReceivables, report.OutstandingReceivables = ledgerTotals(report.Receivables)
	report.TotalPayables, report.OutstandingPayables = ledgerTotals(report.Payables)
	report.ReceivablesAging = agingTotals(report.Receivables)
	report.PayablesAging = agingTotals(report.Payables)
	report.Monthly = monthlyFlow(report.Receivables, report.Payables)
	return report
}

const (
	receivableOutstandingPct = 10
	payableOutstandingPct    = 5
)

func (e *Engine) invoices(v *view, amounts map[string]map[time.Time]float64, termsDays, outstandingPct int, asOf time.Time) []Invoice {
	var out []Invoice
	for party, months := range amounts {
		for month, amount := range months {
			monthEnd := month.AddDate(0, 1, -1)
			due := monthEnd.AddDate(0, 0, termsDays)

			pastDue := 0
			if asOf.After(due) {
				pastDue = int(asOf.Sub(due).Hours() / 24)
			}

			inv := Invoice{
				PartyID:     party,
				PartyName:   v.partyName(party),
				Month:       month,
				Amount:      decimal.NewFromFloat(amount).Round(2),
				DueDate:     due,
				DaysPastDue: pastDue,
				Aging:       agingBucket(pastDue),
				Outstanding: outstanding(party, month, outstandingPct),
			}
			if inv.Outstanding {
				inv.OutstandingAmount = inv.Amount
			}
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Month.Equal(out[j].Month) {
			return out[i].Month.Before(out[j].Month)
		}
		return out[i].PartyID < out[j].PartyID
	})
	return out
}

func (v *view) partyName(id string) string {
	if adv, ok := v.advertisers[id]; ok {
		return adv.Name
	}
	if num, found := strings.CutPrefix(id, "PUB_"); found {
		return fmt.Sprintf("Publisher %s", num)
	}
	return id
}

// outstanding deterministically marks a fixed share of invoices unpaid.
func outstanding(party string, month time.Time, pct int) bool {
	h := fnv.New32a()
	h.Write([]byte(party))
	h.Write([]byte(month.Format("2006-01")))
	return int(h.Sum32()%100) < pct
}

func agingBucket(daysPastDue int) AgingBucket {
	switch {
	case daysPastDue <= 0:
		return AgingCurrent
	case daysPastDue <= 30:
		return Aging1To30
	case daysPastDue <= 60:
		return Aging31To60
	case daysPastDue <= 90:
		return Aging61To90
	default:
		return Aging90Plus
	}
}

func ledgerTotals(invoices []Invoice) (total, unpaid decimal.Decimal) {
	for _, inv := range invoices {
		total = total.Add(inv.Amount)
		unpaid = unpaid.Add(inv.OutstandingAmount)
	}
	return total, unpaid
}

var agingOrder = []AgingBucket{AgingCurrent, Aging1To30, Aging31To60, Aging61To90, Aging90Plus}

func agingTotals(invoices []Invoice) []AgingTotal {
	byBucket := make(map[AgingBucket]*AgingTotal, len(agingOrder))
	for _, inv := range invoices {
		if !inv.Outstanding {
			continue
		}
		t, ok := byBucket[inv.Aging]
		if !ok {
			t = &AgingTotal{Bucket: inv.Aging}
			byBucket[inv.Aging] = t
		}
		t.Invoices++
		t.Outstanding = t.Outstanding.Add(inv.OutstandingAmount)
	}

	out := make([]AgingTotal, 0, len(agingOrder))
	for _, bucket := range agingOrder {
		if t, ok := byBucket[bucket]; ok {
			out = append(out, *t)
		} else {
			out = append(out, AgingTotal{Bucket: bucket})
		}
	}
	return out
}

func monthlyFlow(receivables, payables []Invoice) []MonthlyFlow {
	byMonth := make(map[time.Time]*MonthlyFlow)
	at := func(month time.Time) *MonthlyFlow {
		f, ok := byMonth[month]
		if !ok {
			f = &MonthlyFlow{Month: month}
			byMonth[month] = f
		}
		return f
	}
	for _, inv := range receivables {
		f := at(inv.Month)
		f.Receivables = f.Receivables.Add(inv.Amount)
	}
	for _, inv := range payables {
		f := at(inv.Month)
		f.Payables = f.Payables.Add(inv.Amount)
	}

	out := make([]MonthlyFlow, 0, len(byMonth))
	for _, f := range byMonth {
		f.Net = f.Receivables.Sub(f.Payables)
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}
