package generator

import (
	"fmt"
	"time"

	"github.com/acmecorp/campaign-pulse/internal/models"
)

// VerifyDataset walks every foreign key and ordering invariant in a
// snapshot.  A non-nil result is a *ReferentialError (or a row-level
// validation error) and means the snapshot must be discarded.
func VerifyDataset(ds *models.Dataset) error {
	advertisers := ds.AdvertiserByID()
	campaigns := ds.CampaignByID()

	for i := range ds.Campaigns {
		c := &ds.Campaigns[i]
		if err := c.Validate(); err != nil {
			return err
		}
		if _, ok := advertisers[c.AdvertiserID]; !ok {
			return &ReferentialError{Table: "campaigns", RowID: c.ID,
				Detail: fmt.Sprintf("unknown advertiser_id %s", c.AdvertiserID)}
		}
		if c.StartDate.Before(ds.HorizonStart) || c.EndDate.After(ds.HorizonEnd) {
			return &ReferentialError{Table: "campaigns", RowID: c.ID,
				Detail: "flight dates outside generation horizon"}
		}
	}

	creativeCampaign := make(map[string]string, len(ds.Creatives))
	creativesPerCampaign := make(map[string]int, len(ds.Campaigns))
	for i := range ds.Creatives {
		cr := &ds.Creatives[i]
		if err := cr.Validate(); err != nil {
			return err
		}
		if _, ok := campaigns[cr.CampaignID]; !ok {
			return &ReferentialError{Table: "creatives", RowID: cr.ID,
				Detail: fmt.Sprintf("unknown campaign_id %s", cr.CampaignID)}
		}
		creativeCampaign[cr.ID] = cr.CampaignID
		creativesPerCampaign[cr.CampaignID]++
	}
	for i := range ds.Campaigns {
		if creativesPerCampaign[ds.Campaigns[i].ID] == 0 {
			return &ReferentialError{Table: "campaigns", RowID: ds.Campaigns[i].ID,
				Detail: "campaign has no creatives"}
		}
	}

	impressionByID := make(map[string]*models.Impression, len(ds.Impressions))
	for i := range ds.Impressions {
		imp := &ds.Impressions[i]
		c, ok := campaigns[imp.CampaignID]
		if !ok {
			return &ReferentialError{Table: "impressions", RowID: imp.ID,
				Detail: fmt.Sprintf("unknown campaign_id %s", imp.CampaignID)}
		}
		if creativeCampaign[imp.CreativeID] != imp.CampaignID {
			return &ReferentialError{Table: "impressions", RowID: imp.ID,
				Detail: fmt.Sprintf("creative %s does not belong to campaign %s", imp.CreativeID, imp.CampaignID)}
		}
		if imp.WinPrice > imp.BidPrice {
			return &ReferentialError{Table: "impressions", RowID: imp.ID,
				Detail: fmt.Sprintf("win_price %.2f exceeds bid_price %.2f", imp.WinPrice, imp.BidPrice)}
		}
		if imp.Timestamp.Before(c.StartDate) || !imp.Timestamp.Before(c.EndDate.Add(24*time.Hour)) {
			return &ReferentialError{Table: "impressions", RowID: imp.ID,
				Detail: "timestamp outside campaign flight"}
		}
		impressionByID[imp.ID] = imp
	}

	clickByID := make(map[string]*models.Click, len(ds.Clicks))
	for i := range ds.Clicks {
		cl := &ds.Clicks[i]
		imp, ok := impressionByID[cl.ImpressionID]
		if !ok {
			return &ReferentialError{Table: "clicks", RowID: cl.ID,
				Detail: fmt.Sprintf("unknown impression_id %s", cl.ImpressionID)}
		}
		if !imp.Won() {
			return &ReferentialError{Table: "clicks", RowID: cl.ID,
				Detail: fmt.Sprintf("impression %s was not won", cl.ImpressionID)}
		}
		if cl.Timestamp.Before(imp.Timestamp) {
			return &ReferentialError{Table: "clicks", RowID: cl.ID,
				Detail: "click precedes its impression"}
		}
		if cl.CampaignID != imp.CampaignID {
			return &ReferentialError{Table: "clicks", RowID: cl.ID,
				Detail: "campaign_id disagrees with impression"}
		}
		clickByID[cl.ID] = cl
	}

	for i := range ds.Conversions {
		cv := &ds.Conversions[i]
		hasClick := cv.ClickID != ""
		hasImpression := cv.ImpressionID != ""
		if hasClick == hasImpression {
			return &ReferentialError{Table: "conversions", RowID: cv.ID,
				Detail: "exactly one of click_id and impression_id must be set"}
		}
		var refTime time.Time
		var refCampaign string
		if hasClick {
			cl, ok := clickByID[cv.ClickID]
			if !ok {
				return &ReferentialError{Table: "conversions", RowID: cv.ID,
					Detail: fmt.Sprintf("unknown click_id %s", cv.ClickID)}
			}
			refTime, refCampaign = cl.Timestamp, cl.CampaignID
		} else {
			imp, ok := impressionByID[cv.ImpressionID]
			if !ok {
				return &ReferentialError{Table: "conversions", RowID: cv.ID,
					Detail: fmt.Sprintf("unknown impression_id %s", cv.ImpressionID)}
			}
			if !imp.Won() {
				return &ReferentialError{Table: "conversions", RowID: cv.ID,
					Detail: fmt.Sprintf("impression %s was not won", cv.ImpressionID)}
			}
			refTime, refCampaign = imp.Timestamp, imp.CampaignID
		}
		if cv.Timestamp.Before(refTime) {
			return &ReferentialError{Table: "conversions", RowID: cv.ID,
				Detail: "conversion precedes its attributed event"}
		}
		if cv.CampaignID != refCampaign {
			return &ReferentialError{Table: "conversions", RowID: cv.ID,
				Detail: "campaign_id disagrees with attributed event"}
		}
		if cv.Value < 0 {
			return &ReferentialError{Table: "conversions", RowID: cv.ID,
				Detail: fmt.Sprintf("negative conversion_value %.2f", cv.Value)}
		}
	}
	return nil
}
