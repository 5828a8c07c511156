package models

import (
	"errors"
	"fmt"
	"time"
)

type CampaignStatus string

const (
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
)

// CampaignStatuses lists every valid status value.
var CampaignStatuses = []CampaignStatus{
	CampaignStatusActive,
	CampaignStatusPaused,
	CampaignStatusCompleted,
}

type CampaignObjective string

const (
	ObjectiveAwareness      CampaignObjective = "awareness"
	ObjectivePerformance    CampaignObjective = "performance"
	ObjectiveRetargeting    CampaignObjective = "retargeting"
	ObjectiveBrandBuilding  CampaignObjective = "brand_building"
	ObjectiveLeadGeneration CampaignObjective = "lead_generation"
)

// CampaignObjectives lists every valid objective value.
var CampaignObjectives = []CampaignObjective{
	ObjectiveAwareness,
	ObjectivePerformance,
	ObjectiveRetargeting,
	ObjectiveBrandBuilding,
	ObjectiveLeadGeneration,
}

// Campaign is a dimension row.  Every campaign belongs to exactly one
// advertiser and carries at least one creative.
type Campaign struct {
	ID           string            `json:"campaign_id"`
	AdvertiserID string            `json:"advertiser_id"`
	Name         string            `json:"campaign_name"`
	StartDate    time.Time         `json:"start_date"`
	EndDate      time.Time         `json:"end_date"`
	BudgetTotal  float64           `json:"budget_total"`
	BudgetDaily  float64           `json:"budget_daily"`
	Objective    CampaignObjective `json:"objective"`
	Status       CampaignStatus    `json:"status"`
}

// DurationDays returns the inclusive flight length in days.
func (c *Campaign) DurationDays() int {
	return int(c.EndDate.Sub(c.StartDate).Hours()/24) + 1
}

// Validate checks structural invariants on a single campaign row.
func (c *Campaign) Validate() error {
	if c.ID == "" {
		return errors.New("campaign_id is required")
	}
	if c.AdvertiserID == "" {
		return errors.New("advertiser_id is required")
	}
	if c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("campaign %s: end_date %s before start_date %s",
			c.ID, c.EndDate.Format("2006-01-02"), c.StartDate.Format("2006-01-02"))
	}
	if c.BudgetTotal <= 0 {
		return fmt.Errorf("campaign %s: budget_total must be > 0", c.ID)
	}
	if c.BudgetDaily <= 0 {
		return fmt.Errorf("campaign %s: budget_daily must be > 0", c.ID)
	}
	return nil
}
