package models

import "errors"

// Industry verticals an advertiser can belong to.
const (
	IndustryEcommerce    = "E-commerce"
	IndustryFinance      = "Finance"
	IndustryHealthcare   = "Healthcare"
	IndustryTechnology   = "Technology"
	IndustryAutomotive   = "Automotive"
	IndustryTravel       = "Travel"
	IndustryFoodBeverage = "Food & Beverage"
	IndustryFashion      = "Fashion"
	IndustryGaming       = "Gaming"
	IndustryEducation    = "Education"
)

// Industries is the fixed vertical set sampled by the generator.
var Industries = []string{
	IndustryEcommerce, IndustryFinance, IndustryHealthcare,
	IndustryTechnology, IndustryAutomotive, IndustryTravel,
	IndustryFoodBeverage, IndustryFashion, IndustryGaming,
	IndustryEducation,
}

// Advertiser is a dimension row.  An advertiser owns one or more
// campaigns and is immutable once generated.
type Advertiser struct {
	ID             string `json:"advertiser_id"`
	Name           string `json:"advertiser_name"`
	Industry       string `json:"industry,omitempty"`
	AccountManager string `json:"account_manager,omitempty"`
}

// Validate checks that required fields are present.
func (a *Advertiser) Validate() error {
	if a == nil {
		return errors.New("advertiser is nil")
	}
	if a.ID == "" {
		return errors.New("advertiser_id is required")
	}
	if a.Name == "" {
		return errors.New("advertiser_name is required")
	}
	return nil
}
