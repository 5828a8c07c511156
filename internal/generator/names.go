package generator

import (
	"fmt"
	"strings"

	"github.com/acmecorp/campaign-pulse/internal/sample"
)

// Synthetic name tables.  These replace a fake-data library with
// explicit word lists so output stays deterministic under a seed.

var companyAdjectives = []string{
	"Blue", "Bright", "Global", "Prime", "Nova", "Apex", "Summit",
	"Vertex", "Atlas", "Northern", "Pacific", "Silver", "Amber",
	"Cascade", "Horizon", "Quantum", "Solar", "Urban", "Velvet", "Zenith",
}

var companyNouns = []string{
	"Harbor", "Forge", "Grove", "Ridge", "Spark", "Stream", "Field",
	"Crest", "Anchor", "Beacon", "Canyon", "Delta", "Ember", "Falcon",
	"Garnet", "Meadow", "Orbit", "Pillar", "Quarry", "Willow",
}

var companySuffixes = []string{
	"Media", "Labs", "Group", "Brands", "Retail", "Systems",
	"Holdings", "Direct", "Works", "Collective",
}

var firstNames = []string{
	"Avery", "Jordan", "Morgan", "Riley", "Casey", "Quinn", "Taylor",
	"Reese", "Dana", "Skyler", "Cameron", "Rowan", "Harper", "Emerson",
	"Sage", "Finley", "Marlow", "Devon", "Ellis", "Hayden",
}

var lastNames = []string{
	"Alvarez", "Bennett", "Chen", "Dawson", "Ericsson", "Fuller",
	"Garcia", "Hoffman", "Ibarra", "Jensen", "Kowalski", "Lindqvist",
	"Moreau", "Nakamura", "Okafor", "Petrov", "Ramos", "Sato",
	"Thornton", "Weiss",
}

var phraseVerbs = []string{
	"Amplify", "Accelerate", "Unlock", "Reimagine", "Scale",
	"Streamline", "Elevate", "Activate", "Maximize", "Ignite",
}

var phraseNouns = []string{
	"Reach", "Engagement", "Growth", "Momentum", "Awareness",
	"Conversions", "Audiences", "Performance", "Demand", "Loyalty",
}

var phraseSeasons = []string{
	"Q1 Push", "Spring Launch", "Summer Series", "Back to School",
	"Holiday Blitz", "Always On", "Brand Refresh", "Product Drop",
	"Flash Sale", "Year End",
}

func companyName(s *sample.Source) string {
	return fmt.Sprintf("%s %s %s",
		sample.Pick(s, companyAdjectives),
		sample.Pick(s, companyNouns),
		sample.Pick(s, companySuffixes),
	)
}

func personName(s *sample.Source) string {
	return sample.Pick(s, firstNames) + " " + sample.Pick(s, lastNames)
}

func campaignPhrase(s *sample.Source) string {
	return fmt.Sprintf("%s %s %s",
		sample.Pick(s, phraseVerbs),
		sample.Pick(s, phraseNouns),
		sample.Pick(s, phraseSeasons),
	)
}

func clickURL(s *sample.Source, campaignID string) string {
	host := strings.ToLower(sample.Pick(s, companyAdjectives) + sample.Pick(s, companyNouns))
	return fmt.Sprintf("https://%s.example.com/lp/%s", host, strings.ToLower(campaignID))
}
