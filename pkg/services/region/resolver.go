package region

import (
	"strings"
	"unicode"

	"github.com/de-tools/growth-atlas/pkg/models/domain"
	"github.com/de-tools/growth-atlas/pkg/models/store"
)

// countryToRegion maps two-letter shipping country codes to regions. Unknown
// codes leave the row unattributed (dropped by the fusion fold).
var countryToRegion = map[string]domain.Region{
	"US": domain.RegionUS,
	"CA": domain.RegionCA,
	"GB": domain.RegionUK,
	"UK": domain.RegionUK,
	"AU": domain.RegionAU,
}

// regionTokens are matched against tokenized campaign/adset/ad names.
var regionTokens = map[domain.Region]map[string]struct{}{
	domain.RegionAU: tokenSet("AU", "AUS", "AUSTRALIA"),
	domain.RegionUK: tokenSet("UK", "GB", "UNITEDKINGDOM"),
	domain.RegionCA: tokenSet("CA", "CAN", "CANADA"),
	domain.RegionUS: tokenSet("US", "USA", "UNITEDSTATES"),
}

// tokenPriority is the fixed match order. A name matching both AU and CA
// tokens resolves to AU. The heuristic is order-sensitive on purpose; do not
// reorder.
var tokenPriority = []domain.Region{domain.RegionAU, domain.RegionUK, domain.RegionCA, domain.RegionUS}

func tokenSet(tokens ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// FromCountry resolves an order-like row by its shipping country code.
func FromCountry(code string) (domain.Region, bool) {
	if code == "" {
		return "", false
	}
	r, ok := countryToRegion[strings.ToUpper(code)]
	return r, ok
}

// FromAdRow resolves an ad-spend row. The caller-supplied account map wins
// outright; otherwise the campaign/adset/ad names are tokenized and tested
// against the per-region token sets in priority order. Rows matching nothing
// default to US.
func FromAdRow(row store.AdRow, accountMap map[string]domain.Region) (domain.Region, bool) {
	if row.AccountID != "" {
		if r, ok := accountMap[row.AccountID]; ok {
			return r, true
		}
	}

	tokens := tokenize(row.CampaignName, row.AdsetName, row.AdName)
	for _, r := range tokenPriority {
		if intersects(tokens, regionTokens[r]) {
			return r, true
		}
	}
	return domain.RegionUS, true
}

// tokenize uppercases the concatenated parts, replaces every non-alphanumeric
// rune with a space, and splits on whitespace.
func tokenize(parts ...string) map[string]struct{} {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	combined := strings.ToUpper(strings.Join(nonEmpty, " "))

	normalized := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, combined)

	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(normalized) {
		tokens[tok] = struct{}{}
	}
	return tokens
}

func intersects(a map[string]struct{}, b map[string]struct{}) bool {
	for tok := range a {
		if _, ok := b[tok]; ok {
			return true
		}
	}
	return false
}
