package domain

// Region is one of the four supported geographic markets. Every region has a
// fixed IANA timezone used for local-day bucketing (see services/timezone).
type Region string

const (
	RegionUS Region = "US"
	RegionCA Region = "CA"
	RegionUK Region = "UK"
	RegionAU Region = "AU"
)

// SupportedRegions lists every known region in stable order. Window expansion
// and report iteration both rely on this order being fixed.
var SupportedRegions = []Region{RegionUS, RegionCA, RegionUK, RegionAU}

func (r Region) Valid() bool {
	for _, known := range SupportedRegions {
		if r == known {
			return true
		}
	}
	return false
}
