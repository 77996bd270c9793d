package timezone

import (
	"fmt"
	"sync"
	"time"

	"github.com/de-tools/growth-atlas/pkg/models/domain"
)

// RegionTimeConfig ties a region to its fixed IANA zone.
type RegionTimeConfig struct {
	Region      domain.Region
	ZoneName    string
	Description string
}

// RegionTimezones is the authoritative region -> zone table. CA deliberately
// uses America/Regina, which does not observe DST.
var RegionTimezones = map[domain.Region]RegionTimeConfig{
	domain.RegionUS: {domain.RegionUS, "America/Chicago", "Central Time (CST/CDT)"},
	domain.RegionCA: {domain.RegionCA, "America/Regina", "Central Standard Time (no DST)"},
	domain.RegionUK: {domain.RegionUK, "Europe/London", "United Kingdom local time (GMT/BST)"},
	domain.RegionAU: {domain.RegionAU, "Australia/Sydney", "Australian Eastern Time (AEST/AEDT)"},
}

var (
	zoneMu    sync.Mutex
	zoneCache = map[string]*time.Location{}
)

func loadZone(name string) (*time.Location, error) {
	zoneMu.Lock()
	defer zoneMu.Unlock()

	if loc, ok := zoneCache[name]; ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load zone %q: %w", name, err)
	}
	zoneCache[name] = loc
	return loc, nil
}

// Zone returns the fixed location for a region.
func Zone(region domain.Region) (*time.Location, error) {
	cfg, ok := RegionTimezones[region]
	if !ok {
		return nil, &domain.UnknownRegionError{Region: region}
	}
	return loadZone(cfg.ZoneName)
}

// LocalTime converts a UTC timestamp to the region's zoned instant. A
// timestamp is normalized to UTC first; the caller's local zone is never
// assumed.
func LocalTime(timestampUTC time.Time, region domain.Region) (time.Time, error) {
	loc, err := Zone(region)
	if err != nil {
		return time.Time{}, err
	}
	return timestampUTC.UTC().In(loc), nil
}

// LocalDate converts a UTC timestamp to the region's local calendar date,
// returned as midnight in the region's zone.
func LocalDate(timestampUTC time.Time, region domain.Region) (time.Time, error) {
	local, err := LocalTime(timestampUTC, region)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, local.Location()), nil
}
