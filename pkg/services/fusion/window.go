package fusion

import (
	"time"

	"github.com/de-tools/growth-atlas/pkg/models/domain"
	"github.com/de-tools/growth-atlas/pkg/services/timezone"
)

// expandFetchWindow widens the UTC fetch window so that every region's local
// day is fetched whole. For each region zone it takes the first UTC instant
// of the local day containing the window start and the last UTC instant of
// the local day containing the window end, then unions them with the
// original window. Without this, regions ahead of or behind the shop zone
// would see truncated days.
func expandFetchWindow(startLocal, endLocal time.Time) (time.Time, time.Time, error) {
	fetchStart := startLocal.UTC()
	fetchEnd := endLocal.UTC()

	for _, region := range domain.SupportedRegions {
		zone, err := timezone.Zone(region)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}

		regionStart := startLocal.In(zone)
		y, m, d := regionStart.Date()
		dayStart := time.Date(y, m, d, 0, 0, 0, 0, zone)

		regionEnd := endLocal.In(zone)
		y, m, d = regionEnd.Date()
		dayEnd := time.Date(y, m, d, 0, 0, 0, 0, zone).AddDate(0, 0, 1).Add(-time.Second)

		if utc := dayStart.UTC(); utc.Before(fetchStart) {
			fetchStart = utc
		}
		if utc := dayEnd.UTC(); utc.After(fetchEnd) {
			fetchEnd = utc
		}
	}

	return fetchStart, fetchEnd, nil
}
