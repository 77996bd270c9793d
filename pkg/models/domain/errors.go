package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidRange is returned when a reporting window starts after it ends.
// It is rejected before any warehouse fetch happens.
var ErrInvalidRange = errors.New("window start must be on or before window end")

// ConfigurationError marks a missing or malformed required setting. Fatal,
// surfaced immediately, never retried.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Setting, e.Reason)
}

// UnknownRegionError is returned when a timezone lookup is attempted for a
// region outside the supported set. With a correctly scoped resolver this
// should never fire; when it does, the whole computation aborts.
type UnknownRegionError struct {
	Region Region
}

func (e *UnknownRegionError) Error() string {
	return fmt.Sprintf("unknown region %q, supported regions: %v", e.Region, SupportedRegions)
}
