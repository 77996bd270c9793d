package config

import (
	"fmt"
	"strings"

	"github.com/de-tools/growth-atlas/pkg/models/domain"
	"gopkg.in/ini.v1"
)

// LoadAccountRegionMap reads an ad-account to region mapping from an ini
// file. Every key in the [accounts] section is an ad account id, its value a
// region code:
//
//	[accounts]
//	act_1234567 = US
//	act_7654321 = AU
func LoadAccountRegionMap(path string) (map[string]domain.Region, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load account map %s: %w", path, err)
	}

	section := cfg.Section("accounts")
	result := make(map[string]domain.Region, len(section.Keys()))
	for _, key := range section.Keys() {
		region := domain.Region(strings.ToUpper(key.Value()))
		if !region.Valid() {
			return nil, &domain.ConfigurationError{
				Setting: "account map",
				Reason:  fmt.Sprintf("unknown region %q for account %q", key.Value(), key.Name()),
			}
		}
		result[key.Name()] = region
	}
	return result, nil
}
