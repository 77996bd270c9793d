package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/growth-atlas/pkg/models/domain"
	"github.com/spf13/viper"
)

// Settings is the process configuration, loaded once per invocation,
// validated eagerly and passed explicitly. No ambient globals.
type Settings struct {
	ShopDomain string `mapstructure:"shop_domain"`

	APIKey      string        `mapstructure:"api_key"`
	APIBase     string        `mapstructure:"api_base"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`

	// AccountRegionMap maps ad account ids to regions; consulted before the
	// token heuristic. Populated from GROWTH_ACCOUNT_REGION_MAP (JSON) or an
	// ini profile file (see LoadAccountRegionMap).
	AccountRegionMap map[string]domain.Region

	DefaultStartDate string `mapstructure:"default_start_date"`
	DefaultEndDate   string `mapstructure:"default_end_date"`
}

const defaultAPIBase = "https://api.analytics.example.com/api/v2"

// Load reads settings from the environment (prefix GROWTH) and an optional
// config file. Validation failures surface as ConfigurationError before any
// warehouse call happens.
func Load(configFile string) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("GROWTH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("api_base", defaultAPIBase)
	v.SetDefault("http_timeout", 30*time.Second)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	settings.APIBase = strings.TrimRight(settings.APIBase, "/")

	if raw := v.GetString("account_region_map"); raw != "" {
		parsed, err := parseAccountRegionMap(raw)
		if err != nil {
			return nil, err
		}
		settings.AccountRegionMap = parsed
	}

	return &settings, nil
}

// Validate checks the settings required to run the pipeline against the
// hosted API backend.
func (s *Settings) Validate() error {
	if s.ShopDomain == "" {
		return &domain.ConfigurationError{
			Setting: "GROWTH_SHOP_DOMAIN",
			Reason:  "shop domain is required to run the pipeline",
		}
	}
	if s.APIKey == "" {
		return &domain.ConfigurationError{
			Setting: "GROWTH_API_KEY",
			Reason:  "API key is required for the hosted analytics backend",
		}
	}
	return nil
}

func parseAccountRegionMap(raw string) (map[string]domain.Region, error) {
	var plain map[string]string
	if err := json.Unmarshal([]byte(raw), &plain); err != nil {
		return nil, &domain.ConfigurationError{
			Setting: "GROWTH_ACCOUNT_REGION_MAP",
			Reason:  "must be a JSON object of account id to region code",
		}
	}

	result := make(map[string]domain.Region, len(plain))
	for account, code := range plain {
		region := domain.Region(strings.ToUpper(code))
		if !region.Valid() {
			return nil, &domain.ConfigurationError{
				Setting: "GROWTH_ACCOUNT_REGION_MAP",
				Reason:  fmt.Sprintf("unknown region %q for account %q", code, account),
			}
		}
		result[account] = region
	}
	return result, nil
}
