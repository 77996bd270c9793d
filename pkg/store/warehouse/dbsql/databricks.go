package dbsql

import (
	"database/sql"
	"fmt"

	_ "github.com/databricks/databricks-sql-go"
	"github.com/de-tools/growth-atlas/pkg/store/warehouse"
	"github.com/spf13/viper"
)

type databricksConfig struct {
	Host     string `mapstructure:"host"`
	HTTPPath string `mapstructure:"http_path"`
	Token    string `mapstructure:"token"`
	Catalog  string `mapstructure:"catalog"`
	Schema   string `mapstructure:"schema"`
}

// DatabricksFactory builds a warehouse executor over a Databricks SQL
// warehouse, configured from the given profile file.
func DatabricksFactory(profilePath string) (warehouse.Executor, error) {
	v := viper.New()
	v.SetConfigFile(profilePath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read databricks profile: %w", err)
	}

	var cfg databricksConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse databricks profile: %w", err)
	}
	if cfg.Host == "" || cfg.HTTPPath == "" || cfg.Token == "" {
		return nil, fmt.Errorf("databricks profile requires host, http_path and token")
	}

	dsn := fmt.Sprintf("token:%s@%s:443%s", cfg.Token, cfg.Host, cfg.HTTPPath)
	if cfg.Catalog != "" {
		dsn += fmt.Sprintf("?catalog=%s&schema=%s", cfg.Catalog, cfg.Schema)
	}

	db, err := sql.Open("databricks", dsn)
	if err != nil {
		return nil, fmt.Errorf("open databricks connection: %w", err)
	}
	return NewExecutor(db)
}
