package dbsql

import (
	"database/sql"
	"fmt"

	"github.com/de-tools/growth-atlas/pkg/store/warehouse"
	"github.com/snowflakedb/gosnowflake"
	"github.com/spf13/viper"
)

type snowflakeConfig struct {
	Account   string `mapstructure:"account"`
	User      string `mapstructure:"user"`
	Password  string `mapstructure:"password"`
	Database  string `mapstructure:"database"`
	Schema    string `mapstructure:"schema"`
	Warehouse string `mapstructure:"warehouse"`
	Role      string `mapstructure:"role"`
}

// SnowflakeFactory builds a warehouse executor over a Snowflake connection,
// configured from the given profile file.
func SnowflakeFactory(profilePath string) (warehouse.Executor, error) {
	v := viper.New()
	v.SetConfigFile(profilePath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read snowflake profile: %w", err)
	}

	var cfg snowflakeConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse snowflake profile: %w", err)
	}
	if cfg.Account == "" || cfg.User == "" || cfg.Password == "" {
		return nil, fmt.Errorf("snowflake profile requires account, user and password")
	}

	dsn, err := gosnowflake.DSN(&gosnowflake.Config{
		Account:   cfg.Account,
		User:      cfg.User,
		Password:  cfg.Password,
		Database:  cfg.Database,
		Schema:    cfg.Schema,
		Warehouse: cfg.Warehouse,
		Role:      cfg.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("build snowflake dsn: %w", err)
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("open snowflake connection: %w", err)
	}
	return NewExecutor(db)
}
