package main

import (
	"fmt"
	"os"

	"github.com/de-tools/growth-atlas/pkg/runtime/terminal"
	"github.com/de-tools/growth-atlas/pkg/services/config"
	"github.com/de-tools/growth-atlas/pkg/store/warehouse"
	warehouseapi "github.com/de-tools/growth-atlas/pkg/store/warehouse/api"
	"github.com/de-tools/growth-atlas/pkg/store/warehouse/dbsql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cli := terminal.NewCLI(terminal.Options{
		Registry: warehouse.NewRegistry(map[string]warehouse.ExecutorFactory{
			"api":        apiFactory,
			"databricks": dbsql.DatabricksFactory,
			"snowflake":  dbsql.SnowflakeFactory,
		}),
	})

	if err := cli.Execute(); err != nil {
		logger.Error().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// apiFactory ignores the profile path; the hosted backend is configured via
// settings/env instead of a connection profile.
func apiFactory(_ string) (warehouse.Executor, error) {
	settings, err := config.Load("")
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return warehouseapi.NewClient(warehouseapi.Config{
		BaseURL: settings.APIBase,
		APIKey:  settings.APIKey,
		Timeout: settings.HTTPTimeout,
	}), nil
}
