package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/de-tools/growth-atlas/pkg/server"
	"github.com/de-tools/growth-atlas/pkg/services/config"
	"github.com/de-tools/growth-atlas/pkg/services/fusion"
	"github.com/de-tools/growth-atlas/pkg/services/report"
	"github.com/de-tools/growth-atlas/pkg/store/warehouse"
	warehouseapi "github.com/de-tools/growth-atlas/pkg/store/warehouse/api"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Growth Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to a settings file (env vars with GROWTH_ prefix also apply)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	settings, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	client := warehouseapi.NewClient(warehouseapi.Config{
		BaseURL: settings.APIBase,
		APIKey:  settings.APIKey,
		Timeout: settings.HTTPTimeout,
	})
	source := warehouse.NewSource(client, settings.ShopDomain)
	controller := report.NewController(fusion.NewEngine(source, settings))

	logger.Info().Str("shop_domain", settings.ShopDomain).Msg("settings loaded")

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")

	if host == "" || port == "" {
		logger.Error().Msgf("Missing server configuration from .env file")
		os.Exit(1)
	}

	api := server.NewWebAPI(logger, server.Config{
		Addr:            net.JoinHostPort(host, port),
		ShutdownTimeout: 10 * time.Second,
		Dependencies: server.Dependencies{
			Reports: controller,
		},
	})
	return api.Start()
}
