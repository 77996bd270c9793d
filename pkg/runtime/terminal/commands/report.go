package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/de-tools/growth-atlas/pkg/models/domain"
	"github.com/de-tools/growth-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/growth-atlas/pkg/services/config"
	"github.com/de-tools/growth-atlas/pkg/services/fusion"
	"github.com/de-tools/growth-atlas/pkg/services/report"
	"github.com/de-tools/growth-atlas/pkg/store/duckdb"
	duckdbreport "github.com/de-tools/growth-atlas/pkg/store/duckdb/report"
	"github.com/de-tools/growth-atlas/pkg/store/s3"
	"github.com/de-tools/growth-atlas/pkg/store/warehouse"
	"github.com/spf13/cobra"
)

const dateFormat = "2006-01-02"

type ReportCmd struct {
	registry warehouse.Registry

	configFile  string
	startDate   string
	endDate     string
	granularity string
	format      string
	output      string
	backend     string
	profilePath string
	timezone    string
	accountMap  string
	storePath   string
	s3Bucket    string
	s3Prefix    string
	awsProfile  string
}

func NewReportCmd(registry warehouse.Registry) *cobra.Command {
	rc := &ReportCmd{registry: registry}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build the regional KPI report for a date range",
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.configFile, "config", "", "Path to a settings file (env vars with GROWTH_ prefix also apply)")
	cmd.Flags().StringVar(&rc.startDate, "start-date", "", "First report date (YYYY-MM-DD, default yesterday)")
	cmd.Flags().StringVar(&rc.endDate, "end-date", "", "Last report date (YYYY-MM-DD, default start date)")
	cmd.Flags().StringVar(&rc.granularity, "granularity", "daily", "Report granularity (daily or hourly)")
	cmd.Flags().StringVar(&rc.format, "format", "table", "Output format (csv, json or table)")
	cmd.Flags().StringVar(&rc.output, "output", "-", "Output file, - for stdout")
	cmd.Flags().StringVar(&rc.backend, "backend", "api", "Warehouse backend to query")
	cmd.Flags().StringVar(&rc.profilePath, "profile", "", "Connection profile for databricks/snowflake backends")
	cmd.Flags().StringVar(&rc.timezone, "timezone", "", "Override the shop timezone instead of detecting it")
	cmd.Flags().StringVar(&rc.accountMap, "account-map", "", "Ini file mapping ad account ids to regions")
	cmd.Flags().StringVar(&rc.storePath, "store-path", "", "DuckDB file to persist the report into")
	cmd.Flags().StringVar(&rc.s3Bucket, "s3-bucket", "", "Publish report partitions to this S3 bucket")
	cmd.Flags().StringVar(&rc.s3Prefix, "s3-prefix", "", "Key prefix for S3 report objects")
	cmd.Flags().StringVar(&rc.awsProfile, "aws-profile", "", "AWS shared config profile for the S3 sink")

	return cmd
}

func (rc *ReportCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	granularity := domain.Granularity(rc.granularity)
	if !granularity.Valid() {
		return fmt.Errorf("unsupported granularity %q (expected daily or hourly)", rc.granularity)
	}
	format, err := export.ParseFormat(rc.format)
	if err != nil {
		return err
	}

	settings, err := config.Load(rc.configFile)
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if rc.accountMap != "" {
		accountMap, err := config.LoadAccountRegionMap(rc.accountMap)
		if err != nil {
			return err
		}
		settings.AccountRegionMap = accountMap
	}

	window, err := resolveWindow(rc.startDate, rc.endDate, rc.timezone, settings)
	if err != nil {
		return err
	}

	exec, err := rc.registry.Create(rc.backend, rc.profilePath)
	if err != nil {
		return fmt.Errorf("create %q backend: %w", rc.backend, err)
	}
	source := warehouse.NewSource(exec, settings.ShopDomain)

	var opts []fusion.Option
	if rc.timezone != "" {
		opts = append(opts, fusion.WithShopTimezone(rc.timezone))
	}
	controller := report.NewController(fusion.NewEngine(source, settings, opts...))

	var table *domain.ReportTable
	switch granularity {
	case domain.GranularityDaily:
		table, err = controller.DailyReport(ctx, window)
	case domain.GranularityHourly:
		table, err = controller.HourlyReport(ctx, window)
	}
	if err != nil {
		return err
	}

	if rc.storePath != "" {
		if err := rc.persist(cmd, settings.ShopDomain, granularity, window, table); err != nil {
			return err
		}
	}
	if rc.s3Bucket != "" {
		sink, err := s3.NewSinkFromProfile(ctx, rc.awsProfile, rc.s3Bucket, rc.s3Prefix)
		if err != nil {
			return err
		}
		if err := sink.Publish(ctx, granularity, table); err != nil {
			return err
		}
	}

	writer := cmd.OutOrStdout()
	if rc.output != "" && rc.output != "-" {
		f, err := os.Create(rc.output)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		writer = f
	}
	return export.NewReporter(writer).Handle(table, format)
}

func (rc *ReportCmd) persist(
	cmd *cobra.Command,
	shopDomain string,
	granularity domain.Granularity,
	window domain.Window,
	table *domain.ReportTable,
) error {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: rc.storePath})
	if err != nil {
		return fmt.Errorf("open report store: %w", err)
	}
	defer db.Close()

	store, err := duckdbreport.NewStore(db)
	if err != nil {
		return err
	}
	return store.Save(cmd.Context(), shopDomain, granularity, window, table)
}

// resolveWindow turns the date flags into a window spanning whole days.
// Flags win over the configured defaults; with neither, yesterday is used.
func resolveWindow(startFlag, endFlag, shopTimezone string, settings *config.Settings) (domain.Window, error) {
	startRaw := startFlag
	if startRaw == "" {
		startRaw = settings.DefaultStartDate
	}
	if startRaw == "" {
		startRaw = defaultStartDate(time.Now(), shopTimezone)
	}

	endRaw := endFlag
	if endRaw == "" {
		endRaw = settings.DefaultEndDate
	}
	if endRaw == "" {
		endRaw = startRaw
	}

	start, err := time.Parse(dateFormat, startRaw)
	if err != nil {
		return domain.Window{}, fmt.Errorf("parse start date %q: %w", startRaw, err)
	}
	end, err := time.Parse(dateFormat, endRaw)
	if err != nil {
		return domain.Window{}, fmt.Errorf("parse end date %q: %w", endRaw, err)
	}
	if end.Before(start) {
		return domain.Window{}, domain.ErrInvalidRange
	}

	return domain.Window{
		Start: start,
		End:   end.Add(24*time.Hour - time.Second),
	}, nil
}

// defaultStartDate is yesterday on the shop's local calendar when a timezone
// override is given. Without one the shop zone is only known after warehouse
// detection, which happens past window resolution, so UTC is used.
func defaultStartDate(now time.Time, shopTimezone string) string {
	loc := time.UTC
	if shopTimezone != "" {
		if l, err := time.LoadLocation(shopTimezone); err == nil {
			loc = l
		}
	}
	return now.In(loc).AddDate(0, 0, -1).Format(dateFormat)
}
