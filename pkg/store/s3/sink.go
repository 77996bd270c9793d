package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/de-tools/growth-atlas/pkg/adapters"
	"github.com/de-tools/growth-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

const DefaultRegion = "us-east-1"

// PutObjectAPI is the slice of the S3 client the sink needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Sink uploads rendered report rows as partitioned JSON objects, one object
// per (region, local_date) partition.
type Sink struct {
	client PutObjectAPI
	bucket string
	prefix string
}

func NewSink(client PutObjectAPI, bucket, prefix string) (*Sink, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	if prefix == "" {
		prefix = "reports"
	}
	return &Sink{client: client, bucket: bucket, prefix: prefix}, nil
}

// NewSinkFromProfile builds a sink backed by a real S3 client using the
// shared AWS config chain.
func NewSinkFromProfile(ctx context.Context, profile, bucket, prefix string) (*Sink, error) {
	cfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithSharedConfigProfile(profile),
		awsconfig.WithDefaultRegion(DefaultRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return NewSink(s3.NewFromConfig(cfg), bucket, prefix)
}

// Publish writes one object per (region, local_date) partition under
// <prefix>/<granularity>/region=<r>/date=<d>/rows.json. Tables without the
// partition columns are rejected.
func (s *Sink) Publish(ctx context.Context, granularity domain.Granularity, table *domain.ReportTable) error {
	logger := zerolog.Ctx(ctx)

	if !granularity.Valid() {
		return fmt.Errorf("unknown granularity %q", granularity)
	}

	regionIdx := table.ColumnIndex("region")
	dateIdx := table.ColumnIndex("local_date")
	if regionIdx < 0 || dateIdx < 0 {
		return fmt.Errorf("table is missing partition columns (region, local_date)")
	}

	type partition struct {
		region string
		date   string
	}
	grouped := make(map[partition][]map[string]any)
	var order []partition

	records := adapters.MapReportTableToRecords(table)
	for i, record := range records {
		region, _ := table.Rows[i][regionIdx].(string)
		date, _ := table.Rows[i][dateIdx].(string)
		key := partition{region: region, date: date}
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], record)
	}

	for _, key := range order {
		body, err := json.Marshal(grouped[key])
		if err != nil {
			return fmt.Errorf("marshal partition rows: %w", err)
		}

		objectKey := fmt.Sprintf("%s/%s/region=%s/date=%s/rows.json", s.prefix, granularity, key.region, key.date)
		_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      awssdk.String(s.bucket),
			Key:         awssdk.String(objectKey),
			Body:        bytes.NewReader(body),
			ContentType: awssdk.String("application/json"),
		})
		if err != nil {
			return fmt.Errorf("put object %s: %w", objectKey, err)
		}

		logger.Debug().
			Str("bucket", s.bucket).
			Str("key", objectKey).
			Int("rows", len(grouped[key])).
			Msg("published report partition")
	}
	return nil
}
