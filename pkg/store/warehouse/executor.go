package warehouse

import (
	"context"
	"time"

	"github.com/de-tools/growth-atlas/pkg/models/store"
)

// Executor runs an analytics SQL query against a warehouse backend and
// materializes the full row set before returning. The engine treats it as an
// opaque row-returning function: no streaming, no partial consumption.
type Executor interface {
	ExecuteSQL(ctx context.Context, shopDomain, query string, start, end time.Time) ([]store.Row, error)
}
