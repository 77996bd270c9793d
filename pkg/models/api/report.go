package api

// Report is the wire shape returned by the report endpoints. Records carry
// one JSON object per row so consumers never depend on positional columns;
// Columns preserves the canonical order for tabular renderers.
type Report struct {
	Granularity string           `json:"granularity"`
	Columns     []string         `json:"columns"`
	Records     []map[string]any `json:"records"`
}

// Error is the uniform error envelope.
type Error struct {
	Message string `json:"message"`
}
