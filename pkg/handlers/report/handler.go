package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/de-tools/growth-atlas/pkg/adapters"
	"github.com/de-tools/growth-atlas/pkg/models/api"
	"github.com/de-tools/growth-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

const dateFormat = "2006-01-02"

// Service is the reporting pipeline surface the handler calls into.
// report.Controller satisfies it.
type Service interface {
	DailyReport(ctx context.Context, window domain.Window) (*domain.ReportTable, error)
	HourlyReport(ctx context.Context, window domain.Window) (*domain.ReportTable, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetDailyReport(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, domain.GranularityDaily)
}

func (h *Handler) GetHourlyReport(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, domain.GranularityHourly)
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, granularity domain.Granularity) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	window, err := parseWindow(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var table *domain.ReportTable
	switch granularity {
	case domain.GranularityDaily:
		table, err = h.service.DailyReport(ctx, window)
	case domain.GranularityHourly:
		table, err = h.service.HourlyReport(ctx, window)
	}
	if err != nil {
		status := http.StatusInternalServerError
		var cfgErr *domain.ConfigurationError
		if errors.Is(err, domain.ErrInvalidRange) {
			status = http.StatusBadRequest
		} else if errors.As(err, &cfgErr) {
			status = http.StatusServiceUnavailable
		}
		logger.Error().Err(err).Str("granularity", string(granularity)).Msg("report build failed")
		writeError(w, status, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(adapters.MapReportTableToApi(string(granularity), table)); err != nil {
		logger.Error().Err(err).Msg("failed to encode report")
	}
}

// parseWindow reads the start/end query params as ISO dates. Missing start
// defaults to yesterday, missing end to start; end is extended to the end of
// its day.
func parseWindow(r *http.Request) (domain.Window, error) {
	startRaw := r.URL.Query().Get("start")
	if startRaw == "" {
		startRaw = time.Now().UTC().AddDate(0, 0, -1).Format(dateFormat)
	}
	start, err := time.Parse(dateFormat, startRaw)
	if err != nil {
		return domain.Window{}, fmt.Errorf("invalid 'start' date format. Expected format: YYYY-MM-DD")
	}

	endRaw := r.URL.Query().Get("end")
	if endRaw == "" {
		endRaw = startRaw
	}
	end, err := time.Parse(dateFormat, endRaw)
	if err != nil {
		return domain.Window{}, fmt.Errorf("invalid 'end' date format. Expected format: YYYY-MM-DD")
	}
	if end.Before(start) {
		return domain.Window{}, fmt.Errorf("'end' date precedes 'start' date")
	}

	return domain.Window{Start: start, End: end.Add(24*time.Hour - time.Second)}, nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.Error{Message: message})
}
