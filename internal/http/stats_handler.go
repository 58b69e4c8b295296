package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/event-checkin/internal/application"
)

type statsService interface {
	SkillFrequencies(ctx context.Context, filter application.FrequencyFilter) ([]application.SkillFrequency, error)
	ScanFrequencies(ctx context.Context, filter application.FrequencyFilter) ([]application.ScanFrequency, error)
	SignInHistogram(ctx context.Context, start, end time.Time) ([]application.HistogramBucket, error)
}

// StatsHandler exposes the frequency and histogram endpoints.
type StatsHandler struct {
	service   statsService
	responder responder
	logger    *slog.Logger
}

// NewStatsHandler wires the aggregation endpoints.
func NewStatsHandler(service statsService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{service: service, responder: newResponder(logger), logger: defaultLogger(logger)}
}

func (h *StatsHandler) SkillFrequencies(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	filter, err := parseFrequencyFilter(r.URL.Query())
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	rows, err := h.service.SkillFrequencies(r.Context(), filter)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]skillFrequencyDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, skillFrequencyDTO{Skill: row.Skill, Count: row.Count})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

func (h *StatsHandler) ScanFrequencies(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	filter, err := parseFrequencyFilter(r.URL.Query())
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	rows, err := h.service.ScanFrequencies(r.Context(), filter)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]scanFrequencyDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, scanFrequencyDTO{
			ActivityName:     row.ActivityName,
			ActivityCategory: row.ActivityCategory,
			Count:            row.Count,
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

func (h *StatsHandler) SignInHistogram(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	start, err := parseTimeParam(query, "start")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	end, err := parseTimeParam(query, "end")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	buckets, err := h.service.SignInHistogram(r.Context(), start, end)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]histogramBucketDTO, 0, len(buckets))
	for _, bucket := range buckets {
		dtos = append(dtos, histogramBucketDTO{Hour: bucket.Hour, Count: bucket.Count})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

func parseFrequencyFilter(query url.Values) (application.FrequencyFilter, error) {
	var filter application.FrequencyFilter

	if raw := strings.TrimSpace(query.Get("min")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return filter, errors.New("min must be an integer")
		}
		filter.Min = &value
	}
	if raw := strings.TrimSpace(query.Get("max")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return filter, errors.New("max must be an integer")
		}
		filter.Max = &value
	}
	if raw := strings.TrimSpace(query.Get("category")); raw != "" {
		filter.Category = &raw
	}
	return filter, nil
}

func parseTimeParam(query url.Values, name string) (time.Time, error) {
	raw := strings.TrimSpace(query.Get(name))
	if raw == "" {
		return time.Time{}, errors.New(name + " is required in RFC 3339 form")
	}
	value, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.New(name + " must be an RFC 3339 timestamp")
	}
	return value, nil
}

type skillFrequencyDTO struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

type scanFrequencyDTO struct {
	ActivityName     string `json:"activity_name"`
	ActivityCategory string `json:"activity_category"`
	Count            int    `json:"count"`
}

type histogramBucketDTO struct {
	Hour  string `json:"hour"`
	Count int    `json:"count"`
}
