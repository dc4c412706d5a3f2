package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"nhlstats/ingestion/internal/models"
	"nhlstats/ingestion/internal/store"
	"nhlstats/ingestion/internal/timeseries"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Deriver is the time-series surface exposed over HTTP
type Deriver interface {
	GoalSeries(ctx context.Context, teamID int, season models.Season, filter timeseries.Filter) (timeseries.Goals, error)
	TeamBoxScoreSeries(ctx context.Context, teamID int, season models.Season, filter timeseries.Filter) (*timeseries.BoxScoreSeries, error)
}

// HealthFunc reports backend health; nil means always healthy
type HealthFunc func(ctx context.Context) error

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	store   store.Store
	deriver Deriver
	health  HealthFunc
}

// NewHandler creates a new handler. deriver and health may be nil.
func NewHandler(st store.Store, deriver Deriver, health HealthFunc) *Handler {
	return &Handler{
		store:   st,
		deriver: deriver,
		health:  health,
	}
}

// HealthCheck returns the health status of the service
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.health != nil {
		if err := h.health(ctx); err != nil {
			respondError(w, http.StatusServiceUnavailable, "store unhealthy", err)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "nhlstats-ingestion",
	})
}

// GetMap returns one identifier map of a season
func (h *Handler) GetMap(w http.ResponseWriter, r *http.Request) {
	season, ok := parseSeason(w, r)
	if !ok {
		return
	}

	name := chi.URLParam(r, "key")
	if !store.IsMapKey(name) {
		respondError(w, http.StatusNotFound, "unknown identifier map "+name, nil)
		return
	}

	h.respondEntry(w, r, season, store.MapKey(name))
}

// GetTable returns the goalie or skater table of a season and report type
func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	season, ok := parseSeason(w, r)
	if !ok {
		return
	}

	table := chi.URLParam(r, "table")
	if table != store.GoalieStats && table != store.SkaterStats {
		respondError(w, http.StatusNotFound, "unknown stat table "+table, nil)
		return
	}

	h.respondEntry(w, r, season, store.TableKey(chi.URLParam(r, "reportType"), table))
}

// GetGoals returns the goal series of a team
// Query params: season, transform (none|cumulative|average), pre, post
func (h *Handler) GetGoals(w http.ResponseWriter, r *http.Request) {
	teamID, season, filter, ok := parseSeriesParams(w, r)
	if !ok {
		return
	}

	transform, err := parseTransform(r.URL.Query().Get("transform"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	goals, err := h.deriver.GoalSeries(r.Context(), teamID, season, filter)
	if err != nil {
		respondError(w, statusFor(err), "failed to derive goal series", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"season":    goals.Season,
		"teamId":    goals.TeamID,
		"gameIds":   goals.GameIDs,
		"transform": transform.String(),
		"for":       transform.Apply(goals.For),
		"against":   transform.Apply(goals.Against),
		"diff":      transform.Apply(goals.Diff()),
	})
}

// GetBoxScores returns the box-score series of a team
// Query params: season, pre, post
func (h *Handler) GetBoxScores(w http.ResponseWriter, r *http.Request) {
	teamID, season, filter, ok := parseSeriesParams(w, r)
	if !ok {
		return
	}

	series, err := h.deriver.TeamBoxScoreSeries(r.Context(), teamID, season, filter)
	if err != nil {
		respondError(w, statusFor(err), "failed to derive box score series", err)
		return
	}

	respondJSON(w, http.StatusOK, series)
}

func (h *Handler) respondEntry(w http.ResponseWriter, r *http.Request, season models.Season, key store.Key) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var raw json.RawMessage
	if err := h.store.Get(ctx, season, key, &raw); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, key.Path()+" not stored for season "+season.String(), nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to read store", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func parseSeason(w http.ResponseWriter, r *http.Request) (models.Season, bool) {
	season, err := models.ParseSeason(chi.URLParam(r, "season"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return "", false
	}
	return season, true
}

func parseSeriesParams(w http.ResponseWriter, r *http.Request) (int, models.Season, timeseries.Filter, bool) {
	teamID, err := strconv.Atoi(chi.URLParam(r, "teamID"))
	if err != nil || teamID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid team id", nil)
		return 0, "", timeseries.Filter{}, false
	}

	q := r.URL.Query()

	var season models.Season
	if s := q.Get("season"); s != "" {
		season, err = models.ParseSeason(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error(), nil)
			return 0, "", timeseries.Filter{}, false
		}
	}

	filter := timeseries.Filter{
		IncludePreseason:  parseBoolParam(r, "pre"),
		IncludePostseason: parseBoolParam(r, "post"),
	}

	return teamID, season, filter, true
}

func parseTransform(s string) (timeseries.Transform, error) {
	switch s {
	case "", "none":
		return timeseries.None, nil
	case "cumulative":
		return timeseries.Cumulative, nil
	case "average":
		return timeseries.Average, nil
	default:
		return timeseries.None, errors.New("transform must be one of none, cumulative, average")
	}
}

func parseBoolParam(r *http.Request, param string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(param))
	return err == nil && v
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, timeseries.ErrScheduleOrder):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		log.Error().Err(err).Int("status", status).Msg(message)
	}

	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
