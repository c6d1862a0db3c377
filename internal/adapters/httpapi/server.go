package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/bnema/fireteam-cli/internal/application"
	"github.com/bnema/fireteam-cli/internal/domain"
	"github.com/bnema/fireteam-cli/internal/slogx"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ProfileReader interface {
	GetProfile(ctx context.Context, identity domain.Identity, components []domain.Component) (domain.Profile, error)
}

type DefinitionReader interface {
	Definitions(ctx context.Context, kind, language, table string) (domain.DefinitionTable, error)
}

type SnapshotReader interface {
	Latest() *domain.Snapshot
	State() application.SchedulerState
	LastError() error
}

type Server struct {
	profiles    ProfileReader
	definitions DefinitionReader
	snapshots   SnapshotReader
	pageSize    int
}

func NewServer(profiles ProfileReader, definitions DefinitionReader, snapshots SnapshotReader, pageSize int) *Server {
	if pageSize <= 0 {
		pageSize = application.DefaultPageSize
	}
	return &Server{
		profiles:    profiles,
		definitions: definitions,
		snapshots:   snapshots,
		pageSize:    pageSize,
	}
}

// Router mounts the API, health and metrics routes.
func (s *Server) Router(logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(slogx.HTTPMiddleware(logger))
	r.Use(chiMiddleware.Recoverer)

	r.Get("/health", s.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/profile/{platform}/{membershipId}/{components}", s.GetProfile)
		r.Get("/reference/{type}/{lang}/{section}", s.GetReference)
		r.Get("/records", s.GetRecords)
		r.Get("/groups", s.GetGroups)
	})

	return r
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{Status: "ok", State: s.snapshots.State().String()}
	if latest := s.snapshots.Latest(); latest != nil {
		response.Generation = latest.Generation
	}
	if err := s.snapshots.LastError(); err != nil {
		response.Status = "degraded"
		response.LastError = err.Error()
	}

	JSON(w, http.StatusOK, response)
}

// GetProfile proxies one profile read with the session's credential.
func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	platform, err := domain.ParsePlatform(chi.URLParam(r, "platform"))
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	membershipID := strings.TrimSpace(chi.URLParam(r, "membershipId"))
	if membershipID == "" {
		Error(w, http.StatusBadRequest, "membership id is required")
		return
	}
	components, err := domain.ParseComponents(chi.URLParam(r, "components"))
	if err != nil || len(components) == 0 {
		Error(w, http.StatusBadRequest, "components must be a comma-separated list of integers")
		return
	}

	identity := domain.Identity{Platform: platform, MembershipID: membershipID}
	profile, err := s.profiles.GetProfile(r.Context(), identity, components)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	JSON(w, http.StatusOK, NewProfileResponse(profile))
}

func (s *Server) GetReference(w http.ResponseWriter, r *http.Request) {
	table, err := s.definitions.Definitions(
		r.Context(),
		chi.URLParam(r, "type"),
		chi.URLParam(r, "lang"),
		chi.URLParam(r, "section"),
	)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	JSON(w, http.StatusOK, table)
}

// GetRecords serves one ranked page of the latest snapshot. Query parameters:
// group, search, hide_completed, mode, sort, pin, limit.
func (s *Server) GetRecords(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := s.latest(w)
	if !ok {
		return
	}

	opts, limit, err := s.viewOptions(r)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	scored := application.Rescore(*snapshot, opts.Mode)
	page, err := application.View(scored.Catalog, scored.Scores, opts, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	JSON(w, http.StatusOK, NewRecordsResponse(page, scored, opts))
}

func (s *Server) GetGroups(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := s.latest(w)
	if !ok {
		return
	}

	mode, err := domain.ParseCompletionMode(r.URL.Query().Get("mode"))
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	scored := application.Rescore(*snapshot, mode)
	JSON(w, http.StatusOK, NewGroupsResponse(application.GroupSummaries(scored.Catalog, scored.Scores)))
}

func (s *Server) latest(w http.ResponseWriter) (*domain.Snapshot, bool) {
	snapshot := s.snapshots.Latest()
	if snapshot != nil {
		return snapshot, true
	}

	message := "no snapshot yet"
	if err := s.snapshots.LastError(); err != nil {
		message = fmt.Sprintf("%s: %v", message, err)
	}
	Error(w, http.StatusServiceUnavailable, message)
	return nil, false
}

func (s *Server) viewOptions(r *http.Request) (application.ViewOptions, int, error) {
	query := r.URL.Query()

	mode, err := domain.ParseCompletionMode(query.Get("mode"))
	if err != nil {
		return application.ViewOptions{}, 0, err
	}
	sortMode, err := application.ParseSortMode(query.Get("sort"))
	if err != nil {
		return application.ViewOptions{}, 0, err
	}

	opts := application.ViewOptions{
		Group:  domain.GroupID(query.Get("group")),
		Search: query.Get("search"),
		Sort:   sortMode,
		Mode:   mode,
	}

	if raw := query.Get("hide_completed"); raw != "" {
		hide, err := strconv.ParseBool(raw)
		if err != nil {
			return application.ViewOptions{}, 0, fmt.Errorf("invalid hide_completed %q", raw)
		}
		opts.HideCompleted = hide
	}
	if raw := query.Get("pin"); raw != "" {
		pin, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return application.ViewOptions{}, 0, fmt.Errorf("invalid pin %q", raw)
		}
		opts.Pin = uint32(pin)
	}

	limit := s.pageSize
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return application.ViewOptions{}, 0, fmt.Errorf("invalid limit %q", raw)
		}
		limit = n
	}

	return opts, limit, nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Warn("request failed", "error", err)
	}
	Error(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrAuth), errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUnknownGroup),
		errors.Is(err, domain.ErrUnknownDefinition),
		errors.Is(err, domain.ErrUnresolvableIdentity):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUpstreamUnavailable), errors.Is(err, domain.ErrMalformedData):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
