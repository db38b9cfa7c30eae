// Package api exposes the question pipeline over HTTP and MCP. The HTTP
// surface is a small JSON API for collaborating apps; the MCP surface lets
// assistants drive the same pipeline as tools.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kindlingapp/kindling/internal/composer"
	"github.com/kindlingapp/kindling/internal/generation"
	"github.com/kindlingapp/kindling/internal/overlap"
	"github.com/kindlingapp/kindling/internal/pipeline"
	"github.com/kindlingapp/kindling/internal/profile"
	"github.com/kindlingapp/kindling/internal/storage"
	"github.com/kindlingapp/kindling/internal/validate"
)

const maxRequestBodySize = 1 << 20 // 1MB

// AppDeps holds dependencies for the HTTP API.
type AppDeps struct {
	Pipeline *pipeline.Engine
	Store    *storage.Store
	Token    string
}

// QuestionsRequest is the body of POST /v1/questions. Profile, context and
// preference records are loosely typed; normalization happens inside the
// pipeline. SelfHandle and OtherHandle load saved profiles instead of
// inline records.
type QuestionsRequest struct {
	Mode        string         `json:"mode"`
	Self        map[string]any `json:"self"`
	Other       map[string]any `json:"other"`
	SelfHandle  string         `json:"self_handle"`
	OtherHandle string         `json:"other_handle"`
	Context     map[string]any `json:"context"`
	Preferences map[string]any `json:"preferences"`
	Notes       string         `json:"notes"`
}

// ProfileRequest is the body of PUT /v1/profiles/{handle}.
type ProfileRequest struct {
	Name            string   `json:"name"`
	Role            string   `json:"role"`
	Company         string   `json:"company"`
	School          string   `json:"school"`
	Interests       []string `json:"interests"`
	GoalsNextPeriod []string `json:"goals_next_period"`
	RecentWin       string   `json:"recent_win"`
	HelpOffers      []string `json:"help_offers"`
	Notes           string   `json:"notes"`
}

// NewAppHandler returns the HTTP handler for the question API.
func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Post("/v1/questions", handleQuestions(deps))
		r.Post("/v1/overlap", handleOverlap)
		r.Get("/v1/profiles", handleListProfiles(deps))
		r.Get("/v1/profiles/{handle}", handleGetProfile(deps))
		r.Put("/v1/profiles/{handle}", handlePutProfile(deps))
		r.Delete("/v1/profiles/{handle}", handleDeleteProfile(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleQuestions(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req QuestionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		preq := pipeline.Request{
			Mode:        composer.Mode(req.Mode),
			Self:        req.Self,
			Other:       req.Other,
			Context:     req.Context,
			Preferences: req.Preferences,
			Notes:       req.Notes,
		}

		if req.SelfHandle != "" {
			rec, notes, err := loadProfileRecord(deps.Store, req.SelfHandle)
			if err != nil {
				writeProfileLookupError(w, req.SelfHandle, err)
				return
			}
			preq.Self = rec
			preq.Notes = joinNotes(preq.Notes, notes)
		}
		if req.OtherHandle != "" {
			rec, notes, err := loadProfileRecord(deps.Store, req.OtherHandle)
			if err != nil {
				writeProfileLookupError(w, req.OtherHandle, err)
				return
			}
			preq.Other = rec
			preq.Notes = joinNotes(preq.Notes, notes)
		}

		if preq.Self == nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "self profile is required")
			return
		}

		reqID := uuid.New().String()
		start := time.Now()

		set, err := deps.Pipeline.Generate(r.Context(), preq)
		if err != nil {
			writePipelineError(w, err)
			return
		}

		slog.Info("questions served",
			"request_id", reqID,
			"mode", req.Mode,
			"questions", len(set.Questions),
			"duration_ms", time.Since(start).Milliseconds(),
		)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(set)
	}
}

// handleOverlap exposes the deterministic overlap stage on its own, so
// collaborating apps can show commonalities without a generation call.
func handleOverlap(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()

	var req QuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return
	}
	if req.Self == nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "self profile is required")
		return
	}

	self := profile.NormalizeProfile(req.Self)
	var other *profile.Profile
	if req.Other != nil {
		o := profile.NormalizeProfile(req.Other)
		other = &o
	}
	summary := overlap.Detect(self, other, profile.NormalizeContext(req.Context))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

func handleListProfiles(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profiles, err := deps.Store.ListProfiles()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "listing profiles: %v", err)
			return
		}

		out := make([]map[string]any, 0, len(profiles))
		for _, p := range profiles {
			out = append(out, profileResponse(p))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"profiles": out})
	}
}

func handleGetProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handle := chi.URLParam(r, "handle")
		p, err := deps.Store.GetProfile(handle)
		if err != nil {
			writeProfileLookupError(w, handle, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(profileResponse(p))
	}
}

func handlePutProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handle := chi.URLParam(r, "handle")

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req ProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		p := storage.StoredProfile{
			ID:              uuid.New().String(),
			Handle:          handle,
			Name:            req.Name,
			Role:            req.Role,
			Company:         req.Company,
			School:          req.School,
			Interests:       storage.EncodeList(req.Interests),
			GoalsNextPeriod: storage.EncodeList(req.GoalsNextPeriod),
			RecentWin:       req.RecentWin,
			HelpOffers:      storage.EncodeList(req.HelpOffers),
			Notes:           req.Notes,
		}
		if err := deps.Store.SaveProfile(p); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "saving profile: %v", err)
			return
		}

		saved, err := deps.Store.GetProfile(handle)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "reloading profile: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(profileResponse(saved))
	}
}

func handleDeleteProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handle := chi.URLParam(r, "handle")
		if err := deps.Store.DeleteProfile(handle); err != nil {
			writeProfileLookupError(w, handle, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"deleted":true}`))
	}
}

func profileResponse(p storage.StoredProfile) map[string]any {
	rec := p.Record()
	rec["handle"] = p.Handle
	if p.Notes != "" {
		rec["notes"] = p.Notes
	}
	rec["updated_at"] = p.UpdatedAt.UTC().Format(time.RFC3339)
	return rec
}

func loadProfileRecord(store *storage.Store, handle string) (map[string]any, string, error) {
	if store == nil {
		return nil, "", fmt.Errorf("profile storage is not configured")
	}
	p, err := store.GetProfile(handle)
	if err != nil {
		return nil, "", err
	}
	return p.Record(), p.Notes, nil
}

func joinNotes(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + "\n\n" + b
}

// writePipelineError maps pipeline failures onto HTTP statuses: backend
// trouble is a gateway problem, an unsatisfiable question set is the
// request's problem.
func writePipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, generation.ErrUnavailable):
		httpError(w, http.StatusBadGateway, "api_error", "generation backend unavailable: %v", err)
	case errors.Is(err, generation.ErrMalformedOutput):
		httpError(w, http.StatusBadGateway, "api_error", "generation output unusable: %v", err)
	case errors.Is(err, validate.ErrConstraintViolation),
		errors.Is(err, validate.ErrInsufficientValidQuestions):
		httpError(w, http.StatusUnprocessableEntity, "invalid_request_error", "%v", err)
	default:
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
	}
}

func writeProfileLookupError(w http.ResponseWriter, handle string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		httpError(w, http.StatusNotFound, "invalid_request_error", "profile %q not found", handle)
		return
	}
	httpError(w, http.StatusInternalServerError, "api_error", "loading profile %q: %v", handle, err)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
