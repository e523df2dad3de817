package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"wager-lab/internal/domain"
	"wager-lab/internal/simulation"
	"wager-lab/internal/storage"
)

const maxBodyBytes = 1 << 16

// SimulationRequest is the body of POST /api/v1/simulations and the first WebSocket message.
// Config fields left out keep their defaults.
type SimulationRequest struct {
	Config  domain.GameConfig `json:"config"`
	Seed    int64             `json:"seed"`
	Workers int               `json:"workers"`
}

// ListResponse is the body of GET /api/v1/simulations.
type ListResponse struct {
	Runs []*domain.SimulationRun `json:"runs"`
}

// ResultsResponse is the body of GET /api/v1/simulations/{id}/results.
type ResultsResponse struct {
	RunID  string    `json:"run_id"`
	Stakes []float64 `json:"stakes"`
}

type errorResponse struct {
	Error string `json:"error"`
}

var errStorageDisabled = errors.New("run storage is not configured")

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	req := s.newRequest()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	run, err := s.execute(r.Context(), req, nil)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, run)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.runStore == nil {
		s.fail(w, errStorageDisabled)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}

	runs, err := s.runStore.List(r.Context(), limit)
	if err != nil {
		s.fail(w, err)
		return
	}
	if runs == nil {
		runs = []*domain.SimulationRun{}
	}
	writeJSON(w, http.StatusOK, ListResponse{Runs: runs})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if s.runStore == nil {
		s.fail(w, errStorageDisabled)
		return
	}

	run, err := s.runStore.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if s.resultStore == nil {
		s.fail(w, errStorageDisabled)
		return
	}

	id := chi.URLParam(r, "id")
	stakes, err := s.resultStore.GetByRunID(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ResultsResponse{RunID: id, Stakes: stakes})
}

func (s *Server) newRequest() SimulationRequest {
	return SimulationRequest{Config: s.defaults}
}

// execute applies the API limits and runs the simulation.
func (s *Server) execute(ctx context.Context, req SimulationRequest, onProgress simulation.ProgressFunc) (*domain.SimulationRun, error) {
	if req.Config.NumSimulations > s.maxSimulations {
		return nil, &domain.ConfigError{
			Field:  "num_simulations",
			Value:  req.Config.NumSimulations,
			Reason: fmt.Sprintf("must not exceed %d", s.maxSimulations),
		}
	}
	if c := req.Config; c.NumSimulations > 0 && c.TotalGames > 0 &&
		int64(c.TotalGames) > s.maxDraws/int64(c.NumSimulations) {
		return nil, &domain.ConfigError{
			Field:  "total_games",
			Value:  c.TotalGames,
			Reason: fmt.Sprintf("times num_simulations (%d) must not exceed %d games per request", c.NumSimulations, s.maxDraws),
		}
	}
	if req.Workers < 0 {
		return nil, &domain.ConfigError{Field: "workers", Value: req.Workers, Reason: "must not be negative"}
	}
	if req.Workers > s.maxWorkers {
		req.Workers = s.maxWorkers
	}

	run, _, err := s.runner.Run(ctx, simulation.RunRequest{
		Config:     req.Config,
		Seed:       req.Seed,
		Workers:    req.Workers,
		OnProgress: onProgress,
	})
	return run, err
}

// fail maps err to a status code and writes it.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	writeError(w, status, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidConfig), errors.Is(err, storage.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errStorageDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
