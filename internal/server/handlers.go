package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"contrarian-screener/internal/logger"
	"contrarian-screener/internal/report"
	"contrarian-screener/internal/research/contrarian"
	"contrarian-screener/internal/universe"
	"contrarian-screener/internal/watchlist"
)

const (
	defaultMinScore = 50
	defaultLimit    = 50
)

type addWatchRequest struct {
	Ticker string `json:"ticker" validate:"required,max=12"`
	Note   string `json:"note" validate:"max=500"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"service":    "contrarian-screener",
		"started_at": s.startedAt.UTC().Format(time.RFC3339),
		"universes":  universe.Names(),
	})
}

func (s *Server) handleUniverses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, universe.Sizes())
}

func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	ticker := contrarian.NormalizeTicker(chi.URLParam(r, "ticker"))
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	res, err := s.screener.ScoreOne(r.Context(), ticker)
	if err != nil {
		logger.Warn(r.Context(), "Stock analysis failed", "ticker", ticker, "error", err)
		writeError(w, http.StatusNotFound, "could not fetch data for "+ticker)
		return
	}

	writeJSON(w, http.StatusOK, report.NewAnalysis(res))
}

func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var tickers []string
	var err error
	if list := q.Get("tickers"); list != "" {
		tickers, err = universe.Resolve(list)
	} else {
		name := q.Get("universe")
		if name == "" {
			name = s.defaultUniverse
		}
		tickers, err = universe.Get(name)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	minScore, err := floatParam(q.Get("min_score"), defaultMinScore)
	if err != nil || minScore < 0 || minScore > 100 {
		writeError(w, http.StatusBadRequest, "min_score must be a number between 0 and 100")
		return
	}
	limit, err := intParam(q.Get("limit"), defaultLimit)
	if err != nil || limit < 0 {
		writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}

	rep, err := s.screener.Screen(r.Context(), tickers, contrarian.ScreenOptions{
		MinScore:    minScore,
		Limit:       limit,
		Concurrency: s.concurrency,
	})
	if err != nil {
		if errors.Is(err, contrarian.ErrEmptyUniverse) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.ErrorWithErr(r.Context(), "Screen failed", err, "tickers", len(tickers))
		writeError(w, http.StatusInternalServerError, "screen failed")
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleWatchlistList(w http.ResponseWriter, r *http.Request) {
	if s.watchlist == nil {
		writeError(w, http.StatusServiceUnavailable, "watchlist not configured")
		return
	}

	entries, err := s.watchlist.List(r.Context())
	if err != nil {
		logger.ErrorWithErr(r.Context(), "Failed to list watchlist", err)
		writeError(w, http.StatusInternalServerError, "failed to list watchlist")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleWatchlistAdd(w http.ResponseWriter, r *http.Request) {
	if s.watchlist == nil {
		writeError(w, http.StatusServiceUnavailable, "watchlist not configured")
		return
	}

	var req addWatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Ticker = strings.TrimSpace(req.Ticker)
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	entry, err := s.watchlist.Add(r.Context(), req.Ticker, req.Note)
	switch {
	case errors.Is(err, watchlist.ErrAlreadyWatched):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		logger.ErrorWithErr(r.Context(), "Failed to add to watchlist", err, "ticker", req.Ticker)
		writeError(w, http.StatusInternalServerError, "failed to add to watchlist")
	default:
		writeJSON(w, http.StatusCreated, entry)
	}
}

func (s *Server) handleWatchlistRemove(w http.ResponseWriter, r *http.Request) {
	if s.watchlist == nil {
		writeError(w, http.StatusServiceUnavailable, "watchlist not configured")
		return
	}

	ticker := chi.URLParam(r, "ticker")
	err := s.watchlist.Remove(r.Context(), ticker)
	switch {
	case errors.Is(err, watchlist.ErrNotWatched):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		logger.ErrorWithErr(r.Context(), "Failed to remove from watchlist", err, "ticker", ticker)
		writeError(w, http.StatusInternalServerError, "failed to remove from watchlist")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// validationMessage flattens validator errors into "field: rule" pairs
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, strings.ToLower(fe.Field())+": "+fe.Tag())
	}
	return "invalid request: " + strings.Join(parts, ", ")
}

func floatParam(raw string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error(context.Background(), "Failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
