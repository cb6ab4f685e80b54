package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/user/bookmeta/internal/delivery/http/request"
	"github.com/user/bookmeta/internal/delivery/http/response"
	"github.com/user/bookmeta/internal/repository"
	"github.com/user/bookmeta/internal/usecase"
)

type Handler struct {
	extraction usecase.Extraction
	injection  usecase.Injection
	store      *usecase.Store
	logger     *zap.Logger
}

func NewHandler(extraction usecase.Extraction, injection usecase.Injection, store *usecase.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		extraction: extraction,
		injection:  injection,
		store:      store,
		logger:     logger,
	}
}

func (h *Handler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	var req request.ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := url.ParseRequestURI(req.URL); err != nil {
		h.writeJSONError(w, "Invalid URL format", http.StatusBadRequest)
		return
	}

	res, err := h.extraction.ExtractURL(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, usecase.ErrNoExtractor) {
			h.writeJSONError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		h.logger.Error("failed to extract", zap.String("url", req.URL), zap.Error(err))
		h.writeJSONError(w, "Could not load page", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, http.StatusOK, response.ExtractResponse{
		Source:      res.Source,
		URL:         res.URL,
		Record:      res.Record,
		Diagnostics: res.Diagnostics,
		ExtractedAt: res.ExtractedAt,
	})
}

func (h *Handler) HandleGetRecord(w http.ResponseWriter, r *http.Request) {
	stored := h.store.Load(r.Context())
	resp := response.RecordResponse{Record: stored.Record}
	if !stored.SavedAt.IsZero() {
		resp.SavedAt = &stored.SavedAt
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleClearRecord(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		h.logger.Error("failed to clear record", zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleRecordForm(w http.ResponseWriter, r *http.Request) {
	plan, err := h.injection.Plan(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrNothingToInject) {
			h.writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, response.FormResponse{Assignments: plan})
}

func (h *Handler) HandleInject(w http.ResponseWriter, r *http.Request) {
	var req request.InjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if _, err := url.ParseRequestURI(req.TargetURL); err != nil {
		h.writeJSONError(w, "Invalid URL format", http.StatusBadRequest)
		return
	}

	plan, err := h.injection.Plan(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrNothingToInject) {
			h.writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	filled, err := h.injection.Inject(r.Context(), req.TargetURL)
	if errors.Is(err, repository.ErrFormNotPersisted) {
		h.writeJSONError(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		h.logger.Error("failed to inject record", zap.String("target", req.TargetURL), zap.Error(err))
		h.writeJSONError(w, "Could not fill target form", http.StatusBadGateway)
		return
	}
	h.writeJSON(w, http.StatusOK, response.InjectResponse{TargetURL: req.TargetURL, Planned: len(plan), Filled: filled})
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Error("health check failed for record store", zap.Error(err))
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "store": "unhealthy"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "store": "healthy"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
