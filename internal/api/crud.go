package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/patrickwarner/adslots/internal/middleware"
	"github.com/patrickwarner/adslots/internal/models"
)

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func decodeAd(r *http.Request) (models.AdRecord, error) {
	defer func() {
		_ = r.Body.Close()
	}()
	var ad models.AdRecord
	err := json.NewDecoder(r.Body).Decode(&ad)
	return ad, err
}

// ListAds handles GET /api/ads.
func (s *Server) ListAds(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if s.AdStore == nil {
		s.observe("ads_list", "GET", http.StatusInternalServerError, start)
		http.Error(w, "data store unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s.AdStore.GetAllAds())
	s.observe("ads_list", "GET", http.StatusOK, start)
}

// GetAd handles GET /api/ads/{id}.
func (s *Server) GetAd(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if s.AdStore == nil {
		s.observe("ads_get", "GET", http.StatusInternalServerError, start)
		http.Error(w, "data store unavailable", http.StatusInternalServerError)
		return
	}
	ad := s.AdStore.GetAd(mux.Vars(r)["id"])
	if ad == nil {
		s.observe("ads_get", "GET", http.StatusNotFound, start)
		http.Error(w, "ad not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, ad)
	s.observe("ads_get", "GET", http.StatusOK, start)
}

// CreateAd handles POST /api/ads. A missing ID is assigned a UUID.
func (s *Server) CreateAd(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "ads_create"
	const method = "POST"
	logger := middleware.LoggerFromRequest(r, s.Logger)

	if s.AdStore == nil {
		s.observe(endpoint, method, http.StatusInternalServerError, start)
		http.Error(w, "data store unavailable", http.StatusInternalServerError)
		return
	}
	ad, err := decodeAd(r)
	if err != nil {
		s.observe(endpoint, method, http.StatusBadRequest, start)
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if ad.ID == "" {
		ad.ID = uuid.NewString()
	}
	if err := ad.Validate(); err != nil {
		s.observe(endpoint, method, http.StatusBadRequest, start)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if s.AdStore.GetAd(ad.ID) != nil {
		s.observe(endpoint, method, http.StatusConflict, start)
		http.Error(w, "ad already exists", http.StatusConflict)
		return
	}

	// First persist to PostgreSQL
	if s.PG != nil {
		if err := s.PG.InsertAd(r.Context(), ad); err != nil {
			logger.Error("insert ad to postgres", zap.Error(err))
			s.observe(endpoint, method, http.StatusInternalServerError, start)
			http.Error(w, "failed to persist ad", http.StatusInternalServerError)
			return
		}
	}

	if err := s.AdStore.InsertAd(ad); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, models.ErrDuplicateID) {
			status = http.StatusConflict
		}
		logger.Error("insert ad to data store", zap.Error(err))
		s.observe(endpoint, method, status, start)
		http.Error(w, err.Error(), status)
		return
	}

	s.notifyUpdate(r.Context(), "create", ad.ID)
	writeJSON(w, http.StatusCreated, ad)
	s.observe(endpoint, method, http.StatusCreated, start)
}

// UpdateAd handles PUT /api/ads/{id}. The body replaces the whole record.
func (s *Server) UpdateAd(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "ads_update"
	const method = "PUT"
	logger := middleware.LoggerFromRequest(r, s.Logger)

	if s.AdStore == nil {
		s.observe(endpoint, method, http.StatusInternalServerError, start)
		http.Error(w, "data store unavailable", http.StatusInternalServerError)
		return
	}
	id := mux.Vars(r)["id"]
	ad, err := decodeAd(r)
	if err != nil {
		s.observe(endpoint, method, http.StatusBadRequest, start)
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	ad.ID = id
	if err := ad.Validate(); err != nil {
		s.observe(endpoint, method, http.StatusBadRequest, start)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if s.AdStore.GetAd(id) == nil {
		s.observe(endpoint, method, http.StatusNotFound, start)
		http.Error(w, "ad not found", http.StatusNotFound)
		return
	}

	if s.PG != nil {
		if err := s.PG.UpdateAd(r.Context(), ad); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, models.ErrNotFound) {
				status = http.StatusNotFound
			}
			logger.Error("update ad in postgres", zap.Error(err))
			s.observe(endpoint, method, status, start)
			http.Error(w, "failed to persist ad", status)
			return
		}
	}

	if err := s.AdStore.UpdateAd(ad); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, models.ErrNotFound) {
			status = http.StatusNotFound
		}
		logger.Error("update ad in data store", zap.Error(err))
		s.observe(endpoint, method, status, start)
		http.Error(w, err.Error(), status)
		return
	}

	s.notifyUpdate(r.Context(), "update", id)
	writeJSON(w, http.StatusOK, ad)
	s.observe(endpoint, method, http.StatusOK, start)
}

// DeleteAd handles DELETE /api/ads/{id}. Deletion is permanent.
func (s *Server) DeleteAd(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "ads_delete"
	const method = "DELETE"
	logger := middleware.LoggerFromRequest(r, s.Logger)

	if s.AdStore == nil {
		s.observe(endpoint, method, http.StatusInternalServerError, start)
		http.Error(w, "data store unavailable", http.StatusInternalServerError)
		return
	}
	id := mux.Vars(r)["id"]

	if s.PG != nil {
		if err := s.PG.DeleteAd(r.Context(), id); err != nil && !errors.Is(err, models.ErrNotFound) {
			logger.Error("delete ad from postgres", zap.Error(err))
			s.observe(endpoint, method, http.StatusInternalServerError, start)
			http.Error(w, "failed to delete ad", http.StatusInternalServerError)
			return
		}
	}

	if err := s.AdStore.DeleteAd(id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.observe(endpoint, method, http.StatusNotFound, start)
			http.Error(w, "ad not found", http.StatusNotFound)
			return
		}
		logger.Error("delete ad from data store", zap.Error(err))
		s.observe(endpoint, method, http.StatusInternalServerError, start)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.notifyUpdate(r.Context(), "delete", id)
	w.WriteHeader(http.StatusNoContent)
	s.observe(endpoint, method, http.StatusNoContent, start)
}
