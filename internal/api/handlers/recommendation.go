package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/wonny/stockpick/internal/contracts"
	"github.com/wonny/stockpick/internal/store"
	"github.com/wonny/stockpick/pkg/logger"
)

// Recommender ranks a batch against preferences
type Recommender interface {
	Recommend(ctx context.Context, batch *contracts.Batch, prefs contracts.Preferences) (*contracts.Recommendation, error)
}

// RecommendationHandler handles recommendation API endpoints
// ⭐ SSOT: 추천 API 핸들러는 이 구조체에서만
type RecommendationHandler struct {
	recommender Recommender
	batches     BatchReader
	repo        contracts.RecommendationRepository // nil이면 이력 조회 불가
	validate    *validator.Validate
	logger      *logger.Logger
}

// NewRecommendationHandler creates a new recommendation handler. repo may be nil.
func NewRecommendationHandler(
	recommender Recommender,
	batches BatchReader,
	repo contracts.RecommendationRepository,
	log *logger.Logger,
) *RecommendationHandler {
	return &RecommendationHandler{
		recommender: recommender,
		batches:     batches,
		repo:        repo,
		validate:    validator.New(),
		logger:      log,
	}
}

// RecommendRequest represents a ranking request
type RecommendRequest struct {
	StockType     string `json:"stock_type"`
	TopN          *int   `json:"top_n" validate:"required,gte=0"`
	ESGImportance string `json:"esg_importance"` // high, medium, low (그 외는 low)
}

// Create ranks the latest batch against the posted preferences
// POST /api/recommendations
func (h *RecommendationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse request
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "top_n is required and must be zero or greater")
		return
	}

	batch := h.batches.Latest()
	if batch == nil {
		respondError(w, http.StatusServiceUnavailable, "Metrics are still being collected")
		return
	}

	prefs := contracts.Preferences{
		StockType:     req.StockType,
		TopN:          *req.TopN,
		ESGImportance: contracts.ESGImportance(req.ESGImportance),
	}

	rec, err := h.recommender.Recommend(ctx, batch, prefs)
	if err != nil && rec != nil {
		// 랭킹은 완료됨, 저장 실패만 기록하고 결과는 반환
		h.logger.WithField("recommendation_id", rec.ID).WithError(err).Warn("Failed to save recommendation")
	} else if err != nil {
		h.logger.WithError(err).Error("Failed to create recommendation")
		respondError(w, http.StatusInternalServerError, "Failed to create recommendation")
		return
	}

	respondJSON(w, http.StatusCreated, rec)
}

// Get returns a stored recommendation
// GET /api/recommendations/{id}
func (h *RecommendationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		respondError(w, http.StatusNotFound, "Recommendation history is disabled")
		return
	}

	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid recommendation id")
		return
	}

	rec, err := h.repo.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Recommendation not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get recommendation")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve recommendation")
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

// List returns the most recent stored recommendations
// GET /api/recommendations?limit=10
func (h *RecommendationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		respondError(w, http.StatusNotFound, "Recommendation history is disabled")
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	recs, err := h.repo.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list recommendations")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve recommendations")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"recommendations": recs,
		"count":           len(recs),
	})
}
