package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockpick/internal/contracts"
	"github.com/wonny/stockpick/internal/pipeline"
	"github.com/wonny/stockpick/internal/scheduler"
	"github.com/wonny/stockpick/internal/selection"
	"github.com/wonny/stockpick/internal/store"
	"github.com/wonny/stockpick/pkg/logger"
)

type fakeRepo struct {
	recs    map[string]*contracts.Recommendation
	err     error
	saveErr error
}

func (f *fakeRepo) Save(ctx context.Context, rec *contracts.Recommendation) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.recs[rec.ID] = rec
	return nil
}

func (f *fakeRepo) Get(ctx context.Context, id string) (*contracts.Recommendation, error) {
	if f.err != nil {
		return nil, f.err
	}
	rec, ok := f.recs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return rec, nil
}

func (f *fakeRepo) ListRecent(ctx context.Context, limit int) ([]contracts.Recommendation, error) {
	out := make([]contracts.Recommendation, 0, len(f.recs))
	for _, rec := range f.recs {
		out = append(out, *rec)
	}
	return out, f.err
}

func testBatch() *contracts.Batch {
	return &contracts.Batch{
		Metrics: []contracts.SecurityMetrics{
			{Ticker: "A", PriceChangePct: contracts.Some(10), ProfitMarginPct: contracts.Some(20), EPSGrowthPct: contracts.Some(0)},
			{Ticker: "B", PriceChangePct: contracts.Some(0), ProfitMarginPct: contracts.Some(0), EPSGrowthPct: contracts.Some(100)},
		},
		Skipped: []contracts.SkippedSecurity{{Ticker: "C", Reason: "no price history"}},
	}
}

func newRecommendationHandler(batch *contracts.Batch, repo contracts.RecommendationRepository) *RecommendationHandler {
	log := logger.NewNop()
	snapshot := pipeline.NewSnapshot()
	if batch != nil {
		snapshot.Store(batch)
	}
	orch := pipeline.NewOrchestrator(nil, selection.NewRanker(log), repo, log)
	return NewRecommendationHandler(orch, snapshot, repo, log)
}

func TestRecommendationHandler_Create(t *testing.T) {
	repo := &fakeRepo{recs: map[string]*contracts.Recommendation{}}
	h := newRecommendationHandler(testBatch(), repo)

	body := `{"stock_type":"risky","top_n":5,"esg_importance":"High"}`
	req := httptest.NewRequest(http.MethodPost, "/api/recommendations", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Create(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var rec contracts.Recommendation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	require.Len(t, rec.Results, 2)
	assert.Equal(t, "B", rec.Results[0].Ticker)
	assert.InDelta(t, 40.0, rec.Results[0].OverallScore, 1e-9)
	assert.Equal(t, contracts.ESGHigh, rec.Preferences.ESGImportance)
	assert.Contains(t, repo.recs, rec.ID)
}

func TestRecommendationHandler_CreateSaveFailure(t *testing.T) {
	repo := &fakeRepo{recs: map[string]*contracts.Recommendation{}, saveErr: errors.New("connection refused")}
	h := newRecommendationHandler(testBatch(), repo)

	req := httptest.NewRequest(http.MethodPost, "/api/recommendations", strings.NewReader(`{"top_n":1,"esg_importance":"high"}`))
	w := httptest.NewRecorder()
	h.Create(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var rec contracts.Recommendation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	require.Len(t, rec.Results, 1)
	assert.Equal(t, "B", rec.Results[0].Ticker)
	assert.NotEmpty(t, rec.ID)
	assert.Empty(t, repo.recs)
}

func TestRecommendationHandler_CreateBadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing top_n", `{"esg_importance":"high"}`},
		{"negative top_n", `{"top_n":-1}`},
	}

	h := newRecommendationHandler(testBatch(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/recommendations", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.Create(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRecommendationHandler_CreateBeforeFirstBatch(t *testing.T) {
	h := newRecommendationHandler(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/recommendations", strings.NewReader(`{"top_n":3}`))
	w := httptest.NewRecorder()
	h.Create(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRecommendationHandler_Get(t *testing.T) {
	id := uuid.NewString()
	repo := &fakeRepo{recs: map[string]*contracts.Recommendation{
		id: {ID: id, Preferences: contracts.Preferences{TopN: 1}},
	}}
	h := newRecommendationHandler(testBatch(), repo)

	tests := []struct {
		name string
		id   string
		want int
	}{
		{"found", id, http.StatusOK},
		{"not found", uuid.NewString(), http.StatusNotFound},
		{"invalid id", "abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/recommendations/"+tt.id, nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.id})
			w := httptest.NewRecorder()
			h.Get(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	t.Run("repository error", func(t *testing.T) {
		repo.err = errors.New("db down")
		req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": id})
		w := httptest.NewRecorder()
		h.Get(w, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRecommendationHandler_HistoryDisabled(t *testing.T) {
	h := newRecommendationHandler(testBatch(), nil)

	w := httptest.NewRecorder()
	h.Get(w, mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": uuid.NewString()}))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/api/recommendations", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecommendationHandler_List(t *testing.T) {
	id := uuid.NewString()
	repo := &fakeRepo{recs: map[string]*contracts.Recommendation{id: {ID: id}}}
	h := newRecommendationHandler(testBatch(), repo)

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/api/recommendations?limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id)

	w = httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/api/recommendations?limit=0", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsHandler_GetMetrics(t *testing.T) {
	snapshot := pipeline.NewSnapshot()
	h := NewMetricsHandler(snapshot, logger.NewNop())

	w := httptest.NewRecorder()
	h.GetMetrics(w, httptest.NewRequest(http.MethodGet, "/api/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	snapshot.Store(testBatch())
	w = httptest.NewRecorder()
	h.GetMetrics(w, httptest.NewRequest(http.MethodGet, "/api/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count        int                         `json:"count"`
		SkippedCount int                         `json:"skipped_count"`
		Metrics      []contracts.SecurityMetrics `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, 1, resp.SkippedCount)
	assert.Equal(t, contracts.Some(10), resp.Metrics[0].PriceChangePct)
}

type fakeStats map[string]scheduler.JobStats

func (f fakeStats) GetJobStats() map[string]scheduler.JobStats { return f }

func TestJobsHandler_GetJobs(t *testing.T) {
	h := NewJobsHandler(fakeStats{"metric_refresh": {JobName: "metric_refresh", TotalRuns: 3}})

	w := httptest.NewRecorder()
	h.GetJobs(w, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_runs":3`)
}
