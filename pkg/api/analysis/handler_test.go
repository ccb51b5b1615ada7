package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"market_analysis/pkg/core/pipeline"
	"market_analysis/pkg/models"
)

type okStage struct{ name string }

func (s okStage) Name() string { return s.name }

func (s okStage) Run(ctx context.Context, rec *models.AnalysisRecord) (*models.AnalysisRecord, error) {
	out := rec.Clone()
	out.Industry = "Consumer Electronics"
	return out, nil
}

type failStage struct{ name string }

func (s failStage) Name() string { return s.name }

func (s failStage) Run(ctx context.Context, rec *models.AnalysisRecord) (*models.AnalysisRecord, error) {
	return nil, context.DeadlineExceeded
}

func TestHandleRunSuccess(t *testing.T) {
	InitHandler(pipeline.NewOrchestratorWithStages([]pipeline.Stage{okStage{name: "identify_industry"}}), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/analysis/run",
		strings.NewReader(`{"company": "Apple Inc."}`))
	w := httptest.NewRecorder()

	HandleRun(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var rec models.AnalysisRecord
	if err := json.NewDecoder(w.Body).Decode(&rec); err != nil {
		t.Fatalf("Invalid response body: %v", err)
	}
	if rec.TargetCompany != "Apple Inc." || rec.Industry != "Consumer Electronics" {
		t.Errorf("Unexpected record: %+v", rec)
	}
}

func TestHandleRunEmptyCompany(t *testing.T) {
	InitHandler(pipeline.NewOrchestratorWithStages(nil), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/analysis/run",
		strings.NewReader(`{"company": "  "}`))
	w := httptest.NewRecorder()

	HandleRun(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestHandleRunStageFailure(t *testing.T) {
	InitHandler(pipeline.NewOrchestratorWithStages([]pipeline.Stage{failStage{name: "analyze_financials"}}), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/analysis/run",
		strings.NewReader(`{"company": "Apple Inc."}`))
	w := httptest.NewRecorder()

	HandleRun(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", w.Code)
	}

	var resp errorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Invalid error body: %v", err)
	}
	if resp.Stage != "analyze_financials" {
		t.Errorf("Expected failing stage named, got %q", resp.Stage)
	}
}

func TestHandleRunMethodNotAllowed(t *testing.T) {
	InitHandler(pipeline.NewOrchestratorWithStages(nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/analysis/run", nil)
	w := httptest.NewRecorder()

	HandleRun(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", w.Code)
	}
}

func TestHandleGetReportNoStorage(t *testing.T) {
	InitHandler(pipeline.NewOrchestratorWithStages(nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/analysis/report?company=Apple", nil)
	w := httptest.NewRecorder()

	HandleGetReport(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 without storage, got %d", w.Code)
	}
}

func TestHandleGetReportMissingParam(t *testing.T) {
	InitHandler(pipeline.NewOrchestratorWithStages(nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/analysis/report", nil)
	w := httptest.NewRecorder()

	HandleGetReport(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without company param, got %d", w.Code)
	}
}
