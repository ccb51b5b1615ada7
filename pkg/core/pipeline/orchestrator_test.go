package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"market_analysis/pkg/core/llm"
	"market_analysis/pkg/core/market"
	"market_analysis/pkg/models"
)

// scriptedExecutor serves canned responses keyed by stage, failing the
// stages listed in failAt.
type scriptedExecutor struct {
	responses map[string]string
	failAt    map[string]error
	calls     []string
}

func (s *scriptedExecutor) ExecutePrompt(ctx context.Context, stage string, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	s.calls = append(s.calls, stage)
	if err, ok := s.failAt[stage]; ok {
		return "", err
	}
	resp, ok := s.responses[stage]
	if !ok {
		return "", fmt.Errorf("no canned response for stage %s", stage)
	}
	return resp, nil
}

// fakeCollector returns static data instantly.
type fakeCollector struct{}

func (fakeCollector) Collect(ctx context.Context, companyName string) *models.CompanyInfo {
	return &models.CompanyInfo{
		CompanyName:   companyName,
		FinancialData: map[string]interface{}{"market_cap": 1000000.0},
	}
}

func cannedResponses() map[string]string {
	competitors := `{"direct": [`
	for i := 0; i < 6; i++ {
		if i > 0 {
			competitors += ","
		}
		competitors += fmt.Sprintf(`{"name": "Direct%d", "threat_level": "High"}`, i+1)
	}
	competitors += `], "indirect": [
		{"name": "Indirect1", "threat_level": "Medium"},
		{"name": "Indirect2", "threat_level": "Medium"},
		{"name": "Indirect3", "threat_level": "Low"}
	], "emerging": [
		{"name": "Emerging1", "threat_level": "Low"},
		{"name": "Emerging2", "threat_level": "Medium"}
	]}`

	return map[string]string{
		market.StageIdentifyIndustry: `{"primary_industry": "Consumer Electronics", "market_segment": "Premium devices"}`,
		market.StageFindCompetitors:  competitors,
		market.StageAnalyzeFinancials: `{
			"revenue_comparison": "ahead of peers",
			"profitability": "strong margins",
			"valuation": "premium multiple",
			"financial_health": "robust",
			"strengths": ["cash position"],
			"weaknesses": ["hardware dependence"]
		}`,
		market.StagePerformSWOT: `{
			"strengths": ["brand", "ecosystem"],
			"weaknesses": ["price point"],
			"opportunities": ["services growth"],
			"threats": ["regulation"]
		}`,
		market.StageAssessMarketPosition: `{"position": "Leader", "market_share": "dominant in premium"}`,
		market.StageIdentifyTrends:       `{"trends": [{"trend": "AI on device", "impact": "High", "timeline": "Short-term"}]}`,
		market.StageGenerateReport:       "# Executive Summary\n\nApple leads the premium segment.\n\nConfidence Score: 8/10",
	}
}

func newTestOrchestrator(exec market.PromptExecutor) *Orchestrator {
	o := NewOrchestrator(exec, fakeCollector{}, Config{
		MaxCompetitors:  5,
		DataConcurrency: 2,
		RequestTimeout:  time.Minute,
	})
	o.SetLogf(func(string, ...interface{}) {})
	return o
}

func TestAnalyzeCompanyEndToEnd(t *testing.T) {
	exec := &scriptedExecutor{responses: cannedResponses()}
	o := newTestOrchestrator(exec)

	rec, err := o.AnalyzeCompany(context.Background(), "Apple Inc.")
	if err != nil {
		t.Fatalf("Pipeline failed: %v", err)
	}

	if rec.Industry != "Consumer Electronics" {
		t.Errorf("Expected Consumer Electronics, got %q", rec.Industry)
	}
	if len(rec.Competitors) != 11 {
		t.Errorf("Expected 11 competitors, got %d", len(rec.Competitors))
	}
	if rec.Competitors[0].Type != models.CompetitorDirect {
		t.Errorf("Expected direct competitors first, got %s", rec.Competitors[0].Type)
	}

	// Data collection: target data plus one entry per top competitor.
	if rec.CompanyData["target_company_data"] == nil {
		t.Error("target_company_data missing")
	}
	compData, ok := rec.CompanyData["competitor_data"].([]map[string]interface{})
	if !ok {
		t.Fatalf("competitor_data has unexpected type %T", rec.CompanyData["competitor_data"])
	}
	if len(compData) != 5 {
		t.Errorf("Expected data for top 5 competitors, got %d", len(compData))
	}
	if compData[0]["name"] != "Direct1" {
		t.Errorf("Competitor data out of order: %v", compData[0]["name"])
	}

	swot := rec.SWOTAnalysis
	if swot == nil || swot.Strengths == nil || swot.Weaknesses == nil ||
		swot.Opportunities == nil || swot.Threats == nil {
		t.Fatalf("SWOT incomplete: %+v", swot)
	}

	if rec.MarketPosition["position"] != "Leader" {
		t.Errorf("Unexpected market position: %v", rec.MarketPosition)
	}
	if len(rec.MarketTrends) != 1 {
		t.Errorf("Expected 1 trend, got %d", len(rec.MarketTrends))
	}
	if !strings.Contains(rec.FinalReport, "Executive Summary") {
		t.Errorf("Report missing: %q", rec.FinalReport)
	}
	if rec.ConfidenceScore == nil || *rec.ConfidenceScore < 0 || *rec.ConfidenceScore > 10 {
		t.Errorf("Confidence out of range: %v", rec.ConfidenceScore)
	}

	// Seven model calls: every stage except data collection.
	if len(exec.calls) != 7 {
		t.Errorf("Expected 7 model calls, got %d: %v", len(exec.calls), exec.calls)
	}
}

func TestProviderFailureNamesStage(t *testing.T) {
	exec := &scriptedExecutor{
		responses: cannedResponses(),
		failAt: map[string]error{
			market.StageAnalyzeFinancials: &llm.ProviderError{
				Provider: "openai",
				Kind:     llm.ErrKindQuota,
				Err:      errors.New("rate limited"),
			},
		},
	}
	o := newTestOrchestrator(exec)

	rec, err := o.AnalyzeCompany(context.Background(), "Apple Inc.")
	if err == nil {
		t.Fatal("Expected stage failure")
	}

	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("Expected StageError, got %T: %v", err, err)
	}
	if stageErr.Stage != market.StageAnalyzeFinancials {
		t.Errorf("Expected failure at analyze_financials, got %s", stageErr.Stage)
	}

	var provErr *llm.ProviderError
	if !errors.As(err, &provErr) || provErr.Kind != llm.ErrKindQuota {
		t.Errorf("Provider error lost in wrapping: %v", err)
	}

	// The partial record keeps everything before the failing stage and
	// nothing after it.
	if rec == nil {
		t.Fatal("Partial record not returned")
	}
	if rec.Industry != "Consumer Electronics" {
		t.Errorf("Earlier stage output lost: %q", rec.Industry)
	}
	if rec.FinancialComparison != nil {
		t.Errorf("Failing stage must not write output: %v", rec.FinancialComparison)
	}
	if rec.FinalReport != "" {
		t.Error("Later stages must not have run")
	}
}

func TestEmptyCompanyName(t *testing.T) {
	o := newTestOrchestrator(&scriptedExecutor{responses: cannedResponses()})

	for _, input := range []string{"", "   ", "\t\n"} {
		if _, err := o.AnalyzeCompany(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Input %q: expected ErrInvalidInput, got %v", input, err)
		}
	}
}

// cancelStage cancels the run's context as its own work, simulating a
// caller abort while a stage is executing.
type cancelStage struct {
	name   string
	cancel context.CancelFunc
}

func (s *cancelStage) Name() string { return s.name }

func (s *cancelStage) Run(ctx context.Context, rec *models.AnalysisRecord) (*models.AnalysisRecord, error) {
	s.cancel()
	return rec, nil
}

type recordingStage struct {
	name string
	ran  bool
}

func (s *recordingStage) Name() string { return s.name }

func (s *recordingStage) Run(ctx context.Context, rec *models.AnalysisRecord) (*models.AnalysisRecord, error) {
	s.ran = true
	return rec, nil
}

func TestCancellationStopsAtStageBoundary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	second := &recordingStage{name: "second"}
	o := NewOrchestratorWithStages([]Stage{
		&cancelStage{name: "first", cancel: cancel},
		second,
	})

	rec, err := o.Run(ctx, models.NewAnalysisRecord("Apple Inc."))
	if err == nil {
		t.Fatal("Expected cancellation error")
	}

	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != "second" {
		t.Errorf("Expected cancellation surfaced at the next boundary, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled in chain, got %v", err)
	}
	if second.ran {
		t.Error("Stage after cancellation must not run")
	}
	if rec == nil {
		t.Error("Partial record not returned on cancellation")
	}
}

func TestStageNamesOrder(t *testing.T) {
	o := newTestOrchestrator(&scriptedExecutor{})

	expected := []string{
		market.StageIdentifyIndustry,
		market.StageFindCompetitors,
		market.StageCollectCompanyData,
		market.StageAnalyzeFinancials,
		market.StagePerformSWOT,
		market.StageAssessMarketPosition,
		market.StageIdentifyTrends,
		market.StageGenerateReport,
	}

	got := o.StageNames()
	if len(got) != len(expected) {
		t.Fatalf("Expected %d stages, got %d", len(expected), len(got))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Stage %d: expected %s, got %s", i, expected[i], got[i])
		}
	}
}
