package market

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"market_analysis/pkg/core/prompt"
	"market_analysis/pkg/core/utils"
	"market_analysis/pkg/models"
)

// confidencePattern matches "Confidence Score: 7.5" and close variants in
// the generated report.
var confidencePattern = regexp.MustCompile(`(?i)confidence\s*score[^0-9]{0,10}(\d+(?:\.\d+)?)`)

// ReportAgent synthesizes the executive report from all prior stage outputs
// and extracts the model's self-assessed confidence score.
type ReportAgent struct {
	exec    PromptExecutor
	timeout time.Duration
}

func NewReportAgent(exec PromptExecutor, timeout time.Duration) *ReportAgent {
	return &ReportAgent{exec: exec, timeout: timeout}
}

func (a *ReportAgent) Name() string { return StageGenerateReport }

// BuildPrompt reads every analytical field accumulated so far.
func (a *ReportAgent) BuildPrompt(rec *models.AnalysisRecord) (systemPrompt, userPrompt string) {
	position := compactJSON(rec.MarketPosition)
	financials := compactJSON(rec.FinancialComparison)
	swot := compactJSON(rec.SWOTAnalysis)
	trends := compactJSON(rec.MarketTrends)

	if pt, err := prompt.Get().GetPrompt(prompt.PromptIDs.GenerateReport); err == nil {
		ctx := prompt.NewContext().
			Set("TargetCompany", rec.TargetCompany).
			Set("Industry", rec.Industry).
			Set("CompetitorCount", len(rec.Competitors)).
			Set("MarketPosition", position).
			Set("Financials", financials).
			Set("SWOT", swot).
			Set("Trends", trends)
		if user, err := prompt.RenderUserPrompt(pt, ctx); err == nil {
			return pt.SystemPrompt, user
		}
	}

	systemPrompt = "You are a senior management consultant creating executive-level deliverables."
	userPrompt = fmt.Sprintf(`Create an executive summary report in Markdown for the market analysis of %s.

EXECUTIVE SUMMARY: company overview, market position, key findings, strategic recommendations.

COMPETITIVE LANDSCAPE:
- Industry: %s
- Competitors identified: %d
- Market positioning: %s

FINANCIAL PERFORMANCE: competitive benchmarking results and key metric comparison.
Financial comparison: %s

STRATEGIC ANALYSIS:
- SWOT summary with priority items: %s
- Market trends impact assessment: %s

RECOMMENDATIONS: top 3 strategic priorities, risk mitigation strategies, market expansion opportunities.

End the report with a line of the form "Confidence Score: X/10" assessing the reliability of this analysis on a 0-10 scale.`,
		rec.TargetCompany, rec.Industry, len(rec.Competitors), position, financials, swot, trends)
	return systemPrompt, userPrompt
}

// Run executes the stage and sets final_report and confidence_score.
func (a *ReportAgent) Run(ctx context.Context, rec *models.AnalysisRecord) (*models.AnalysisRecord, error) {
	systemPrompt, userPrompt := a.BuildPrompt(rec)

	response, err := a.exec.ExecutePrompt(ctx, a.Name(), userPrompt, systemPrompt, textCallOptions(a.timeout))
	if err != nil {
		return nil, err
	}

	out := rec.Clone()
	out.FinalReport = utils.CleanMarkdown(response)

	score, err := extractConfidence(out.FinalReport)
	if err != nil {
		// Zero confidence marks the score itself as unextractable; the
		// report text is still kept verbatim.
		zero := 0.0
		out.ConfidenceScore = &zero
		return out.MergeCompanyData(map[string]interface{}{
			"confidence_extraction_error": extractionFailure(err, response),
		}), nil
	}

	out.ConfidenceScore = &score
	return out, nil
}

// extractConfidence pulls the self-assessed score out of the report text,
// clamped to [0, 10].
func extractConfidence(report string) (float64, error) {
	match := confidencePattern.FindStringSubmatch(report)
	if match == nil {
		return 0, fmt.Errorf("no confidence score found in report")
	}

	score, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid confidence score %q: %w", match[1], err)
	}

	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return score, nil
}
