package market

import (
	"context"
	"fmt"
	"time"

	"market_analysis/pkg/core/prompt"
	"market_analysis/pkg/core/utils"
	"market_analysis/pkg/models"
)

// MarketPositionAgent assesses the target's competitive standing from the
// accumulated competitor, financial and SWOT outputs.
type MarketPositionAgent struct {
	exec    PromptExecutor
	timeout time.Duration
}

func NewMarketPositionAgent(exec PromptExecutor, timeout time.Duration) *MarketPositionAgent {
	return &MarketPositionAgent{exec: exec, timeout: timeout}
}

func (a *MarketPositionAgent) Name() string { return StageAssessMarketPosition }

// BuildPrompt reads the competitor count, financial_comparison and
// swot_analysis.
func (a *MarketPositionAgent) BuildPrompt(rec *models.AnalysisRecord) (systemPrompt, userPrompt string) {
	financials := compactJSON(rec.FinancialComparison)
	swot := compactJSON(rec.SWOTAnalysis)

	if pt, err := prompt.Get().GetPrompt(prompt.PromptIDs.AssessMarketPosition); err == nil {
		ctx := prompt.NewContext().
			Set("TargetCompany", rec.TargetCompany).
			Set("CompetitorCount", len(rec.Competitors)).
			Set("Financials", financials).
			Set("SWOT", swot)
		if user, err := prompt.RenderUserPrompt(pt, ctx); err == nil {
			return pt.SystemPrompt, user
		}
	}

	systemPrompt = "You are a strategy consultant specializing in competitive positioning."
	userPrompt = fmt.Sprintf(`Assess the market position of %s.

Based on:
- Competitor landscape: %d identified competitors
- Financial performance: %s
- SWOT analysis: %s

Determine market share position (Leader/Challenger/Follower/Niche), competitive positioning, strategic group membership, barriers to entry, threat of substitutes, and bargaining power of suppliers and customers. Include a Porter's Five Forces summary and strategic recommendations.

Return JSON only:
{
  "position": "Leader|Challenger|Follower|Niche",
  "market_share": "estimated market share or qualitative description",
  "strategic_group": "...",
  "barriers_to_entry": "...",
  "five_forces": {
    "competitive_rivalry": "...",
    "threat_of_new_entrants": "...",
    "threat_of_substitutes": "...",
    "supplier_power": "...",
    "buyer_power": "..."
  },
  "recommendations": ["...", ...]
}`, rec.TargetCompany, len(rec.Competitors), financials, swot)
	return systemPrompt, userPrompt
}

// Run executes the stage and sets market_position.
func (a *MarketPositionAgent) Run(ctx context.Context, rec *models.AnalysisRecord) (*models.AnalysisRecord, error) {
	systemPrompt, userPrompt := a.BuildPrompt(rec)

	response, err := a.exec.ExecutePrompt(ctx, a.Name(), userPrompt, systemPrompt, jsonCallOptions(a.timeout))
	if err != nil {
		return nil, err
	}

	var position map[string]interface{}
	if _, err := utils.SmartParse(response, &position); err != nil || len(position) == 0 {
		if err == nil {
			err = fmt.Errorf("response contained an empty object")
		}
		out := rec.Clone()
		out.MarketPosition = extractionFailure(err, response)
		return out, nil
	}

	out := rec.Clone()
	out.MarketPosition = position
	return out, nil
}
