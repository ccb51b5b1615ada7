package market

import (
	"context"
	"fmt"
	"strings"
	"time"

	"market_analysis/pkg/core/prompt"
	"market_analysis/pkg/core/utils"
	"market_analysis/pkg/models"
)

// FinancialAnalysisAgent benchmarks the target's financial performance
// against its closest competitors.
type FinancialAnalysisAgent struct {
	exec    PromptExecutor
	timeout time.Duration
}

func NewFinancialAnalysisAgent(exec PromptExecutor, timeout time.Duration) *FinancialAnalysisAgent {
	return &FinancialAnalysisAgent{exec: exec, timeout: timeout}
}

func (a *FinancialAnalysisAgent) Name() string { return StageAnalyzeFinancials }

// BuildPrompt reads target_company, the collected company_data and the top
// three competitors.
func (a *FinancialAnalysisAgent) BuildPrompt(rec *models.AnalysisRecord) (systemPrompt, userPrompt string) {
	targetData := compactJSON(rec.CompanyData["target_company_data"])
	competitors := strings.Join(rec.CompetitorNames(3), ", ")

	if pt, err := prompt.Get().GetPrompt(prompt.PromptIDs.AnalyzeFinancials); err == nil {
		ctx := prompt.NewContext().
			Set("TargetCompany", rec.TargetCompany).
			Set("TargetData", targetData).
			Set("Competitors", competitors)
		if user, err := prompt.RenderUserPrompt(pt, ctx); err == nil {
			return pt.SystemPrompt, user
		}
	}

	systemPrompt = "You are a financial analyst specializing in competitive benchmarking."
	userPrompt = fmt.Sprintf(`Analyze the financial performance comparison.

Target company: %s
Collected data: %s
Competitors: %s

Compare revenue and growth rates, profitability metrics, valuation multiples, financial health indicators, and investment in R&D.

Return JSON only:
{
  "revenue_comparison": "analysis of revenue and growth relative to competitors",
  "profitability": "profitability metrics assessment",
  "valuation": "market valuation multiples assessment",
  "financial_health": "financial health indicators",
  "strengths": ["financial strength", ...],
  "weaknesses": ["financial weakness", ...]
}`, rec.TargetCompany, targetData, competitors)
	return systemPrompt, userPrompt
}

// Run executes the stage and sets financial_comparison.
func (a *FinancialAnalysisAgent) Run(ctx context.Context, rec *models.AnalysisRecord) (*models.AnalysisRecord, error) {
	systemPrompt, userPrompt := a.BuildPrompt(rec)

	response, err := a.exec.ExecutePrompt(ctx, a.Name(), userPrompt, systemPrompt, jsonCallOptions(a.timeout))
	if err != nil {
		return nil, err
	}

	var comparison map[string]interface{}
	if _, err := utils.SmartParse(response, &comparison); err != nil || len(comparison) == 0 {
		if err == nil {
			err = fmt.Errorf("response contained an empty object")
		}
		out := rec.Clone()
		out.FinancialComparison = extractionFailure(err, response)
		return out, nil
	}

	out := rec.Clone()
	out.FinancialComparison = comparison
	return out, nil
}
