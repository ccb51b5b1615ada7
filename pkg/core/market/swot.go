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

// SWOTAgent conducts the strengths/weaknesses/opportunities/threats
// analysis for the target company.
type SWOTAgent struct {
	exec    PromptExecutor
	timeout time.Duration
}

func NewSWOTAgent(exec PromptExecutor, timeout time.Duration) *SWOTAgent {
	return &SWOTAgent{exec: exec, timeout: timeout}
}

func (a *SWOTAgent) Name() string { return StagePerformSWOT }

// BuildPrompt reads target_company, industry, the top five competitors and
// the financial comparison.
func (a *SWOTAgent) BuildPrompt(rec *models.AnalysisRecord) (systemPrompt, userPrompt string) {
	competitors := strings.Join(rec.CompetitorNames(5), ", ")
	financials := compactJSON(rec.FinancialComparison)

	if pt, err := prompt.Get().GetPrompt(prompt.PromptIDs.PerformSWOT); err == nil {
		ctx := prompt.NewContext().
			Set("TargetCompany", rec.TargetCompany).
			Set("Industry", rec.Industry).
			Set("Competitors", competitors).
			Set("Financials", financials)
		if user, err := prompt.RenderUserPrompt(pt, ctx); err == nil {
			return pt.SystemPrompt, user
		}
	}

	systemPrompt = "You are a strategic business analyst with expertise in SWOT methodology."
	userPrompt = fmt.Sprintf(`Conduct a detailed SWOT analysis for %s.

Context:
- Industry: %s
- Competitors: %s
- Financial position: %s

Cover internal capabilities and advantages, internal limitations, market trends and growth areas, and competitive/regulatory/economic risks. Provide specific, actionable insights.

Return JSON only:
{
  "strengths": ["...", ...],
  "weaknesses": ["...", ...],
  "opportunities": ["...", ...],
  "threats": ["...", ...]
}`, rec.TargetCompany, rec.Industry, competitors, financials)
	return systemPrompt, userPrompt
}

// Run executes the stage and sets swot_analysis. All four lists are always
// present afterwards, even on extraction failure.
func (a *SWOTAgent) Run(ctx context.Context, rec *models.AnalysisRecord) (*models.AnalysisRecord, error) {
	systemPrompt, userPrompt := a.BuildPrompt(rec)

	response, err := a.exec.ExecutePrompt(ctx, a.Name(), userPrompt, systemPrompt, jsonCallOptions(a.timeout))
	if err != nil {
		return nil, err
	}

	out := rec.Clone()

	var swot models.SWOTAnalysis
	if _, err := utils.SmartParse(response, &swot); err != nil {
		out.SWOTAnalysis = emptySWOT()
		return out.MergeCompanyData(map[string]interface{}{
			"swot_extraction_error": extractionFailure(err, response),
		}), nil
	}

	// Keep the four-key invariant even when the model omits a list.
	if swot.Strengths == nil {
		swot.Strengths = []string{}
	}
	if swot.Weaknesses == nil {
		swot.Weaknesses = []string{}
	}
	if swot.Opportunities == nil {
		swot.Opportunities = []string{}
	}
	if swot.Threats == nil {
		swot.Threats = []string{}
	}

	if len(swot.Strengths)+len(swot.Weaknesses)+len(swot.Opportunities)+len(swot.Threats) == 0 {
		out.SWOTAnalysis = emptySWOT()
		return out.MergeCompanyData(map[string]interface{}{
			"swot_extraction_error": extractionFailure(
				fmt.Errorf("response contained no SWOT items"), response),
		}), nil
	}

	out.SWOTAnalysis = &swot
	return out, nil
}

func emptySWOT() *models.SWOTAnalysis {
	return &models.SWOTAnalysis{
		Strengths:     []string{},
		Weaknesses:    []string{},
		Opportunities: []string{},
		Threats:       []string{},
	}
}
