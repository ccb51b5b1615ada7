package market

import (
	"context"
	"fmt"
	"time"

	"market_analysis/pkg/core/prompt"
	"market_analysis/pkg/core/utils"
	"market_analysis/pkg/models"
)

// TrendAgent identifies market trends affecting the target and assesses
// their impact and time horizon.
type TrendAgent struct {
	exec    PromptExecutor
	timeout time.Duration
}

func NewTrendAgent(exec PromptExecutor, timeout time.Duration) *TrendAgent {
	return &TrendAgent{exec: exec, timeout: timeout}
}

func (a *TrendAgent) Name() string { return StageIdentifyTrends }

// BuildPrompt reads target_company and industry only.
func (a *TrendAgent) BuildPrompt(rec *models.AnalysisRecord) (systemPrompt, userPrompt string) {
	if pt, err := prompt.Get().GetPrompt(prompt.PromptIDs.IdentifyTrends); err == nil {
		ctx := prompt.NewContext().
			Set("TargetCompany", rec.TargetCompany).
			Set("Industry", rec.Industry)
		if user, err := prompt.RenderUserPrompt(pt, ctx); err == nil {
			return pt.SystemPrompt, user
		}
	}

	systemPrompt = "You are a market research analyst specializing in trend analysis and forecasting."
	userPrompt = fmt.Sprintf(`Identify the key market trends affecting %s in the %s industry.

Consider technology trends, consumer behavior changes, regulatory developments, economic factors, competitive dynamics and market growth projections.

For each trend assess impact level (High/Medium/Low) and time horizon (Short-term/Medium-term/Long-term).

Return JSON only:
{
  "trends": [
    {"trend": "...", "impact": "High", "timeline": "Short-term"},
    ...
  ]
}`, rec.TargetCompany, rec.Industry)
	return systemPrompt, userPrompt
}

// Run executes the stage and sets market_trends.
func (a *TrendAgent) Run(ctx context.Context, rec *models.AnalysisRecord) (*models.AnalysisRecord, error) {
	systemPrompt, userPrompt := a.BuildPrompt(rec)

	response, err := a.exec.ExecutePrompt(ctx, a.Name(), userPrompt, systemPrompt, jsonCallOptions(a.timeout))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Trends []models.TrendEntry `json:"trends"`
	}
	if _, err := utils.SmartParse(response, &parsed); err != nil || len(parsed.Trends) == 0 {
		if err == nil {
			err = fmt.Errorf("response contained no trends")
		}
		return rec.MergeCompanyData(map[string]interface{}{
			"trend_extraction_error": extractionFailure(err, response),
		}), nil
	}

	trends := make([]models.TrendEntry, 0, len(parsed.Trends))
	for _, t := range parsed.Trends {
		if t.Trend == "" {
			continue
		}
		t.Impact = normalizeLevel(t.Impact)
		trends = append(trends, t)
	}

	out := rec.Clone()
	out.MarketTrends = trends
	return out, nil
}
