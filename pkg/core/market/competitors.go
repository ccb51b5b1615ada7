package market

import (
	"context"
	"fmt"
	"time"

	"market_analysis/pkg/core/prompt"
	"market_analysis/pkg/core/utils"
	"market_analysis/pkg/models"
)

// competitorResponse is the JSON shape requested from the model: one list
// per competitor bucket. Flattening order (direct, indirect, emerging) is
// what downstream stages see as discovery order.
type competitorResponse struct {
	Direct   []competitorEntry `json:"direct"`
	Indirect []competitorEntry `json:"indirect"`
	Emerging []competitorEntry `json:"emerging"`
}

type competitorEntry struct {
	Name        string `json:"name"`
	ThreatLevel string `json:"threat_level"`
}

// CompetitorAgent discovers and categorizes competitors of the target.
type CompetitorAgent struct {
	exec    PromptExecutor
	timeout time.Duration
}

func NewCompetitorAgent(exec PromptExecutor, timeout time.Duration) *CompetitorAgent {
	return &CompetitorAgent{exec: exec, timeout: timeout}
}

func (a *CompetitorAgent) Name() string { return StageFindCompetitors }

// BuildPrompt reads target_company and industry, both populated by the
// industry stage or initialization.
func (a *CompetitorAgent) BuildPrompt(rec *models.AnalysisRecord) (systemPrompt, userPrompt string) {
	if pt, err := prompt.Get().GetPrompt(prompt.PromptIDs.FindCompetitors); err == nil {
		ctx := prompt.NewContext().
			Set("TargetCompany", rec.TargetCompany).
			Set("Industry", rec.Industry)
		if user, err := prompt.RenderUserPrompt(pt, ctx); err == nil {
			return pt.SystemPrompt, user
		}
	}

	systemPrompt = "You are a competitive intelligence analyst with expertise in market mapping."
	userPrompt = fmt.Sprintf(`For %s in the %s industry, identify:

DIRECT COMPETITORS (5-7 companies): similar products/services, target markets and business models.
INDIRECT COMPETITORS (3-5 companies): companies solving similar customer problems differently; adjacent market players.
EMERGING THREATS (2-3 companies): startups, new entrants, or companies expanding from adjacent industries.

Rate each competitor's threat level as High, Medium or Low.

Return JSON only:
{
  "direct": [{"name": "Company", "threat_level": "High"}, ...],
  "indirect": [{"name": "Company", "threat_level": "Medium"}, ...],
  "emerging": [{"name": "Company", "threat_level": "Low"}, ...]
}`, rec.TargetCompany, rec.Industry)
	return systemPrompt, userPrompt
}

// Run executes the stage and returns a record with competitors populated in
// bucket order: direct, indirect, emerging.
func (a *CompetitorAgent) Run(ctx context.Context, rec *models.AnalysisRecord) (*models.AnalysisRecord, error) {
	systemPrompt, userPrompt := a.BuildPrompt(rec)

	response, err := a.exec.ExecutePrompt(ctx, a.Name(), userPrompt, systemPrompt, jsonCallOptions(a.timeout))
	if err != nil {
		return nil, err
	}

	var parsed competitorResponse
	if _, err := utils.SmartParse(response, &parsed); err != nil {
		return rec.MergeCompanyData(map[string]interface{}{
			"competitor_extraction_error": extractionFailure(err, response),
		}), nil
	}

	competitors := make([]models.CompetitorRef, 0,
		len(parsed.Direct)+len(parsed.Indirect)+len(parsed.Emerging))
	for _, bucket := range []struct {
		entries []competitorEntry
		kind    string
	}{
		{parsed.Direct, models.CompetitorDirect},
		{parsed.Indirect, models.CompetitorIndirect},
		{parsed.Emerging, models.CompetitorEmerging},
	} {
		for _, e := range bucket.entries {
			if e.Name == "" {
				continue
			}
			competitors = append(competitors, models.CompetitorRef{
				Name:        e.Name,
				Type:        bucket.kind,
				ThreatLevel: normalizeLevel(e.ThreatLevel),
			})
		}
	}

	if len(competitors) == 0 {
		return rec.MergeCompanyData(map[string]interface{}{
			"competitor_extraction_error": extractionFailure(
				fmt.Errorf("response contained no competitors"), response),
		}), nil
	}

	out := rec.Clone()
	out.Competitors = competitors
	return out, nil
}

// normalizeLevel maps free-form ratings onto the High/Medium/Low scale,
// defaulting to Medium.
func normalizeLevel(level string) string {
	switch level {
	case models.LevelHigh, models.LevelMedium, models.LevelLow:
		return level
	}
	switch {
	case len(level) > 0 && (level[0] == 'h' || level[0] == 'H'):
		return models.LevelHigh
	case len(level) > 0 && (level[0] == 'l' || level[0] == 'L'):
		return models.LevelLow
	default:
		return models.LevelMedium
	}
}
