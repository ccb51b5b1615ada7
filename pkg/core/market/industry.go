package market

import (
	"context"
	"fmt"
	"time"

	"market_analysis/pkg/core/prompt"
	"market_analysis/pkg/core/utils"
	"market_analysis/pkg/models"
)

// IndustryClassification is the structured output of the industry stage.
type IndustryClassification struct {
	PrimaryIndustry   string   `json:"primary_industry"`
	MarketSegment     string   `json:"market_segment"`
	SubSegments       []string `json:"sub_segments"`
	BusinessModel     string   `json:"business_model"`
	ValuePropositions []string `json:"value_propositions"`
	CustomerSegments  []string `json:"customer_segments"`
	NAICSCode         string   `json:"naics_code,omitempty"`
}

// IndustryAgent identifies the target company's industry and market segment.
type IndustryAgent struct {
	exec    PromptExecutor
	timeout time.Duration
	now     func() time.Time
}

func NewIndustryAgent(exec PromptExecutor, timeout time.Duration) *IndustryAgent {
	return &IndustryAgent{exec: exec, timeout: timeout, now: time.Now}
}

// SetClock overrides the timestamp source, for tests.
func (a *IndustryAgent) SetClock(now func() time.Time) { a.now = now }

func (a *IndustryAgent) Name() string { return StageIdentifyIndustry }

// BuildPrompt composes the industry classification prompt from the target
// company alone; no later-stage field is read here.
func (a *IndustryAgent) BuildPrompt(rec *models.AnalysisRecord) (systemPrompt, userPrompt string) {
	if pt, err := prompt.Get().GetPrompt(prompt.PromptIDs.IdentifyIndustry); err == nil {
		ctx := prompt.NewContext().Set("TargetCompany", rec.TargetCompany)
		if user, err := prompt.RenderUserPrompt(pt, ctx); err == nil {
			return pt.SystemPrompt, user
		}
	}

	systemPrompt = "You are an industry classification expert with deep knowledge of market segments."
	userPrompt = fmt.Sprintf(`Analyze the company %q and classify its market position.

Return JSON only:
{
  "primary_industry": "primary industry classification",
  "market_segment": "main market segment",
  "sub_segments": ["sub-segment", ...],
  "business_model": "business model type (e.g. SaaS, retail, manufacturing)",
  "value_propositions": ["key value proposition", ...],
  "customer_segments": ["target customer segment", ...],
  "naics_code": "NAICS code if known, else empty string"
}`, rec.TargetCompany)
	return systemPrompt, userPrompt
}

// Run executes the stage and returns a record with industry and
// company_data.industry_classification populated.
func (a *IndustryAgent) Run(ctx context.Context, rec *models.AnalysisRecord) (*models.AnalysisRecord, error) {
	systemPrompt, userPrompt := a.BuildPrompt(rec)

	response, err := a.exec.ExecutePrompt(ctx, a.Name(), userPrompt, systemPrompt, jsonCallOptions(a.timeout))
	if err != nil {
		return nil, err
	}

	timestamp := a.now().UTC().Format(time.RFC3339)

	var classification IndustryClassification
	if _, err := utils.SmartParse(response, &classification); err != nil || classification.PrimaryIndustry == "" {
		if err == nil {
			err = fmt.Errorf("response missing primary_industry")
		}
		out := rec.MergeCompanyData(map[string]interface{}{
			"industry_classification": extractionFailure(err, response),
			"analysis_timestamp":      timestamp,
		})
		out.Industry = "Unknown"
		return out, nil
	}

	out := rec.MergeCompanyData(map[string]interface{}{
		"industry_classification": classification,
		"analysis_timestamp":      timestamp,
	})
	out.Industry = classification.PrimaryIndustry
	return out, nil
}
