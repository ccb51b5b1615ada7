// Package market implements the eight analysis stages of the market
// analysis pipeline. Each stage is an agent that composes a prompt from the
// fields earlier stages populated, invokes the language model, parses the
// structured response, and returns a copy of the record with only its own
// output fields set.
package market

import (
	"context"
	"encoding/json"
	"time"
)

// Stage names, in pipeline order.
const (
	StageIdentifyIndustry     = "identify_industry"
	StageFindCompetitors      = "find_competitors"
	StageCollectCompanyData   = "collect_company_data"
	StageAnalyzeFinancials    = "analyze_financials"
	StagePerformSWOT          = "perform_swot"
	StageAssessMarketPosition = "assess_market_position"
	StageIdentifyTrends       = "identify_trends"
	StageGenerateReport       = "generate_report"
)

// PromptExecutor issues one prompt on behalf of a named stage. Satisfied by
// agent.Manager; tests substitute canned responses.
type PromptExecutor interface {
	ExecutePrompt(ctx context.Context, stage string, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}

// jsonCallOptions requests structured JSON output with a per-call deadline.
func jsonCallOptions(timeout time.Duration) map[string]interface{} {
	opts := map[string]interface{}{
		"response_format": map[string]interface{}{"type": "json_object"},
	}
	if timeout > 0 {
		opts["timeout"] = timeout
	}
	return opts
}

// textCallOptions requests free-text output with a per-call deadline.
func textCallOptions(timeout time.Duration) map[string]interface{} {
	opts := map[string]interface{}{}
	if timeout > 0 {
		opts["timeout"] = timeout
	}
	return opts
}

// extractionFailure builds the explicit marker stored when a model response
// could not be parsed into the stage's expected shape. The raw excerpt is
// kept so the failure can be diagnosed; confidence zero signals that no
// field in the marker is trustworthy data.
func extractionFailure(err error, response string) map[string]interface{} {
	const maxExcerpt = 300
	excerpt := response
	if len(excerpt) > maxExcerpt {
		excerpt = excerpt[:maxExcerpt] + "..."
	}
	return map[string]interface{}{
		"error":       "unparseable model output: " + err.Error(),
		"confidence":  0,
		"raw_excerpt": excerpt,
	}
}

// compactJSON renders v as one-line JSON for prompt interpolation. Go
// serializes map keys in sorted order, so output is deterministic for a
// given record.
func compactJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
