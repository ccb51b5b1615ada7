package prompt

// StagePromptID returns the library ID for an analysis stage prompt.
func StagePromptID(stage string) string {
	return "stages." + stage
}

// PromptIDs contains the known prompt identifiers.
var PromptIDs = struct {
	IdentifyIndustry     string
	FindCompetitors      string
	AnalyzeFinancials    string
	PerformSWOT          string
	AssessMarketPosition string
	IdentifyTrends       string
	GenerateReport       string
}{
	IdentifyIndustry:     "stages.identify_industry",
	FindCompetitors:      "stages.find_competitors",
	AnalyzeFinancials:    "stages.analyze_financials",
	PerformSWOT:          "stages.perform_swot",
	AssessMarketPosition: "stages.assess_market_position",
	IdentifyTrends:       "stages.identify_trends",
	GenerateReport:       "stages.generate_report",
}
