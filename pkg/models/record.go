// Package models defines the shared data contracts for the market analysis
// pipeline. The AnalysisRecord is the single state object threaded through
// every stage; stages never mutate a record in place, they return a copy with
// their own output fields set (copy-with-override).
package models

// Competitor classification buckets.
const (
	CompetitorDirect   = "direct"
	CompetitorIndirect = "indirect"
	CompetitorEmerging = "emerging"
)

// Qualitative impact / threat ratings.
const (
	LevelHigh   = "High"
	LevelMedium = "Medium"
	LevelLow    = "Low"
)

// CompetitorRef identifies one competitor of the target company.
type CompetitorRef struct {
	Name        string `json:"name"`
	Type        string `json:"type"`         // direct, indirect, emerging
	ThreatLevel string `json:"threat_level"` // High, Medium, Low
}

// TrendEntry captures one market trend and its assessed impact.
type TrendEntry struct {
	Trend    string `json:"trend"`
	Impact   string `json:"impact"` // High, Medium, Low
	Timeline string `json:"timeline"`
}

// SWOTAnalysis holds the four labeled lists of a SWOT framework.
// After the SWOT stage all four keys are always present, possibly empty.
type SWOTAnalysis struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
}

// NewsItem is one headline collected for a company.
type NewsItem struct {
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
	Date  string `json:"date,omitempty"`
}

// CompanyInfo aggregates the per-company data returned by a Collector.
// Each sub-field is independently error-tagged: a failed lookup stores an
// {"error": "..."} map instead of failing the whole call.
type CompanyInfo struct {
	CompanyName      string                 `json:"company_name"`
	FinancialData    map[string]interface{} `json:"financial_data"`
	CompanyProfile   map[string]interface{} `json:"company_profile"`
	RecentNews       []NewsItem             `json:"recent_news"`
	StockPerformance map[string]interface{} `json:"stock_performance"`
}

// AnalysisRecord is the evolving state of one market analysis run.
// Field names match the persisted JSON artifact exactly.
type AnalysisRecord struct {
	TargetCompany       string                 `json:"target_company"`
	Industry            string                 `json:"industry,omitempty"`
	Competitors         []CompetitorRef        `json:"competitors"`
	CompanyData         map[string]interface{} `json:"company_data"`
	FinancialComparison map[string]interface{} `json:"financial_comparison,omitempty"`
	SWOTAnalysis        *SWOTAnalysis          `json:"swot_analysis,omitempty"`
	MarketPosition      map[string]interface{} `json:"market_position,omitempty"`
	MarketTrends        []TrendEntry           `json:"market_trends,omitempty"`
	FinalReport         string                 `json:"final_report,omitempty"`
	ConfidenceScore     *float64               `json:"confidence_score,omitempty"`
}

// NewAnalysisRecord creates the initial record with only the target company
// populated. All analytical fields start empty.
func NewAnalysisRecord(targetCompany string) *AnalysisRecord {
	return &AnalysisRecord{
		TargetCompany: targetCompany,
		Competitors:   []CompetitorRef{},
		CompanyData:   map[string]interface{}{},
	}
}

// Clone returns a deep copy of the record. Stages work on clones so that a
// failing stage can never leave a half-written record behind.
func (r *AnalysisRecord) Clone() *AnalysisRecord {
	out := *r

	out.Competitors = make([]CompetitorRef, len(r.Competitors))
	copy(out.Competitors, r.Competitors)

	out.CompanyData = cloneMap(r.CompanyData)
	out.FinancialComparison = cloneMap(r.FinancialComparison)
	out.MarketPosition = cloneMap(r.MarketPosition)

	if r.SWOTAnalysis != nil {
		swot := SWOTAnalysis{
			Strengths:     append([]string{}, r.SWOTAnalysis.Strengths...),
			Weaknesses:    append([]string{}, r.SWOTAnalysis.Weaknesses...),
			Opportunities: append([]string{}, r.SWOTAnalysis.Opportunities...),
			Threats:       append([]string{}, r.SWOTAnalysis.Threats...),
		}
		out.SWOTAnalysis = &swot
	}

	if r.MarketTrends != nil {
		out.MarketTrends = make([]TrendEntry, len(r.MarketTrends))
		copy(out.MarketTrends, r.MarketTrends)
	}

	if r.ConfidenceScore != nil {
		score := *r.ConfidenceScore
		out.ConfidenceScore = &score
	}

	return &out
}

// MergeCompanyData returns a copy of the record with the given keys merged
// into company_data. Existing keys are preserved unless explicitly
// overwritten; keys are never removed.
func (r *AnalysisRecord) MergeCompanyData(data map[string]interface{}) *AnalysisRecord {
	out := r.Clone()
	if out.CompanyData == nil {
		out.CompanyData = map[string]interface{}{}
	}
	for k, v := range data {
		out.CompanyData[k] = v
	}
	return out
}

// TopCompetitors returns the first n competitors in discovery order.
func (r *AnalysisRecord) TopCompetitors(n int) []CompetitorRef {
	if n > len(r.Competitors) {
		n = len(r.Competitors)
	}
	return r.Competitors[:n]
}

// CompetitorNames returns the names of the first n competitors.
func (r *AnalysisRecord) CompetitorNames(n int) []string {
	top := r.TopCompetitors(n)
	names := make([]string, len(top))
	for i, c := range top {
		names[i] = c.Name
	}
	return names
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
