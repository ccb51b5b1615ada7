package market

import (
	"context"

	"market_analysis/pkg/core/collect"
	"market_analysis/pkg/models"
)

// DataCollectionAgent is the one stage that talks to the external data
// provider instead of the language model. It fetches data for the target
// company and the top competitors concurrently; per-company failures are
// recorded inside the results and never abort the stage.
type DataCollectionAgent struct {
	collector      collect.Collector
	maxCompetitors int
	concurrency    int
}

func NewDataCollectionAgent(collector collect.Collector, maxCompetitors, concurrency int) *DataCollectionAgent {
	if maxCompetitors <= 0 {
		maxCompetitors = 5
	}
	return &DataCollectionAgent{
		collector:      collector,
		maxCompetitors: maxCompetitors,
		concurrency:    concurrency,
	}
}

func (a *DataCollectionAgent) Name() string { return StageCollectCompanyData }

// Run fetches target + top-competitor data. The competitor_data sequence is
// index-aligned with the competitors list, regardless of which fetch
// finishes first.
func (a *DataCollectionAgent) Run(ctx context.Context, rec *models.AnalysisRecord) (*models.AnalysisRecord, error) {
	top := rec.TopCompetitors(a.maxCompetitors)

	names := make([]string, 0, len(top)+1)
	names = append(names, rec.TargetCompany)
	for _, c := range top {
		names = append(names, c.Name)
	}

	results := collect.CollectAll(ctx, a.collector, names, a.concurrency)

	competitorData := make([]map[string]interface{}, len(top))
	for i, c := range top {
		competitorData[i] = map[string]interface{}{
			"name":         c.Name,
			"type":         c.Type,
			"threat_level": c.ThreatLevel,
			"data":         results[i+1],
		}
	}

	return rec.MergeCompanyData(map[string]interface{}{
		"target_company_data": results[0],
		"competitor_data":     competitorData,
	}), nil
}
