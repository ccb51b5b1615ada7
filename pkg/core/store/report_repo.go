package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"market_analysis/pkg/models"
)

// ReportRepository stores and retrieves terminal analysis records.
type ReportRepository interface {
	Save(ctx context.Context, record *models.AnalysisRecord) error
	Load(ctx context.Context, targetCompany string) (*models.AnalysisRecord, error)
}

// ReportRepo persists records as JSONB, upserted by target company.
//
// Schema assumption (managed by migrations elsewhere):
//
//	CREATE TABLE IF NOT EXISTS market_reports (
//	  target_company TEXT PRIMARY KEY,
//	  record_json    JSONB,
//	  updated_at     TIMESTAMPTZ
//	);
type ReportRepo struct{}

var _ ReportRepository = (*ReportRepo)(nil)

// NewReportRepo creates a repository instance backed by the shared pool.
func NewReportRepo() *ReportRepo {
	return &ReportRepo{}
}

// Save upserts the terminal record for its target company.
func (r *ReportRepo) Save(ctx context.Context, record *models.AnalysisRecord) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	query := `
		INSERT INTO market_reports (target_company, record_json, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (target_company)
		DO UPDATE SET
			record_json = EXCLUDED.record_json,
			updated_at = EXCLUDED.updated_at;
	`

	if _, err := pool.Exec(ctx, query, record.TargetCompany, jsonData, time.Now()); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Load retrieves the latest stored record for a company.
func (r *ReportRepo) Load(ctx context.Context, targetCompany string) (*models.AnalysisRecord, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT record_json FROM market_reports WHERE target_company = $1`

	var jsonData []byte
	err := pool.QueryRow(ctx, query, targetCompany).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no report found for %s", targetCompany)
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	var record models.AnalysisRecord
	if err := json.Unmarshal(jsonData, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &record, nil
}
