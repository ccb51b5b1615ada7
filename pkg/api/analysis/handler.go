// Package analysis exposes the market analysis pipeline over HTTP.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"market_analysis/pkg/core/pipeline"
	"market_analysis/pkg/core/store"
)

var (
	orchestrator *pipeline.Orchestrator
	reportRepo   store.ReportRepository
)

// InitHandler wires the shared orchestrator and repository. repo may be
// nil when no database is configured; run results are then only returned
// inline.
func InitHandler(o *pipeline.Orchestrator, repo store.ReportRepository) {
	orchestrator = o
	reportRepo = repo
}

type RunRequest struct {
	Company string `json:"company"`
}

type errorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

// HandleRun runs a full analysis for the requested company and returns the
// terminal record. Control-level failures name the failing stage.
func HandleRun(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// One analysis run can take minutes; bound it server-side.
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Minute)
	defer cancel()

	record, err := orchestrator.AnalyzeCompany(ctx, req.Company)
	if err != nil {
		if errors.Is(err, pipeline.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		var stageErr *pipeline.StageError
		if errors.As(err, &stageErr) {
			writeJSON(w, http.StatusBadGateway, errorResponse{
				Error: stageErr.Error(),
				Stage: stageErr.Stage,
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	if reportRepo != nil {
		if err := reportRepo.Save(ctx, record); err != nil {
			fmt.Printf("[API] Warning: failed to persist report for %s: %v\n", record.TargetCompany, err)
		}
	}

	writeJSON(w, http.StatusOK, record)
}

// HandleGetReport returns the stored record for ?company=.
func HandleGetReport(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	company := r.URL.Query().Get("company")
	if company == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "company query parameter required"})
		return
	}

	if reportRepo == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no report storage configured"})
		return
	}

	record, err := reportRepo.Load(r.Context(), company)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
