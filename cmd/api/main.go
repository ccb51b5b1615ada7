package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"market_analysis/pkg/api/analysis"
	"market_analysis/pkg/core/agent"
	"market_analysis/pkg/core/collect"
	"market_analysis/pkg/core/pipeline"
	"market_analysis/pkg/core/prompt"
	"market_analysis/pkg/core/store"
)

type appConfig struct {
	Agent    agent.Config    `yaml:",inline"`
	Analysis analysisOptions `yaml:"analysis"`
}

type analysisOptions struct {
	MaxCompetitors        int `yaml:"max_competitors"`
	DataConcurrency       int `yaml:"data_concurrency"`
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
}

func main() {
	godotenv.Load()

	// Initialize Prompt Library
	resourcesPath := "resources"
	if _, err := os.Stat(resourcesPath); os.IsNotExist(err) {
		exePath, _ := os.Executable()
		resourcesPath = filepath.Join(filepath.Dir(exePath), "resources")
	}
	if err := prompt.LoadFromDirectory(resourcesPath); err != nil {
		fmt.Printf("[WARNING] Failed to load prompt library: %v\n", err)
		fmt.Println("  Falling back to hardcoded prompts")
	} else {
		fmt.Printf("[PROMPT] Loaded %d prompts from %s\n", prompt.Get().Count(), resourcesPath)
	}

	// Initialize manager from config
	cfg := appConfig{
		Analysis: analysisOptions{
			MaxCompetitors:        5,
			DataConcurrency:       4,
			RequestTimeoutSeconds: 120,
		},
	}
	configData, _ := os.ReadFile("config/models.yaml")
	yaml.Unmarshal(configData, &cfg)
	agentMgr := agent.NewManager(cfg.Agent)

	if model, err := agentMgr.ResolveModel(context.Background()); err != nil {
		fmt.Printf("[WARNING] Model probe failed: %v\n", err)
	} else {
		fmt.Printf("[MODEL] Using %s via %s\n", model, agentMgr.GetActiveProvider())
	}

	timeout := time.Duration(cfg.Analysis.RequestTimeoutSeconds) * time.Second
	collector := collect.NewHTTPCollector(timeout)
	orchestrator := pipeline.NewOrchestrator(agentMgr, collector, pipeline.Config{
		MaxCompetitors:  cfg.Analysis.MaxCompetitors,
		DataConcurrency: cfg.Analysis.DataConcurrency,
		RequestTimeout:  timeout,
	})

	// Report storage is optional; without DATABASE_URL runs are only
	// returned inline.
	var repo store.ReportRepository
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(context.Background()); err != nil {
			fmt.Printf("[WARNING] Database unavailable: %v\n", err)
		} else {
			defer store.Close()
			repo = store.NewReportRepo()
			fmt.Println("[DB] Report storage connected")
		}
	}

	analysis.InitHandler(orchestrator, repo)
	http.HandleFunc("/api/analysis/run", analysis.HandleRun)
	http.HandleFunc("/api/analysis/report", analysis.HandleGetReport)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("Market analysis API listening on :%s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, nil))
}
