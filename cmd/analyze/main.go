package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"market_analysis/pkg/core/agent"
	"market_analysis/pkg/core/collect"
	"market_analysis/pkg/core/pipeline"
	"market_analysis/pkg/core/prompt"
	"market_analysis/pkg/core/store"
	"market_analysis/pkg/models"
)

// appConfig is the on-disk shape of config/models.yaml: the provider
// configuration at the top level plus the analysis tunables.
type appConfig struct {
	Agent    agent.Config    `yaml:",inline"`
	Analysis analysisOptions `yaml:"analysis"`
}

type analysisOptions struct {
	MaxCompetitors        int    `yaml:"max_competitors"`
	DataConcurrency       int    `yaml:"data_concurrency"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	SaveResults           bool   `yaml:"save_results"`
	OutputDir             string `yaml:"output_dir"`
}

func loadConfig() appConfig {
	cfg := appConfig{
		Analysis: analysisOptions{
			MaxCompetitors:        5,
			DataConcurrency:       4,
			RequestTimeoutSeconds: 120,
			SaveResults:           true,
			OutputDir:             ".",
		},
	}

	data, err := os.ReadFile("config/models.yaml")
	if err != nil {
		fmt.Println("[CONFIG] config/models.yaml not found, using defaults")
		cfg.Agent.ActiveProvider = "openai"
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("Invalid config/models.yaml: %v", err)
	}
	return cfg
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	cfg := loadConfig()

	// Prompt library is optional; every agent carries a hardcoded fallback.
	resourcesPath := "resources"
	if _, err := os.Stat(resourcesPath); os.IsNotExist(err) {
		exePath, _ := os.Executable()
		resourcesPath = filepath.Join(filepath.Dir(exePath), "resources")
	}
	if err := prompt.LoadFromDirectory(resourcesPath); err != nil {
		fmt.Printf("[PROMPT] Library not loaded (%v), using built-in prompts\n", err)
	} else {
		fmt.Printf("[PROMPT] Loaded %d prompts from %s\n", prompt.Get().Count(), resourcesPath)
	}

	company := strings.TrimSpace(strings.Join(os.Args[1:], " "))
	if company == "" {
		fmt.Print("Enter the company name to analyze: ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		company = strings.TrimSpace(line)
	}
	if company == "" {
		log.Fatal("Error: no company name provided.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	agentMgr := agent.NewManager(cfg.Agent)
	model, err := agentMgr.ResolveModel(ctx)
	if err != nil {
		log.Fatalf("Error: no usable model for provider %s: %v", agentMgr.GetActiveProvider(), err)
	}
	fmt.Printf("[MODEL] Using %s via %s\n", model, agentMgr.GetActiveProvider())

	timeout := time.Duration(cfg.Analysis.RequestTimeoutSeconds) * time.Second
	collector := collect.NewHTTPCollector(timeout)
	orchestrator := pipeline.NewOrchestrator(agentMgr, collector, pipeline.Config{
		MaxCompetitors:  cfg.Analysis.MaxCompetitors,
		DataConcurrency: cfg.Analysis.DataConcurrency,
		RequestTimeout:  timeout,
	})

	fmt.Printf("🚀 Starting market analysis for %s...\n", company)
	record, err := orchestrator.AnalyzeCompany(ctx, company)
	if err != nil {
		// The partial record still carries everything completed so far.
		log.Printf("Analysis failed: %v", err)
		if record == nil {
			os.Exit(1)
		}
	}

	printSummary(record)

	if cfg.Analysis.SaveResults {
		if path, err := saveArtifact(cfg.Analysis.OutputDir, record); err != nil {
			log.Printf("Warning: failed to save results: %v", err)
		} else {
			fmt.Printf("💾 Results saved to %s\n", path)
		}
	}

	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(ctx); err != nil {
			log.Printf("Warning: database unavailable: %v", err)
		} else {
			defer store.Close()
			if err := store.NewReportRepo().Save(ctx, record); err != nil {
				log.Printf("Warning: failed to persist report: %v", err)
			} else {
				fmt.Println("💾 Report persisted to database")
			}
		}
	}

	if err != nil {
		os.Exit(1)
	}
}

func printSummary(rec *models.AnalysisRecord) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("MARKET ANALYSIS: %s\n", rec.TargetCompany)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Industry: %s\n", rec.Industry)
	fmt.Printf("Competitors identified: %d\n", len(rec.Competitors))
	for _, c := range rec.TopCompetitors(5) {
		fmt.Printf("  - %s (%s, threat: %s)\n", c.Name, c.Type, c.ThreatLevel)
	}
	if rec.ConfidenceScore != nil {
		fmt.Printf("Confidence score: %.1f/10\n", *rec.ConfidenceScore)
	}
	if rec.FinalReport != "" {
		fmt.Println(strings.Repeat("-", 60))
		fmt.Println(rec.FinalReport)
	}
	fmt.Println(strings.Repeat("=", 60))
}

// saveArtifact writes the full record next to the binary as a timestamped
// JSON file.
func saveArtifact(dir string, rec *models.AnalysisRecord) (string, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}

	slug := strings.ToLower(strings.ReplaceAll(rec.TargetCompany, " ", "_"))
	name := fmt.Sprintf("market_analysis_%s_%s.json", slug, time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
