package agent

import (
	"context"
	"testing"
)

func testConfig() Config {
	return Config{
		ActiveProvider: "openai",
		Model:          "gpt-4o-mini",
		Agents: map[string]AgentConfig{
			"generate_report": {
				Provider: "gemini",
				Model:    "gemini-2.0-flash",
			},
			"perform_swot": {
				Model: "gpt-4",
			},
		},
	}
}

func TestGetProviderStageOverride(t *testing.T) {
	m := NewManager(testConfig())

	if p := m.GetProvider("generate_report"); p != m.GetProviderByName("gemini") {
		t.Error("Expected gemini override for generate_report")
	}
	if p := m.GetProvider("identify_industry"); p != m.GetProviderByName("openai") {
		t.Error("Expected global provider for stage without override")
	}
}

func TestGetProviderUnknownFallsBack(t *testing.T) {
	cfg := testConfig()
	cfg.ActiveProvider = "nonexistent"
	m := NewManager(cfg)

	if p := m.GetProvider("identify_industry"); p != m.GetProviderByName("openai") {
		t.Error("Expected openai fallback for unknown active provider")
	}
}

func TestSetGlobalProvider(t *testing.T) {
	m := NewManager(testConfig())

	if err := m.SetGlobalProvider("deepseek"); err != nil {
		t.Fatalf("Switch failed: %v", err)
	}
	if m.GetActiveProvider() != "deepseek" {
		t.Errorf("Expected deepseek, got %s", m.GetActiveProvider())
	}

	if err := m.SetGlobalProvider("claude"); err == nil {
		t.Error("Expected error for unregistered provider")
	}
}

func TestModelForResolution(t *testing.T) {
	m := NewManager(testConfig())

	if got := m.modelFor("perform_swot"); got != "gpt-4" {
		t.Errorf("Expected per-stage model gpt-4, got %s", got)
	}
	if got := m.modelFor("identify_industry"); got != "gpt-4o-mini" {
		t.Errorf("Expected global model, got %s", got)
	}
}

func TestResolveModelSkipsProbeWhenConfigured(t *testing.T) {
	// With a model pinned in config no provider call should be needed.
	m := NewManager(testConfig())

	model, err := m.ResolveModel(context.Background())
	if err != nil {
		t.Fatalf("ResolveModel failed: %v", err)
	}
	if model != "gpt-4o-mini" {
		t.Errorf("Expected configured model, got %s", model)
	}
}

func TestResolveModelUnknownProvider(t *testing.T) {
	m := NewManager(Config{ActiveProvider: "claude"})

	if _, err := m.ResolveModel(context.Background()); err == nil {
		t.Error("Expected error for unregistered active provider")
	}
}
