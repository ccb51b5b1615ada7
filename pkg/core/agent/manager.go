// Package agent manages LLM provider selection. A Manager holds the
// provider registry and resolves which provider (and model) serves each
// analysis stage, based on YAML configuration.
package agent

import (
	"context"
	"fmt"
	"time"

	"market_analysis/pkg/core/llm"
)

// Config is the YAML-backed provider configuration.
type Config struct {
	ActiveProvider string `yaml:"active_provider"`
	Model          string `yaml:"model"`
	// CandidateModels is the ordered fallback list probed at startup when no
	// explicit model is configured.
	CandidateModels []string               `yaml:"candidate_models"`
	Agents          map[string]AgentConfig `yaml:"agents"`
}

// AgentConfig is a per-stage override.
type AgentConfig struct {
	Provider    string `yaml:"provider"` // optional provider override
	Model       string `yaml:"model"`    // optional model override
	Description string `yaml:"description"`
}

// Manager resolves providers for analysis stages.
type Manager struct {
	config    Config
	providers map[string]llm.Provider
}

func NewManager(config Config) *Manager {
	return &Manager{
		config: config,
		providers: map[string]llm.Provider{
			"openai":   &llm.OpenAIProvider{Model: config.Model},
			"gemini":   &llm.GeminiProvider{Model: config.Model},
			"deepseek": &llm.DeepSeekProvider{Model: config.Model},
		},
	}
}

// GetProvider returns the provider serving the given stage: the per-stage
// override if configured, otherwise the global active provider.
func (m *Manager) GetProvider(stage string) llm.Provider {
	if agentConfig, ok := m.config.Agents[stage]; ok && agentConfig.Provider != "" {
		if p, ok := m.providers[agentConfig.Provider]; ok {
			return p
		}
	}

	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p
	}

	return m.providers["openai"]
}

// GetProviderByName retrieves a provider instance by name.
func (m *Manager) GetProviderByName(name string) llm.Provider {
	return m.providers[name]
}

// SetGlobalProvider switches the active provider at runtime.
func (m *Manager) SetGlobalProvider(name string) error {
	if _, ok := m.providers[name]; !ok {
		return fmt.Errorf("provider %s not found", name)
	}
	m.config.ActiveProvider = name
	return nil
}

// GetActiveProvider returns the name of the global active provider.
func (m *Manager) GetActiveProvider() string {
	return m.config.ActiveProvider
}

// ExecutePrompt adapts the system prompt for the stage's provider and
// executes the request. The resolved model (per-stage override first, then
// the global default) is injected into the call options unless the caller
// already pinned one.
func (m *Manager) ExecutePrompt(ctx context.Context, stage string, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	provider := m.GetProvider(stage)

	if options == nil {
		options = map[string]interface{}{}
	}
	if val, _ := options["model"].(string); val == "" {
		if model := m.modelFor(stage); model != "" {
			options["model"] = model
		}
	}

	adapted := provider.AdaptInstructions(systemPrompt)
	return provider.GenerateResponse(ctx, prompt, adapted, options)
}

func (m *Manager) modelFor(stage string) string {
	if agentConfig, ok := m.config.Agents[stage]; ok && agentConfig.Model != "" {
		return agentConfig.Model
	}
	return m.config.Model
}

// ResolveModel probes the candidate model list against the active provider
// and fixes the first responsive model as the default for this run. Probing
// happens once at startup; the pipeline itself never performs provider
// discovery.
func (m *Manager) ResolveModel(ctx context.Context) (string, error) {
	if m.config.Model != "" {
		return m.config.Model, nil
	}

	provider := m.providers[m.config.ActiveProvider]
	if provider == nil {
		return "", fmt.Errorf("active provider %q not registered", m.config.ActiveProvider)
	}

	var lastErr error
	for _, candidate := range m.config.CandidateModels {
		_, err := provider.GenerateResponse(ctx, "Reply with OK.", "", map[string]interface{}{
			"model":   candidate,
			"timeout": 15 * time.Second,
		})
		if err == nil {
			m.config.Model = candidate
			return candidate, nil
		}
		lastErr = err
	}

	if lastErr == nil {
		return "", fmt.Errorf("no candidate models configured for provider %q", m.config.ActiveProvider)
	}
	return "", fmt.Errorf("no candidate model responded: %w", lastErr)
}
