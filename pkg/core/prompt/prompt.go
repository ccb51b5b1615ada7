// Package prompt provides a centralized prompt library for LLM interactions.
// Stage prompts can be defined in JSON files and loaded at runtime; every
// stage also carries a hardcoded fallback so the pipeline works without a
// resources directory.
package prompt

// PromptTemplate represents a reusable prompt with metadata.
type PromptTemplate struct {
	ID             string           `json:"id"`                   // e.g. "stages.identify_industry"
	Name           string           `json:"name"`                 // Human-readable name
	Category       string           `json:"category"`             // e.g. "stages"
	Description    string           `json:"description"`          // Purpose of the prompt
	SystemPrompt   string           `json:"system_prompt"`        // Persona instruction
	UserPromptTmpl string           `json:"user_prompt_template"` // Go template for user prompt
	Variables      []PromptVariable `json:"variables"`            // Variables used in template
	Version        string           `json:"version"`
}

// PromptVariable documents one template variable.
type PromptVariable struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // string, int, float, array, object
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// PromptExecutionContext holds runtime values for template substitution.
type PromptExecutionContext struct {
	Variables map[string]interface{}
}

// NewContext creates a new execution context.
func NewContext() *PromptExecutionContext {
	return &PromptExecutionContext{Variables: make(map[string]interface{})}
}

// Set adds a variable to the context.
func (c *PromptExecutionContext) Set(key string, value interface{}) *PromptExecutionContext {
	c.Variables[key] = value
	return c
}
