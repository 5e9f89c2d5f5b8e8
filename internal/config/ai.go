package config

import "strconv"

// GeminiModels defines which Gemini models to use for different tasks
type GeminiModels struct {
	// Report writes the analytics summary (deep analysis, not blocking)
	Report string `json:"report"`

	// Suggest proposes follow-up questions for the form (fast)
	Suggest string `json:"suggest"`
}

// AIConfig holds all AI-related configuration
type AIConfig struct {
	APIKey    string       `json:"-"` // Never serialize
	BaseURL   string       `json:"baseUrl"`
	Models    GeminiModels `json:"models"`
	TimeoutMS int          `json:"timeoutMs"`
}

// DefaultAIConfig returns the default AI configuration
func DefaultAIConfig() *AIConfig {
	timeout, err := strconv.Atoi(getEnv("GEMINI_TIMEOUT_MS", "15000"))
	if err != nil || timeout <= 0 {
		timeout = 15000
	}
	return &AIConfig{
		APIKey:  getEnv("GEMINI_API_KEY", ""),
		BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/models"),
		Models: GeminiModels{
			Report:  getEnv("GEMINI_MODEL_REPORT", "gemini-2.0-flash"),
			Suggest: getEnv("GEMINI_MODEL_SUGGEST", "gemini-2.5-flash-preview-05-20"),
		},
		TimeoutMS: timeout,
	}
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the full endpoint for a given model
func (c *AIConfig) ModelEndpoint(model string) string {
	return c.BaseURL + "/" + model + ":generateContent"
}
