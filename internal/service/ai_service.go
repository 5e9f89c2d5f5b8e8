package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"insightform/internal/config"
	"insightform/internal/model"
)

// AIService writes report summaries and question suggestions via Gemini
type AIService struct {
	config *config.AIConfig
	client *http.Client
	logger *zap.Logger
}

// NewAIService creates a new AI service
func NewAIService(cfg *config.AIConfig, logger *zap.Logger) *AIService {
	return &AIService{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
		logger: logger.Named("ai"),
	}
}

// Enabled reports whether an API key is configured
func (s *AIService) Enabled() bool {
	return s.config.IsEnabled()
}

// Summarize asks the report model for a short narrative of the aggregate
func (s *AIService) Summarize(ctx context.Context, form *model.Form, processed []byte) (string, error) {
	response, err := s.callGemini(ctx, s.config.Models.Report, buildSummaryPrompt(form, processed))
	if err != nil {
		return "", err
	}

	var result struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(response), &result); err != nil {
		return "", fmt.Errorf("decode summary: %w", err)
	}
	if strings.TrimSpace(result.Summary) == "" {
		return "", fmt.Errorf("empty summary from Gemini")
	}
	return result.Summary, nil
}

// Suggest asks the suggestion model for new questions worth adding
func (s *AIService) Suggest(ctx context.Context, form *model.Form, processed []byte) ([]model.Suggestion, error) {
	response, err := s.callGemini(ctx, s.config.Models.Suggest, buildSuggestionPrompt(form, processed))
	if err != nil {
		return nil, err
	}

	var result struct {
		Suggestions []model.Suggestion `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(response), &result); err != nil {
		return nil, fmt.Errorf("decode suggestions: %w", err)
	}
	return result.Suggestions, nil
}

// callGemini makes a request to the Gemini API
func (s *AIService) callGemini(ctx context.Context, modelName, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", s.config.ModelEndpoint(modelName), s.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	s.logger.Debug("gemini call",
		zap.String("model", modelName),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}

	// Parse Gemini response structure
	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", err
	}

	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		return geminiResp.Candidates[0].Content.Parts[0].Text, nil
	}

	return "", fmt.Errorf("empty response from Gemini")
}

// Prompt builders
func buildSummaryPrompt(form *model.Form, processed []byte) string {
	return fmt.Sprintf(`You are analysing the results of a survey. Return ONLY valid JSON:
{
  "summary": "3 to 6 sentences for the survey owner"
}

Survey title: %s
Survey description: %s

Per-question statistics (JSON, keyed by question; mcq/rating hold distributions, number holds average/min/max, text holds raw answers):
%s

Point out the strongest signals, notable splits and anything that looks like a problem. Do not invent numbers.`,
		form.Title, form.Description, string(processed))
}

func buildSuggestionPrompt(form *model.Form, processed []byte) string {
	existing := make([]string, 0, len(form.Questions))
	for _, q := range form.Questions {
		existing = append(existing, fmt.Sprintf("- [%s] %s", q.Type, q.Text))
	}

	return fmt.Sprintf(`Suggest follow-up questions for this survey. Return ONLY valid JSON:
{
  "suggestions": [
    {"questionType": "text" or "mcq" or "rating", "questionText": "...", "options": ["only for mcq"]}
  ]
}

Survey title: %s
Existing questions:
%s

Results so far:
%s

Suggest 3 to 5 questions that would explain the results better. Do not repeat existing questions.`,
		form.Title, strings.Join(existing, "\n"), string(processed))
}
