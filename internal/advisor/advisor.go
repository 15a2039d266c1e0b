// Package advisor produces an optional natural-language reading of an
// analysis result through the Claude API. The engine never depends on it; a
// missing API key simply means no commentary.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/textguard/textguard/pkg/models"
)

// ErrNotConfigured reports that no API key was provided.
var ErrNotConfigured = errors.New("advisor: no API key configured")

// Advisor turns a scored analysis into reviewer-facing commentary.
type Advisor struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Config holds advisor configuration.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://api.anthropic.com/v1",
		Model:   "claude-3-haiku-20240307",
		Timeout: 30 * time.Second,
	}
}

// New creates an advisor.
func New(config Config) *Advisor {
	if config.BaseURL == "" {
		config.BaseURL = DefaultConfig().BaseURL
	}
	if config.Model == "" {
		config.Model = DefaultConfig().Model
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}

	return &Advisor{
		apiKey:  config.APIKey,
		baseURL: config.BaseURL,
		model:   config.Model,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Commentary is the advisor's reading of an analysis.
type Commentary struct {
	Assessment string   `json:"assessment"`
	Concerns   []string `json:"concerns"`
	Confidence float64  `json:"confidence"`
}

// Review asks the model for an originality assessment of result.
func (a *Advisor) Review(ctx context.Context, result *models.AnalysisResult) (*Commentary, error) {
	if a.apiKey == "" {
		return nil, ErrNotConfigured
	}

	prompt := buildPrompt(result)

	response, err := a.callClaude(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("call claude: %w", err)
	}

	commentary, err := parseResponse(response)
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return commentary, nil
}

func buildPrompt(result *models.AnalysisResult) string {
	var sources strings.Builder
	for i, src := range result.Sources {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&sources, "- %s (%.1f%% similar, %d phrase hits)\n", src.Title, src.Similarity, src.Hits)
	}
	if sources.Len() == 0 {
		sources.WriteString("- none\n")
	}

	style := "not analyzed"
	if result.Style != nil {
		style = fmt.Sprintf("consistency %.1f/100, %d anomalous paragraphs",
			result.Style.ConsistencyScore, len(result.Style.Anomalies))
	}

	return fmt.Sprintf(`You are reviewing an automated originality analysis of a document.

Overall similarity score: %.1f/100
Word count: %d (%d unique)
Strongest single source match: %.1f%%
Top matching sources:
%s
Writing style: %s

Summarize the originality risk for a human reviewer. Respond with JSON:
{
  "assessment": "one paragraph summary",
  "concerns": ["specific concern", ...],
  "confidence": 0.0-1.0
}

Respond ONLY with valid JSON.`,
		result.OverallScore, result.WordCount, result.UniqueWords,
		result.MaxMatch, sources.String(), style)
}

type claudeRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (a *Advisor) callClaude(ctx context.Context, prompt string) (string, error) {
	reqBody := claudeRequest{
		Model:     a.model,
		MaxTokens: 500,
		Messages: []message{
			{Role: "user", Content: prompt},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error: status %d", resp.StatusCode)
	}

	var cr claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", err
	}

	if len(cr.Content) == 0 {
		return "", fmt.Errorf("empty response")
	}

	return cr.Content[0].Text, nil
}

func parseResponse(response string) (*Commentary, error) {
	var c Commentary
	if err := json.Unmarshal([]byte(response), &c); err != nil {
		return nil, err
	}
	if c.Assessment == "" {
		return nil, fmt.Errorf("response carries no assessment")
	}
	return &c, nil
}
