package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/helpdesk-kit/support-desk-api/config"
	"github.com/helpdesk-kit/support-desk-api/models"
)

// Suggestion is one generated reply draft for a support agent
type Suggestion struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Suggester defines the interface for reply-suggestion generation
type Suggester interface {
	SuggestReplies(ticket *models.Ticket) ([]Suggestion, error)
}

const suggestionSystemPrompt = `You are a professional technical support assistant. Your job is to draft helpful, professional replies to support tickets.

Generate exactly 3 different professional replies for the following ticket.

Each reply must:
- Be professional and courteous
- Address the problem described directly
- Offer a practical solution or next step
- Be concise (2-4 sentences)
- Have an empathetic, helpful tone

Format your answer as JSON with the following structure:
{
  "suggestions": [
    "First reply here...",
    "Second reply here...",
    "Third reply here..."
  ]
}`

// OpenAISuggester generates reply suggestions through the OpenAI chat
// completions API.
type OpenAISuggester struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAISuggester creates a new suggestion service instance. The base
// URL is configurable so tests can point it at a local server.
func NewOpenAISuggester(cfg *config.Config) *OpenAISuggester {
	return &OpenAISuggester{
		apiKey:  cfg.OpenAIAPIKey,
		baseURL: strings.TrimSuffix(cfg.OpenAIBaseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// SuggestReplies asks the model for three reply drafts for a ticket. The
// HTTP client carries an explicit timeout, and this must never be called
// while holding a database transaction.
func (s *OpenAISuggester) SuggestReplies(ticket *models.Ticket) ([]Suggestion, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not configured")
	}

	payload := chatRequest{
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		Messages: []chatMessage{
			{Role: "system", Content: suggestionSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Ticket title: %s\n\nDescription: %s", ticket.Title, ticket.Description)},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequest("POST", s.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call completion endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("completion endpoint returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("completion response contained no choices")
	}

	var parsed struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse suggestions: %w", err)
	}
	if len(parsed.Suggestions) == 0 {
		return nil, fmt.Errorf("model returned no suggestions")
	}

	suggestions := make([]Suggestion, 0, len(parsed.Suggestions))
	for i, text := range parsed.Suggestions {
		suggestions = append(suggestions, Suggestion{
			ID:   i + 1,
			Text: strings.TrimSpace(text),
		})
	}
	return suggestions, nil
}

// MockSuggester is a mock implementation of Suggester for testing
type MockSuggester struct {
	Suggestions []Suggestion
	Err         error
}

// SuggestReplies returns the canned suggestions or error
func (m *MockSuggester) SuggestReplies(ticket *models.Ticket) ([]Suggestion, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Suggestions, nil
}
