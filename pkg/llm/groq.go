package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/johnquangdev/minutes-service/pkg/config"
)

// GroqClient is a minimal client for Groq chat completions (OpenAI-compatible)
type GroqClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewGroqClient creates a Groq client from the provider config
func NewGroqClient(cfg *config.GroqConfig) *GroqClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.groq.com"
	}
	return &GroqClient{
		apiKey:  cfg.APIKey,
		baseURL: base,
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name implements Provider
func (g *GroqClient) Name() string { return "groq" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the shape for chat completion requests
type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages,omitempty"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// chatResponse is a minimal response shape
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate sends the prompt to Groq and returns the assistant content.
// All failures are classified into the gateway error taxonomy; no retries here.
func (g *GroqClient) Generate(ctx context.Context, prompt string, params GenerateParams) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if params.SystemInstruction != "" {
		messages = append(messages, chatMessage{Role: "system", Content: params.SystemInstruction})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	reqBody := chatRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: params.Temperature,
		MaxTokens:   params.MaxOutputTokens,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", &Error{Kind: KindInvalidResponse, Provider: g.Name(), Err: err}
	}

	endpoint := g.baseURL + "/openai/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return "", &Error{Kind: KindInvalidResponse, Provider: g.Name(), Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", &Error{Kind: KindTransient, Provider: g.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", g.classifyStatus(resp.StatusCode, string(body))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", &Error{Kind: KindInvalidResponse, Provider: g.Name(), Err: err}
	}
	if len(cr.Choices) == 0 {
		return "", &Error{Kind: KindInvalidResponse, Provider: g.Name(), Err: fmt.Errorf("empty response from groq")}
	}
	return cr.Choices[0].Message.Content, nil
}

func (g *GroqClient) classifyStatus(status int, body string) *Error {
	err := fmt.Errorf("groq returned status %d: %s", status, body)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &Error{Kind: KindAuth, Provider: g.Name(), Err: err}
	case status == http.StatusPaymentRequired:
		return &Error{Kind: KindQuotaExceeded, Provider: g.Name(), Err: err}
	case status == http.StatusTooManyRequests:
		if strings.Contains(body, "insufficient_quota") || strings.Contains(body, "billing") {
			return &Error{Kind: KindQuotaExceeded, Provider: g.Name(), Err: err}
		}
		return &Error{Kind: KindRateLimited, Provider: g.Name(), Err: err}
	case status >= 500:
		return &Error{Kind: KindTransient, Provider: g.Name(), Err: err}
	default:
		return &Error{Kind: KindInvalidResponse, Provider: g.Name(), Err: err}
	}
}
