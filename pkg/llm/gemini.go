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

// GeminiClient is a minimal client for the Gemini generateContent API
type GeminiClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewGeminiClient creates a Gemini client from the provider config
func NewGeminiClient(cfg *config.GeminiConfig) *GeminiClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	base := cfg.BaseURL
	if base == "" {
		base = "https://generativelanguage.googleapis.com"
	}
	return &GeminiClient{
		apiKey:  cfg.APIKey,
		baseURL: base,
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name implements Provider
func (g *GeminiClient) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends the prompt to Gemini and returns the candidate text
func (g *GeminiClient) Generate(ctx context.Context, prompt string, params GenerateParams) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
	}
	if params.SystemInstruction != "" {
		reqBody.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: params.SystemInstruction}}}
	}
	reqBody.GenerationConfig.Temperature = params.Temperature
	reqBody.GenerationConfig.MaxOutputTokens = params.MaxOutputTokens

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", &Error{Kind: KindInvalidResponse, Provider: g.Name(), Err: err}
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return "", &Error{Kind: KindInvalidResponse, Provider: g.Name(), Err: err}
	}
	req.Header.Set("x-goog-api-key", g.apiKey)
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

	var gr geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", &Error{Kind: KindInvalidResponse, Provider: g.Name(), Err: err}
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", &Error{Kind: KindInvalidResponse, Provider: g.Name(), Err: fmt.Errorf("empty response from gemini")}
	}

	var sb strings.Builder
	for _, part := range gr.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

func (g *GeminiClient) classifyStatus(status int, body string) *Error {
	err := fmt.Errorf("gemini returned status %d: %s", status, body)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &Error{Kind: KindAuth, Provider: g.Name(), Err: err}
	case status == http.StatusBadRequest && strings.Contains(body, "API_KEY_INVALID"):
		return &Error{Kind: KindAuth, Provider: g.Name(), Err: err}
	case status == http.StatusTooManyRequests:
		if strings.Contains(body, "RESOURCE_EXHAUSTED") && strings.Contains(body, "quota") {
			return &Error{Kind: KindQuotaExceeded, Provider: g.Name(), Err: err}
		}
		return &Error{Kind: KindRateLimited, Provider: g.Name(), Err: err}
	case status >= 500:
		return &Error{Kind: KindTransient, Provider: g.Name(), Err: err}
	default:
		return &Error{Kind: KindInvalidResponse, Provider: g.Name(), Err: err}
	}
}
