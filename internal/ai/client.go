package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"

	translateMaxTokens   = 500
	translateTemperature = 0.3
	subtaskMaxTokens     = 300
	subtaskTemperature   = 0.7
)

// Mode selects the transport once at construction. ModeProxy sends
// requests through the intermediary endpoints and falls back to the
// direct path when the intermediary fails; ModeDirect talks to the
// completion API straight away (local/dev deployments).
type Mode string

const (
	ModeDirect Mode = "direct"
	ModeProxy  Mode = "proxy"
)

// Client is the completion gateway. It is stateless; the API key
// travels with every call.
type Client struct {
	mode     Mode
	model    string
	baseURL  string
	proxyURL string
	http     *http.Client
}

func New(mode Mode, model, baseURL, proxyURL string) *Client {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if mode == ModeProxy && proxyURL == "" {
		mode = ModeDirect
	}
	return &Client{
		mode:     mode,
		model:    model,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		proxyURL: strings.TrimSuffix(proxyURL, "/"),
		http:     &http.Client{},
	}
}

// Translate returns the text translated to targetLanguage, trimmed and
// otherwise unparsed. With an empty API key it answers in demo mode.
func (c *Client) Translate(ctx context.Context, text, targetLanguage, apiKey string) (string, error) {
	if apiKey == "" {
		return DemoTranslation(text, targetLanguage), nil
	}

	if c.mode == ModeProxy {
		translated, err := c.translateProxied(ctx, text, targetLanguage, apiKey)
		if err == nil {
			return translated, nil
		}
		// Single fallback: any intermediary failure retries the
		// direct path once.
	}
	return c.translateDirect(ctx, text, targetLanguage, apiKey)
}

// GenerateSubtasks returns 1-7 subtask titles for a task, in
// targetLanguage. With an empty API key it answers in demo mode.
func (c *Client) GenerateSubtasks(ctx context.Context, title, description, apiKey, targetLanguage string) ([]string, error) {
	if targetLanguage == "" {
		targetLanguage = "English"
	}
	if apiKey == "" {
		return DemoSubtasks(title, targetLanguage), nil
	}

	if c.mode == ModeProxy {
		titles, err := c.generateSubtasksProxied(ctx, title, description, apiKey, targetLanguage)
		if err == nil {
			return titles, nil
		}
	}
	return c.generateSubtasksDirect(ctx, title, description, apiKey, targetLanguage)
}

// ---------- intermediary path ----------

type translateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"targetLanguage"`
	OpenAIKey      string `json:"openaiKey"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

type subtaskRequest struct {
	TodoTitle       string `json:"todoTitle"`
	TodoDescription string `json:"todoDescription,omitempty"`
	OpenAIKey       string `json:"openaiKey"`
	TargetLanguage  string `json:"targetLanguage,omitempty"`
}

type subtaskResponse struct {
	Subtasks []string `json:"subtasks"`
}

func (c *Client) translateProxied(ctx context.Context, text, targetLanguage, apiKey string) (string, error) {
	var out translateResponse
	err := c.postJSON(ctx, c.proxyURL+"/translate", translateRequest{
		Text:           text,
		TargetLanguage: targetLanguage,
		OpenAIKey:      apiKey,
	}, &out)
	if err != nil {
		return "", err
	}
	if out.TranslatedText == "" {
		return "", fmt.Errorf("%w: empty translation", ErrGatewayFailure)
	}
	return out.TranslatedText, nil
}

func (c *Client) generateSubtasksProxied(ctx context.Context, title, description, apiKey, targetLanguage string) ([]string, error) {
	var out subtaskResponse
	err := c.postJSON(ctx, c.proxyURL+"/generate-subtasks", subtaskRequest{
		TodoTitle:       title,
		TodoDescription: description,
		OpenAIKey:       apiKey,
		TargetLanguage:  targetLanguage,
	}, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Subtasks) == 0 {
		return nil, fmt.Errorf("%w: empty subtask list", ErrGatewayFailure)
	}
	return out.Subtasks, nil
}

func (c *Client) postJSON(ctx context.Context, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayFailure, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrGatewayFailure, err)
	}
	if resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode, respBody)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrGatewayFailure, err)
	}
	return nil
}

// ---------- direct path ----------

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type upstreamError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (c *Client) translateDirect(ctx context.Context, text, targetLanguage, apiKey string) (string, error) {
	content, err := c.chatComplete(ctx, apiKey,
		buildTranslateSystemPrompt(targetLanguage), text,
		translateMaxTokens, translateTemperature)
	if err != nil {
		return "", err
	}
	return content, nil
}

func (c *Client) generateSubtasksDirect(ctx context.Context, title, description, apiKey, targetLanguage string) ([]string, error) {
	content, err := c.chatComplete(ctx, apiKey,
		buildSubtaskSystemPrompt(targetLanguage),
		BuildSubtaskPrompt(title, description, targetLanguage),
		subtaskMaxTokens, subtaskTemperature)
	if err != nil {
		return nil, err
	}
	return ParseSubtasks(content)
}

func (c *Client) chatComplete(ctx context.Context, apiKey, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayFailure, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrGatewayFailure, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp.StatusCode, respBody)
	}

	var out chatResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrGatewayFailure, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrGatewayFailure)
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: empty completion content", ErrGatewayFailure)
	}
	return content, nil
}

func statusError(code int, body []byte) error {
	msg := string(body)
	var ue upstreamError
	if json.Unmarshal(body, &ue) == nil && ue.Error.Message != "" {
		msg = ue.Error.Message
	}

	switch code {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrInvalidAPIKey, msg)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, msg)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, msg)
	default:
		return fmt.Errorf("%w: status %d: %s", ErrGatewayFailure, code, msg)
	}
}
