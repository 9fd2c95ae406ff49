package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/atlas-digital/agency-engine/internal/models"
)

// Client is a Go SDK for the public agency-engine API. It covers the
// calculator, submission and chat surfaces used by site frontends.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new agency-engine client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SubmissionResult mirrors the submission endpoint response
type SubmissionResult struct {
	Success bool   `json:"success"`
	ID      int64  `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CalculatorSubmission is a calculator lead payload
type CalculatorSubmission struct {
	Name           string            `json:"name"`
	Email          string            `json:"email,omitempty"`
	Phone          string            `json:"phone,omitempty"`
	Message        string            `json:"message,omitempty"`
	Selection      models.Selection  `json:"selection"`
	Labels         map[string]string `json:"labels,omitempty"`
	AdBudget       string            `json:"adBudget,omitempty"`
	ClientPriceMin int64             `json:"priceMin,omitempty"`
	ClientPriceMax int64             `json:"priceMax,omitempty"`
}

// ContactSubmission is a contact form payload
type ContactSubmission struct {
	Name         string   `json:"name"`
	Email        string   `json:"email,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Message      string   `json:"message,omitempty"`
	Solutions    []string `json:"solutions,omitempty"`
	ServiceTypes []string `json:"serviceTypes,omitempty"`
	Budget       string   `json:"budget,omitempty"`
}

// GetCalculatorConfig retrieves the composed pricing configuration
func (c *Client) GetCalculatorConfig(ctx context.Context) (*models.CalculatorConfig, error) {
	resp, err := c.doRequest(ctx, "GET", "/api/v1/calculator", nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool                     `json:"success"`
		Data    *models.CalculatorConfig `json:"data"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data, nil
}

// Quote computes a price estimate for a selection
func (c *Client) Quote(ctx context.Context, sel models.Selection) (*models.Quote, error) {
	body, err := json.Marshal(sel)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequest(ctx, "POST", "/api/v1/calculator/quote", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool          `json:"success"`
		Data    *models.Quote `json:"data"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data, nil
}

// SubmitCalculator sends a calculator lead
func (c *Client) SubmitCalculator(ctx context.Context, sub CalculatorSubmission) (*SubmissionResult, error) {
	return c.submit(ctx, "/api/v1/submissions/calculator", sub)
}

// SubmitContact sends a contact form lead
func (c *Client) SubmitContact(ctx context.Context, sub ContactSubmission) (*SubmissionResult, error) {
	return c.submit(ctx, "/api/v1/submissions/contact", sub)
}

func (c *Client) submit(ctx context.Context, path string, payload interface{}) (*SubmissionResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequest(ctx, "POST", path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var result SubmissionResult
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}

// StartChatSession opens a support chat session and returns its ID
func (c *Client) StartChatSession(ctx context.Context, name string) (string, error) {
	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequest(ctx, "POST", "/api/v1/chat/sessions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	var result struct {
		Success bool `json:"success"`
		Data    struct {
			SessionID string `json:"session_id"`
		} `json:"data"`
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return "", fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data.SessionID, nil
}

// PostChatMessage posts a visitor message into a chat session
func (c *Client) PostChatMessage(ctx context.Context, sessionID, text string) (*models.ChatMessage, error) {
	body, err := json.Marshal(map[string]string{
		"session_id": sessionID,
		"text":       text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequest(ctx, "POST", "/api/v1/chat/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool                `json:"success"`
		Data    *models.ChatMessage `json:"data"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data, nil
}

// ChatHistory retrieves the messages of a chat session
func (c *Client) ChatHistory(ctx context.Context, sessionID string) ([]*models.ChatMessage, error) {
	resp, err := c.doRequest(ctx, "GET", "/api/v1/chat/messages?session="+sessionID, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool                  `json:"success"`
		Data    []*models.ChatMessage `json:"data"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data, nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRequest(ctx, "GET", "/health", nil)
	return err
}

// doRequest performs an HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
