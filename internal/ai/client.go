package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Reviewer classifies one near-duplicate pair
type Reviewer interface {
	Review(ctx context.Context, req *ReviewRequest) (*ReviewResponse, error)
	GetModel() string
}

// Client wraps the Anthropic API client
type Client struct {
	client  *anthropic.Client
	model   string
	timeout time.Duration
}

// NewClient creates a new AI client. Extra options are passed to the SDK.
func NewClient(model string, apiToken string, timeoutSeconds int, opts ...option.RequestOption) (*Client, error) {
	// Resolve API token: parameter > environment variable
	token := apiToken
	if token == "" {
		token = os.Getenv("ANTHROPIC_API_KEY")
	}
	if token == "" {
		return nil, errors.New("no API token provided: set ai.token or the ANTHROPIC_API_KEY environment variable")
	}

	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(token)}, opts...)...)

	timeout := time.Duration(timeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		client:  client,
		model:   mapModelName(model),
		timeout: timeout,
	}, nil
}

// mapModelName converts friendly model names to model IDs
func mapModelName(name string) string {
	switch normalize(name) {
	case "haiku":
		return "claude-3-5-haiku-latest"
	case "sonnet":
		return "claude-sonnet-4-20250514"
	case "opus":
		return "claude-opus-4-20250514"
	default:
		// Default to sonnet if unknown
		return "claude-sonnet-4-20250514"
	}
}

// Review asks the model for a verdict on one pair
func (c *Client) Review(ctx context.Context, req *ReviewRequest) (*ReviewResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.F(c.model),
		MaxTokens: anthropic.F(int64(512)),
		System: anthropic.F([]anthropic.TextBlockParam{
			anthropic.NewTextBlock(ReviewSystemPrompt),
		}),
		Messages: anthropic.F([]anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildReviewPrompt(req))),
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}

	responseText := extractTextContent(message)
	if responseText == "" {
		return nil, errors.New("empty response from API")
	}

	response, err := parseReviewResponse(responseText, req.PairID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	response.TokensUsed = int(message.Usage.InputTokens + message.Usage.OutputTokens)

	return response, nil
}

// extractTextContent extracts text from the message response
func extractTextContent(message *anthropic.Message) string {
	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			text.WriteString(block.Text)
		}
	}
	return text.String()
}

// parseReviewResponse parses the JSON answer into a ReviewResponse
func parseReviewResponse(text string, pairID string) (*ReviewResponse, error) {
	text = extractJSON(text)

	var raw struct {
		Verdict     string `json:"verdict"`
		Confidence  int    `json:"confidence"`
		Explanation string `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, err
	}

	confidence := raw.Confidence
	if confidence < 0 {
		confidence = 0
	} else if confidence > 100 {
		confidence = 100
	}

	return &ReviewResponse{
		PairID:      pairID,
		Verdict:     ParseVerdict(raw.Verdict),
		Confidence:  confidence,
		Explanation: strings.TrimSpace(raw.Explanation),
	}, nil
}

// extractJSON extracts JSON from text that might contain markdown code blocks
func extractJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.Contains(text, "```") {
		start := strings.Index(text, "```json")
		if start == -1 {
			start = strings.Index(text, "```")
		}
		if start != -1 {
			// Skip the opening marker line
			contentStart := strings.Index(text[start:], "\n")
			if contentStart != -1 {
				start = start + contentStart + 1
			}
		}

		end := strings.LastIndex(text, "```")
		if start != -1 && end > start {
			text = text[start:end]
		}
	}

	text = strings.TrimSpace(text)
	jsonStart := strings.Index(text, "{")
	jsonEnd := strings.LastIndex(text, "}")
	if jsonStart != -1 && jsonEnd > jsonStart {
		text = text[jsonStart : jsonEnd+1]
	}

	return strings.TrimSpace(text)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// GetModel returns the current model being used
func (c *Client) GetModel() string {
	return c.model
}
