package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config holds client construction parameters.
type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Client talks to the Messages API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
}

// NewClient creates an API client. BaseURL defaults to the public endpoint
// and the HTTP client to one with a streaming-friendly timeout.
func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("anthropic api key is required")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		headers: map[string]string{
			"X-API-Key":         apiKey,
			"Anthropic-Version": anthropicVersion,
			"Content-Type":      "application/json",
			"User-Agent":        userAgent,
		},
	}, nil
}

// CreateMessage performs a blocking Messages API call.
func (c *Client) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	req.Stream = false
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, readAPIError(resp)
	}

	var msgResp MessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &msgResp, nil
}

// StreamCallbacks receives incremental output during a streaming call. Any
// callback may be nil.
type StreamCallbacks struct {
	OnTextDelta     func(text string)
	OnThinkingDelta func(text string)
	OnToolUse       func(block ContentBlock)
}

// StreamMessage performs a streaming Messages API call over SSE, invoking
// callbacks as deltas arrive, and returns the fully accumulated response.
func (c *Client) StreamMessage(ctx context.Context, req MessageRequest, cb StreamCallbacks) (*MessageResponse, error) {
	req.Stream = true
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, readAPIError(resp)
	}

	acc := newAccumulator()
	streamErr := consumeSSE(ctx, resp.Body, func(_ string, data string) error {
		data = strings.TrimSpace(data)
		if data == "" {
			return nil
		}

		var envelope StreamEventEnvelope
		if err := json.Unmarshal([]byte(data), &envelope); err != nil {
			return fmt.Errorf("decoding stream envelope: %w", err)
		}

		switch envelope.Type {
		case "message_start":
			var ev MessageStartEvent
			if err := json.Unmarshal([]byte(data), &ev); err != nil {
				return fmt.Errorf("decoding message_start: %w", err)
			}
			acc.start(ev.Message)
		case "content_block_start":
			var ev ContentBlockStartEvent
			if err := json.Unmarshal([]byte(data), &ev); err != nil {
				return fmt.Errorf("decoding content_block_start: %w", err)
			}
			acc.open(ev.Index, ev.ContentBlock)
		case "content_block_delta":
			var ev ContentBlockDeltaEvent
			if err := json.Unmarshal([]byte(data), &ev); err != nil {
				return fmt.Errorf("decoding content_block_delta: %w", err)
			}
			c.dispatchDelta(acc, ev, cb)
		case "content_block_stop":
			var ev ContentBlockStopEvent
			if err := json.Unmarshal([]byte(data), &ev); err != nil {
				return fmt.Errorf("decoding content_block_stop: %w", err)
			}
			block := acc.close(ev.Index)
			if block != nil && block.Type == BlockToolUse && cb.OnToolUse != nil {
				cb.OnToolUse(*block)
			}
		case "message_delta":
			var ev MessageDeltaEvent
			if err := json.Unmarshal([]byte(data), &ev); err != nil {
				return fmt.Errorf("decoding message_delta: %w", err)
			}
			acc.finish(ev)
		case "error":
			var ev ErrorResponse
			if err := json.Unmarshal([]byte(data), &ev); err != nil {
				return fmt.Errorf("decoding error event: %w", err)
			}
			return APIError{StatusCode: resp.StatusCode, Type: ev.Error.Type, Message: ev.Error.Message}
		case "message_stop", "ping":
		}
		return nil
	})
	if streamErr != nil {
		return nil, streamErr
	}

	return acc.response(), nil
}

func (c *Client) dispatchDelta(acc *accumulator, ev ContentBlockDeltaEvent, cb StreamCallbacks) {
	switch ev.Delta.Type {
	case "text_delta":
		acc.appendText(ev.Index, ev.Delta.Text)
		if cb.OnTextDelta != nil && ev.Delta.Text != "" {
			cb.OnTextDelta(ev.Delta.Text)
		}
	case "thinking_delta":
		acc.appendThinking(ev.Index, ev.Delta.Thinking)
		if cb.OnThinkingDelta != nil && ev.Delta.Thinking != "" {
			cb.OnThinkingDelta(ev.Delta.Thinking)
		}
	case "signature_delta":
		acc.appendSignature(ev.Index, ev.Delta.Signature)
	case "input_json_delta":
		acc.appendInput(ev.Index, ev.Delta.PartialJSON)
	}
}

func (c *Client) do(ctx context.Context, payload MessageRequest) (*http.Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, &buf)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	return resp, nil
}

func readAPIError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading error response (status %d): %w", resp.StatusCode, err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return APIError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	var apiErr ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return APIError{StatusCode: resp.StatusCode, Type: apiErr.Error.Type, Message: apiErr.Error.Message}
	}
	return APIError{StatusCode: resp.StatusCode, Message: string(body)}
}
