// Package anthropic provides a client for the Anthropic Messages API.
// It produces procurement commentary, either as one response or as a stream of text deltas.
package anthropic

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/valveprice/internal/config"
	"github.com/rs/zerolog"
)

const (
	apiVersion       = "2023-06-01"
	messagesPath     = "/v1/messages"
	defaultMaxTokens = 2000
	defaultTimeout   = 60 * time.Second
)

// ErrUnavailable is returned when no API key is configured
var ErrUnavailable = errors.New("language model unavailable: no API key configured")

// ErrIncompleteStream is yielded when the upstream body ends before message_stop
var ErrIncompleteStream = errors.New("stream ended before message_stop")

// APIError is a non-200 answer from the API
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("anthropic API error: status %d, body: %s", e.Status, e.Body)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
	Stream    bool      `json:"stream,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

// streamEvent covers the event payloads the stream reader acts on
type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client is the Anthropic Messages API client
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	timeout    time.Duration
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a new client. An empty API key yields a client whose calls fail with ErrUnavailable.
func NewClient(cfg config.LLMConfig, log zerolog.Logger) *Client {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxTokens:  maxTokens,
		timeout:    timeout,
		httpClient: &http.Client{},
		log:        log.With().Str("component", "anthropic").Logger(),
	}
}

// Available reports whether an API key is configured
func (c *Client) Available() bool {
	return c.apiKey != ""
}

// Complete sends one prompt and returns the concatenated text of the reply
func (c *Client) Complete(ctx context.Context, prompt, system string) (string, error) {
	if !c.Available() {
		return "", ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.post(ctx, prompt, system, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	var sb strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

// Stream sends one prompt and yields text deltas as they arrive.
// The sequence ends after the message stops, on the first error, or when the consumer stops.
// Stopping early or cancelling ctx aborts the upstream request.
func (c *Client) Stream(ctx context.Context, prompt, system string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if !c.Available() {
			yield("", ErrUnavailable)
			return
		}

		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.post(ctx, prompt, system, true)
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		chunks := 0
		stopped, halted := false, false
		err = readEvents(resp.Body, func(ev streamEvent) bool {
			switch ev.Type {
			case "content_block_delta":
				if ev.Delta.Type != "text_delta" || ev.Delta.Text == "" {
					return true
				}
				chunks++
				if !yield(ev.Delta.Text, nil) {
					halted = true
					return false
				}
			case "error":
				yield("", fmt.Errorf("anthropic stream error: %s: %s", ev.Error.Type, ev.Error.Message))
				halted = true
				return false
			case "message_stop":
				stopped = true
				return false
			}
			return true
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			yield("", fmt.Errorf("failed to read stream: %w", err))
			return
		}
		if halted {
			return
		}
		if !stopped {
			yield("", ErrIncompleteStream)
			return
		}

		c.log.Debug().Int("chunks", chunks).Msg("Stream finished")
	}
}

func (c *Client) post(ctx context.Context, prompt, system string, stream bool) (*http.Response, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages:  []message{{Role: "user", Content: prompt}},
		Stream:    stream,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	c.log.Debug().Str("model", c.model).Bool("stream", stream).Int("prompt_len", len(prompt)).Msg("Making Anthropic request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{Status: resp.StatusCode, Body: string(bodyBytes)}
	}
	return resp, nil
}

// readEvents parses server-sent events and hands each JSON data payload to fn until fn returns false
func readEvents(r io.Reader, fn func(streamEvent) bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data strings.Builder
	flush := func() (bool, error) {
		if data.Len() == 0 {
			return true, nil
		}
		payload := data.String()
		data.Reset()

		var ev streamEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return false, fmt.Errorf("malformed event %q: %w", payload, err)
		}
		return fn(ev), nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			more, err := flush()
			if err != nil || !more {
				return err
			}
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	_, err := flush()
	return err
}
