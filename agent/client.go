// Package agent holds the LLM-backed pieces of the pipeline: the chat client,
// the transcript judge, and the mock interviewer.
package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
)

// ErrMissingCredentials marks an LLM client that cannot be built from the
// current configuration. Callers downgrade it to a report note instead of
// failing the whole evaluation.
var ErrMissingCredentials = errors.New("missing llm credentials")

const (
	defaultTemperature = 0.2
	defaultHTTPTimeout = 75 * time.Second
	defaultMaxRetries  = 2
)

// LLM is the chat surface the judge and interviewer consume.
type LLM interface {
	Chat(ctx context.Context, system, user string) (string, error)
}

// Options configures the OpenAI-compatible chat endpoint.
type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
}

// Client is a thin wrapper over the OpenAI SDK exposing the two-message chat
// shape everything here uses.
type Client struct {
	api         openaigo.Client
	model       string
	temperature float64
}

// NewClient validates the options and builds the SDK client. API key and
// model are required; an empty base URL falls through to the SDK default.
func NewClient(o Options) (*Client, error) {
	var missing []string
	if strings.TrimSpace(o.APIKey) == "" {
		missing = append(missing, "api_key")
	}
	if strings.TrimSpace(o.Model) == "" {
		missing = append(missing, "model")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	if o.Temperature == 0 {
		o.Temperature = defaultTemperature
	}
	if o.Timeout == 0 {
		o.Timeout = defaultHTTPTimeout
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = defaultMaxRetries
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(o.APIKey)),
		option.WithHTTPClient(&http.Client{Timeout: o.Timeout}),
		option.WithMaxRetries(o.MaxRetries),
		option.WithRequestTimeout(o.Timeout),
	}
	if base := strings.TrimRight(strings.TrimSpace(o.BaseURL), "/"); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}

	return &Client{
		api:         openaigo.NewClient(opts...),
		model:       strings.TrimSpace(o.Model),
		temperature: o.Temperature,
	}, nil
}

// Chat sends one system+user exchange and returns the trimmed reply text.
func (c *Client) Chat(ctx context.Context, system, user string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openaigo.ChatCompletionNewParams{
		Model: openaigo.ChatModel(c.model),
		Messages: []openaigo.ChatCompletionMessageParamUnion{
			openaigo.SystemMessage(system),
			openaigo.UserMessage(user),
		},
		Temperature: param.NewOpt(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("llm chat: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("llm returned empty choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
