// cloud.go implements the Provider interface for the hosted Gemini API.
package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	// PlaceholderAPIKey is the example credential shipped in generated configs.
	PlaceholderAPIKey = "YOUR_API_KEY"

	DefaultCloudModel   = "gemini-2.0-flash"
	DefaultCloudBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultCloudTimeout = 90 * time.Second

	cloudErrorPrefix = "An error occurred with the cloud provider: "
)

var (
	ErrMissingCredential     = errors.New("cloud API key is missing")
	ErrPlaceholderCredential = errors.New("cloud API key is still the placeholder value; set your real key")
)

// CloudConfig is the "cloud" config section.
type CloudConfig struct {
	APIKey  string        `option:"api_key"`
	Model   string        `option:"model"`
	BaseURL string        `option:"base_url" validate:"omitempty,url"`
	Timeout time.Duration `option:"timeout" validate:"gte=0"`
}

// Cloud talks to Gemini through its OpenAI-compatible chat endpoint.
type Cloud struct {
	client     openai.Client
	httpClient *http.Client
	model      string
	baseURL    string
	timeout    time.Duration
}

// CloudOption configures a Cloud provider.
type CloudOption func(*Cloud)

// WithCloudHTTPClient sets the HTTP client used by the SDK (for testing).
func WithCloudHTTPClient(c *http.Client) CloudOption {
	return func(p *Cloud) {
		p.httpClient = c
	}
}

// NewCloud creates a cloud provider. It fails when the credential is absent
// or still the placeholder value.
func NewCloud(cfg CloudConfig, opts ...CloudOption) (*Cloud, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, &OptionError{Option: "api_key", Err: ErrMissingCredential}
	}
	if key == PlaceholderAPIKey {
		return nil, &OptionError{Option: "api_key", Err: ErrPlaceholderCredential}
	}

	p := &Cloud{
		httpClient: &http.Client{},
		model:      DefaultCloudModel,
		baseURL:    DefaultCloudBaseURL,
		timeout:    DefaultCloudTimeout,
	}
	if cfg.Model != "" {
		p.model = cfg.Model
	}
	if cfg.BaseURL != "" {
		p.baseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		p.timeout = cfg.Timeout
	}
	for _, opt := range opts {
		opt(p)
	}

	p.client = openai.NewClient(
		option.WithAPIKey(key),
		option.WithBaseURL(p.baseURL),
		option.WithHTTPClient(p.httpClient),
		option.WithMaxRetries(0),
	)
	return p, nil
}

// Name returns "cloud".
func (p *Cloud) Name() string {
	return KindCloud
}

// Model returns the model identifier sent with each request.
func (p *Cloud) Model() string {
	return p.model
}

// BaseURL returns the API endpoint the SDK is configured with.
func (p *Cloud) BaseURL() string {
	return p.baseURL
}

// Assist sends the prompt as a single user message and returns the model's reply.
func (p *Cloud) Assist(ctx context.Context, prompt string) string {
	call := startCall(p.Name(), p.model)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		kind, detail := describeCloudError(err)
		call.fail(kind, err)
		return cloudErrorPrefix + detail
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		call.fail(FailureDecode, errors.New("no content in response"))
		return cloudErrorPrefix + "the model returned no content"
	}

	call.done()
	return resp.Choices[0].Message.Content
}

// describeCloudError classifies an SDK error and renders a short detail.
func describeCloudError(err error) (FailureKind, string) {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if msg := strings.TrimSpace(apiErr.Message); msg != "" {
			return FailureStatus, fmt.Sprintf("service returned status %d: %s", apiErr.StatusCode, msg)
		}
		return FailureStatus, fmt.Sprintf("service returned status %d", apiErr.StatusCode)
	}

	kind := classify(err)
	switch kind {
	case FailureTimeout:
		return kind, fmt.Sprintf("request timed out: %v", unwrapURLError(err))
	case FailureConnection:
		return kind, fmt.Sprintf("could not reach the service: %v", unwrapURLError(err))
	default:
		return kind, unwrapURLError(err).Error()
	}
}
