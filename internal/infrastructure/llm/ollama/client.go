package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/matkgb/mat-assistant/internal/core/domain"
	"github.com/matkgb/mat-assistant/internal/infrastructure/resilience"
)

const (
	defaultMaxNewTokens = 150
	defaultTemperature  = 0.7
)

// Client generates text through a local Ollama server. One prompt in, one
// completion out; retries and circuit breaking wrap every request.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	generate   *resilience.Operation
}

func New(baseURL, model string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		generate:   executor.For("ollama generate", classifyGenerateError),
	}
}

// Generate implements the text generator contract. Zero-valued options fall
// back to the model defaults.
func (c *Client) Generate(ctx context.Context, prompt string, opts domain.GenerationOptions) (string, error) {
	maxTokens := opts.MaxNewTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxNewTokens
	}
	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}

	request := map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]any{
			"num_predict": maxTokens,
			"temperature": temperature,
		},
	}

	var response struct {
		Response string `json:"response"`
	}
	err := c.generate.Do(ctx, func(ctx context.Context) error {
		return c.postJSON(ctx, "/api/generate", request, &response, "generate")
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}

// Healthy reports whether the Ollama server answers its version endpoint.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/version", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 300
}
