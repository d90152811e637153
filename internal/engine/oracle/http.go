package oracle

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"

	"blueprints/internal/core/errors"
	"blueprints/internal/shared/observability"
	"blueprints/internal/shared/util"
)

// Options configures the HTTP oracle client.
type Options struct {
	Endpoint    string
	Model       string
	MaxTokens   int
	Temperature float64
	APIKey      string
	Timeout     time.Duration
	RatePerSec  float64 // <= 0 means unlimited
}

// HTTPClient posts prompts to a generation endpoint over JSON.
type HTTPClient struct {
	resty   *resty.Client
	limiter *util.Limiter
	opts    Options
}

type generateRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Prompt      string  `json:"prompt"`
}

type generateResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

func NewHTTPClient(opts Options) *HTTPClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4096
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 30 * time.Second
	retryClient.Logger = nil

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("Content-Type", "application/json").
		SetTransport(retryClient.HTTPClient.Transport)
	if opts.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+opts.APIKey)
	}

	limiter := util.NewUnlimited()
	if opts.RatePerSec > 0 {
		burst := int(opts.RatePerSec)
		if burst < 1 {
			burst = 1
		}
		limiter = util.NewLimiter(opts.RatePerSec, burst)
	}

	return &HTTPClient{resty: client, limiter: limiter, opts: opts}
}

// Generate posts the prompt and returns the extracted source text.
func (c *HTTPClient) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx, 1); err != nil {
		return "", errors.Wrap(err, errors.CodeOracleError, "rate limit wait cancelled")
	}

	start := time.Now()
	var reply generateResponse
	resp, err := c.resty.R().
		SetContext(ctx).
		SetBody(generateRequest{
			Model:       c.opts.Model,
			MaxTokens:   c.opts.MaxTokens,
			Temperature: c.opts.Temperature,
			Prompt:      prompt,
		}).
		SetResult(&reply).
		Post(c.opts.Endpoint)
	observability.OracleCallDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		observability.OracleCallsTotal.WithLabelValues("error").Inc()
		return "", errors.Wrap(err, errors.CodeOracleError, "oracle request failed")
	}
	if resp.StatusCode() != http.StatusOK {
		observability.OracleCallsTotal.WithLabelValues("error").Inc()
		return "", errors.New(errors.CodeOracleError,
			fmt.Sprintf("oracle returned status %d", resp.StatusCode()))
	}
	if reply.Error != "" {
		observability.OracleCallsTotal.WithLabelValues("error").Inc()
		return "", errors.New(errors.CodeOracleError, reply.Error)
	}
	if reply.Text == "" {
		observability.OracleCallsTotal.WithLabelValues("empty").Inc()
		return "", errors.New(errors.CodeOracleError, "oracle returned no text")
	}

	observability.OracleCallsTotal.WithLabelValues("ok").Inc()
	return ExtractCode(reply.Text), nil
}
