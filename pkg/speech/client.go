// Package speech is a client for the external speech-synthesis model. One
// call turns one piece of text into raw mp3 bytes for a fixed voice and an
// optional delivery instruction.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"bookly/internal/app/metrics"
	"bookly/pkg/tools"

	"golang.org/x/time/rate"
)

const (
	defaultURL   = "https://api.openai.com/v1/audio/speech"
	defaultModel = "gpt-4o-mini-tts"
)

var ErrInvalidVoice = errors.New("invalid voice")

// voices is the closed set of timbres the model accepts.
var voices = []string{"alloy", "nova", "onyx", "echo", "fable", "shimmer"}

func KnownVoice(voice string) bool {
	for _, v := range voices {
		if v == voice {
			return true
		}
	}

	return false
}

// Voices lists the supported voice identifiers.
func Voices() []string {
	out := make([]string, len(voices))
	copy(out, voices)

	return out
}

type Config struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`

	// MaxAttempts bounds tries per chunk, first attempt included.
	MaxAttempts int           `yaml:"max_attempts"`
	Backoff     time.Duration `yaml:"backoff"`

	// RequestsPerSecond caps outbound calls across all in-flight
	// conversions. Zero means no cap.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

var _ HTTPClient = http.DefaultClient

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

type Client struct {
	cfg        *Config
	httpClient HTTPClient
	limiter    *rate.Limiter
}

func New(httpClient HTTPClient, cfg *Config) *Client {
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 500 * time.Millisecond
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

type speechReq struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	Instructions   string `json:"instructions,omitempty"`
	ResponseFormat string `json:"response_format"`
}

// Synthesize produces mp3 audio for text. Transient failures are retried up
// to MaxAttempts with linear backoff; the same input always produces an
// equivalent request, so retries are safe.
func (c *Client) Synthesize(ctx context.Context, text, voice, instructions string) ([]byte, error) {
	if !KnownVoice(voice) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidVoice, voice)
	}

	data, err := json.Marshal(&speechReq{
		Model:          c.cfg.Model,
		Input:          text,
		Voice:          voice,
		Instructions:   instructions,
		ResponseFormat: "mp3",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error

	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			metrics.SpeechRetries.Inc()

			select {
			case <-time.After(time.Duration(attempt) * c.cfg.Backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		audio, retryable, err := c.do(ctx, data)
		if err == nil {
			return audio, nil
		}

		lastErr = err

		if !retryable {
			break
		}
	}

	return nil, lastErr
}

func (c *Client) do(ctx context.Context, body []byte) (audio []byte, retryable bool, err error) {
	start := time.Now()

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Add("Content-Type", "application/json")
	request.Header.Add("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(request)
	if err != nil {
		metrics.SpeechErrors.WithLabelValues("network").Inc()
		return nil, true, fmt.Errorf("failed to post to speech model: %w", err)
	}
	defer tools.DrainAndClose(resp.Body)

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.SpeechErrors.WithLabelValues("network").Inc()
		return nil, true, fmt.Errorf("failed to read body: %w", err)
	}

	if resp.StatusCode > 299 {
		metrics.SpeechErrors.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

		// 429 and 5xx are worth another try, other 4xx are not
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500

		return nil, retryable, fmt.Errorf("status code %d, err - %s", resp.StatusCode, string(respData))
	}

	if len(respData) == 0 {
		metrics.SpeechErrors.WithLabelValues("empty").Inc()
		return nil, true, fmt.Errorf("speech model returned empty audio")
	}

	metrics.SpeechQueryTime.Observe(time.Since(start).Seconds())

	return respData, false, nil
}
