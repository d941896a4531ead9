package voice

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout    = 30 * time.Second
	defaultRetryAttempts  = 4
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 16 * time.Second
)

// Config captures the runtime settings for the voice synthesis service.
type Config struct {
	APIKey         string
	BaseURL        string
	SampleRate     int
	TimeoutSeconds int
}

// Boundary is a per-word (or per-sentence) timing marker the engine reports
// while streaming synthesis. Boundaries let the synthesizer map stretches of
// echoed text back to offsets in the audio.
type Boundary struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Result is one synthesized clip: mono WAV audio, the text the engine
// reports having spoken, and its boundary markers.
type Result struct {
	Audio      []byte
	EchoedText string
	Boundaries []Boundary
}

// Client talks to the voice synthesis HTTP API.
type Client struct {
	cfg        Config
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a voice client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			SampleRate:     cfg.SampleRate,
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type synthesizeRequest struct {
	Text       string `json:"text"`
	Voice      string `json:"voice"`
	Format     string `json:"format"`
	SampleRate int    `json:"sample_rate"`
}

type synthesizeResponse struct {
	Audio      string `json:"audio"` // base64 WAV
	SpokenText string `json:"spoken_text"`
	Boundaries []struct {
		OffsetMs   float64 `json:"offset_ms"`
		DurationMs float64 `json:"duration_ms"`
		Text       string  `json:"text"`
	} `json:"boundaries"`
	Error string `json:"error"`
}

// Synthesize converts text to speech with the given voice. Transient backend
// failures are retried with exponential backoff.
func (c *Client) Synthesize(ctx context.Context, text, voiceName string) (Result, error) {
	var empty Result
	if strings.TrimSpace(text) == "" {
		return empty, errors.New("voice synthesize: text required")
	}
	if strings.TrimSpace(voiceName) == "" {
		return empty, errors.New("voice synthesize: voice required")
	}
	if c.cfg.BaseURL == "" {
		return empty, errors.New("voice synthesize: base url required")
	}

	attempts := c.retryMaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := c.sendOnce(ctx, text, voiceName)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if attempt >= attempts || !retriable(err) || ctx.Err() != nil {
			break
		}
		delay := c.retryBaseDelay << uint(attempt-1)
		if delay > c.retryMaxDelay {
			delay = c.retryMaxDelay
		}
		if err := c.sleep(ctx, delay); err != nil {
			return empty, err
		}
	}
	return empty, fmt.Errorf("voice synthesize: %w", lastErr)
}

func (c *Client) sendOnce(ctx context.Context, text, voiceName string) (Result, error) {
	var empty Result
	encoded, err := json.Marshal(synthesizeRequest{
		Text:       text,
		Voice:      voiceName,
		Format:     "wav",
		SampleRate: c.cfg.SampleRate,
	})
	if err != nil {
		return empty, fmt.Errorf("encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return empty, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return empty, &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}

	var decoded synthesizeResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return empty, fmt.Errorf("decode response: %w", err)
	}
	if decoded.Error != "" {
		return empty, fmt.Errorf("api error: %s", decoded.Error)
	}
	audio, err := base64.StdEncoding.DecodeString(decoded.Audio)
	if err != nil {
		return empty, fmt.Errorf("decode audio: %w", err)
	}
	if len(audio) == 0 {
		return empty, errors.New("empty audio payload")
	}

	result := Result{
		Audio:      audio,
		EchoedText: decoded.SpokenText,
		Boundaries: make([]Boundary, 0, len(decoded.Boundaries)),
	}
	for _, b := range decoded.Boundaries {
		start := time.Duration(b.OffsetMs * float64(time.Millisecond))
		result.Boundaries = append(result.Boundaries, Boundary{
			Start: start,
			End:   start + time.Duration(b.DurationMs*float64(time.Millisecond)),
			Text:  b.Text,
		})
	}
	if result.EchoedText == "" {
		// Engines that omit the echo still send boundary text.
		parts := make([]string, 0, len(result.Boundaries))
		for _, b := range result.Boundaries {
			parts = append(parts, b.Text)
		}
		result.EchoedText = strings.Join(parts, " ")
	}
	return result, nil
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.code, e.body)
}

func retriable(err error) bool {
	var statusErr *statusError
	if errors.As(err, &statusErr) {
		return statusErr.code == http.StatusRequestTimeout ||
			statusErr.code == http.StatusTooManyRequests ||
			statusErr.code >= http.StatusInternalServerError
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
