package tagger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/time/rate"

	"github.com/memvault/memvault/pkg/domain/interfaces"
	"github.com/memvault/memvault/pkg/domain/model"
	"github.com/memvault/memvault/pkg/utils/logging"
)

const (
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultModel       = "gpt-4o-mini"
	defaultMaxRetries  = 2
	defaultTimeout     = 60 * time.Second
	defaultMinInterval = 2 * time.Second
	backoffBase        = time.Second
	backoffCap         = 10 * time.Second
)

// Config holds the vision API settings for tag generation.
type Config struct {
	Enabled bool
	APIKey  string `masq:"secret"`
	BaseURL string
	Model   string

	MaxTags     int
	MaxTagRunes int

	// MaxRetries is the number of additional attempts after the first
	// request fails.
	MaxRetries int
	Timeout    time.Duration
}

// Client calls an OpenAI compatible vision endpoint to suggest tags
// for a meme image. It implements interfaces.TagGenerator.
type Client struct {
	cfg        Config
	store      interfaces.ObjectStore
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ interfaces.TagGenerator = (*Client)(nil)

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(x *Client) {
		x.httpClient = c
	}
}

// WithMinInterval overrides the spacing between API calls.
func WithMinInterval(d time.Duration) Option {
	return func(x *Client) {
		x.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

func New(store interfaces.ObjectStore, cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxTags <= 0 {
		cfg.MaxTags = model.DefaultMaxTags
	}
	if cfg.MaxTagRunes <= 0 {
		cfg.MaxTagRunes = model.DefaultMaxTagRunes
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	client := &Client{
		cfg:        cfg,
		store:      store,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Every(defaultMinInterval), 1),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Generate reads the image at location and asks the vision model for
// tag suggestions. Failed attempts are retried with exponential
// backoff. ErrDisabled and ErrNoCredential report that tagging is not
// available rather than that the call failed.
func (x *Client) Generate(ctx context.Context, location string) ([]*model.TagSuggestion, error) {
	if !x.cfg.Enabled {
		return nil, ErrDisabled
	}
	if x.cfg.APIKey == "" {
		return nil, ErrNoCredential
	}

	data, err := x.store.Read(ctx, location)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read image", goerr.V("location", location))
	}
	imageURL := "data:" + detectMIME(location) + ";base64," + base64.StdEncoding.EncodeToString(data)

	logger := logging.From(ctx)
	var lastErr error
	for attempt := 0; attempt <= x.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffBase << (attempt - 1)
			if delay > backoffCap {
				delay = backoffCap
			}
			logger.Warn("retrying tag generation",
				"location", location,
				"attempt", attempt,
				"delay", delay,
				"error", lastErr,
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, goerr.Wrap(ctx.Err(), "tag generation canceled")
			}
		}

		suggestions, err := x.generateOnce(ctx, imageURL)
		if err == nil {
			return suggestions, nil
		}
		lastErr = err
	}

	return nil, goerr.Wrap(lastErr, "tag generation failed",
		goerr.V("location", location),
		goerr.V("attempts", x.cfg.MaxRetries+1),
	)
}

func (x *Client) generateOnce(ctx context.Context, imageURL string) ([]*model.TagSuggestion, error) {
	if err := x.limiter.Wait(ctx); err != nil {
		return nil, goerr.Wrap(err, "rate limit wait canceled")
	}

	ctx, cancel := context.WithTimeout(ctx, x.cfg.Timeout)
	defer cancel()

	content, err := x.chatCompletion(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	suggestions := x.parseSuggestions(content)
	if len(suggestions) == 0 {
		return nil, goerr.Wrap(ErrNoValidTags, "model returned no usable suggestions",
			goerr.V("content", content),
		)
	}
	if len(suggestions) > x.cfg.MaxTags {
		suggestions = suggestions[:x.cfg.MaxTags]
	}
	return suggestions, nil
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []messagePart `json:"content"`
}

type messagePart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (x *Client) chatCompletion(ctx context.Context, image string) (string, error) {
	reqBody := chatRequest{
		Model: x.cfg.Model,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []messagePart{
					{Type: "text", Text: buildPrompt(x.cfg.MaxTags, x.cfg.MaxTagRunes)},
					{Type: "image_url", ImageURL: &imageURL{URL: image}},
				},
			},
		},
		MaxTokens: 512,
	}

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal chat request")
	}

	url := strings.TrimSuffix(x.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return "", goerr.Wrap(err, "failed to create chat request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+x.cfg.APIKey)

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to call vision API")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read vision API response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", goerr.New("vision API returned error",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)),
		)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", goerr.Wrap(err, "failed to unmarshal vision API response")
	}
	if parsed.Error != nil {
		return "", goerr.New("vision API returned error", goerr.V("message", parsed.Error.Message))
	}
	if len(parsed.Choices) == 0 {
		return "", goerr.New("vision API returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// parseSuggestions extracts the JSON array from the model output and
// drops any element that does not validate. The model may wrap the
// array in prose or a code fence.
func (x *Client) parseSuggestions(content string) []*model.TagSuggestion {
	raw := jsonArrayPattern.FindString(content)
	if raw == "" {
		return nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elements); err != nil {
		return nil
	}

	var suggestions []*model.TagSuggestion
	for _, elem := range elements {
		var s model.TagSuggestion
		if err := json.Unmarshal(elem, &s); err != nil {
			continue
		}
		s.Tag = strings.TrimSpace(s.Tag)
		if err := s.Validate(x.cfg.MaxTagRunes); err != nil {
			continue
		}
		suggestions = append(suggestions, &s)
	}
	return suggestions
}

func detectMIME(location string) string {
	switch strings.ToLower(pathExt(location)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func pathExt(location string) string {
	if idx := strings.LastIndex(location, "."); idx >= 0 {
		return location[idx:]
	}
	return ""
}
