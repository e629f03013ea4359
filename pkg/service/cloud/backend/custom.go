package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
)

// Custom posts images to a user supplied endpoint. The endpoint is
// expected to accept a multipart "file" field and answer with a JSON
// object carrying a "url" field.
type Custom struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

type CustomOption func(*Custom)

func WithCustomHTTPClient(c *http.Client) CustomOption {
	return func(x *Custom) {
		x.httpClient = c
	}
}

func NewCustom(endpoint, apiKey string, opts ...CustomOption) (*Custom, error) {
	if endpoint == "" {
		return nil, goerr.New("custom backend endpoint is not configured")
	}
	x := &Custom{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x, nil
}

func (x *Custom) Upload(ctx context.Context, name string, data []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create multipart field")
	}
	if _, err := part.Write(data); err != nil {
		return "", goerr.Wrap(err, "failed to write multipart body")
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.endpoint, &buf)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create upload request")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if x.apiKey != "" {
		req.Header.Set("Authorization", x.apiKey)
	}

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to call custom endpoint")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read upload response")
	}

	var parsed struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", goerr.Wrap(err, "failed to unmarshal upload response",
			goerr.V("status", resp.StatusCode))
	}
	if parsed.URL == "" {
		return "", goerr.New("custom endpoint returned no URL",
			goerr.V("status", resp.StatusCode))
	}
	return parsed.URL, nil
}
