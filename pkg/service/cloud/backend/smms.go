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

const smmsBaseURL = "https://sm.ms/api/v2"

// SMMS uploads to the sm.ms image host.
type SMMS struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type SMMSOption func(*SMMS)

func WithSMMSBaseURL(url string) SMMSOption {
	return func(x *SMMS) {
		x.baseURL = url
	}
}

func WithSMMSHTTPClient(c *http.Client) SMMSOption {
	return func(x *SMMS) {
		x.httpClient = c
	}
}

func NewSMMS(apiKey string, opts ...SMMSOption) *SMMS {
	x := &SMMS{
		apiKey:     apiKey,
		baseURL:    smmsBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

func (x *SMMS) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if x.apiKey == "" {
		return "", goerr.New("sm.ms API key is not configured")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("smfile", name)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create multipart field")
	}
	if _, err := part.Write(data); err != nil {
		return "", goerr.Wrap(err, "failed to write multipart body")
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.baseURL+"/upload", &buf)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create sm.ms request")
	}
	req.Header.Set("Authorization", x.apiKey)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to call sm.ms API")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read sm.ms response")
	}

	var parsed struct {
		Success bool   `json:"success"`
		Code    string `json:"code"`
		Message string `json:"message"`
		Images  string `json:"images"`
		Data    struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", goerr.Wrap(err, "failed to unmarshal sm.ms response",
			goerr.V("status", resp.StatusCode))
	}
	if !parsed.Success {
		// The host reports a re-upload of known bytes as an error
		// but still returns the existing URL.
		if parsed.Code == "image_repeated" && parsed.Images != "" {
			return parsed.Images, nil
		}
		return "", goerr.New("sm.ms upload failed",
			goerr.V("status", resp.StatusCode),
			goerr.V("message", parsed.Message),
		)
	}
	return parsed.Data.URL, nil
}
