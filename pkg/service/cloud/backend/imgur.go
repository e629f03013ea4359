package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
)

const imgurBaseURL = "https://api.imgur.com/3"

// Imgur uploads to the imgur anonymous image API. The API key is the
// application client ID.
type Imgur struct {
	clientID   string
	baseURL    string
	httpClient *http.Client
}

type ImgurOption func(*Imgur)

func WithImgurBaseURL(url string) ImgurOption {
	return func(x *Imgur) {
		x.baseURL = url
	}
}

func WithImgurHTTPClient(c *http.Client) ImgurOption {
	return func(x *Imgur) {
		x.httpClient = c
	}
}

func NewImgur(clientID string, opts ...ImgurOption) *Imgur {
	x := &Imgur{
		clientID:   clientID,
		baseURL:    imgurBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

func (x *Imgur) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if x.clientID == "" {
		return "", goerr.New("imgur client ID is not configured")
	}

	body, err := json.Marshal(map[string]string{
		"image": base64.StdEncoding.EncodeToString(data),
		"type":  "base64",
		"name":  name,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal imgur request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.baseURL+"/image", bytes.NewReader(body))
	if err != nil {
		return "", goerr.Wrap(err, "failed to create imgur request")
	}
	req.Header.Set("Authorization", "Client-ID "+x.clientID)
	req.Header.Set("Content-Type", "application/json")

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to call imgur API")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read imgur response")
	}

	var parsed struct {
		Success bool `json:"success"`
		Data    struct {
			Link  string `json:"link"`
			Error string `json:"error"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", goerr.Wrap(err, "failed to unmarshal imgur response",
			goerr.V("status", resp.StatusCode))
	}
	if !parsed.Success {
		return "", goerr.New("imgur upload failed",
			goerr.V("status", resp.StatusCode),
			goerr.V("error", parsed.Data.Error),
		)
	}
	return parsed.Data.Link, nil
}
