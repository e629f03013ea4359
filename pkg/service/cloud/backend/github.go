package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/memvault/memvault/pkg/domain/model"
	"github.com/memvault/memvault/pkg/domain/types"
)

const (
	githubBaseURL = "https://api.github.com"
	githubDir     = "images"
	githubTags    = githubDir + "/tags.json"
)

// GitHub stores images under images/ in a repository via the contents
// API. Tag metadata lives in images/tags.json so restores can rebuild
// tags. It is the only backend that supports listing and deletion.
type GitHub struct {
	token      string
	owner      string
	repo       string
	branch     string
	baseURL    string
	httpClient *http.Client
}

var (
	_ Backend        = (*GitHub)(nil)
	_ Lister         = (*GitHub)(nil)
	_ Deleter        = (*GitHub)(nil)
	_ MetadataWriter = (*GitHub)(nil)
)

type GitHubOption func(*GitHub)

func WithGitHubBaseURL(url string) GitHubOption {
	return func(x *GitHub) {
		x.baseURL = url
	}
}

func WithGitHubHTTPClient(c *http.Client) GitHubOption {
	return func(x *GitHub) {
		x.httpClient = c
	}
}

func WithGitHubBranch(branch string) GitHubOption {
	return func(x *GitHub) {
		x.branch = branch
	}
}

// NewGitHub builds a backend for the given "owner/repo" slug.
func NewGitHub(token, repoSlug string, opts ...GitHubOption) (*GitHub, error) {
	if token == "" || repoSlug == "" {
		return nil, goerr.New("github token and repository are not configured")
	}
	owner, repo, ok := strings.Cut(repoSlug, "/")
	if !ok || owner == "" || repo == "" {
		return nil, goerr.New("github repository must be owner/repo",
			goerr.V("repo", repoSlug))
	}

	x := &GitHub{
		token:      token,
		owner:      owner,
		repo:       repo,
		branch:     "main",
		baseURL:    githubBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x, nil
}

type githubFile struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	SHA         string `json:"sha"`
	Size        int64  `json:"size"`
	Content     string `json:"content"`
	DownloadURL string `json:"download_url"`
}

func (x *GitHub) contentsURL(path string) string {
	return x.baseURL + "/repos/" + x.owner + "/" + x.repo + "/contents/" + path
}

func (x *GitHub) do(ctx context.Context, method, url string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, goerr.Wrap(err, "failed to marshal github request")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, nil, goerr.Wrap(err, "failed to create github request")
	}
	req.Header.Set("Authorization", "token "+x.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return 0, nil, goerr.Wrap(err, "failed to call github API")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, goerr.Wrap(err, "failed to read github response")
	}
	return resp.StatusCode, raw, nil
}

// ensureDir creates images/ on first use. The contents API cannot
// create an empty directory, so a .gitkeep placeholder is committed.
func (x *GitHub) ensureDir(ctx context.Context) error {
	status, _, err := x.do(ctx, http.MethodGet, x.contentsURL(githubDir), nil)
	if err != nil {
		return err
	}
	if status == http.StatusOK {
		return nil
	}
	if status != http.StatusNotFound {
		return goerr.New("failed to check images directory", goerr.V("status", status))
	}

	status, raw, err := x.do(ctx, http.MethodPut, x.contentsURL(githubDir+"/.gitkeep"), map[string]string{
		"message": "Create images directory",
		"content": "",
		"branch":  x.branch,
	})
	if err != nil {
		return err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return goerr.New("failed to create images directory",
			goerr.V("status", status), goerr.V("body", string(raw)))
	}
	return nil
}

func (x *GitHub) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if err := x.ensureDir(ctx); err != nil {
		return "", err
	}

	status, raw, err := x.do(ctx, http.MethodPut, x.contentsURL(githubDir+"/"+name), map[string]string{
		"message": "Upload image",
		"content": base64.StdEncoding.EncodeToString(data),
		"branch":  x.branch,
	})
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return "", goerr.New("github upload failed",
			goerr.V("status", status), goerr.V("body", string(raw)))
	}

	var parsed struct {
		Content githubFile `json:"content"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", goerr.Wrap(err, "failed to unmarshal github upload response")
	}
	if parsed.Content.DownloadURL == "" {
		return "", goerr.New("github upload returned no download URL")
	}
	return parsed.Content.DownloadURL, nil
}

// readTags fetches images/tags.json. A missing file yields an empty
// map and no SHA.
func (x *GitHub) readTags(ctx context.Context) (map[string][]string, string, error) {
	status, raw, err := x.do(ctx, http.MethodGet, x.contentsURL(githubTags), nil)
	if err != nil {
		return nil, "", err
	}
	if status == http.StatusNotFound {
		return map[string][]string{}, "", nil
	}
	if status != http.StatusOK {
		return nil, "", goerr.New("failed to fetch tags.json", goerr.V("status", status))
	}

	var file githubFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, "", goerr.Wrap(err, "failed to unmarshal tags.json envelope")
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(file.Content, "\n", ""))
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to decode tags.json content")
	}

	tags := map[string][]string{}
	if len(decoded) > 0 {
		if err := json.Unmarshal(decoded, &tags); err != nil {
			return nil, "", goerr.Wrap(err, "failed to unmarshal tags.json")
		}
	}
	return tags, file.SHA, nil
}

func (x *GitHub) WriteTags(ctx context.Context, name string, tags []string) error {
	existing, sha, err := x.readTags(ctx)
	if err != nil {
		return err
	}
	if tags == nil {
		tags = []string{}
	}
	existing[name] = tags

	raw, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal tags.json")
	}

	payload := map[string]string{
		"message": "Update tags",
		"content": base64.StdEncoding.EncodeToString(raw),
		"branch":  x.branch,
	}
	if sha != "" {
		payload["sha"] = sha
	}

	status, body, err := x.do(ctx, http.MethodPut, x.contentsURL(githubTags), payload)
	if err != nil {
		return err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return goerr.New("failed to update tags.json",
			goerr.V("status", status), goerr.V("body", string(body)))
	}
	return nil
}

func (x *GitHub) List(ctx context.Context) ([]*model.CloudEntry, error) {
	status, raw, err := x.do(ctx, http.MethodGet, x.contentsURL(githubDir), nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, goerr.New("failed to list images directory",
			goerr.V("status", status), goerr.V("body", string(raw)))
	}

	var files []githubFile
	if err := json.Unmarshal(raw, &files); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal directory listing")
	}

	tags, _, err := x.readTags(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().Format(time.RFC3339)
	var entries []*model.CloudEntry
	for _, f := range files {
		if f.Type != "file" || f.DownloadURL == "" {
			continue
		}
		if strings.HasSuffix(f.Name, ".gitkeep") || f.Name == "tags.json" {
			continue
		}
		entries = append(entries, &model.CloudEntry{
			ID:          types.MemeID(f.Name),
			RemoteURI:   f.DownloadURL,
			ContentHash: f.SHA,
			Tags:        tags[f.Name],
			CreatedAt:   now,
			ModifiedAt:  now,
			Size:        f.Size,
		})
	}
	return entries, nil
}

// Delete removes the remote object. The current blob SHA is fetched
// first because the index records the pixel hash, not the git SHA.
func (x *GitHub) Delete(ctx context.Context, entry *model.CloudEntry) error {
	status, raw, err := x.do(ctx, http.MethodGet, x.contentsURL(githubDir+"/"+string(entry.ID)), nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return nil
	}
	if status != http.StatusOK {
		return goerr.New("failed to stat remote object",
			goerr.V("status", status), goerr.V("id", entry.ID))
	}

	var file githubFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return goerr.Wrap(err, "failed to unmarshal remote object")
	}

	status, raw, err = x.do(ctx, http.MethodDelete, x.contentsURL(githubDir+"/"+string(entry.ID)), map[string]string{
		"message": "Delete image",
		"sha":     file.SHA,
		"branch":  x.branch,
	})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return goerr.New("github delete failed",
			goerr.V("status", status), goerr.V("body", string(raw)))
	}
	return nil
}
