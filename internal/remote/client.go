package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const maxErrorBody = 4 << 10

// Options configures a Client.
type Options struct {
	BaseURL      string
	Timeout      time.Duration
	ClientID     string
	ClientSecret string
	TokenURL     string
	HTTPClient   *http.Client
}

// Client talks to the career analysis backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a Client. When ClientID and TokenURL are set every request
// carries a client-credentials bearer token.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: timeout}
	}
	httpClient := base
	if strings.TrimSpace(opts.ClientID) != "" && strings.TrimSpace(opts.TokenURL) != "" {
		cc := &clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		httpClient = cc.Client(ctx)
		httpClient.Timeout = timeout
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
	}
}

// StartAnalysis asks the backend to begin an analysis for skills.
func (c *Client) StartAnalysis(ctx context.Context, skills []string) (StartResponse, error) {
	const op = "start_analysis"
	var out StartResponse
	err := c.doJSON(ctx, op, http.MethodPost, "/api/start-analysis", map[string]any{"skills": skills}, &out)
	return out, err
}

// AnalysisStatus fetches the current analysis state.
func (c *Client) AnalysisStatus(ctx context.Context) (Status, error) {
	const op = "analysis_status"
	var out Status
	if err := c.doJSON(ctx, op, http.MethodGet, "/api/analysis-status", nil, &out); err != nil {
		return Status{}, err
	}
	switch out.Status {
	case StatusIdle, StatusRunning, StatusCompleted, StatusError:
	default:
		return Status{}, &ValidationError{Op: op, Err: fmt.Errorf("unknown status %q", out.Status)}
	}
	if out.Progress < 0 || out.Progress > 100 {
		return Status{}, &ValidationError{Op: op, Err: fmt.Errorf("progress %d out of range", out.Progress)}
	}
	return out, nil
}

// AnalysisResult fetches the final payload of a completed analysis.
func (c *Client) AnalysisResult(ctx context.Context) (Result, error) {
	const op = "analysis_result"
	var out Result
	if err := c.doJSON(ctx, op, http.MethodGet, "/api/analysis-result", nil, &out); err != nil {
		return Result{}, err
	}
	if len(out.Data) == 0 || string(out.Data) == "null" {
		return Result{}, &ValidationError{Op: op, Err: errors.New("missing data")}
	}
	return out, nil
}

// Chat sends one message to the backend assistant.
func (c *Client) Chat(ctx context.Context, message string) (ChatResponse, error) {
	const op = "chat"
	var out ChatResponse
	if err := c.doJSON(ctx, op, http.MethodPost, "/api/chat", map[string]any{"message": message}, &out); err != nil {
		return ChatResponse{}, err
	}
	if strings.TrimSpace(out.Message) == "" {
		return ChatResponse{}, &ValidationError{Op: op, Err: errors.New("empty message")}
	}
	return out, nil
}

// RoleBySlug fetches a loosely typed role record.
func (c *Client) RoleBySlug(ctx context.Context, slug string) (map[string]any, error) {
	const op = "role_by_slug"
	var out map[string]any
	if err := c.doJSON(ctx, op, http.MethodGet, "/api/roles/"+url.PathEscape(slug), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, &ValidationError{Op: op, Err: errors.New("empty record")}
	}
	return out, nil
}

// DownloadArtifact streams the latest analysis result file.
func (c *Client) DownloadArtifact(ctx context.Context) (Artifact, error) {
	const op = "download_artifact"
	resp, err := c.send(ctx, op, http.MethodGet, "/api/download-result", nil)
	if err != nil {
		return Artifact{}, err
	}
	name := "analysis-result.json"
	if _, params, perr := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); perr == nil && params["filename"] != "" {
		name = params["filename"]
	}
	return Artifact{Name: name, ContentType: resp.Header.Get("Content-Type"), Body: resp.Body}, nil
}

// AssetAvailable reports whether ref answers a HEAD request with 2xx. Relative
// references are resolved against the base URL.
func (c *Client) AssetAvailable(ctx context.Context, ref string) bool {
	target := strings.TrimSpace(ref)
	if target == "" {
		return false
	}
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = c.baseURL + "/" + strings.TrimLeft(target, "/")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, body any, out any) error {
	resp, err := c.send(ctx, op, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ValidationError{Op: op, Err: err}
	}
	return nil
}

// send returns the response only for 2xx statuses; the caller owns the body.
func (c *Client) send(ctx context.Context, op, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &ValidationError{Op: op, Err: err}
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	return nil, statusError(op, resp)
}

func statusError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(raw))
	var env errorEnvelope
	if json.Unmarshal(raw, &env) == nil && env.Error.Message != "" {
		msg = env.Error.Message
	} else {
		var flat struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &flat) == nil && flat.Error != "" {
			msg = flat.Error
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	var cause error
	switch {
	case resp.StatusCode == http.StatusNotFound:
		cause = fmt.Errorf("%w: %s", ErrNotFound, msg)
	case resp.StatusCode == http.StatusConflict,
		env.Error.Code == "analysis_running",
		resp.StatusCode == http.StatusBadRequest && strings.Contains(strings.ToLower(msg), "already running"):
		cause = fmt.Errorf("%w: %s", ErrAlreadyRunning, msg)
	default:
		cause = errors.New(msg)
	}
	return &NetworkError{Op: op, StatusCode: resp.StatusCode, Err: cause}
}
