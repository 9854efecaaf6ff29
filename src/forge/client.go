package forge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the public forge API endpoint.
const DefaultBaseURL = "https://api.github.com"

// Client reports commit statuses to the forge API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a forge client. baseURL may be empty to use the public
// default.
func NewClient(token, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
	}
}

type statusRequest struct {
	State       string `json:"state"`
	Context     string `json:"context"`
	Description string `json:"description,omitempty"`
	TargetURL   string `json:"target_url,omitempty"`
}

// ReportStatus posts a commit status for repo ("owner/name") at sha.
// targetURL may link back to run details and may be empty.
func (c *Client) ReportStatus(ctx context.Context, repo, sha string, status Status, description, targetURL string) error {
	url := fmt.Sprintf("%s/repos/%s/statuses/%s", c.baseURL, repo, sha)

	body, err := json.Marshal(statusRequest{
		State:       string(status),
		Context:     StatusContext,
		Description: description,
		TargetURL:   targetURL,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", ErrAuthFailed, string(respBody))
		}
		return fmt.Errorf("forge API error %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// StatusReporter is the interface the orchestrator uses to surface run
// outcomes on the triggering commit. NopReporter satisfies it when no
// forge token is configured.
type StatusReporter interface {
	ReportStatus(ctx context.Context, repo, sha string, status Status, description, targetURL string) error
}

// NopReporter discards status reports. Used in local mode without a token.
type NopReporter struct{}

func (NopReporter) ReportStatus(ctx context.Context, repo, sha string, status Status, description, targetURL string) error {
	return nil
}
