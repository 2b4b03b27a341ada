// Package version exposes local build metadata and checks it against the
// remote build manifest published for the configured branch.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Set at build time via -ldflags "-X scopebot/internal/version.buildTimestamp=... -X scopebot/internal/version.buildCommit=...".
var (
	buildTimestamp string
	buildCommit    string
)

const userAgent = "scopebot-update-check/1.0"

// BuildInfo identifies one build.
type BuildInfo struct {
	Timestamp int64  `json:"ts"`
	Commit    string `json:"sha"`
}

// Current returns this binary's build metadata. An untagged build reports a
// zero timestamp and an unknown commit.
func Current() BuildInfo {
	info := BuildInfo{Commit: "unknown"}
	if buildCommit != "" {
		info.Commit = buildCommit
	}
	if ts, err := strconv.ParseInt(buildTimestamp, 10, 64); err == nil {
		info.Timestamp = ts
	}
	return info
}

// Checker fetches the latest published build manifest.
type Checker struct {
	client  *http.Client
	baseURL string
	branch  string
}

// NewChecker creates a Checker against baseURL (repository raw-content root)
// and branch.
func NewChecker(baseURL, branch string, timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Checker{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		branch:  branch,
	}
}

// Latest fetches the newest published build info. It prefers the structured
// buildinfo.json manifest and falls back to the bare timestamp file with an
// unknown commit.
func (c *Checker) Latest(ctx context.Context) (BuildInfo, error) {
	if info, err := c.fetchManifest(ctx); err == nil {
		return info, nil
	}

	ts, err := c.fetchTimestamp(ctx)
	if err != nil {
		return BuildInfo{}, err
	}
	return BuildInfo{Timestamp: ts, Commit: "unknown"}, nil
}

func (c *Checker) fetchManifest(ctx context.Context) (BuildInfo, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/%s/dist/buildinfo.json", c.baseURL, c.branch))
	if err != nil {
		return BuildInfo{}, err
	}

	var info BuildInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return BuildInfo{}, fmt.Errorf("failed to parse build manifest: %w", err)
	}
	return info, nil
}

func (c *Checker) fetchTimestamp(ctx context.Context) (int64, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/%s/dist/timestamp", c.baseURL, c.branch))
	if err != nil {
		return 0, err
	}

	ts, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse build timestamp: %w", err)
	}
	return ts, nil
}

func (c *Checker) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}
