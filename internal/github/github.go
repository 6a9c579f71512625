// Package github provides access to the GitHub API for update checks.
package github

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/hashicorp/go-version"
)

// ErrHttpError is returned when the GitHub API responds with an HTTP error.
var ErrHttpError = errors.New("http error")

// apiClient is the shared HTTP client for all GitHub API requests.
var apiClient = newAPIClient()

func newAPIClient() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.Logger = nil
	return c
}

// VersionInfo is the result of an update check.
type VersionInfo struct {
	Local   string
	Latest  string
	Newest  string
	IsNewer bool
}

// AvailableUpdate reports whether a newer release of the app exists on
// GitHub. All versions are normalized, i.e. returned without a "v" prefix.
func AvailableUpdate(owner, repo, current string) (VersionInfo, error) {
	return availableUpdate(owner, repo, current, fetchGitHubLatest)
}

func availableUpdate(owner, repo, current string, fetch func(owner, repo string) (string, error)) (VersionInfo, error) {
	local, err := version.NewVersion(current)
	if err != nil {
		return VersionInfo{}, fmt.Errorf("invalid local version %q: %w", current, err)
	}
	tag, err := fetch(owner, repo)
	if err != nil {
		return VersionInfo{}, err
	}
	latest, err := version.NewVersion(tag)
	if err != nil {
		return VersionInfo{}, fmt.Errorf("invalid remote version %q: %w", tag, err)
	}
	newest := local
	if latest.GreaterThan(local) {
		newest = latest
	}
	v := VersionInfo{
		Local:   local.String(),
		Latest:  latest.String(),
		Newest:  newest.String(),
		IsNewer: latest.GreaterThan(local),
	}
	return v, nil
}

// NormalizeVersion returns a canonical version string without a "v" prefix.
func NormalizeVersion(v string) (string, error) {
	parsed, err := version.NewVersion(v)
	if err != nil {
		return "", fmt.Errorf("normalize version %q: %w", v, err)
	}
	return parsed.String(), nil
}

// fetchGitHubLatest returns the tag name of the latest release.
func fetchGitHubLatest(owner, repo string) (string, error) {
	url := fmt.Sprintf("https://api.github.com/repos/%s/%s/releases/latest", owner, repo)
	resp, err := apiClient.Get(url)
	if err != nil {
		return "", fmt.Errorf("fetch latest release: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("fetch latest release %s: %s: %w", url, resp.Status, ErrHttpError)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("fetch latest release: %w", err)
	}
	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.Unmarshal(data, &release); err != nil {
		return "", fmt.Errorf("fetch latest release: unmarshal %q: %w", strings.TrimSpace(string(data)), err)
	}
	return release.TagName, nil
}
