// internal/github/client.go
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"package-pulse/internal/model"
)

// Client is a wrapper around the go-github client.
type Client struct {
	gh     *github.Client
	logger *slog.Logger
}

// NewClient creates and configures a new Client instance.
// Requests go through httpClient; when token is set they are authenticated
// with it. An empty baseURL keeps the public API endpoint.
func NewClient(token, baseURL string, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(ctx, ts)
	}

	gh := github.NewClient(httpClient)
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API url: %w", err)
		}
		gh.BaseURL = u
	}

	return &Client{
		gh:     gh,
		logger: logger,
	}, nil
}

// GetOpenIssues fetches the open issue count of a repository. It returns
// model.UnknownOpenIssues when the API omits the field.
func (c *Client) GetOpenIssues(ctx context.Context, repo model.GitHubRepo) (int, error) {
	r, _, err := c.gh.Repositories.Get(ctx, repo.Owner, repo.Name)
	if err != nil {
		return model.UnknownOpenIssues, err
	}
	if r.OpenIssuesCount == nil {
		return model.UnknownOpenIssues, nil
	}
	return r.GetOpenIssuesCount(), nil
}

// GetLastCommitDate fetches the date of the most recent commit on the default
// branch, preferring the author date over the committer date. It returns nil
// when the repository has no commits or neither date is set.
func (c *Client) GetLastCommitDate(ctx context.Context, repo model.GitHubRepo) (*time.Time, error) {
	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	}

	c.logger.Debug("Fetching latest commit", "owner", repo.Owner, "repo", repo.Name)
	commits, _, err := c.gh.Repositories.ListCommits(ctx, repo.Owner, repo.Name, opts)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, nil
	}
	return commitDate(commits[0]), nil
}

// commitDate picks the author date, falling back to the committer date.
func commitDate(rc *github.RepositoryCommit) *time.Time {
	commit := rc.GetCommit()
	for _, ts := range []github.Timestamp{commit.GetAuthor().GetDate(), commit.GetCommitter().GetDate()} {
		if !ts.IsZero() {
			t := ts.Time
			return &t
		}
	}
	return nil
}

// IsNotFound reports whether err is a 404 answer from the GitHub API.
func IsNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}
