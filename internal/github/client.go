package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/go-github/v66/github"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"
)

// Commit is one entry of a branch's commit history.
type Commit struct {
	SHA string

	// Date is the author date, RFC 3339 in UTC. Values sort chronologically as strings.
	Date string
}

// CommitFile is one file touched by a commit.
type CommitFile struct {
	Filename string

	// Status is GitHub's change status: added, modified, removed, renamed...
	Status string
}

// Client reads add-on data from GitHub: raw files, archives and the REST API.
// NewClient should be used to create instances of Client.
type Client struct {
	// base is the client before any credentials are layered on.
	base       *http.Client
	hc         *http.Client
	gh         *github.Client
	rawBaseURL string
	webBaseURL string
	apiBaseURL string
	logger     hclog.Logger
}

// NewClient creates a GitHub client.
// Without WithHTTPClient, a client with the configured timeout is built. Its transport
// also bounds the wait for response headers, so streamed downloads are only cut off on stalls.
// A token wraps the client in an oauth2 transport.
func NewClient(logger hclog.Logger, opts ...Option) (*Client, error) {
	options, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}

	base := options.httpClient
	if base == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.ResponseHeaderTimeout = options.timeout
		base = &http.Client{Transport: transport, Timeout: options.timeout}
	}

	hc := base
	if options.token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: options.token})
		hc = oauth2.NewClient(ctx, ts)
		hc.Timeout = base.Timeout
	}

	c := &Client{
		base:       base,
		hc:         hc,
		rawBaseURL: options.rawBaseURL,
		webBaseURL: options.webBaseURL,
		apiBaseURL: options.apiBaseURL,
		logger:     logger.Named("github"),
	}
	if err := c.initAPI(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Client) initAPI() error {
	gh := github.NewClient(c.hc)
	if c.apiBaseURL != "" {
		var err error
		gh, err = gh.WithEnterpriseURLs(c.apiBaseURL, c.apiBaseURL)
		if err != nil {
			return fmt.Errorf("invalid GitHub API base URL '%s': %w", c.apiBaseURL, err)
		}
	}
	c.gh = gh

	return nil
}

// WithBasicAuth returns a copy of the client that sends HTTP Basic credentials on every request.
// The credentials replace any token set with WithToken.
func (c *Client) WithBasicAuth(user string, password string) *Client {
	base := c.base.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	hc := *c.base
	hc.Transport = &basicAuthTransport{user: user, password: password, base: base}

	clone := *c
	clone.hc = &hc
	// initAPI only fails on a bad apiBaseURL, which NewClient has already accepted.
	_ = clone.initAPI()

	return &clone
}

// HTTPClient returns the client used for raw file requests.
func (c *Client) HTTPClient() *http.Client {
	return c.hc
}

// DownloadClient returns HTTPClient without an overall request timeout, for streaming archives.
func (c *Client) DownloadClient() *http.Client {
	hc := *c.hc
	hc.Timeout = 0

	return &hc
}

// ManifestURL returns the raw URL of addon.xml on the given branch.
func (c *Client) ManifestURL(owner, repo, branch string) string {
	return fmt.Sprintf("%s/%s/%s/%s/addon.xml", c.rawBaseURL, owner, repo, branch)
}

// ArchiveURL returns the zip archive URL of the given branch.
func (c *Client) ArchiveURL(owner, repo, branch string) string {
	return fmt.Sprintf("%s/%s/%s/archive/%s.zip", c.webBaseURL, owner, repo, branch)
}

// ReadFile fetches url and returns its body.
func (c *Client) ReadFile(ctx context.Context, url string) ([]byte, error) {
	c.logger.Debug("Reading remote file", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL '%s': %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-OK HTTP status from URL '%s': %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from '%s': %w", url, err)
	}

	return body, nil
}

// ListBranches returns every branch name of the repository, following pagination.
func (c *Client) ListBranches(ctx context.Context, owner, repo string) ([]string, error) {
	opts := &github.BranchListOptions{ListOptions: github.ListOptions{PerPage: pageSize}}

	var names []string
	for {
		branches, resp, err := c.gh.Repositories.ListBranches(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list branches of %s/%s: %w", owner, repo, err)
		}
		for _, b := range branches {
			names = append(names, b.GetName())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	c.logger.Debug("Listed branches", "owner", owner, "repo", repo, "count", len(names))

	return names, nil
}

// ListCommits returns the commit history of branch, following pagination.
func (c *Client) ListCommits(ctx context.Context, owner, repo, branch string) ([]Commit, error) {
	opts := &github.CommitsListOptions{
		SHA:         branch,
		ListOptions: github.ListOptions{PerPage: pageSize},
	}

	var commits []Commit
	for {
		page, resp, err := c.gh.Repositories.ListCommits(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list commits of %s/%s@%s: %w", owner, repo, branch, err)
		}
		for _, rc := range page {
			commits = append(commits, Commit{
				SHA:  rc.GetSHA(),
				Date: formatDate(rc.GetCommit().GetAuthor().GetDate().Time),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	c.logger.Debug("Listed commits", "owner", owner, "repo", repo, "branch", branch, "count", len(commits))

	return commits, nil
}

// CommitFiles returns the files changed by the commit sha.
func (c *Client) CommitFiles(ctx context.Context, owner, repo, sha string) ([]CommitFile, error) {
	opts := &github.ListOptions{PerPage: pageSize}

	var out []CommitFile
	for {
		rc, resp, err := c.gh.Repositories.GetCommit(ctx, owner, repo, sha, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to get commit %s of %s/%s: %w", sha, owner, repo, err)
		}
		for _, f := range rc.Files {
			out = append(out, CommitFile{Filename: f.GetFilename(), Status: f.GetStatus()})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return out, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.UTC().Format(time.RFC3339)
}

// basicAuthTransport adds HTTP Basic credentials to every request.
type basicAuthTransport struct {
	user     string
	password string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.user, t.password)

	return t.base.RoundTrip(req)
}
