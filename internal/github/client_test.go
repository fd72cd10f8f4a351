package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/kodi-tools/addonupdate/internal/github/githubtest"
)

func newTestClient(t *testing.T, server *githubtest.Server) *Client {
	t.Helper()

	c, err := NewClient(hclog.NewNullLogger(), WithHTTPClient(server.Client()))
	require.NoError(t, err)

	return c
}

func TestNewClient_Options(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		opts      []Option
		expectErr bool
	}{
		{name: "defaults", opts: nil},
		{name: "nil option ignored", opts: []Option{nil}},
		{name: "token", opts: []Option{WithToken("  secret ")}},
		{name: "enterprise api", opts: []Option{WithAPIBaseURL("https://ghe.example.com/api/v3/")}},
		{name: "nil http client", opts: []Option{WithHTTPClient(nil)}, expectErr: true},
		{name: "zero timeout", opts: []Option{WithTimeout(0)}, expectErr: true},
		{name: "empty raw url", opts: []Option{WithRawBaseURL(" ")}, expectErr: true},
		{name: "non-http web url", opts: []Option{WithWebBaseURL("ftp://github.com")}, expectErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c, err := NewClient(hclog.NewNullLogger(), tc.opts...)
			if tc.expectErr {
				require.Error(t, err)
				require.Nil(t, c)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, c.HTTPClient())
		})
	}
}

func TestClient_URLs(t *testing.T) {
	t.Parallel()

	c, err := NewClient(hclog.NewNullLogger())
	require.NoError(t, err)
	require.Equal(t,
		"https://raw.githubusercontent.com/KenV99/script.service.kodi.callbacks/master/addon.xml",
		c.ManifestURL("KenV99", "script.service.kodi.callbacks", "master"),
	)
	require.Equal(t,
		"https://github.com/KenV99/script.service.kodi.callbacks/archive/master.zip",
		c.ArchiveURL("KenV99", "script.service.kodi.callbacks", "master"),
	)

	c, err = NewClient(
		hclog.NewNullLogger(),
		WithRawBaseURL("http://raw.local/"),
		WithWebBaseURL("http://web.local"),
	)
	require.NoError(t, err)
	require.Equal(t, "http://raw.local/o/r/dev/addon.xml", c.ManifestURL("o", "r", "dev"))
	require.Equal(t, "http://web.local/o/r/archive/dev.zip", c.ArchiveURL("o", "r", "dev"))
}

func TestClient_ReadFile(t *testing.T) {
	t.Parallel()

	server := githubtest.NewServer()
	defer server.Close()
	server.SetManifest("o", "r", "master", `<addon id="x" version="1.0.0">`)

	c := newTestClient(t, server)

	body, err := c.ReadFile(context.Background(), c.ManifestURL("o", "r", "master"))
	require.NoError(t, err)
	require.Equal(t, `<addon id="x" version="1.0.0">`, string(body))

	_, err = c.ReadFile(context.Background(), c.ManifestURL("o", "r", "missing"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
}

func TestClient_ListBranches_Paginates(t *testing.T) {
	t.Parallel()

	server := githubtest.NewServer()
	defer server.Close()
	server.PageSize = 2
	server.SetBranches("o", "r", "master", "dev", "feature-a", "feature-b", "release")

	c := newTestClient(t, server)

	branches, err := c.ListBranches(context.Background(), "o", "r")
	require.NoError(t, err)
	require.Equal(t, []string{"master", "dev", "feature-a", "feature-b", "release"}, branches)

	var calls int
	for _, p := range server.Requests() {
		if p == "/repos/o/r/branches" {
			calls++
		}
	}
	require.Equal(t, 3, calls)
}

func TestClient_ListBranches_Error(t *testing.T) {
	t.Parallel()

	server := githubtest.NewServer()
	defer server.Close()
	server.Fail("/repos/o/r/branches", http.StatusInternalServerError)

	c := newTestClient(t, server)

	_, err := c.ListBranches(context.Background(), "o", "r")
	require.Error(t, err)
	require.Contains(t, err.Error(), "o/r")
}

func TestClient_ListCommitsAndFiles(t *testing.T) {
	t.Parallel()

	server := githubtest.NewServer()
	defer server.Close()
	server.PageSize = 1
	server.SetCommits("o", "r", "dev",
		githubtest.Commit{
			SHA:   "bbb",
			Date:  "2016-02-01T10:00:00Z",
			Files: []githubtest.File{{Filename: "addon.xml", Status: "modified"}},
		},
		githubtest.Commit{
			SHA:  "aaa",
			Date: "2016-01-01T10:00:00+02:00",
			Files: []githubtest.File{
				{Filename: "addon.xml", Status: "added"},
				{Filename: "default.py", Status: "added"},
			},
		},
	)

	c := newTestClient(t, server)

	commits, err := c.ListCommits(context.Background(), "o", "r", "dev")
	require.NoError(t, err)
	require.Equal(t, []Commit{
		{SHA: "bbb", Date: "2016-02-01T10:00:00Z"},
		{SHA: "aaa", Date: "2016-01-01T08:00:00Z"},
	}, commits)

	files, err := c.CommitFiles(context.Background(), "o", "r", "aaa")
	require.NoError(t, err)
	require.Equal(t, []CommitFile{
		{Filename: "addon.xml", Status: "added"},
		{Filename: "default.py", Status: "added"},
	}, files)

	_, err = c.CommitFiles(context.Background(), "o", "r", "zzz")
	require.Error(t, err)

	_, err = c.ListCommits(context.Background(), "o", "r", "unknown")
	require.Error(t, err)
}

func TestClient_WithBasicAuth(t *testing.T) {
	t.Parallel()

	server := githubtest.NewServer()
	defer server.Close()
	server.SetBranches("o", "r", "master")

	c := newTestClient(t, server)
	authed := c.WithBasicAuth("octocat", "hunter2")

	_, err := authed.ListBranches(context.Background(), "o", "r")
	require.NoError(t, err)
	_, err = c.ListBranches(context.Background(), "o", "r")
	require.NoError(t, err)

	auth := server.Auth()
	require.Len(t, auth, 2)
	require.Equal(t, githubtest.Credentials{User: "octocat", Password: "hunter2", OK: true}, auth[0])
	require.False(t, auth[1].OK, fmt.Sprintf("original client must stay anonymous: %+v", auth[1]))
}

func TestClient_WithBasicAuth_ReplacesToken(t *testing.T) {
	t.Parallel()

	server := githubtest.NewServer()
	defer server.Close()
	server.SetBranches("o", "r", "master")
	server.SetCommits("o", "r", "master", githubtest.Commit{SHA: "c1", Date: "2016-03-01T10:00:00Z"})

	c, err := NewClient(hclog.NewNullLogger(), WithHTTPClient(server.Client()), WithToken("tok123"))
	require.NoError(t, err)

	_, err = c.ListBranches(context.Background(), "o", "r")
	require.NoError(t, err)
	_, err = c.WithBasicAuth("KenV99", "pw").ListCommits(context.Background(), "o", "r", "master")
	require.NoError(t, err)

	headers := server.Authorization()
	require.Len(t, headers, 2)
	require.Equal(t, "Bearer tok123", headers[0])
	require.True(t, strings.HasPrefix(headers[1], "Basic "), headers[1])
	require.Equal(t, githubtest.Credentials{User: "KenV99", Password: "pw", OK: true}, server.Auth()[1])
}

func TestClient_DownloadClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []Option
		timeout time.Duration
	}{
		{name: "default timeout", timeout: DefaultTimeout},
		{name: "custom timeout", opts: []Option{WithTimeout(time.Minute)}, timeout: time.Minute},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c, err := NewClient(hclog.NewNullLogger(), tc.opts...)
			require.NoError(t, err)

			require.Equal(t, tc.timeout, c.HTTPClient().Timeout)
			require.Zero(t, c.DownloadClient().Timeout)

			transport, ok := c.DownloadClient().Transport.(*http.Transport)
			require.True(t, ok)
			require.Equal(t, tc.timeout, transport.ResponseHeaderTimeout)
		})
	}
}
