// Package githubtest provides an in-memory GitHub (API, raw files and archives) for tests.
package githubtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// File is a changed file in a fake commit.
type File struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
}

// Commit is a fake commit. Date must be RFC 3339.
type Commit struct {
	SHA   string
	Date  string
	Files []File
}

// Credentials are the Basic auth values seen on a request.
type Credentials struct {
	User     string
	Password string
	OK       bool
}

// Server fakes the parts of GitHub used by the updater.
// Every host is served from the same listener, see Client.
type Server struct {
	*httptest.Server

	mu sync.Mutex

	// PageSize is the number of items per page on list endpoints.
	PageSize int

	branches  map[string][]string
	commits   map[string][]Commit
	manifests map[string]string
	archives  map[string][]byte
	failures  map[string]int
	auth      []Credentials
	headers   []string
	requests  []string
}

// NewServer starts a fake GitHub. Call Close when done.
func NewServer() *Server {
	s := &Server{
		PageSize:  100,
		branches:  make(map[string][]string),
		commits:   make(map[string][]Commit),
		manifests: make(map[string]string),
		archives:  make(map[string][]byte),
		failures:  make(map[string]int),
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Get("/repos/{owner}/{repo}/branches", s.handleBranches)
	r.Get("/repos/{owner}/{repo}/commits", s.handleCommits)
	r.Get("/repos/{owner}/{repo}/commits/{sha}", s.handleCommit)
	r.Get("/{owner}/{repo}/archive/{archive}", s.handleArchive)
	r.Get("/{owner}/{repo}/{branch}/addon.xml", s.handleManifest)

	s.Server = httptest.NewServer(r)

	return s
}

// Client returns an HTTP client that sends requests for any host to this server.
func (s *Server) Client() *http.Client {
	return &http.Client{Transport: &rewriteTransport{baseURL: s.URL}}
}

// SetBranches sets the branches of owner/repo.
func (s *Server) SetBranches(owner, repo string, names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.branches[owner+"/"+repo] = names
}

// SetCommits sets the commit list (in API order) of a branch.
func (s *Server) SetCommits(owner, repo, branch string, commits ...Commit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits[owner+"/"+repo+"@"+branch] = commits
}

// SetManifest sets the addon.xml content served for a branch.
func (s *Server) SetManifest(owner, repo, branch, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifests[owner+"/"+repo+"@"+branch] = content
}

// SetArchive sets the zip archive served for a branch.
func (s *Server) SetArchive(owner, repo, branch string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archives[owner+"/"+repo+"@"+branch] = data
}

// Fail makes every request to path answer with status.
func (s *Server) Fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = status
}

// Auth returns the Basic auth credentials seen, one per request.
func (s *Server) Auth() []Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Credentials(nil), s.auth...)
}

// Authorization returns the raw Authorization header seen, one per request.
func (s *Server) Authorization() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.headers...)
}

// Requests returns the paths requested so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()

		s.mu.Lock()
		s.auth = append(s.auth, Credentials{User: user, Password: pass, OK: ok})
		s.headers = append(s.headers, r.Header.Get("Authorization"))
		s.requests = append(s.requests, r.URL.Path)
		status, fail := s.failures[r.URL.Path]
		s.mu.Unlock()

		if fail {
			http.Error(w, http.StatusText(status), status)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleBranches(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "owner") + "/" + chi.URLParam(r, "repo")

	s.mu.Lock()
	names, ok := s.branches[key]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	type branch struct {
		Name string `json:"name"`
	}
	items := make([]branch, 0, len(names))
	for _, n := range names {
		items = append(items, branch{Name: n})
	}

	writePage(w, r, s.PageSize, items)
}

func (s *Server) handleCommits(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "owner") + "/" + chi.URLParam(r, "repo") + "@" + r.URL.Query().Get("sha")

	s.mu.Lock()
	commits, ok := s.commits[key]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	type author struct {
		Date string `json:"date"`
	}
	type detail struct {
		Author author `json:"author"`
	}
	type entry struct {
		SHA    string `json:"sha"`
		Commit detail `json:"commit"`
	}
	items := make([]entry, 0, len(commits))
	for _, c := range commits {
		items = append(items, entry{SHA: c.SHA, Commit: detail{Author: author{Date: c.Date}}})
	}

	writePage(w, r, s.PageSize, items)
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	prefix := chi.URLParam(r, "owner") + "/" + chi.URLParam(r, "repo") + "@"
	sha := chi.URLParam(r, "sha")

	s.mu.Lock()
	var found *Commit
	for key, commits := range s.commits {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		for i := range commits {
			if commits[i].SHA == sha {
				found = &commits[i]
			}
		}
	}
	s.mu.Unlock()
	if found == nil {
		http.NotFound(w, r)
		return
	}

	files := found.Files
	if files == nil {
		files = []File{}
	}
	writeJSON(w, map[string]any{
		"sha":    found.SHA,
		"commit": map[string]any{"author": map[string]string{"date": found.Date}},
		"files":  files,
	})
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "owner") + "/" + chi.URLParam(r, "repo") + "@" + chi.URLParam(r, "branch")

	s.mu.Lock()
	content, ok := s.manifests[key]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprint(w, content)
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	branch, ok := strings.CutSuffix(chi.URLParam(r, "archive"), ".zip")
	if !ok {
		http.NotFound(w, r)
		return
	}
	key := chi.URLParam(r, "owner") + "/" + chi.URLParam(r, "repo") + "@" + branch

	s.mu.Lock()
	data, found := s.archives[key]
	s.mu.Unlock()
	if !found {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// writePage writes one page of items and a Link header when more pages follow.
func writePage[T any](w http.ResponseWriter, r *http.Request, size int, items []T) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	if size < 1 {
		size = len(items)
	}

	start := min((page-1)*size, len(items))
	end := min(start+size, len(items))

	if end < len(items) {
		next := *r.URL
		q := next.Query()
		q.Set("page", strconv.Itoa(page+1))
		next.RawQuery = q.Encode()
		next.Scheme = "https"
		next.Host = "api.github.com"
		w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next"`, next.String()))
	}

	writeJSON(w, items[start:end])
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// rewriteTransport sends requests to baseURL instead of the original host.
type rewriteTransport struct {
	baseURL string
	base    http.RoundTripper
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	u, err := url.Parse(t.baseURL)
	if err != nil {
		return nil, err
	}
	req = req.Clone(req.Context())
	req.URL.Scheme = u.Scheme
	req.URL.Host = u.Host

	return base.RoundTrip(req)
}
