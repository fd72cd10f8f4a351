package download

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	uerrors "github.com/kodi-tools/addonupdate/internal/errors"
	"github.com/kodi-tools/addonupdate/internal/ui"
)

// recordingProgress records every call and reports cancellation after cancelAfter updates (0 = never).
type recordingProgress struct {
	mu          sync.Mutex
	title       string
	updates     []int
	created     bool
	closed      int
	cancelAfter int
}

func (p *recordingProgress) NewProgress() ui.ProgressDialog {
	return p
}

func (p *recordingProgress) Create(title string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = true
	p.title = title
}

func (p *recordingProgress) Update(percent int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, percent)
}

func (p *recordingProgress) IsCancelled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelAfter > 0 && len(p.updates) >= p.cancelAfter
}

func (p *recordingProgress) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
}

func payload(n int) []byte {
	return bytes.Repeat([]byte("0123456789abcdef"), n/16+1)[:n]
}

func newTestDownloader(t *testing.T, progress ui.ProgressFactory, blockSize int) *Downloader {
	t.Helper()

	d, err := NewDownloader(hclog.NewNullLogger(), WithProgress(progress), WithBlockSize(blockSize))
	require.NoError(t, err)

	return d
}

func TestNewDownloader_InvalidOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opt  Option
	}{
		{name: "nil client", opt: WithHTTPClient(nil)},
		{name: "nil progress", opt: WithProgress(nil)},
		{name: "zero block size", opt: WithBlockSize(0)},
		{name: "nil translator", opt: WithTranslator(nil)},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			d, err := NewDownloader(hclog.NewNullLogger(), tc.opt)
			require.Error(t, err)
			require.Nil(t, d)
		})
	}
}

func TestNewOptions_Defaults(t *testing.T) {
	t.Parallel()

	o, err := NewOptions(nil)
	require.NoError(t, err)
	require.Equal(t, DefaultBlockSize, o.blockSize)
	require.Equal(t, http.DefaultClient, o.client)
}

func TestDownloader_Download_Success(t *testing.T) {
	t.Parallel()

	data := payload(40000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		_, _ = w.Write(data)
	}))
	defer server.Close()

	progress := &recordingProgress{}
	d := newTestDownloader(t, progress, DefaultBlockSize)

	dest := filepath.Join(t.TempDir(), "nested", "dir", "plugin.video.test.zip")
	task, err := d.Download(context.Background(), server.URL+"/archive/master.zip", dest)
	require.NoError(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, data, got)
	require.Equal(t, int64(len(data)), task.Size)
	require.Equal(t, int64(len(data)), task.Transferred)
	require.False(t, task.Cancelled)

	require.True(t, progress.created)
	require.Equal(t, "Downloading plugin.video.test.zip bytes 40000", progress.title)
	require.NotEmpty(t, progress.updates)
	require.Equal(t, 100, progress.updates[len(progress.updates)-1])
	for i := 1; i < len(progress.updates); i++ {
		require.GreaterOrEqual(t, progress.updates[i], progress.updates[i-1])
	}
	require.Equal(t, 1, progress.closed)
}

func TestDownloader_Download_OverwritesExisting(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("new"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "addon.zip")
	require.NoError(t, os.WriteFile(dest, []byte("old content that is longer"), 0o644))

	d := newTestDownloader(t, ui.Noop{}, DefaultBlockSize)
	_, err := d.Download(context.Background(), server.URL, dest)
	require.NoError(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "new", string(got))
}

func TestDownloader_Download_UnknownContentLength(t *testing.T) {
	t.Parallel()

	data := payload(20000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Flushing before the body is complete forces chunked encoding (no Content-Length).
		_, _ = w.Write(data[:100])
		w.(http.Flusher).Flush()
		_, _ = w.Write(data[100:])
	}))
	defer server.Close()

	progress := &recordingProgress{}
	d := newTestDownloader(t, progress, 1024)

	dest := filepath.Join(t.TempDir(), "addon.zip")
	task, err := d.Download(context.Background(), server.URL, dest)
	require.NoError(t, err)
	require.False(t, task.SizeKnown())
	require.Equal(t, int64(len(data)), task.Transferred)
	require.Equal(t, "Downloading addon.zip bytes unknown", progress.title)
	for _, p := range progress.updates {
		require.Equal(t, 0, p)
	}

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestDownloader_Download_Cancelled(t *testing.T) {
	t.Parallel()

	data := payload(64 * 1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		_, _ = w.Write(data)
	}))
	defer server.Close()

	progress := &recordingProgress{cancelAfter: 2}
	d := newTestDownloader(t, progress, 1024)

	dest := filepath.Join(t.TempDir(), "addon.zip")
	task, err := d.Download(context.Background(), server.URL, dest)
	require.Error(t, err)
	require.True(t, uerrors.IsCancelled(err))
	require.False(t, uerrors.IsHard(err))
	require.Equal(t, "Download Cancelled", err.Error())
	require.True(t, task.Cancelled)
	require.Less(t, task.Transferred, int64(len(data)))
	require.Equal(t, 1, progress.closed)

	_, statErr := os.Stat(dest)
	require.True(t, os.IsNotExist(statErr), "partial download must be removed")
}

func TestDownloader_Download_ContextCancelled(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("data"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := newTestDownloader(t, ui.Noop{}, DefaultBlockSize)
	dest := filepath.Join(t.TempDir(), "addon.zip")
	_, err := d.Download(ctx, server.URL, dest)
	require.True(t, uerrors.IsCancelled(err))

	_, statErr := os.Stat(dest)
	require.True(t, os.IsNotExist(statErr))
}

func TestDownloader_Download_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "truncated body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Length", "100000")
				_, _ = w.Write(payload(5000))
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(tc.handler)
			defer server.Close()

			progress := &recordingProgress{}
			d := newTestDownloader(t, progress, 1024)

			dest := filepath.Join(t.TempDir(), "addon.zip")
			_, err := d.Download(context.Background(), server.URL, dest)
			require.Error(t, err)
			require.True(t, uerrors.IsHard(err))
			require.False(t, uerrors.IsCancelled(err))
			require.NotEmpty(t, err.Error())
			require.Contains(t, err.Error(), "GitHub Download Error")

			_, statErr := os.Stat(dest)
			require.True(t, os.IsNotExist(statErr), "partial download must be removed")
			require.LessOrEqual(t, progress.closed, 1)
		})
	}
}

func TestDownloader_Download_ConnectionRefused(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	d := newTestDownloader(t, ui.Noop{}, DefaultBlockSize)
	dest := filepath.Join(t.TempDir(), "addon.zip")
	_, err := d.Download(context.Background(), url, dest)
	require.True(t, uerrors.IsHard(err))

	_, statErr := os.Stat(dest)
	require.True(t, os.IsNotExist(statErr))
}

func TestDownloader_Download_Translated(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	d, err := NewDownloader(hclog.NewNullLogger(), WithTranslator(func(m string) string {
		if m == msgDownloadError {
			return "Erreur de téléchargement GitHub"
		}
		return m
	}))
	require.NoError(t, err)

	_, err = d.Download(context.Background(), server.URL, filepath.Join(t.TempDir(), "a.zip"))
	require.ErrorContains(t, err, "Erreur de téléchargement GitHub")
}

func TestTask_Percent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		task     Task
		expected int
	}{
		{name: "unknown size", task: Task{Size: -1, Transferred: 500}, expected: 0},
		{name: "zero size", task: Task{Size: 0}, expected: 0},
		{name: "floor", task: Task{Size: 3, Transferred: 2}, expected: 66},
		{name: "complete", task: Task{Size: 8192, Transferred: 8192}, expected: 100},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.expected, tc.task.Percent())
		})
	}
}
