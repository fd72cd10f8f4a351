// Package download streams a remote file to disk with a cancellable progress dialog.
// Every outcome (success, cancellation, failure) leaves either a complete file or no file.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hashicorp/go-hclog"

	uerrors "github.com/kodi-tools/addonupdate/internal/errors"
	"github.com/kodi-tools/addonupdate/internal/files"
	"github.com/kodi-tools/addonupdate/internal/perms"
	"github.com/kodi-tools/addonupdate/internal/ui"
)

const (
	msgDownloading   = "Downloading %s bytes %s"
	msgCancelled     = "Download Cancelled"
	msgDownloadError = "GitHub Download Error"
)

// Downloader performs streamed binary downloads.
// NewDownloader should be used to create instances of Downloader.
type Downloader struct {
	client    *http.Client
	progress  ui.ProgressFactory
	blockSize int
	tr        ui.Translator
	logger    hclog.Logger
}

// NewDownloader creates a Downloader.
func NewDownloader(logger hclog.Logger, opts ...Option) (*Downloader, error) {
	options, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &Downloader{
		client:    options.client,
		progress:  options.progress,
		blockSize: options.blockSize,
		tr:        options.translate,
		logger:    logger.Named("download"),
	}, nil
}

// attempt holds the resources opened during a single download so they can be released on any exit path.
type attempt struct {
	task   *Task
	dialog ui.ProgressDialog
	file   *os.File
}

// Download streams url into dest.
// An existing dest is removed first and the parent directory is created if missing.
// A cancellation returns a soft UpdateError, anything else a hard one.
// In both cases the partial file is removed.
func (d *Downloader) Download(ctx context.Context, url string, dest string) (*Task, error) {
	a := &attempt{task: &Task{URL: url, Dest: dest, Size: -1}}

	if err := files.RemoveIfExists(dest); err != nil {
		return a.task, d.fail(a, err)
	}
	if err := files.EnsureDir(filepath.Dir(dest)); err != nil {
		return a.task, d.fail(a, err)
	}

	d.logger.Debug("Starting download", "url", url, "path", dest)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return a.task, d.fail(a, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return a.task, d.cancel(a)
		}
		return a.task, d.fail(a, fmt.Errorf("failed to fetch URL '%s': %w", url, err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return a.task, d.fail(a, fmt.Errorf("received non-OK HTTP status from URL '%s': %d", url, resp.StatusCode))
	}

	a.file, err = os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perms.RegularFile)
	if err != nil {
		return a.task, d.fail(a, err)
	}

	a.task.Size = resp.ContentLength
	size := "unknown"
	if a.task.SizeKnown() {
		size = strconv.FormatInt(a.task.Size, 10)
	} else {
		d.logger.Warn("Server did not send Content-Length, progress is indeterminate", "url", url)
	}

	a.dialog = d.progress.NewProgress()
	a.dialog.Create(fmt.Sprintf(d.tr(msgDownloading), filepath.Base(dest), size))

	buf := make([]byte, d.blockSize)
	for {
		if a.dialog.IsCancelled() || ctx.Err() != nil {
			return a.task, d.cancel(a)
		}

		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := a.file.Write(buf[:n]); err != nil {
				return a.task, d.fail(a, fmt.Errorf("failed to write '%s': %w", dest, err))
			}
			a.task.Transferred += int64(n)
			a.dialog.Update(a.task.Percent())
		}

		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			if ctx.Err() != nil {
				return a.task, d.cancel(a)
			}
			return a.task, d.fail(a, fmt.Errorf("failed to read response body: %w", readErr))
		}
	}

	if a.task.SizeKnown() && a.task.Transferred != a.task.Size {
		return a.task, d.fail(a, fmt.Errorf(
			"incomplete download: received %d of %d bytes: %w",
			a.task.Transferred,
			a.task.Size,
			io.ErrUnexpectedEOF,
		))
	}

	a.dialog.Close()
	a.dialog = nil

	err = a.file.Close()
	a.file = nil
	if err != nil {
		return a.task, d.fail(a, fmt.Errorf("failed to close '%s': %w", dest, err))
	}

	d.logger.Info("Download complete", "url", url, "path", dest, "bytes", a.task.Transferred)

	return a.task, nil
}

// cancel releases resources, removes the partial file and returns the soft cancellation error.
func (d *Downloader) cancel(a *attempt) error {
	a.task.Cancelled = true
	d.release(a)
	d.logger.Info("Download cancelled", "url", a.task.URL, "path", a.task.Dest, "bytes", a.task.Transferred)

	return uerrors.Cancelled(d.tr(msgCancelled))
}

// fail releases resources, removes the partial file and wraps cause as a hard error.
func (d *Downloader) fail(a *attempt, cause error) error {
	d.release(a)
	d.logger.Error("Download failed", "url", a.task.URL, "path", a.task.Dest, "error", cause)

	return uerrors.Hard(d.tr(msgDownloadError), cause)
}

func (d *Downloader) release(a *attempt) {
	if a.dialog != nil {
		a.dialog.Close()
		a.dialog = nil
	}
	if a.file != nil {
		_ = a.file.Close()
		a.file = nil
	}
	if err := files.RemoveIfExists(a.task.Dest); err != nil {
		d.logger.Warn("Failed to remove partial download", "path", a.task.Dest, "error", err)
	}
}
