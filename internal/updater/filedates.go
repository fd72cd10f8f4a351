package updater

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	uerrors "github.com/kodi-tools/addonupdate/internal/errors"
	"github.com/kodi-tools/addonupdate/internal/github"
	"github.com/kodi-tools/addonupdate/internal/perms"
)

const statusRemoved = "removed"

// fileRecord is the most recent change seen for one file.
type fileRecord struct {
	date   string
	status string
}

// FileDates maps each file still present on a branch to the date of its latest commit.
func (c *Client) FileDates(ctx context.Context, owner, repo, branch, user, password string) (map[string]string, error) {
	gh := c.gh
	if user != "" || password != "" {
		gh = gh.WithBasicAuth(user, password)
	}

	commits, err := gh.ListCommits(ctx, owner, repo, branch)
	if err != nil {
		return nil, uerrors.Hard(c.tr(msgCommitsError), err)
	}

	records := make(map[string]fileRecord)
	for _, commit := range commits {
		changed, err := gh.CommitFiles(ctx, owner, repo, commit.SHA)
		if err != nil {
			return nil, uerrors.Hard(c.tr(msgCommitsError), err)
		}
		mergeCommit(records, commit, changed)
	}

	out := make(map[string]string, len(records))
	for name, rec := range records {
		if rec.status == statusRemoved {
			continue
		}
		out[name] = rec.date
	}

	c.logger.Debug("Collected file dates", "commits", len(commits), "files", len(out))

	return out, nil
}

// mergeCommit records the files of commit, keeping the entry with the latest date per file.
// Dates are RFC 3339 UTC, so string order is chronological. Ties keep the first commit seen.
func mergeCommit(records map[string]fileRecord, commit github.Commit, changed []github.CommitFile) {
	for _, f := range changed {
		rec, ok := records[f.Filename]
		if ok && commit.Date <= rec.date {
			continue
		}
		records[f.Filename] = fileRecord{date: commit.Date, status: f.Status}
	}
}

// DumpFileDatesToJSON writes FileDates as a flat JSON object to outputPath.
func (c *Client) DumpFileDatesToJSON(ctx context.Context, owner, repo, branch, outputPath, user, password string) (map[string]string, error) {
	dates, err := c.FileDates(ctx, owner, repo, branch, user, password)
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(dates); err != nil {
		return nil, uerrors.Hard(c.tr(msgFileDatesError), err)
	}

	if err := os.WriteFile(outputPath, bytes.TrimSuffix(buf.Bytes(), []byte("\n")), perms.RegularFile); err != nil {
		return nil, uerrors.Hard(c.tr(msgFileDatesError), fmt.Errorf("failed to write '%s': %w", outputPath, err))
	}

	c.logger.Info("Wrote file dates", "path", outputPath, "files", len(dates))

	return dates, nil
}
