// Package installer places a downloaded add-on archive into the add-ons directory.
//
// GitHub branch archives wrap everything in a single '<repo>-<branch>/' folder;
// that folder is stripped so the archive content lands directly in '<addons>/<id>'.
// Files are extracted to a staging directory first, so a corrupt archive leaves
// the installed add-on untouched.
package installer

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/kodi-tools/addonupdate/internal/addon"
	"github.com/kodi-tools/addonupdate/internal/files"
	"github.com/kodi-tools/addonupdate/internal/perms"
)

// Options controls a single installation.
type Options struct {
	// DryRun logs what would be installed without writing anything.
	DryRun bool

	// UpdateOnly restricts installation to these add-on relative paths (slash separated).
	// Nil installs everything.
	UpdateOnly []string

	// DeleteArchive removes the archive once the installation finishes.
	DeleteArchive bool

	// Silent suppresses user-facing notifications.
	Silent bool
}

// Notifier shows a short message to the user.
type Notifier func(message string)

// ZipInstaller installs add-ons from zip archives.
// NewZipInstaller should be used to create instances of ZipInstaller.
type ZipInstaller struct {
	addonsDir string
	notify    Notifier
	logger    hclog.Logger
}

// NewZipInstaller creates an installer rooted at addonsDir. notify may be nil.
func NewZipInstaller(logger hclog.Logger, addonsDir string, notify Notifier) (*ZipInstaller, error) {
	addonsDir = strings.TrimSpace(addonsDir)
	if addonsDir == "" {
		return nil, fmt.Errorf("add-ons directory cannot be empty")
	}

	if notify == nil {
		notify = func(string) {}
	}

	return &ZipInstaller{
		addonsDir: addonsDir,
		notify:    notify,
		logger:    logger.Named("installer"),
	}, nil
}

// AddonDir returns the install location of addonID.
func (z *ZipInstaller) AddonDir(addonID string) string {
	return filepath.Join(z.addonsDir, addonID)
}

// CurrentVersion reads the version of the installed add-on from its manifest.
func (z *ZipInstaller) CurrentVersion(addonID string) (string, error) {
	return addon.ReadVersion(z.AddonDir(addonID))
}

// entry is an archive member selected for installation.
type entry struct {
	file *zip.File
	rel  string
}

// Install extracts archivePath over the installed add-on addonID.
func (z *ZipInstaller) Install(ctx context.Context, addonID string, archivePath string, opts Options) (err error) {
	addonID = strings.TrimSpace(addonID)
	if addonID == "" || strings.ContainsAny(addonID, `/\`) || addonID == "." || addonID == ".." {
		return fmt.Errorf("invalid add-on id '%s'", addonID)
	}

	if opts.DeleteArchive {
		defer func() {
			if rmErr := files.RemoveIfExists(archivePath); rmErr != nil {
				z.logger.Warn("Failed to delete archive", "path", archivePath, "error", rmErr)
			}
		}()
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive '%s': %w", archivePath, err)
	}
	defer func() {
		_ = zr.Close()
	}()

	entries, err := selectEntries(zr.File, opts.UpdateOnly)
	if err != nil {
		return err
	}

	target := z.AddonDir(addonID)
	logger := z.logger.With("addon", addonID, "target", target)

	if opts.DryRun {
		for _, e := range entries {
			logger.Info("Dry run: would install file", "file", e.rel)
		}
		logger.Info("Dry run complete", "files", len(entries))
		return nil
	}

	if err := files.EnsureDir(z.addonsDir); err != nil {
		return err
	}

	staging, err := os.MkdirTemp(z.addonsDir, "."+addonID+"-staging-")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(staging)
	}()

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := extract(e.file, filepath.Join(staging, filepath.FromSlash(e.rel))); err != nil {
			return fmt.Errorf("failed to extract '%s': %w", e.rel, err)
		}
	}

	for _, e := range entries {
		dest := filepath.Join(target, filepath.FromSlash(e.rel))
		if err := files.EnsureDir(filepath.Dir(dest)); err != nil {
			return err
		}
		if err := os.Rename(filepath.Join(staging, filepath.FromSlash(e.rel)), dest); err != nil {
			return fmt.Errorf("failed to place '%s': %w", e.rel, err)
		}
		logger.Trace("Installed file", "file", e.rel)
	}

	logger.Info("Add-on installed", "files", len(entries))
	if !opts.Silent {
		z.notify(fmt.Sprintf("%s updated (%d files)", addonID, len(entries)))
	}

	return nil
}

// selectEntries returns the regular files to install with the archive root folder stripped.
func selectEntries(zfiles []*zip.File, updateOnly []string) ([]entry, error) {
	var allowed map[string]struct{}
	if updateOnly != nil {
		allowed = make(map[string]struct{}, len(updateOnly))
		for _, p := range updateOnly {
			allowed[path.Clean(strings.TrimPrefix(filepath.ToSlash(p), "/"))] = struct{}{}
		}
	}

	root := archiveRoot(zfiles)

	var out []entry
	for _, f := range zfiles {
		if f.FileInfo().IsDir() {
			continue
		}

		rel := strings.TrimPrefix(f.Name, root)
		rel = path.Clean(rel)
		if rel == "." || path.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, "../") {
			return nil, fmt.Errorf("archive entry '%s' escapes the add-on directory", f.Name)
		}

		if allowed != nil {
			if _, ok := allowed[rel]; !ok {
				continue
			}
		}

		out = append(out, entry{file: f, rel: rel})
	}

	return out, nil
}

// archiveRoot returns the single top-level folder shared by every entry ('name/'), or "".
func archiveRoot(zfiles []*zip.File) string {
	root := ""
	for _, f := range zfiles {
		first, rest, found := strings.Cut(f.Name, "/")
		if !found || first == "" || first == "." || first == ".." || (rest == "" && !f.FileInfo().IsDir()) {
			return ""
		}
		if root == "" {
			root = first
		} else if root != first {
			return ""
		}
	}
	if root == "" {
		return ""
	}

	return root + "/"
}

func extract(f *zip.File, dest string) error {
	if err := files.EnsureDir(filepath.Dir(dest)); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() {
		_ = rc.Close()
	}()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = perms.RegularFile
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}

	return out.Close()
}
