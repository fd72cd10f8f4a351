// Package perms provides the file and directory modes used when addonupdate
// writes downloads, settings files and reports.
package perms

import "os"

const (
	// RegularFile is used for settings files, archives and generated reports.
	// Mode 0644: owner read/write, group read, others read.
	RegularFile os.FileMode = 0o644

	// SecureFile is used for files that may hold credentials (the generated .env).
	// Mode 0600: owner read/write only.
	SecureFile os.FileMode = 0o600
)

const (
	// RegularDir is used for add-on and add-on data directories.
	// Mode 0755: owner read/write/execute, group and others read/execute.
	RegularDir os.FileMode = 0o755
)
