package download

// Task tracks a single streamed download. It only lives for one Download call.
type Task struct {
	// URL is the source being fetched.
	URL string

	// Dest is the local destination path.
	Dest string

	// Size is the expected size from Content-Length, or -1 when the server did not send one.
	Size int64

	// Transferred counts the bytes written to Dest so far.
	Transferred int64

	// Cancelled is set once the user aborts the download.
	Cancelled bool
}

// Percent returns floor(Transferred*100/Size), or 0 while the size is unknown.
func (t *Task) Percent() int {
	if t.Size <= 0 {
		return 0
	}

	return int(t.Transferred * 100 / t.Size)
}

// SizeKnown reports whether the server announced the content length.
func (t *Task) SizeKnown() bool {
	return t.Size >= 0
}
