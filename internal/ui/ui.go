// Package ui defines the host UI capabilities used during an update:
// a modal confirmation prompt and a cancellable progress dialog.
package ui

// Prompter asks the user a yes/no question.
type Prompter interface {
	Confirm(message string) bool
}

// ProgressDialog is a cancellable progress indicator.
// Create must be called before Update, Close releases the dialog.
type ProgressDialog interface {
	Create(title string)
	Update(percent int)
	IsCancelled() bool
	Close()
}

// ProgressFactory creates a fresh ProgressDialog for each operation.
type ProgressFactory interface {
	NewProgress() ProgressDialog
}

// Notifier shows a short, non-blocking message such as an installation summary.
type Notifier interface {
	Notify(message string)
}

// UI bundles both capabilities.
type UI interface {
	Prompter
	ProgressFactory
}

// Noop is a headless UI: every prompt is answered with Answer and progress is discarded.
type Noop struct {
	Answer bool
}

func (n Noop) Confirm(string) bool {
	return n.Answer
}

func (Noop) Notify(string) {}

func (Noop) NewProgress() ProgressDialog {
	return noopProgress{}
}

type noopProgress struct{}

func (noopProgress) Create(string)     {}
func (noopProgress) Update(int)        {}
func (noopProgress) IsCancelled() bool { return false }
func (noopProgress) Close()            {}

// Translator looks up the localized form of a message (which may be a format string).
type Translator func(message string) string

// Untranslated returns every message as-is.
func Untranslated(message string) string {
	return message
}
