package updater

import (
	"fmt"

	"github.com/kodi-tools/addonupdate/internal/ui"
	"github.com/kodi-tools/addonupdate/internal/version"
)

// Option defines a functional option for configuring Client.
type Option func(*Options) error

// Options contains optional configuration for the Client.
type Options struct {
	prompter   ui.Prompter
	comparator version.Comparator
	translate  ui.Translator
}

// NewOptions applies opts over the defaults: a prompter that always declines,
// semantic version comparison and untranslated messages.
func NewOptions(opts ...Option) (Options, error) {
	o := Options{
		prompter:   ui.Noop{},
		comparator: version.Semantic{},
		translate:  ui.Untranslated,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return Options{}, err
		}
	}

	return o, nil
}

// WithPrompter sets the confirmation prompt used before installing.
func WithPrompter(p ui.Prompter) Option {
	return func(o *Options) error {
		if p == nil {
			return fmt.Errorf("prompter cannot be nil")
		}
		o.prompter = p
		return nil
	}
}

// WithComparator sets how the remote and installed versions are compared.
func WithComparator(c version.Comparator) Option {
	return func(o *Options) error {
		if c == nil {
			return fmt.Errorf("comparator cannot be nil")
		}
		o.comparator = c
		return nil
	}
}

// WithTranslator sets the message translator.
func WithTranslator(t ui.Translator) Option {
	return func(o *Options) error {
		if t == nil {
			return fmt.Errorf("translator cannot be nil")
		}
		o.translate = t
		return nil
	}
}
