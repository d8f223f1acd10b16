package loader

import "context"

// EmbeddedSpecifier is the synthetic identifier of the one module a sealed
// binary carries. It is the only specifier Single resolves or loads.
const EmbeddedSpecifier = "monojs://embedded/main.js"

// Single serves one immutable in-memory module under EmbeddedSpecifier.
type Single struct {
	code string
}

// NewSingle returns a loader holding code as the embedded module body.
func NewSingle(code string) *Single {
	return &Single{code: code}
}

// Resolve succeeds only for the embedded specifier. The referrer is
// ignored: no relative or package resolution exists in this mode.
func (s *Single) Resolve(specifier, referrer string) (string, error) {
	if specifier != EmbeddedSpecifier {
		return "", ErrUnsupported
	}
	return specifier, nil
}

// Load returns the held module body. Specified and Found are both the
// embedded specifier; there are no redirects.
func (s *Single) Load(ctx context.Context, specifier string) (Source, error) {
	if specifier != EmbeddedSpecifier {
		return Source{}, ErrUnsupported
	}
	return Source{
		Code:      s.code,
		Specified: specifier,
		Found:     specifier,
	}, nil
}
