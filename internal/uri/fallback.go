package uri

import (
	"github.com/feral-file/ff-storefront/internal/domain"
)

// Fallback is the attempt counter owned by one display site (an asset
// image, a creator avatar, ...). It walks the gateway list on every
// reported load failure and ends at the placeholder image.
// A Fallback is not safe for concurrent use; each site owns its own.
type Fallback struct {
	resolver  *Resolver
	uri       string
	attempt   int
	exhausted bool
}

// NewFallback starts a fallback sequence for uri at attempt 0
func NewFallback(resolver *Resolver, uri string) *Fallback {
	f := &Fallback{resolver: resolver, uri: uri}
	if _, err := resolver.Resolve(uri, 0); err != nil {
		f.exhausted = true
	}
	return f
}

// Current returns the URL to load now, or the placeholder once exhausted
func (f *Fallback) Current() string {
	if f.exhausted {
		return domain.PLACEHOLDER_IMAGE
	}
	u, err := f.resolver.Resolve(f.uri, f.attempt)
	if err != nil {
		f.exhausted = true
		return domain.PLACEHOLDER_IMAGE
	}
	return u
}

// Attempt returns the current attempt index
func (f *Fallback) Attempt() int {
	return f.attempt
}

// Exhausted reports whether the sequence reached the placeholder
func (f *Fallback) Exhausted() bool {
	return f.exhausted
}

// Fail records a load failure of Current and returns the next URL to try.
// A plain URL resolves identically for every attempt, so it falls through
// to the placeholder after its first failure.
func (f *Fallback) Fail() string {
	if f.exhausted {
		return domain.PLACEHOLDER_IMAGE
	}
	if !IsContentAddressed(f.uri) {
		f.exhausted = true
		return domain.PLACEHOLDER_IMAGE
	}

	f.attempt++
	if f.attempt >= f.resolver.Attempts() {
		f.exhausted = true
		return domain.PLACEHOLDER_IMAGE
	}
	return f.Current()
}
