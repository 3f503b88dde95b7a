package uri

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyURI is returned when there is nothing to resolve
	ErrEmptyURI = errors.New("empty uri")
	// ErrAttemptOutOfRange is returned when the attempt index has no gateway
	ErrAttemptOutOfRange = errors.New("attempt index out of range")
)

const (
	ipfsScheme = "ipfs://"
	dataScheme = "data:"
)

// Resolver rewrites content-addressed locators into fetchable HTTP URLs.
// The gateway list is fixed at construction and never mutated, so a
// single Resolver is safe for concurrent use without locking.
type Resolver struct {
	gateways []string
}

// NewResolver creates a resolver over an ordered list of gateway base URLs.
// Each gateway is expected to end with the path prefix the hash is appended to,
// e.g. https://ipfs.io/ipfs/.
func NewResolver(gateways []string) (*Resolver, error) {
	if len(gateways) == 0 {
		return nil, fmt.Errorf("no IPFS gateways configured")
	}

	gws := make([]string, 0, len(gateways))
	for _, gw := range gateways {
		gw = strings.TrimSpace(gw)
		if gw == "" {
			continue
		}
		if !strings.HasSuffix(gw, "/") {
			gw += "/"
		}
		gws = append(gws, gw)
	}
	if len(gws) == 0 {
		return nil, fmt.Errorf("no IPFS gateways configured")
	}

	return &Resolver{gateways: gws}, nil
}

// Attempts returns the number of gateways, i.e. the number of valid attempt indices
func (r *Resolver) Attempts() int {
	return len(r.gateways)
}

// Resolve returns the URL to load for the given attempt.
// Plain URLs (and data URIs) are returned unchanged for every attempt index.
// Content-addressed locators are joined onto gateway[attempt].
func (r *Resolver) Resolve(uri string, attempt int) (string, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return "", ErrEmptyURI
	}

	hash, ok := ContentHash(uri)
	if !ok {
		return uri, nil
	}

	if attempt < 0 || attempt >= len(r.gateways) {
		return "", fmt.Errorf("%w: %d of %d", ErrAttemptOutOfRange, attempt, len(r.gateways))
	}

	return r.gateways[attempt] + hash, nil
}

// IsContentAddressed reports whether uri needs gateway translation
func IsContentAddressed(uri string) bool {
	_, ok := ContentHash(uri)
	return ok
}

// ContentHash strips the scheme prefix from a content-addressed locator.
// Both ipfs://<hash> and the legacy ipfs://ipfs/<hash> form are accepted.
func ContentHash(uri string) (string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), ipfsScheme)
	if !ok {
		return "", false
	}
	rest = strings.TrimPrefix(rest, "ipfs/")
	if rest == "" {
		return "", false
	}
	return rest, true
}

// IsDataURI reports whether uri is an inline data URI
func IsDataURI(uri string) bool {
	return strings.HasPrefix(uri, dataScheme)
}
