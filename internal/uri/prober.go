package uri

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/feral-file/ff-storefront/internal/adapter"
	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/logger"
)

// sniffBytes is how much of a response body is read to detect its content type
const sniffBytes = 3072

// ProbeResult is the outcome of walking the fallback sequence for one uri
type ProbeResult struct {
	// URL is the first reachable image URL, or the placeholder
	URL string
	// Attempts is the number of URLs that were tried
	Attempts int
	// Exhausted is true when URL is the placeholder
	Exhausted bool
}

// Prober applies the bounded-retry policy on the server side by actually
// loading each candidate URL until one answers with an image.
//
//go:generate mockgen -source=prober.go -destination=../mocks/prober.go -package=mocks -mock_names=Prober=MockProber
type Prober interface {
	// Probe returns the first reachable image URL for rawURI.
	// When every attempt fails the result carries the placeholder image
	// and the error wraps domain.ErrResolutionExhausted.
	Probe(ctx context.Context, rawURI string) (ProbeResult, error)
}

type prober struct {
	resolver   *Resolver
	httpClient adapter.HTTPClient
}

// NewProber creates a prober over a resolver
func NewProber(resolver *Resolver, httpClient adapter.HTTPClient) Prober {
	return &prober{
		resolver:   resolver,
		httpClient: httpClient,
	}
}

func (p *prober) Probe(ctx context.Context, uri string) (ProbeResult, error) {
	if IsDataURI(uri) {
		if err := checkDataURI(uri); err != nil {
			return ProbeResult{URL: domain.PLACEHOLDER_IMAGE, Attempts: 1, Exhausted: true},
				fmt.Errorf("%w: %v", domain.ErrResolutionExhausted, err)
		}
		return ProbeResult{URL: uri, Attempts: 1}, nil
	}

	fb := NewFallback(p.resolver, uri)
	attempts := 0
	candidate := fb.Current()
	for !fb.Exhausted() {
		if err := ctx.Err(); err != nil {
			return ProbeResult{URL: domain.PLACEHOLDER_IMAGE, Attempts: attempts, Exhausted: true}, err
		}

		attempts++
		err := p.check(ctx, candidate)
		if err == nil {
			return ProbeResult{URL: candidate, Attempts: attempts}, nil
		}

		logger.DebugCtx(ctx, "image load failed, trying next attempt",
			zap.String("url", candidate),
			zap.Int("attempt", fb.Attempt()),
			zap.Error(err))
		candidate = fb.Fail()
	}

	return ProbeResult{URL: domain.PLACEHOLDER_IMAGE, Attempts: attempts, Exhausted: true},
		fmt.Errorf("%w: %s", domain.ErrResolutionExhausted, uri)
}

// check tries a HEAD request first and falls back to a ranged GET whose
// first bytes are sniffed when the server does not declare an image type
func (p *prober) check(ctx context.Context, u string) error {
	resp, err := p.httpClient.Head(ctx, u)
	if err == nil {
		closeBody(ctx, resp, u)
		if isSuccess(resp.StatusCode) && isImageMimeType(resp.Header.Get("Content-Type")) {
			return nil
		}
	}

	resp, err = p.httpClient.GetRange(ctx, u, sniffBytes)
	if err != nil {
		return err
	}
	defer closeBody(ctx, resp, u)

	if !isSuccess(resp.StatusCode) {
		return &adapter.HTTPStatusError{StatusCode: resp.StatusCode}
	}

	if isImageMimeType(resp.Header.Get("Content-Type")) {
		return nil
	}

	head, err := io.ReadAll(io.LimitReader(resp.Body, sniffBytes))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	detected := mimetype.Detect(head)
	if !isImageMimeType(detected.String()) {
		return fmt.Errorf("not an image: %s", detected.String())
	}
	return nil
}

// checkDataURI validates an inline image against its declared mime type
func checkDataURI(dataURI string) error {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(dataURI, dataScheme), ",")
	if !ok {
		return fmt.Errorf("malformed data uri")
	}

	declared := strings.Split(meta, ";")[0]
	if !isImageMimeType(declared) {
		return fmt.Errorf("unsupported mime type: %s", declared)
	}

	var content []byte
	if strings.HasSuffix(meta, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return fmt.Errorf("invalid base64 payload: %w", err)
		}
		content = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return fmt.Errorf("invalid payload: %w", err)
		}
		content = []byte(unescaped)
	}

	detected := mimetype.Detect(content)
	if !isImageMimeType(detected.String()) && !detected.Is("text/plain") {
		return fmt.Errorf("content %s does not match declared %s", detected.String(), declared)
	}
	return nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

func isImageMimeType(contentType string) bool {
	mt := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	return strings.HasPrefix(mt, "image/")
}

func closeBody(ctx context.Context, resp *http.Response, u string) {
	if resp == nil || resp.Body == nil {
		return
	}
	if err := resp.Body.Close(); err != nil {
		logger.WarnCtx(ctx, "failed to close response body", zap.Error(err), zap.String("url", u))
	}
}
