// Package httpprobe asks remote servers where a module URL redirects to.
package httpprobe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"go.trai.ch/modcache/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// maxDrain bounds how much of a probe response body is read before closing it.
const maxDrain = 64 << 10

// Prober implements ports.RedirectProber with a GET that does not follow redirects.
type Prober struct {
	client  *http.Client
	timeout time.Duration
	group   singleflight.Group
}

// New creates a Prober. A zero timeout uses domain.DefaultRedirectTimeout.
func New(timeout time.Duration) *Prober {
	return NewWithClient(&http.Client{}, timeout)
}

// NewWithClient creates a Prober on top of client. The client's redirect
// policy is replaced.
func NewWithClient(client *http.Client, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = domain.DefaultRedirectTimeout
	}
	c := *client
	c.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &Prober{client: &c, timeout: timeout}
}

// RedirectLocation returns the absolute Location of a 302 response for rawURL.
// Concurrent probes of one URL share a single request.
func (p *Prober) RedirectLocation(ctx context.Context, rawURL string) (string, error) {
	v, err, _ := p.group.Do(rawURL, func() (any, error) {
		return p.probe(ctx, rawURL)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (p *Prober) probe(ctx context.Context, rawURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrInvalidSpecifier.Error()), "url", rawURL)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "redirect probe failed"), "url", rawURL)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusFound {
		return "", nil
	}
	location, err := resp.Location()
	if err != nil {
		if errors.Is(err, http.ErrNoLocation) {
			return "", nil
		}
		return "", zerr.With(zerr.Wrap(err, "invalid redirect location"), "url", rawURL)
	}
	return domain.Href(location), nil
}
