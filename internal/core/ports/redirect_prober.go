package ports

import "context"

// RedirectProber asks a remote server where a URL redirects to.
//
//go:generate mockgen -source=redirect_prober.go -destination=mocks/mock_redirect_prober.go -package=mocks
type RedirectProber interface {
	// RedirectLocation returns the absolute Location of a 302 response for
	// rawURL. Any other status yields "" and a nil error.
	RedirectLocation(ctx context.Context, rawURL string) (string, error)
}
