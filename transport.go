package salamoonder

import (
	"context"
	"io"
)

//go:generate mockgen -source=transport.go -destination=./transport_mock.go -package=salamoonder

// Doer performs a single HTTP exchange with a fixed header order, giving up
// when ctx is done. *stealth.BrowserClient satisfies it.
type Doer interface {
	DoWithHeaderOrderCtx(ctx context.Context, method, url string, headers map[string]string, body io.Reader, order []string) ([]byte, map[string]string, int, error)
}
