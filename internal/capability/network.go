package capability

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"time"
)

// snippetLimit bounds how much of a response body Get returns.
const snippetLimit = 4096

// HTTPNetwork is the real network provider. DNS goes through the
// stdlib resolver; HTTP through a shared client. All calls honour the
// caller's context deadline.
//
// Safe for concurrent use: net.Resolver and http.Client are both
// concurrency-safe, and HTTPNetwork holds no other state.
type HTTPNetwork struct {
	resolver *net.Resolver
	client   *http.Client
}

// NewHTTPNetwork creates a network provider whose HTTP round trips are
// additionally capped at maxRoundTrip, independent of any context
// deadline the caller supplies.
func NewHTTPNetwork(maxRoundTrip time.Duration) *HTTPNetwork {
	return &HTTPNetwork{
		resolver: net.DefaultResolver,
		client:   &http.Client{Timeout: maxRoundTrip},
	}
}

func (n *HTTPNetwork) Resolve(ctx context.Context, host string) ([]string, error) {
	addrs, err := n.resolver.LookupHost(ctx, host)
	if err != nil {
		return nil, classifyNetError(err, "DNS resolution failed for %s", host)
	}
	if len(addrs) == 0 {
		return nil, NewError(KindNetwork, "DNS resolution returned no addresses for %s", host)
	}
	return addrs, nil
}

func (n *HTTPNetwork) Get(ctx context.Context, url string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, "", WrapError(KindNetwork, err, "invalid request URL %s", url)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return 0, "", classifyNetError(err, "HTTPS GET %s", url)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, snippetLimit))
	if err != nil {
		return resp.StatusCode, "", classifyNetError(err, "reading body of %s", url)
	}
	return resp.StatusCode, string(body), nil
}

// classifyNetError distinguishes timeouts from other network failures.
func classifyNetError(err error, format string, args ...any) *Error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return WrapError(KindTimeout, err, format, args...)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return WrapError(KindTimeout, err, format, args...)
	}
	return WrapError(KindNetwork, err, format, args...)
}
