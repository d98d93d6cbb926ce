package customHttpClient

import (
	"net/http"

	"github.com/akolanti/ragrouter/internal/config"
)

// one transport for every model and embedding client so connections to the same host are reused
var customTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
	ForceAttemptHTTP2:   true,
}

// NewHTTPClient returns a client on the shared pooled transport. Timeouts come from the request contexts.
func NewHTTPClient() *http.Client {
	return &http.Client{Transport: customTransport}
}
