package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/ragrouter/internal/adapter/utils"
	"github.com/akolanti/ragrouter/internal/config"
	"github.com/akolanti/ragrouter/internal/metrics"
	"github.com/akolanti/ragrouter/pkg/logger_i"
	"golang.org/x/time/rate"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

// Guard runs every request through trace injection, bearer auth and the per-IP rate limiter.
type Guard struct {
	authToken string
	limiter   *IPRateLimiter
	logger    *logger_i.Logger
}

// NewGuard reads the auth token and rate-limit toggle from the runtime config.
// An empty token disables auth; a disabled limiter is left nil.
func NewGuard(cfg *config.Config) *Guard {
	g := &Guard{
		authToken: cfg.AuthToken,
		logger:    logger_i.NewLogger("middleware"),
	}
	if cfg.RateLimitEnabled {
		g.limiter = NewIPRateLimiter(rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT_PER_SECOND)
	}
	if cfg.AuthDisabled() {
		g.logger.Warn("AUTH_TOKEN is empty, requests are not authenticated")
	}
	return g
}

func (g *Guard) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		re := g.processRequest(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
		} else {
			next(rec, re.req)
		}

		metrics.HttpRequestsTotal.WithLabelValues(utils.GetRoutePattern(re.req), strconv.Itoa(rec.Status)).Inc()
	}
}

// Handler adapts Wrap for mounted http.Handlers such as the MCP endpoint.
func (g *Guard) Handler(next http.Handler) http.Handler {
	return g.Wrap(next.ServeHTTP)
}

func (g *Guard) processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = g.logger
	re = injectTrace(re)
	re.logger.Debug("New request received", "method", re.req.Method, "path", re.req.URL.Path)

	re = g.authenticate(re)
	if re.badRequest.isBadRequest {
		return re
	}
	return g.rateLimiter(re)
}
