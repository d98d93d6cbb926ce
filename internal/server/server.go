package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/akolanti/ragrouter/internal/adapter/utils"
	"github.com/akolanti/ragrouter/internal/config"
	"github.com/akolanti/ragrouter/internal/handlers"
	"github.com/akolanti/ragrouter/internal/middleware"
	"github.com/akolanti/ragrouter/pkg/logger_i"
	"github.com/go-chi/chi/v5"
)

var (
	server  *http.Server
	_logger = logger_i.NewLogger("Server")
)

type Routes struct {
	Handler *handlers.Handler
	Guard   *middleware.Guard
	// MCP is mounted at /mcp when set.
	MCP http.Handler
}

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

func registerRoutes(r chi.Router, routes Routes) {
	h, g := routes.Handler, routes.Guard

	r.Get("/", g.Wrap(h.HealthHandler))
	r.Get("/models", g.Wrap(h.ModelsHandler))
	r.Post("/uploadfile", g.Wrap(h.UploadHandler))
	r.Get("/status/{id}", g.Wrap(h.StatusHandler))
	r.Post("/query", g.Wrap(h.QueryHandler))
	r.Post("/query/stream", g.Wrap(h.QueryStreamHandler))
	r.Post("/purge", g.Wrap(h.PurgeHandler))

	if routes.MCP != nil {
		r.Handle("/mcp", g.Handler(routes.MCP))
	}
}

func CreateServer(listenAddr string, routes Routes) {
	r := utils.GetRouter()
	registerRoutes(r.Router, routes)

	server = &http.Server{
		Addr:         listenAddr,
		Handler:      r.Router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	_logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		if server != nil {
			server.SetKeepAlivesEnabled(false)
			if err := server.Shutdown(ctx); err != nil {
				_logger.Error("Could not shutdown gracefully", "error", err)
			}
		}

		//drain workers before the stores they write to are closed
		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Shut down gracefully")
	case <-ctx.Done():
		_logger.Error("Force shut down")
	}
	close(shutdownParams.StopExecution)
}
