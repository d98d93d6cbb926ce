// @title           RAG Router API
// @version         1.0
// @description     Upload documents, then ask questions answered from them by a routed LLM.
// @termsOfService  http://swagger.io/terms/

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/ragrouter/internal/config"
	"github.com/akolanti/ragrouter/internal/customHttpClient"
	"github.com/akolanti/ragrouter/internal/domain/jobModel"
	"github.com/akolanti/ragrouter/internal/handlers"
	"github.com/akolanti/ragrouter/internal/job"
	"github.com/akolanti/ragrouter/internal/mcpserver"
	"github.com/akolanti/ragrouter/internal/middleware"
	"github.com/akolanti/ragrouter/internal/rag"
	"github.com/akolanti/ragrouter/internal/rag/llm"
	"github.com/akolanti/ragrouter/internal/rag/router"
	"github.com/akolanti/ragrouter/internal/server"
	"github.com/akolanti/ragrouter/internal/worker"
	"github.com/akolanti/ragrouter/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	cfg := config.MustLoad()

	logger_i.Init(cfg.IsProd)
	var logger = logger_i.NewLogger("main")

	flag.StringVar(&listenAddr, "listen-addr", cfg.ListenAddr, "server listen address")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//model clients
	httpClient := customHttpClient.NewHTTPClient()
	embedder := buildEmbedder(serviceContext, cfg, httpClient)
	chatClient := buildChatClient(serviceContext, cfg, httpClient)
	capabilities := llm.Resolve(chatClient, cfg.StreamingEnabled)
	logger.Info("Model clients ready", "llm", cfg.LLMProvider, "embedding", cfg.EmbeddingProvider, "streaming", capabilities.CanStream())

	vectorStore, answerCache, closeVectorStore, err := buildVectorStore(cfg, embedder)
	if err != nil {
		logger.Error("Vector store could not be opened. Shutting down.", "store", cfg.VectorStore, "err", err)
		os.Exit(1)
	}

	modelRouter := router.New(router.Options{
		ProModel:      cfg.ProModel,
		StandardModel: cfg.StandardModel,
		Strategy:      cfg.RouterStrategy,
		Delegate:      chatClient,
		RouterModel:   cfg.RouterModel,
	})

	ragService := rag.NewService(rag.Dependencies{
		Store:   vectorStore,
		Cache:   answerCache,
		Router:  modelRouter,
		LLM:     capabilities,
		Chunker: buildChunker(),
	})

	//init buffered job channel
	jobChannel := make(chan jobModel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool)

	jobService := job.InitJobService(job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		JobStore:          buildJobStore(serviceContext, cfg),
	})
	logger.Info("Starting job service")

	//init worker pool
	worker.NewPool(jobService, ragService, stopWorkerChannel, &workerWaitGroup).Start()

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices: func() {
			closeVectorStore()
			closeExternalServices()
		},
	}
	routes := server.Routes{
		Handler: handlers.NewHandler(ragService, jobService, ""),
		Guard:   middleware.NewGuard(cfg),
		MCP:     mcpserver.NewHandler(ragService),
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr, routes)

	<-stopExecution
	logger.Info("Server stopped")
}
