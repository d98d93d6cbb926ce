package mcpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/akolanti/ragrouter/internal/domain/commonModels"
	"github.com/akolanti/ragrouter/internal/domain/ragErrors"
	"github.com/akolanti/ragrouter/internal/rag"
	"github.com/akolanti/ragrouter/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "ragrouter"
	serverVersion = "1.0.0"

	QueryToolName  = "query_documents"
	ModelsToolName = "list_models"
)

var logger = logger_i.NewLogger("MCP")

type QueryInput struct {
	Query     string `json:"query" jsonschema:"the question to answer from the user's documents"`
	UserId    string `json:"user_id" jsonschema:"owner whose documents are searched"`
	Version   string `json:"version,omitempty" jsonschema:"Pro selects the higher-capacity model"`
	Model     string `json:"model,omitempty" jsonschema:"explicit model id or short name"`
	AgentMode bool   `json:"agent_mode,omitempty" jsonschema:"let the router pick a model from the query"`
}

type QueryOutput struct {
	ModelUsed string `json:"model_used"`
	Response  string `json:"response"`
}

type ModelsOutput struct {
	Models []commonModels.ModelDescriptor `json:"models"`
}

// NewServer registers the query and catalog tools against the RAG service.
func NewServer(ragService rag.Service) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        QueryToolName,
		Description: "Answer a question from the documents a user has uploaded.",
	}, queryTool(ragService))

	mcp.AddTool(s, &mcp.Tool{
		Name:        ModelsToolName,
		Description: "List the models the router can choose from.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, ModelsOutput, error) {
		return nil, ModelsOutput{Models: ragService.Models()}, nil
	})

	return s
}

func queryTool(ragService rag.Service) mcp.ToolHandlerFor[QueryInput, QueryOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, in QueryInput) (*mcp.CallToolResult, QueryOutput, error) {
		res, err := ragService.Query(ctx, commonModels.QueryRequest{
			Query:     in.Query,
			OwnerId:   in.UserId,
			Tier:      in.Version,
			Model:     in.Model,
			AgentMode: in.AgentMode,
		})
		if err != nil {
			logger.FromContext(ctx).Warn("query tool failed", "error", err)
			return nil, QueryOutput{}, toolError(err)
		}
		return nil, QueryOutput{ModelUsed: res.ModelUsed, Response: res.Response}, nil
	}
}

// toolError keeps upstream detail out of the tool result.
func toolError(err error) error {
	de, ok := ragErrors.As(err)
	if !ok {
		return errors.New("internal error")
	}
	if de.Hint != "" {
		return errors.New(de.Message + " (" + de.Hint + ")")
	}
	return errors.New(de.Message)
}

// NewHandler serves the tools over streamable HTTP.
func NewHandler(ragService rag.Service) http.Handler {
	s := NewServer(ragService)
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s }, nil)
}
