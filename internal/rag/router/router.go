package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/akolanti/ragrouter/internal/config"
	"github.com/akolanti/ragrouter/internal/domain/commonModels"
	"github.com/akolanti/ragrouter/internal/metrics"
	"github.com/akolanti/ragrouter/internal/rag/llm"
	"github.com/akolanti/ragrouter/pkg/logger_i"
)

var logger = logger_i.NewLogger("model_router")

type Overrides struct {
	Model     string
	AgentMode bool
	Tier      string
}

type Options struct {
	ProModel      string
	StandardModel string
	Strategy      string
	// Delegate and RouterModel are only used by the delegate strategy.
	Delegate    llm.SyncClient
	RouterModel string
}

type Router struct {
	proModel      string
	standardModel string
	strategy      string
	delegate      llm.SyncClient
	routerModel   string
}

func New(opts Options) *Router {
	r := &Router{
		proModel:      opts.ProModel,
		standardModel: opts.StandardModel,
		strategy:      opts.Strategy,
		delegate:      opts.Delegate,
		routerModel:   opts.RouterModel,
	}
	if r.proModel == "" {
		r.proModel = config.ProTierModel
	}
	if r.standardModel == "" {
		r.standardModel = config.StandardTierModel
	}
	if r.strategy == "" {
		r.strategy = config.RouterStrategyHeuristic
	}
	if r.routerModel == "" {
		r.routerModel = config.RouterModelName
	}
	return r
}

// ChooseModel resolves the model for one query: explicit model, then agent mode, then tier.
func (r *Router) ChooseModel(ctx context.Context, query string, o Overrides) string {
	if explicit := strings.TrimSpace(o.Model); explicit != "" {
		if m, ok := lookup(explicit); ok {
			return m.Id
		}
		return explicit
	}

	if o.AgentMode {
		if r.strategy == config.RouterStrategyDelegate {
			return r.delegated(ctx, query)
		}
		return Heuristic(query)
	}

	if strings.EqualFold(strings.TrimSpace(o.Tier), commonModels.ProTier) {
		return r.proModel
	}
	return r.standardModel
}

func (r *Router) Models() []commonModels.ModelDescriptor {
	return Catalog()
}

func (r *Router) delegated(ctx context.Context, query string) string {
	log := logger.FromContext(ctx)
	if r.delegate == nil {
		return r.fallback(log, "no router client configured", nil)
	}

	answer, err := r.delegate.Invoke(ctx, r.routerModel, delegatePrompt(query))
	if err != nil {
		return r.fallback(log, "router model call failed", err)
	}

	choice, ok := parseChoice(answer)
	if !ok {
		return r.fallback(log, "router model answer is not a catalog model", fmt.Errorf("answer %q", truncate(answer, 80)))
	}
	log.Debug("delegated routing", "model", choice)
	return choice
}

func (r *Router) fallback(log *logger_i.Logger, reason string, err error) string {
	metrics.IncrementRouterFallback()
	log.Warn("router fallback", "reason", reason, "error", err, "model", DefaultModel)
	return DefaultModel
}

func delegatePrompt(query string) string {
	var b strings.Builder
	b.WriteString("You route user questions to the best model. Available models:\n")
	for _, m := range catalog {
		fmt.Fprintf(&b, "- %s (%s, %s): %s\n", m.Id, m.Language, m.ParameterCount, m.Description)
	}
	b.WriteString("\nReply with the model id only, on a single line.\n\nQuestion: ")
	b.WriteString(query)
	return b.String()
}

// parseChoice takes the first non-empty line, strips decoration and checks it against the catalog.
func parseChoice(answer string) (string, bool) {
	for _, line := range strings.Split(answer, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.Trim(line, "\"'`*.,;:!? \t")
		m, ok := lookup(line)
		if !ok {
			return "", false
		}
		return m.Id, true
	}
	return "", false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
