package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/mncare/medicaid-assistant/internal/config"
	"github.com/mncare/medicaid-assistant/internal/core/ports"
	"github.com/mncare/medicaid-assistant/internal/core/usecase"
	"github.com/mncare/medicaid-assistant/internal/infrastructure/chunking"
	"github.com/mncare/medicaid-assistant/internal/infrastructure/llm/ollama"
	"github.com/mncare/medicaid-assistant/internal/infrastructure/loader"
	"github.com/mncare/medicaid-assistant/internal/infrastructure/queue/nats"
	"github.com/mncare/medicaid-assistant/internal/infrastructure/repository/postgres"
	"github.com/mncare/medicaid-assistant/internal/infrastructure/resilience"
	"github.com/mncare/medicaid-assistant/internal/infrastructure/vector/qdrant"
)

// App wires configuration into ready-to-serve components. The api binary
// uses Assistant/Admin/Registry, the worker uses Queue/Processor; both share
// one wiring path so the stacks cannot drift apart.
type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue     *nats.Queue
	Registry  ports.DocumentRegistry
	Assistant ports.Assistant
	Admin     ports.DocumentAdmin
	Processor ports.DocumentProcessor

	// Expander is exposed so binaries can attach observation hooks.
	Expander *usecase.QueryExpander

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	registry := postgres.NewDocumentRegistry(db)
	if err := registry.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, logger, nats.Options{
		Executor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.NewWithOptions(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, ollama.Options{
		Executor: executor,
	})
	generator := ollama.NewGenerator(ollamaClient)
	embedder := ollama.NewEmbedder(ollamaClient)

	vectorDB := qdrant.NewWithOptions(cfg.QdrantURL, cfg.QdrantCollection, qdrant.Options{
		Executor: executor,
	})

	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	docLoader := loader.New()

	embedLimit := rate.Inf
	if cfg.EmbedRatePerSecond > 0 {
		embedLimit = rate.Limit(cfg.EmbedRatePerSecond)
	}
	embedLimiter := rate.NewLimiter(embedLimit, 1)

	expander := usecase.NewQueryExpander(generator, logger, cfg.RAGMaxRewrites, cfg.RAGHistoryWindow)
	retriever := usecase.NewRetriever(embedder, vectorDB, logger, cfg.RAGTopK, cfg.RAGMinScore)
	assistant := usecase.NewAnswerUseCase(expander, retriever, generator, logger)
	admin := usecase.NewRegisterDocumentUseCase(registry, vectorDB, queue)
	processor := usecase.NewProcessDocumentUseCase(registry, docLoader, chunker, embedder, vectorDB, embedLimiter)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Queue:     queue,
		Registry:  registry,
		Assistant: assistant,
		Admin:     admin,
		Processor: processor,
		Expander:  expander,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
