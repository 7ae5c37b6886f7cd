// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"

	"bedrock-query-gateway/internal/common/aws"
	"bedrock-query-gateway/internal/common/config"
	"bedrock-query-gateway/internal/common/http"
	"bedrock-query-gateway/internal/common/logger"
	"bedrock-query-gateway/internal/common/observability"
	knowledgequery "bedrock-query-gateway/internal/gateway/knowledge-query"
)

// App holds the process-wide components shared by the HTTP server and the
// Lambda entry point.
type App struct {
	Config  *config.Config
	Logger  logger.Logger
	Service *knowledgequery.Service

	obs     *observability.Observability
	tracing *observability.Tracing
}

// New builds the query pipeline from cfg. The Bedrock client resolves
// credentials lazily, so New does not touch the network.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	tracing, err := observability.NewTracing(cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	obs, err := observability.New(cfg.Tracing.ServiceName)
	if err != nil {
		_ = tracing.Shutdown(ctx)
		return nil, fmt.Errorf("init observability: %w", err)
	}
	obs = obs.WithTracerProvider(tracing.TracerProvider(), cfg.Tracing.ServiceName)

	httpClient := http.NewClient(config.GetDuration(cfg.Bedrock.HTTPTimeout))
	bedrock, err := aws.NewBedrockClient(ctx, cfg.Bedrock.Region, httpClient)
	if err != nil {
		_ = errors.Join(obs.Shutdown(ctx), tracing.Shutdown(ctx))
		return nil, fmt.Errorf("init bedrock client: %w", err)
	}

	service, err := knowledgequery.NewService(knowledgequery.ServiceDependencies{
		Generator:     knowledgequery.NewBedrockGenerator(bedrock),
		Logger:        log,
		Observability: obs,
	}, knowledgequery.NewGenerationConfig(cfg.Bedrock.KnowledgeBaseID, cfg.Bedrock.ModelARN))
	if err != nil {
		_ = errors.Join(obs.Shutdown(ctx), tracing.Shutdown(ctx))
		return nil, fmt.Errorf("init query service: %w", err)
	}

	log.Info("Query gateway initialized", map[string]interface{}{
		"region":          cfg.Bedrock.Region,
		"knowledgeBaseId": cfg.Bedrock.KnowledgeBaseID,
		"modelArn":        cfg.Bedrock.ModelARN,
		"httpTimeout":     httpClient.GetTimeout().String(),
		"tracing":         cfg.Tracing.Enabled,
	})

	return &App{
		Config:  cfg,
		Logger:  log,
		Service: service,
		obs:     obs,
		tracing: tracing,
	}, nil
}

// Shutdown flushes telemetry.
func (a *App) Shutdown(ctx context.Context) error {
	return errors.Join(a.obs.Shutdown(ctx), a.tracing.Shutdown(ctx))
}
