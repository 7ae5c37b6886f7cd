// internal/gateway/knowledge-query/service.go
package knowledgequery

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "bedrock-query-gateway/internal/common/errors"
	"bedrock-query-gateway/internal/common/logger"
	"bedrock-query-gateway/internal/common/metrics"
	"bedrock-query-gateway/internal/common/observability"
)

const generateSpanName = "knowledge-query.generate"

type ServiceDependencies struct {
	Generator     Generator
	Logger        logger.Logger
	Observability *observability.Observability
}

// Service is the pipeline shared by every entry surface. It holds no
// per-request state and is safe for concurrent use.
type Service struct {
	config    *GenerationConfig
	generator Generator
	logger    logger.Logger
	errors    *apperrors.ErrorHandler
	obs       *observability.Observability
}

func NewService(deps ServiceDependencies, cfg *GenerationConfig) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("generation config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generation config: %w", err)
	}
	if deps.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}

	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	return &Service{
		config:    cfg,
		generator: deps.Generator,
		logger:    log,
		errors:    apperrors.NewErrorHandler(log),
		obs:       deps.Observability,
	}, nil
}

// Handle runs the pipeline and records request metrics for the surface.
func (s *Service) Handle(ctx context.Context, req Request) Envelope {
	startTime := time.Now()
	metrics.GatewayRequestsActive.WithLabelValues(req.Surface).Inc()
	defer metrics.GatewayRequestsActive.WithLabelValues(req.Surface).Dec()

	result := s.Process(ctx, req)

	metrics.GatewayRequests.WithLabelValues(req.Surface, result.Outcome()).Inc()
	metrics.GatewayRequestDuration.WithLabelValues(req.Surface).Observe(time.Since(startTime).Seconds())

	return result.Envelope()
}

// Process turns one raw request into a Result. It never panics and never
// returns an error; every failure is folded into the Result.
func (s *Service) Process(ctx context.Context, req Request) (result Result) {
	fields := map[string]interface{}{
		"requestId": req.RequestID,
		"surface":   req.Surface,
	}
	log := s.logger.With(fields)

	defer func() {
		if rec := recover(); rec != nil {
			result = Err(s.errors.Handle(fmt.Errorf("panic: %v", rec), fields))
		}
	}()

	log.Info("Received query request", map[string]interface{}{
		"bodyBytes": len(req.Body),
	})

	if req.TransportErr != nil {
		return Err(s.errors.Handle(apperrors.NewInvalidInputError(req.TransportErr), fields))
	}

	queryText, err := extractQueryText(req.Body)
	if err != nil {
		return Err(s.errors.Handle(err, fields))
	}

	log.Info("Dispatching generation request", map[string]interface{}{
		"knowledgeBaseId": s.config.KnowledgeBaseID,
		"modelArn":        s.config.ModelARN,
		"queryLength":     len(queryText),
	})

	generated, err := s.generate(ctx, queryText)
	if err != nil {
		return Err(s.errors.Handle(apperrors.NewGenerationFailedError(err), fields))
	}

	log.Info("Generation completed", map[string]interface{}{
		"sessionId":     generated.SessionID,
		"citationCount": generated.CitationCount,
		"answerLength":  len(*generated.Output.Text),
	})

	return Ok(*generated.Output.Text)
}

// generate performs the single generation call. Caller cancellation is not
// propagated: once dispatched, the call runs to completion.
func (s *Service) generate(ctx context.Context, queryText string) (*GenerationResult, error) {
	ctx = context.WithoutCancel(ctx)

	ctx, span := s.obs.StartSpan(ctx, generateSpanName,
		attribute.String("knowledge_base.id", s.config.KnowledgeBaseID),
		attribute.String("model.arn", s.config.ModelARN),
	)
	defer span.End()

	startTime := time.Now()
	generated, err := s.generator.Generate(ctx, queryText, *s.config)
	if err == nil && (generated == nil || generated.Output == nil || generated.Output.Text == nil) {
		err = ErrMissingOutputText
	}

	if err != nil {
		s.obs.RecordGeneration(ctx, time.Since(startTime), "error")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.obs.RecordGeneration(ctx, time.Since(startTime), "success")
	span.SetStatus(codes.Ok, "")
	return generated, nil
}
