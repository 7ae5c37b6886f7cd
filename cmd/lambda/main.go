// cmd/lambda/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"bedrock-query-gateway/internal/app"
	"bedrock-query-gateway/internal/common/config"
	"bedrock-query-gateway/internal/common/logger"
	knowledgequery "bedrock-query-gateway/internal/gateway/knowledge-query"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}

	application, err := app.New(context.Background(), cfg, logger.NewZapAdapter(zapLog))
	if err != nil {
		zapLog.Fatal("gateway init failed", zap.Error(err))
	}

	handler, err := knowledgequery.NewEventHandler(application.Service)
	if err != nil {
		zapLog.Fatal("failed to create event handler", zap.Error(err))
	}

	// lambda.Start never returns; logs are flushed per invocation and
	// telemetry on SIGTERM.
	lambda.StartWithOptions(handler.WithFlush(zapLog.Sync).HandleEvent,
		lambda.WithEnableSIGTERM(func() {
			if err := application.Shutdown(context.Background()); err != nil {
				zapLog.Warn("Telemetry shutdown failed", zap.Error(err))
			}
			_ = zapLog.Sync()
		}),
	)
}
