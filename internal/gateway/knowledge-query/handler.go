// internal/gateway/knowledge-query/handler.go
package knowledgequery

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"bedrock-query-gateway/internal/common/logger"
)

const (
	RoutePattern    = "POST /mcp"
	RequestIDHeader = "X-Request-Id"

	defaultMaxBodyBytes int64 = 1 << 20
)

type HandlerOptions struct {
	Service      *Service
	Logger       logger.Logger
	MaxBodyBytes int64
}

// Handler serves the query pipeline over HTTP. Every outcome is answered with
// status 200 and a JSON envelope.
type Handler struct {
	service      *Service
	logger       logger.Logger
	maxBodyBytes int64
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	if opts.Service == nil {
		return nil, fmt.Errorf("service is required")
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}

	return &Handler{
		service:      opts.Service,
		logger:       opts.Logger.With(map[string]interface{}{"surface": SurfaceHTTP}),
		maxBodyBytes: opts.MaxBodyBytes,
	}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFromHeader(r)
	w.Header().Set(RequestIDHeader, requestID)

	body, readErr := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if readErr != nil {
		readErr = fmt.Errorf("read request body: %w", readErr)
	}

	envelope := h.service.Handle(r.Context(), Request{
		Surface:      SurfaceHTTP,
		RequestID:    requestID,
		Body:         body,
		TransportErr: readErr,
	})

	h.writeEnvelope(w, requestID, envelope)
}

func (h *Handler) writeEnvelope(w http.ResponseWriter, requestID string, envelope Envelope) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		h.logger.Error("Failed to encode response", map[string]interface{}{
			"requestId": requestID,
			"error":     err,
		})
		payload = []byte(`{"output":{"text":""}}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		h.logger.Warn("Failed to write response", map[string]interface{}{
			"requestId": requestID,
			"error":     err,
		})
	}
}

// requestIDFromHeader keeps a caller-supplied UUID and replaces anything else.
func requestIDFromHeader(r *http.Request) string {
	requestID := r.Header.Get(RequestIDHeader)
	if _, err := uuid.Parse(requestID); err != nil {
		return uuid.New().String()
	}
	return requestID
}
