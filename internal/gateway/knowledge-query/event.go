// internal/gateway/knowledge-query/event.go
package knowledgequery

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
)

// EventHandler serves the query pipeline as a Lambda function. A plain event is
// the payload itself and gets the envelope back. An API Gateway proxy event is
// unwrapped and answered with a proxy response carrying the envelope.
type EventHandler struct {
	service *Service
	flush   func() error
}

func NewEventHandler(service *Service) (*EventHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("service is required")
	}
	return &EventHandler{service: service}, nil
}

// WithFlush registers a function run after every invocation. The Lambda
// runtime may freeze the process as soon as a response is returned, so
// buffered output is flushed before that.
func (h *EventHandler) WithFlush(flush func() error) *EventHandler {
	h.flush = flush
	return h
}

// HandleEvent never returns an error; failures are rendered into the envelope.
func (h *EventHandler) HandleEvent(ctx context.Context, event json.RawMessage) (interface{}, error) {
	if h.flush != nil {
		defer func() { _ = h.flush() }()
	}

	requestID := requestIDFromContext(ctx)

	if proxy, ok := parseProxyEvent(event); ok {
		body, decodeErr := proxy.decodeBody()
		envelope := h.service.Handle(ctx, Request{
			Surface:      SurfaceAPIGateway,
			RequestID:    requestID,
			Body:         body,
			TransportErr: decodeErr,
		})
		return proxyResponse(requestID, envelope), nil
	}

	return h.service.Handle(ctx, Request{
		Surface:   SurfaceDirect,
		RequestID: requestID,
		Body:      event,
	}), nil
}

type proxyEvent struct {
	RequestContext  json.RawMessage `json:"requestContext"`
	HTTPMethod      string          `json:"httpMethod"` // REST API (v1)
	RouteKey        string          `json:"routeKey"`   // HTTP API (v2)
	Version         string          `json:"version"`
	Body            *string         `json:"body"`
	IsBase64Encoded bool            `json:"isBase64Encoded"`
}

// parseProxyEvent recognises API Gateway REST and HTTP API proxy events. A
// requestContext member alone is not enough: the event must also carry a body
// or one of the request-line members API Gateway always sets.
func parseProxyEvent(event json.RawMessage) (*proxyEvent, bool) {
	trimmed := bytes.TrimSpace(event)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}

	var proxy proxyEvent
	if err := json.Unmarshal(trimmed, &proxy); err != nil {
		return nil, false
	}
	if len(proxy.RequestContext) == 0 || bytes.Equal(proxy.RequestContext, []byte("null")) {
		return nil, false
	}
	if proxy.Body == nil && proxy.HTTPMethod == "" && proxy.RouteKey == "" && proxy.Version == "" {
		return nil, false
	}
	return &proxy, true
}

func (p *proxyEvent) decodeBody() ([]byte, error) {
	if p.Body == nil {
		return nil, nil
	}
	if !p.IsBase64Encoded {
		return []byte(*p.Body), nil
	}
	body, err := base64.StdEncoding.DecodeString(*p.Body)
	if err != nil {
		return nil, fmt.Errorf("decode base64 body: %w", err)
	}
	return body, nil
}

func proxyResponse(requestID string, envelope Envelope) events.APIGatewayProxyResponse {
	payload, err := json.Marshal(envelope)
	if err != nil {
		payload = []byte(`{"output":{"text":""}}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type":  "application/json",
			RequestIDHeader: requestID,
		},
		Body: string(payload),
	}
}

func requestIDFromContext(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.New().String()
}
