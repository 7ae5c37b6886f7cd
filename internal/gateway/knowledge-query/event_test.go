package knowledgequery

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func createTestEventHandler(t *testing.T, generator Generator) *EventHandler {
	t.Helper()
	h, err := NewEventHandler(createTestService(t, generator))
	require.NoError(t, err)
	return h
}

func proxyEventJSON(t *testing.T, body string, base64Encoded bool) json.RawMessage {
	t.Helper()
	if base64Encoded {
		body = base64.StdEncoding.EncodeToString([]byte(body))
	}
	event := events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Path:            "/mcp",
		Body:            body,
		IsBase64Encoded: base64Encoded,
		RequestContext:  events.APIGatewayProxyRequestContext{RequestID: "apigw-1"},
	}
	raw, err := json.Marshal(event)
	require.NoError(t, err)
	return raw
}

// ==========================
// Direct Invocation Tests
// ==========================

func TestNewEventHandler(t *testing.T) {
	_, err := NewEventHandler(nil)
	assert.EqualError(t, err, "service is required")
}

func TestEventHandler_DirectInvocation(t *testing.T) {
	tests := []struct {
		name      string
		event     string
		setupMock func(*MockGenerator)
		expected  string
	}{
		{
			name:  "answer",
			event: `{"input":{"text":"What is 6 times 7?"}}`,
			setupMock: func(m *MockGenerator) {
				m.On("Generate", mock.Anything, "What is 6 times 7?", mock.Anything).Return(NewGenerationResult("42"), nil)
			},
			expected: "42",
		},
		{
			name:     "missing text",
			event:    `{"input":{"text":""}}`,
			expected: "Missing 'input.text' in request body.",
		},
		{
			name:     "non-object event",
			event:    `"plain string"`,
			expected: "Invalid JSON input. Please ensure your request body is properly formatted.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generator := &MockGenerator{}
			if tt.setupMock != nil {
				tt.setupMock(generator)
			}

			out, err := createTestEventHandler(t, generator).HandleEvent(context.Background(), json.RawMessage(tt.event))
			require.NoError(t, err)

			envelope, ok := out.(Envelope)
			require.True(t, ok, "direct invocations return the envelope itself")
			assert.Equal(t, tt.expected, envelope.Output.Text)
			generator.AssertExpectations(t)
		})
	}
}

func TestEventHandler_DirectEventWithRequestContextKey(t *testing.T) {
	generator := &MockGenerator{}
	generator.On("Generate", mock.Anything, "x", mock.Anything).Return(NewGenerationResult("answered"), nil).Once()

	out, err := createTestEventHandler(t, generator).HandleEvent(context.Background(),
		json.RawMessage(`{"requestContext":{},"input":{"text":"x"}}`))
	require.NoError(t, err)

	envelope, ok := out.(Envelope)
	require.True(t, ok, "event without body or request line is a direct invocation")
	assert.Equal(t, "answered", envelope.Output.Text)
	generator.AssertExpectations(t)
}

func TestEventHandler_FlushesAfterEveryInvocation(t *testing.T) {
	generator := &MockGenerator{}
	generator.On("Generate", mock.Anything, "q", mock.Anything).Return(nil, assert.AnError)

	flushes := 0
	handler := createTestEventHandler(t, generator).WithFlush(func() error {
		flushes++
		return assert.AnError
	})

	for _, event := range []string{`{"input":{"text":"q"}}`, `{}`, `{"requestContext":{},"body":"nope"}`} {
		_, err := handler.HandleEvent(context.Background(), json.RawMessage(event))
		require.NoError(t, err, "flush errors are not returned to the runtime")
	}
	assert.Equal(t, 3, flushes)
}

// ==========================
// API Gateway Proxy Tests
// ==========================

func TestEventHandler_ProxyEvent(t *testing.T) {
	for _, encoded := range []bool{false, true} {
		generator := &MockGenerator{}
		generator.On("Generate", mock.Anything, "proxied", mock.Anything).Return(NewGenerationResult("via gateway"), nil).Once()

		ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "lambda-req-1"})
		out, err := createTestEventHandler(t, generator).HandleEvent(ctx, proxyEventJSON(t, `{"input":{"text":"proxied"}}`, encoded))
		require.NoError(t, err)

		resp, ok := out.(events.APIGatewayProxyResponse)
		require.True(t, ok)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Headers["Content-Type"])
		assert.Equal(t, "lambda-req-1", resp.Headers[RequestIDHeader])
		assert.JSONEq(t, `{"output":{"text":"via gateway"}}`, resp.Body)
		generator.AssertExpectations(t)
	}
}

func TestEventHandler_ProxyEventFailures(t *testing.T) {
	tests := []struct {
		name     string
		event    json.RawMessage
		expected string
	}{
		{
			name:     "malformed body",
			event:    json.RawMessage(`{"requestContext":{"requestId":"r"},"body":"{not json"}`),
			expected: `{"output":{"text":"Invalid JSON input. Please ensure your request body is properly formatted."}}`,
		},
		{
			name:     "no body",
			event:    json.RawMessage(`{"requestContext":{"requestId":"r"},"httpMethod":"POST"}`),
			expected: `{"output":{"text":"Invalid JSON input. Please ensure your request body is properly formatted."}}`,
		},
		{
			name:     "bad base64",
			event:    json.RawMessage(`{"requestContext":{"requestId":"r"},"body":"%%%","isBase64Encoded":true}`),
			expected: `{"output":{"text":"Invalid JSON input. Please ensure your request body is properly formatted."}}`,
		},
		{
			name:     "missing text",
			event:    json.RawMessage(`{"requestContext":{"requestId":"r"},"body":"{\"input\":{}}"}`),
			expected: `{"output":{"text":"Missing 'input.text' in request body."}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generator := &MockGenerator{}
			out, err := createTestEventHandler(t, generator).HandleEvent(context.Background(), tt.event)
			require.NoError(t, err)

			resp, ok := out.(events.APIGatewayProxyResponse)
			require.True(t, ok)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.JSONEq(t, tt.expected, resp.Body)
			generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestParseProxyEvent(t *testing.T) {
	_, ok := parseProxyEvent(json.RawMessage(`{"input":{"text":"q"}}`))
	assert.False(t, ok)

	_, ok = parseProxyEvent(json.RawMessage(`{"requestContext":null,"body":"{}"}`))
	assert.False(t, ok)

	_, ok = parseProxyEvent(json.RawMessage(`[1]`))
	assert.False(t, ok)

	_, ok = parseProxyEvent(json.RawMessage(`{"requestContext":{},"input":{"text":"x"}}`))
	assert.False(t, ok, "requestContext alone does not make a proxy event")

	_, ok = parseProxyEvent(json.RawMessage(`{"version":"2.0","routeKey":"POST /mcp","requestContext":{"http":{"method":"POST"}}}`))
	assert.True(t, ok)

	proxy, ok := parseProxyEvent(json.RawMessage(`{"requestContext":{},"body":"{}"}`))
	require.True(t, ok)
	body, err := proxy.decodeBody()
	require.NoError(t, err)
	assert.Equal(t, "{}", string(body))
}

// ==========================
// Surface Equivalence Tests
// ==========================

func TestSurfacesProduceIdenticalEnvelopes(t *testing.T) {
	bodies := []string{
		`{"input":{"text":"What is 6 times 7?"}}`,
		`{"input":{}}`,
		`{"input":{"text":42}}`,
		`not json`,
		`{"input":{"text":"fails"}}`,
	}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			generator := &MockGenerator{}
			generator.On("Generate", mock.Anything, "What is 6 times 7?", mock.Anything).Return(NewGenerationResult("42"), nil)
			generator.On("Generate", mock.Anything, "fails", mock.Anything).Return(nil, assert.AnError)

			rec := postQuery(t, createTestHandler(t, generator, 0), body, nil)
			var fromHTTP Envelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fromHTTP))

			eventHandler := createTestEventHandler(t, generator)

			proxyOut, err := eventHandler.HandleEvent(context.Background(), proxyEventJSON(t, body, false))
			require.NoError(t, err)
			var fromProxy Envelope
			require.NoError(t, json.Unmarshal([]byte(proxyOut.(events.APIGatewayProxyResponse).Body), &fromProxy))

			assert.Equal(t, fromHTTP, fromProxy)

			// A direct invocation can only carry well-formed JSON.
			if json.Valid([]byte(body)) {
				directOut, err := eventHandler.HandleEvent(context.Background(), json.RawMessage(body))
				require.NoError(t, err)
				assert.Equal(t, fromHTTP, directOut)
			}
		})
	}
}
