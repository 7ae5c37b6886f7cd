// internal/gateway/knowledge-query/models.go
package knowledgequery

import (
	apperrors "bedrock-query-gateway/internal/common/errors"
	"bedrock-query-gateway/internal/common/metrics"
)

// Entry surfaces, used as log and metric labels.
const (
	SurfaceHTTP       = "http"
	SurfaceDirect     = "direct"
	SurfaceAPIGateway = "apigateway"
)

// Request is what a transport adapter hands to the pipeline.
type Request struct {
	Surface   string
	RequestID string
	Body      []byte
	// TransportErr is set when the adapter could not obtain the body at all.
	TransportErr error
}

// Envelope is the response shape for every outcome.
type Envelope struct {
	Output EnvelopeOutput `json:"output"`
}

type EnvelopeOutput struct {
	Text string `json:"text"`
}

func NewEnvelope(text string) Envelope {
	return Envelope{Output: EnvelopeOutput{Text: text}}
}

// GenerationResult is the part of the generation service response the gateway reads.
type GenerationResult struct {
	Output *GenerationOutput `json:"output"`

	// Observational only; never rendered.
	SessionID     string `json:"-"`
	CitationCount int    `json:"-"`
}

type GenerationOutput struct {
	Text *string `json:"text"`
}

func NewGenerationResult(text string) *GenerationResult {
	return &GenerationResult{Output: &GenerationOutput{Text: &text}}
}

// Result is the pipeline outcome: either an answer or a classified error.
type Result struct {
	text string
	err  *apperrors.StandardError
}

func Ok(text string) Result {
	return Result{text: text}
}

func Err(err *apperrors.StandardError) Result {
	return Result{err: err}
}

func (r Result) IsOk() bool {
	return r.err == nil
}

func (r Result) Text() string {
	return r.text
}

func (r Result) Error() *apperrors.StandardError {
	return r.err
}

// Envelope renders the result; this is the only place error kinds become text.
func (r Result) Envelope() Envelope {
	if r.err != nil {
		return NewEnvelope(r.err.UserMessage())
	}
	return NewEnvelope(r.text)
}

// Outcome returns the metric label for the result.
func (r Result) Outcome() string {
	if r.err == nil {
		return metrics.OutcomeOK
	}
	switch r.err.Code {
	case apperrors.ErrCodeInvalidInput:
		return metrics.OutcomeInvalidInput
	case apperrors.ErrCodeMissingQueryText:
		return metrics.OutcomeMissingQueryText
	default:
		return metrics.OutcomeGenerationFailed
	}
}
