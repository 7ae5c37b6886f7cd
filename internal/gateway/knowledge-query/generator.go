// internal/gateway/knowledge-query/generator.go
package knowledgequery

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
)

var ErrMissingOutputText = errors.New("generation response has no output.text")

// Generator performs one retrieval-augmented generation call.
type Generator interface {
	Generate(ctx context.Context, queryText string, cfg GenerationConfig) (*GenerationResult, error)
}

// RetrieveAndGenerateAPI is the slice of the Bedrock agent runtime client the gateway uses.
type RetrieveAndGenerateAPI interface {
	RetrieveAndGenerate(ctx context.Context, input *bedrockagentruntime.RetrieveAndGenerateInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.RetrieveAndGenerateOutput, error)
}

type BedrockGenerator struct {
	api RetrieveAndGenerateAPI
}

func NewBedrockGenerator(api RetrieveAndGenerateAPI) *BedrockGenerator {
	return &BedrockGenerator{api: api}
}

// Generate issues a single RetrieveAndGenerate call without a session id, so
// Bedrock starts a fresh session for every query.
func (g *BedrockGenerator) Generate(ctx context.Context, queryText string, cfg GenerationConfig) (*GenerationResult, error) {
	out, err := g.api.RetrieveAndGenerate(ctx, BuildRetrieveAndGenerateInput(queryText, cfg))
	if err != nil {
		return nil, err
	}
	if out == nil || out.Output == nil || out.Output.Text == nil {
		return nil, ErrMissingOutputText
	}

	result := NewGenerationResult(aws.ToString(out.Output.Text))
	result.SessionID = aws.ToString(out.SessionId)
	result.CitationCount = len(out.Citations)
	return result, nil
}

func BuildRetrieveAndGenerateInput(queryText string, cfg GenerationConfig) *bedrockagentruntime.RetrieveAndGenerateInput {
	return &bedrockagentruntime.RetrieveAndGenerateInput{
		Input: &types.RetrieveAndGenerateInput{
			Text: aws.String(queryText),
		},
		RetrieveAndGenerateConfiguration: &types.RetrieveAndGenerateConfiguration{
			Type: types.RetrieveAndGenerateTypeKnowledgeBase,
			KnowledgeBaseConfiguration: &types.KnowledgeBaseRetrieveAndGenerateConfiguration{
				KnowledgeBaseId: aws.String(cfg.KnowledgeBaseID),
				ModelArn:        aws.String(cfg.ModelARN),
				GenerationConfiguration: &types.GenerationConfiguration{
					PromptTemplate: &types.PromptTemplate{
						TextPromptTemplate: aws.String(cfg.GenerationPromptTemplate),
					},
				},
				OrchestrationConfiguration: &types.OrchestrationConfiguration{
					PromptTemplate: &types.PromptTemplate{
						TextPromptTemplate: aws.String(cfg.OrchestrationPromptTemplate),
					},
				},
			},
		},
	}
}
