// internal/gateway/knowledge-query/config.go
package knowledgequery

import "fmt"

// Prompt templates sent with every request. The placeholders are resolved by
// Bedrock, never by the gateway.
const (
	GenerationPromptTemplate = "Using the following search results, answer the question clearly and concisely:\n\n" +
		"$search_results$\n\n" +
		"Question: $query$"

	OrchestrationPromptTemplate = "Conversation so far:\n$conversation_history$\n\n" +
		"Search results:\n$search_results$\n\n" +
		"Instructions: $output_format_instructions$\n\n" +
		"Query: $query$"
)

// GenerationConfig is the fixed part of every generation request. It is built once
// at start-up and shared read-only by all calls.
type GenerationConfig struct {
	KnowledgeBaseID             string
	ModelARN                    string
	GenerationPromptTemplate    string
	OrchestrationPromptTemplate string
}

func NewGenerationConfig(knowledgeBaseID, modelARN string) *GenerationConfig {
	return &GenerationConfig{
		KnowledgeBaseID:             knowledgeBaseID,
		ModelARN:                    modelARN,
		GenerationPromptTemplate:    GenerationPromptTemplate,
		OrchestrationPromptTemplate: OrchestrationPromptTemplate,
	}
}

func (c *GenerationConfig) Validate() error {
	if c.KnowledgeBaseID == "" {
		return fmt.Errorf("knowledge_base_id is required")
	}
	if c.ModelARN == "" {
		return fmt.Errorf("model_arn is required")
	}
	if c.GenerationPromptTemplate == "" {
		return fmt.Errorf("generation prompt template is required")
	}
	if c.OrchestrationPromptTemplate == "" {
		return fmt.Errorf("orchestration prompt template is required")
	}
	return nil
}
