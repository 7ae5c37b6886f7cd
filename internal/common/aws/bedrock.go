// internal/common/aws/bedrock.go
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
)

// BedrockClient is a thin wrapper around the Bedrock Agent Runtime client.
type BedrockClient struct {
	client *bedrockagentruntime.Client
}

// NewBedrockClient loads the default AWS credential chain for region. A nil httpClient
// keeps the SDK's default transport.
func NewBedrockClient(ctx context.Context, region string, httpClient config.HTTPClient) (*BedrockClient, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if httpClient != nil {
		opts = append(opts, config.WithHTTPClient(httpClient))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &BedrockClient{client: bedrockagentruntime.NewFromConfig(cfg)}, nil
}

func (b *BedrockClient) RetrieveAndGenerate(ctx context.Context, input *bedrockagentruntime.RetrieveAndGenerateInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.RetrieveAndGenerateOutput, error) {
	return b.client.RetrieveAndGenerate(ctx, input, optFns...)
}
