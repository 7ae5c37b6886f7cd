// internal/common/http/client.go
package http

import (
	"net/http"
	"time"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
)

const maxIdleConnsPerHost = 16

// NewClient builds the outbound transport handed to the AWS SDK. A zero timeout
// means requests are bounded only by their context.
//
// The SDK can only apply a custom CA bundle (AWS_CA_BUNDLE, ca_bundle) to a
// *BuildableClient, so no other client type is returned here.
func NewClient(timeout time.Duration) *awshttp.BuildableClient {
	return awshttp.NewBuildableClient().
		WithTimeout(timeout).
		WithTransportOptions(func(t *http.Transport) {
			t.MaxIdleConnsPerHost = maxIdleConnsPerHost
		})
}
