package awsconfig

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// ForEndpoint returns a config pointed at a fixed endpoint with throwaway
// credentials, for tests against httptest servers or LocalStack. Not for
// production wiring: use Load, which resolves real credentials and region.
func ForEndpoint(endpoint string) aws.Config {
	return aws.Config{
		Region:           "us-east-1",
		Credentials:      credentials.NewStaticCredentialsProvider("test", "test", ""),
		BaseEndpoint:     aws.String(endpoint),
		RetryMaxAttempts: 1,
	}
}
