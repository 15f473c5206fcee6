package awsconfig

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/require"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/config"
)

func TestLoadAppliesOverrides(t *testing.T) {
	cfg, err := Load(context.Background(), config.AWSConfig{
		Region:    "eu-west-1",
		AccessKey: "AKIDEXAMPLE",
		SecretKey: "secret",
		Endpoint:  "http://localhost:4566",
	})
	require.NoError(t, err)

	require.Equal(t, "eu-west-1", cfg.Region)
	require.Equal(t, 1, cfg.RetryMaxAttempts)
	require.NotNil(t, cfg.BaseEndpoint)
	require.Equal(t, "http://localhost:4566", *cfg.BaseEndpoint)

	creds, err := cfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	require.Equal(t, "AKIDEXAMPLE", creds.AccessKeyID)
}

func TestErrorCode(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"}

	require.Equal(t, "ThrottlingException", ErrorCode(fmt.Errorf("wrapped: %w", apiErr)))
	require.Equal(t, "", ErrorCode(errors.New("dial tcp: refused")))
	require.Equal(t, "", ErrorCode(nil))
}
