// Package aws builds and caches the AWS service clients privmap uses.
package aws

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	lambdasvc "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"privmap/internal/logging"
)

var (
	clientCache  = make(map[string]interface{})
	cacheMutex   sync.RWMutex
	loadedConfig *aws.Config
	configMutex  sync.Mutex
)

// LoadConfig loads (and caches) the base AWS config with adaptive retry
// settings. Credentials resolve via the standard chain.
func LoadConfig(ctx context.Context) (aws.Config, error) {
	configMutex.Lock()
	defer configMutex.Unlock()

	if loadedConfig != nil {
		return *loadedConfig, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRetryMaxAttempts(5),
		config.WithRetryer(func() aws.Retryer {
			return retry.NewAdaptiveMode(func(o *retry.AdaptiveModeOptions) {
				o.StandardOptions = append(o.StandardOptions, func(so *retry.StandardOptions) {
					so.MaxBackoff = 30 * time.Second
				})
			})
		}),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	loadedConfig = &cfg
	return cfg, nil
}

// GetAWSClient returns a cached AWS client for a service
func GetAWSClient(ctx context.Context, service string) (interface{}, error) {
	cacheMutex.RLock()
	if client, ok := clientCache[service]; ok {
		cacheMutex.RUnlock()
		return client, nil
	}
	cacheMutex.RUnlock()

	cacheMutex.Lock()
	defer cacheMutex.Unlock()

	if client, ok := clientCache[service]; ok {
		return client, nil
	}

	cfg, err := LoadConfig(ctx)
	if err != nil {
		return nil, err
	}
	logging.LogDebug(fmt.Sprintf("Initializing %s client", service))

	var client interface{}
	switch service {
	case "iam":
		client = iam.NewFromConfig(cfg)
	case "ec2":
		client = ec2.NewFromConfig(cfg)
	case "lambda":
		client = lambdasvc.NewFromConfig(cfg)
	case "sts":
		client = sts.NewFromConfig(cfg)
	default:
		return nil, fmt.Errorf("unknown service: %s", service)
	}

	clientCache[service] = client
	return client, nil
}

// GetAccountID returns the current AWS account ID
func GetAccountID(ctx context.Context) (string, error) {
	if accountID := os.Getenv("AWS_ACCOUNT_ID"); accountID != "" {
		return accountID, nil
	}

	stsClient, err := GetAWSClient(ctx, "sts")
	if err != nil {
		return "", fmt.Errorf("failed to get STS client: %w", err)
	}

	stsSvc := stsClient.(*sts.Client)
	result, err := stsSvc.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("failed to get caller identity: %w", err)
	}

	if result == nil || result.Account == nil {
		return "", fmt.Errorf("empty account ID in response")
	}

	return aws.ToString(result.Account), nil
}
