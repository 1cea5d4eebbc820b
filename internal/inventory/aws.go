package inventory

import (
	"context"
	"sync"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"

	"privmap/internal/domain"
	"privmap/internal/logging"
)

const maxConcurrentRegions = 10

// LambdaClientFactory builds a region-scoped Lambda client. The returned
// value only needs to satisfy the ListFunctions paginator contract, which
// keeps tests free of real clients.
type LambdaClientFactory func(region string) lambda.ListFunctionsAPIClient

// ConfigClientFactory returns a factory that clones the given AWS config per
// region.
func ConfigClientFactory(cfg awssdk.Config) LambdaClientFactory {
	return func(region string) lambda.ListFunctionsAPIClient {
		regionCfg := cfg
		regionCfg.Region = region
		return lambda.NewFromConfig(regionCfg)
	}
}

// AWSFunctionSource lists Lambda functions across every region concurrently
// and merges them into one collection. Regions that fail to list are logged
// and skipped; the merged result is best-effort since each function record is
// only used for per-function authorization checks downstream.
type AWSFunctionSource struct {
	regions   []string
	pageSize  int32
	newClient LambdaClientFactory
}

// NewAWSFunctionSource builds a function source over the given regions.
func NewAWSFunctionSource(regions []string, pageSize int32, newClient LambdaClientFactory) *AWSFunctionSource {
	if pageSize <= 0 {
		pageSize = 25
	}
	return &AWSFunctionSource{
		regions:   regions,
		pageSize:  pageSize,
		newClient: newClient,
	}
}

// ListFunctions implements FunctionSource.
func (s *AWSFunctionSource) ListFunctions(ctx context.Context) ([]domain.FunctionInfo, error) {
	metricsInst := logging.GetMetrics()

	type regionResult struct {
		region    string
		functions []domain.FunctionInfo
		err       error
	}

	resultChan := make(chan regionResult, len(s.regions))
	var wg sync.WaitGroup

	semaphore := make(chan struct{}, maxConcurrentRegions)

	for _, region := range s.regions {
		wg.Add(1)
		go func(regionName string) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			client := s.newClient(regionName)
			paginator := lambda.NewListFunctionsPaginator(client, &lambda.ListFunctionsInput{
				MaxItems: awssdk.Int32(s.pageSize),
			})

			var regionFunctions []domain.FunctionInfo
			for paginator.HasMorePages() {
				page, err := paginator.NextPage(ctx)
				if err != nil {
					metricsInst.RecordAPICall("ListFunctions", false, err)
					metricsInst.RecordRegionOperation(regionName, false, 0, err)
					logging.LogRegionOperation(regionName, "list_lambda_functions", false, 0, err)
					resultChan <- regionResult{region: regionName, err: err}
					return
				}
				metricsInst.RecordAPICall("ListFunctions", true, nil)

				for _, fn := range page.Functions {
					if fn.FunctionArn == nil || fn.Role == nil {
						continue
					}
					regionFunctions = append(regionFunctions, domain.FunctionInfo{
						FunctionArn: awssdk.ToString(fn.FunctionArn),
						RoleArn:     awssdk.ToString(fn.Role),
						Region:      regionName,
					})
				}
			}

			metricsInst.RecordRegionOperation(regionName, true, len(regionFunctions), nil)
			logging.LogRegionOperation(regionName, "list_lambda_functions", true, len(regionFunctions), nil)
			resultChan <- regionResult{region: regionName, functions: regionFunctions}
		}(region)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	functions := make([]domain.FunctionInfo, 0)
	regionsFailed := 0
	for result := range resultChan {
		if result.err != nil {
			regionsFailed++
			continue
		}
		functions = append(functions, result.functions...)
	}

	logging.LogInfo("Lambda function inventory collected", map[string]interface{}{
		"regions":        len(s.regions),
		"regions_failed": regionsFailed,
		"functions":      len(functions),
	})

	return functions, nil
}
