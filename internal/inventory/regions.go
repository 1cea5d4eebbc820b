package inventory

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"

	"privmap/internal/logging"
)

// RegionDescriber is the slice of the EC2 client used for region discovery.
type RegionDescriber interface {
	DescribeRegions(ctx context.Context, params *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error)
}

// DiscoverEnabledRegions discovers all enabled AWS regions for the account.
// Falls back to the given default region when discovery fails.
func DiscoverEnabledRegions(ctx context.Context, ec2Client RegionDescriber, defaultRegion string) ([]string, error) {
	if defaultRegion == "" {
		defaultRegion = "us-east-1"
	}

	regionsOutput, err := ec2Client.DescribeRegions(ctx, &ec2.DescribeRegionsInput{
		AllRegions: awssdk.Bool(false),
	})
	if err != nil {
		logging.LogWarn("Failed to discover regions, falling back to default", map[string]interface{}{
			"default": defaultRegion,
			"error":   err.Error(),
		})
		logging.GetMetrics().RecordAPICall("DescribeRegions", false, err)
		return []string{defaultRegion}, nil
	}
	logging.GetMetrics().RecordAPICall("DescribeRegions", true, nil)

	if regionsOutput == nil || len(regionsOutput.Regions) == 0 {
		return []string{defaultRegion}, nil
	}

	regions := make([]string, 0, len(regionsOutput.Regions))
	for _, region := range regionsOutput.Regions {
		if region.RegionName == nil {
			continue
		}
		regions = append(regions, awssdk.ToString(region.RegionName))
	}
	if len(regions) == 0 {
		return nil, fmt.Errorf("region discovery returned no usable region names")
	}

	logging.LogDebug(fmt.Sprintf("Discovered %d enabled regions", len(regions)))
	return regions, nil
}
