package inventory

import (
	"context"
	"errors"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

type fakeRegionDescriber struct {
	regions []string
	err     error
}

func (f *fakeRegionDescriber) DescribeRegions(ctx context.Context, params *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := &ec2.DescribeRegionsOutput{}
	for _, region := range f.regions {
		out.Regions = append(out.Regions, ec2types.Region{RegionName: awssdk.String(region)})
	}
	return out, nil
}

func TestDiscoverEnabledRegions(t *testing.T) {
	client := &fakeRegionDescriber{regions: []string{"us-east-1", "eu-west-1"}}

	regions, err := DiscoverEnabledRegions(context.Background(), client, "us-east-1")
	if err != nil {
		t.Fatalf("DiscoverEnabledRegions failed: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(regions))
	}
}

func TestDiscoverEnabledRegionsFallsBackToDefault(t *testing.T) {
	client := &fakeRegionDescriber{err: errors.New("UnauthorizedOperation")}

	regions, err := DiscoverEnabledRegions(context.Background(), client, "us-west-2")
	if err != nil {
		t.Fatalf("discovery failure should fall back, not error: %v", err)
	}
	if len(regions) != 1 || regions[0] != "us-west-2" {
		t.Fatalf("expected fallback to default region, got %v", regions)
	}
}
