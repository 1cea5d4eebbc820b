// Package app wires the AWS clients, inventory, and edge checkers into a
// single discovery run.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	iamsvc "github.com/aws/aws-sdk-go-v2/service/iam"

	"privmap/internal/aws"
	"privmap/internal/config"
	"privmap/internal/graphing"
	"privmap/internal/identity"
	"privmap/internal/inventory"
	"privmap/internal/logging"
	"privmap/internal/policy"
	"privmap/internal/report"
)

// Options controls one discovery run.
type Options struct {
	ConfigPath string
	Offline    bool
	Debug      bool
	JSON       bool
}

// Run executes a full discovery pass: enumerate principals, collect the
// Lambda function inventory, run the edge checkers, and render the report.
func Run(ctx context.Context, opts Options) error {
	if opts.Debug {
		logging.SetLogLevel(logging.LogLevelDebug)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	// Preflight: verify AWS credentials work before doing anything else.
	accountID, err := aws.GetAccountID(ctx)
	if err != nil {
		return fmt.Errorf("AWS credential check failed (ensure valid credentials via env vars, IAM role, or SSO): %w", err)
	}
	logging.LogInfo("Mapping account", map[string]interface{}{"account_id": accountID})

	iamClient, err := aws.GetAWSClient(ctx, "iam")
	if err != nil {
		return fmt.Errorf("failed to initialize iam client: %w", err)
	}

	nodes, err := identity.CollectNodes(ctx, iamClient.(*iamsvc.Client))
	if err != nil {
		return fmt.Errorf("failed to collect principals: %w", err)
	}

	var functions inventory.FunctionSource
	if opts.Offline {
		logging.LogInfo("Offline mode: skipping Lambda function inventory")
	} else {
		functions, err = buildFunctionSource(ctx, cfg)
		if err != nil {
			return err
		}
	}

	var sink io.Writer = os.Stdout
	if opts.JSON {
		sink = os.Stderr
	}

	cc := graphing.CheckerContext{
		Evaluator: policy.NewLocalEvaluator(),
		Functions: functions,
		Output:    sink,
		Debug:     opts.Debug,
	}

	checkers := make([]graphing.EdgeChecker, 0, 2)
	if cfg.CheckerEnabled("lambda") {
		checkers = append(checkers, graphing.NewLambdaChecker())
	}
	if cfg.CheckerEnabled("sts") {
		checkers = append(checkers, graphing.NewSTSChecker())
	}

	edges := graphing.GenerateEdges(ctx, nodes, checkers, cc)

	if opts.JSON {
		if err := report.WriteJSON(os.Stdout, edges); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	} else {
		report.WriteText(os.Stdout, nodes, edges)
	}

	logging.GetMetrics().LogSummary()
	return nil
}

func buildFunctionSource(ctx context.Context, cfg *config.ScanConfig) (inventory.FunctionSource, error) {
	regions := cfg.Regions
	if len(regions) == 0 {
		ec2Client, err := aws.GetAWSClient(ctx, "ec2")
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ec2 client: %w", err)
		}
		regions, err = inventory.DiscoverEnabledRegions(ctx, ec2Client.(*ec2.Client), cfg.DefaultRegion)
		if err != nil {
			return nil, fmt.Errorf("failed to discover regions: %w", err)
		}
	}

	awsCfg, err := aws.LoadConfig(ctx)
	if err != nil {
		return nil, err
	}

	return inventory.NewAWSFunctionSource(regions, cfg.PageSize, inventory.ConfigClientFactory(awsCfg)), nil
}
