package graphing

import (
	"context"
	"fmt"

	"privmap/internal/arns"
	"privmap/internal/domain"
	"privmap/internal/logging"
	"privmap/internal/policy"
)

// STSChecker finds direct assume-role edges: the destination role's trust
// policy names the source (or its account), and the source's own policies
// authorize sts:AssumeRole against the destination. Purely local, so it runs
// even without live provider access.
type STSChecker struct{}

// NewSTSChecker returns the STS-vector edge checker.
func NewSTSChecker() *STSChecker {
	return &STSChecker{}
}

// Name implements EdgeChecker.
func (c *STSChecker) Name() string {
	return "sts"
}

// FindEdges implements EdgeChecker.
func (c *STSChecker) FindEdges(ctx context.Context, nodes []*domain.Node, cc CheckerContext) ([]domain.Edge, error) {
	edges := make([]domain.Edge, 0)

	if cc.Evaluator == nil {
		logging.LogInfo("No policy evaluator available, skipping STS edge checks")
		return edges, nil
	}

	for _, source := range nodes {
		if source.IsAdmin {
			continue
		}

		for _, destination := range nodes {
			if source == destination || source.Arn == destination.Arn {
				continue
			}
			if !destination.IsRole() {
				continue
			}

			verdict, err := policy.PrincipalTrustAuthorization(
				destination.TrustPolicy,
				source.Arn,
				arns.AccountID(source.Arn),
				"sts:AssumeRole",
			)
			if err != nil {
				fmt.Fprintf(cc.Output, "Skipping pair %s -> %s: %v\n", source.Arn, destination.Arn, err)
				logging.LogWarn("Failed to evaluate trust policy", map[string]interface{}{
					"source":      source.Arn,
					"destination": destination.Arn,
					"error":       err.Error(),
				})
				continue
			}
			if verdict != policy.VerdictServiceMatch {
				continue
			}

			canAssume, err := cc.Evaluator.LocalCheckAuthorization(source, "sts:AssumeRole", destination.Arn, nil, cc.Debug)
			if err != nil {
				fmt.Fprintf(cc.Output, "Skipping pair %s -> %s: %v\n", source.Arn, destination.Arn, err)
				logging.LogWarn("Failed to evaluate sts:AssumeRole", map[string]interface{}{
					"source":      source.Arn,
					"destination": destination.Arn,
					"error":       err.Error(),
				})
				continue
			}
			if !canAssume {
				continue
			}

			edge := domain.Edge{
				Source:      source,
				Destination: destination,
				Reason:      "can access via sts:AssumeRole",
			}
			fmt.Fprintf(cc.Output, "Found new edge: %s\n", edge.Describe())
			edges = append(edges, edge)
		}
	}

	return edges, nil
}
