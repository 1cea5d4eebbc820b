package graphing

import (
	"context"
	"fmt"

	"privmap/internal/arns"
	"privmap/internal/domain"
	"privmap/internal/logging"
	"privmap/internal/policy"
)

// LambdaServicePrincipal is the service principal Lambda uses when assuming
// a function's execution role.
const LambdaServicePrincipal = "lambda.amazonaws.com"

// LambdaChecker finds edges where a principal can abuse Lambda as a confused
// deputy: attach a target role to a function (new or existing) and run
// arbitrary code under that role.
type LambdaChecker struct{}

// NewLambdaChecker returns the Lambda-vector edge checker.
func NewLambdaChecker() *LambdaChecker {
	return &LambdaChecker{}
}

// Name implements EdgeChecker.
func (c *LambdaChecker) Name() string {
	return "lambda"
}

// sourceAuthorizations holds the per-source checks that do not depend on the
// destination, computed once before iterating destinations.
type sourceAuthorizations struct {
	canCreateFunction bool
	functions         []functionAuthorization
}

type functionAuthorization struct {
	function        domain.FunctionInfo
	canChangeCode   bool
	canChangeConfig bool
}

// FindEdges implements EdgeChecker. For every ordered pair of distinct
// principals it proves up to three independent escalation mechanisms:
// creating a new function with the destination's role attached, editing an
// existing function that already runs as the destination, and repurposing an
// existing function by swapping its execution role.
func (c *LambdaChecker) FindEdges(ctx context.Context, nodes []*domain.Node, cc CheckerContext) ([]domain.Edge, error) {
	edges := make([]domain.Edge, 0)

	if cc.Evaluator == nil {
		logging.LogInfo("No policy evaluator available, skipping Lambda edge checks")
		return edges, nil
	}

	var functions []domain.FunctionInfo
	if cc.Functions != nil {
		var err error
		functions, err = cc.Functions.ListFunctions(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list Lambda functions: %w", err)
		}
	} else {
		logging.LogInfo("No function inventory available, checking Lambda edges without live functions")
	}

	for _, source := range nodes {
		// An admin principal's reach is total; it is not tracked as edges.
		if source.IsAdmin {
			continue
		}

		srcAuth, err := c.collectSourceAuthorizations(source, functions, cc)
		if err != nil {
			fmt.Fprintf(cc.Output, "Skipping Lambda checks for %s: %v\n", source.Arn, err)
			logging.LogWarn("Failed to evaluate source authorizations", map[string]interface{}{
				"source": source.Arn,
				"error":  err.Error(),
			})
			continue
		}

		for _, destination := range nodes {
			if source == destination || source.Arn == destination.Arn {
				continue
			}

			// Only roles can be targeted via execution-role impersonation.
			if !destination.IsRole() {
				continue
			}

			pairEdges, err := c.checkPair(source, destination, srcAuth, cc)
			if err != nil {
				fmt.Fprintf(cc.Output, "Skipping pair %s -> %s: %v\n", source.Arn, destination.Arn, err)
				logging.LogWarn("Failed to evaluate principal pair", map[string]interface{}{
					"source":      source.Arn,
					"destination": destination.Arn,
					"error":       err.Error(),
				})
				continue
			}

			for _, edge := range pairEdges {
				fmt.Fprintf(cc.Output, "Found new edge: %s\n", edge.Describe())
			}
			edges = append(edges, pairEdges...)
		}
	}

	return edges, nil
}

// collectSourceAuthorizations evaluates the checks that depend only on the
// source: create-function on any resource, and code/configuration update per
// live function. Doing this once per source instead of once per pair keeps
// the pass at O(P*F) evaluator calls instead of O(P²*F).
func (c *LambdaChecker) collectSourceAuthorizations(source *domain.Node, functions []domain.FunctionInfo, cc CheckerContext) (*sourceAuthorizations, error) {
	canCreateFunction, err := cc.Evaluator.LocalCheckAuthorization(source, "lambda:CreateFunction", "*", nil, cc.Debug)
	if err != nil {
		return nil, fmt.Errorf("lambda:CreateFunction check: %w", err)
	}

	srcAuth := &sourceAuthorizations{
		canCreateFunction: canCreateFunction,
		functions:         make([]functionAuthorization, 0, len(functions)),
	}

	for _, function := range functions {
		canChangeCode, err := cc.Evaluator.LocalCheckAuthorization(source, "lambda:UpdateFunctionCode", function.FunctionArn, nil, cc.Debug)
		if err != nil {
			return nil, fmt.Errorf("lambda:UpdateFunctionCode check for %s: %w", function.FunctionArn, err)
		}

		canChangeConfig, err := cc.Evaluator.LocalCheckAuthorization(source, "lambda:UpdateFunctionConfiguration", function.FunctionArn, nil, cc.Debug)
		if err != nil {
			return nil, fmt.Errorf("lambda:UpdateFunctionConfiguration check for %s: %w", function.FunctionArn, err)
		}

		srcAuth.functions = append(srcAuth.functions, functionAuthorization{
			function:        function,
			canChangeCode:   canChangeCode,
			canChangeConfig: canChangeConfig,
		})
	}

	return srcAuth, nil
}

// checkPair runs the trust-policy gate and the three escalation mechanisms
// for one ordered pair. The mechanisms are independent proofs: a pair may
// yield zero to three edges, at most one per mechanism.
func (c *LambdaChecker) checkPair(source, destination *domain.Node, srcAuth *sourceAuthorizations, cc CheckerContext) ([]domain.Edge, error) {
	verdict, err := cc.Evaluator.ResourcePolicyAuthorization(
		LambdaServicePrincipal,
		arns.AccountID(source.Arn),
		destination.TrustPolicy,
		"sts:AssumeRole",
		destination.Arn,
		nil,
		cc.Debug,
	)
	if err != nil {
		return nil, fmt.Errorf("trust policy evaluation: %w", err)
	}

	// Only an explicit allow for the Lambda service passes the gate; no
	// match and explicit deny both fail it.
	if verdict != policy.VerdictServiceMatch {
		return nil, nil
	}

	canPassRole, err := cc.Evaluator.LocalCheckAuthorization(
		source,
		"iam:PassRole",
		destination.Arn,
		map[string]string{"iam:PassedToService": LambdaServicePrincipal},
		cc.Debug,
	)
	if err != nil {
		return nil, fmt.Errorf("iam:PassRole check: %w", err)
	}

	var pairEdges []domain.Edge

	// Mechanism A: create a new function, attach the destination's role, and
	// run arbitrary code under it.
	if canPassRole && srcAuth.canCreateFunction {
		pairEdges = append(pairEdges, domain.Edge{
			Source:      source,
			Destination: destination,
			Reason:      "can use Lambda to create a new function with arbitrary code, then pass and access",
		})
	}

	// Mechanism B: edit an existing function that already runs as the
	// destination. One qualifying function suffices.
	for _, fa := range srcAuth.functions {
		if fa.function.RoleArn != destination.Arn {
			continue
		}
		if fa.canChangeCode {
			pairEdges = append(pairEdges, domain.Edge{
				Source:      source,
				Destination: destination,
				Reason:      fmt.Sprintf("can use Lambda to edit an existing function (%s) to access", fa.function.FunctionArn),
			})
			break
		}
	}

	// Mechanism C: edit any existing function's code and configuration,
	// swapping its execution role for the destination's. First match wins.
	for _, fa := range srcAuth.functions {
		if fa.canChangeCode && fa.canChangeConfig && canPassRole {
			pairEdges = append(pairEdges, domain.Edge{
				Source:      source,
				Destination: destination,
				Reason:      fmt.Sprintf("can use Lambda to edit an existing function's code (%s), then pass and access", fa.function.FunctionArn),
			})
			break
		}
	}

	return pairEdges, nil
}
