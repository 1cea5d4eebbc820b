package graphing

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"privmap/internal/domain"
	"privmap/internal/policy"
)

func principalTrustPolicy(principal string) domain.PolicyDocument {
	return domain.PolicyDocument{
		"Version": "2012-10-17",
		"Statement": []interface{}{
			map[string]interface{}{
				"Effect":    "Allow",
				"Principal": map[string]interface{}{"AWS": principal},
				"Action":    "sts:AssumeRole",
			},
		},
	}
}

func stsEdges(t *testing.T, nodes []*domain.Node) []domain.Edge {
	t.Helper()
	var sink bytes.Buffer
	cc := CheckerContext{Evaluator: policy.NewLocalEvaluator(), Output: &sink}
	edges, err := NewSTSChecker().FindEdges(context.Background(), nodes, cc)
	if err != nil {
		t.Fatalf("FindEdges returned error: %v", err)
	}
	return edges
}

func TestAssumeRoleEdge(t *testing.T) {
	tests := []struct {
		name           string
		trustPrincipal string
		sourcePolicy   domain.PolicyDocument
		wantEdges      int
	}{
		{
			name:           "trusted principal with local authorization",
			trustPrincipal: aliceArn,
			sourcePolicy:   allowStatements([2]string{"sts:AssumeRole", roleRArn}),
			wantEdges:      1,
		},
		{
			name:           "account root trust delegates to identity policy",
			trustPrincipal: "arn:aws:iam::123456789012:root",
			sourcePolicy:   allowStatements([2]string{"sts:AssumeRole", roleRArn}),
			wantEdges:      1,
		},
		{
			name:           "trusted principal without local authorization",
			trustPrincipal: aliceArn,
			sourcePolicy:   allowStatements([2]string{"s3:GetObject", "*"}),
			wantEdges:      0,
		},
		{
			name:           "untrusted principal with local authorization",
			trustPrincipal: bobArn,
			sourcePolicy:   allowStatements([2]string{"sts:AssumeRole", roleRArn}),
			wantEdges:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alice := userNode(aliceArn, tt.sourcePolicy)
			nodes := []*domain.Node{alice, roleNode(roleRArn, principalTrustPolicy(tt.trustPrincipal))}

			edges := stsEdges(t, nodes)
			if len(edges) != tt.wantEdges {
				t.Errorf("expected %d edges, got %d: %v", tt.wantEdges, len(edges), edgeKeys(edges))
			}
			if tt.wantEdges == 1 && !strings.Contains(edges[0].Reason, "sts:AssumeRole") {
				t.Errorf("unexpected reason %q", edges[0].Reason)
			}
		})
	}
}

func TestAssumeRoleSkipsAdminAndNonRoles(t *testing.T) {
	admin := adminNode()
	alice := userNode(aliceArn, allowStatements([2]string{"sts:AssumeRole", "*"}))
	bob := userNode(bobArn, nil)
	nodes := []*domain.Node{admin, alice, bob}

	edges := stsEdges(t, nodes)
	if len(edges) != 0 {
		t.Errorf("expected 0 edges, got %d: %v", len(edges), edgeKeys(edges))
	}
}

func TestGenerateEdgesConcatenatesCheckers(t *testing.T) {
	alice := userNode(aliceArn, domain.PolicyDocument{
		"Statement": []interface{}{
			map[string]interface{}{
				"Effect":   "Allow",
				"Action":   []interface{}{"sts:AssumeRole", "lambda:CreateFunction"},
				"Resource": "*",
			},
			map[string]interface{}{
				"Effect":   "Allow",
				"Action":   "iam:PassRole",
				"Resource": "*",
				"Condition": map[string]interface{}{
					"StringEquals": map[string]interface{}{
						"iam:PassedToService": lambdaTrust,
					},
				},
			},
		},
	})

	// Trusts both the Lambda service and Alice directly.
	trust := domain.PolicyDocument{
		"Statement": []interface{}{
			map[string]interface{}{
				"Effect":    "Allow",
				"Principal": map[string]interface{}{"Service": lambdaTrust},
				"Action":    "sts:AssumeRole",
			},
			map[string]interface{}{
				"Effect":    "Allow",
				"Principal": map[string]interface{}{"AWS": aliceArn},
				"Action":    "sts:AssumeRole",
			},
		},
	}
	nodes := []*domain.Node{alice, roleNode(roleRArn, trust)}

	var sink bytes.Buffer
	cc := CheckerContext{Evaluator: policy.NewLocalEvaluator(), Output: &sink}
	checkers := []EdgeChecker{NewLambdaChecker(), NewSTSChecker()}

	edges := GenerateEdges(context.Background(), nodes, checkers, cc)

	var sawLambda, sawSTS bool
	for _, edge := range edges {
		if strings.Contains(edge.Reason, "create a new function") {
			sawLambda = true
		}
		if strings.Contains(edge.Reason, "sts:AssumeRole") {
			sawSTS = true
		}
	}
	if !sawLambda || !sawSTS {
		t.Errorf("expected edges from both checkers, got %v", edgeKeys(edges))
	}
}
