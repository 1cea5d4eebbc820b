// Package identity enumerates IAM principals and builds the node set the
// edge checkers run over: every user and role with its parsed identity
// policies, trust policy, and admin classification.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"

	"privmap/internal/domain"
	"privmap/internal/logging"
	"privmap/internal/policy"
)

const administratorAccessArn = "arn:aws:iam::aws:policy/AdministratorAccess"

// IAMClient is the slice of the IAM API the inventory needs. The paginator
// constructors accept it directly.
type IAMClient interface {
	ListRoles(ctx context.Context, params *iam.ListRolesInput, optFns ...func(*iam.Options)) (*iam.ListRolesOutput, error)
	ListUsers(ctx context.Context, params *iam.ListUsersInput, optFns ...func(*iam.Options)) (*iam.ListUsersOutput, error)
	ListAttachedRolePolicies(ctx context.Context, params *iam.ListAttachedRolePoliciesInput, optFns ...func(*iam.Options)) (*iam.ListAttachedRolePoliciesOutput, error)
	ListRolePolicies(ctx context.Context, params *iam.ListRolePoliciesInput, optFns ...func(*iam.Options)) (*iam.ListRolePoliciesOutput, error)
	GetRolePolicy(ctx context.Context, params *iam.GetRolePolicyInput, optFns ...func(*iam.Options)) (*iam.GetRolePolicyOutput, error)
	ListAttachedUserPolicies(ctx context.Context, params *iam.ListAttachedUserPoliciesInput, optFns ...func(*iam.Options)) (*iam.ListAttachedUserPoliciesOutput, error)
	ListUserPolicies(ctx context.Context, params *iam.ListUserPoliciesInput, optFns ...func(*iam.Options)) (*iam.ListUserPoliciesOutput, error)
	GetUserPolicy(ctx context.Context, params *iam.GetUserPolicyInput, optFns ...func(*iam.Options)) (*iam.GetUserPolicyOutput, error)
	GetPolicy(ctx context.Context, params *iam.GetPolicyInput, optFns ...func(*iam.Options)) (*iam.GetPolicyOutput, error)
	GetPolicyVersion(ctx context.Context, params *iam.GetPolicyVersionInput, optFns ...func(*iam.Options)) (*iam.GetPolicyVersionOutput, error)
}

// CollectNodes enumerates all IAM users and roles in the account and builds
// their nodes. Principals whose policies cannot be fetched are kept with the
// policies that did resolve; only the enumeration itself failing aborts.
func CollectNodes(ctx context.Context, client IAMClient) ([]*domain.Node, error) {
	nodes := make([]*domain.Node, 0)

	rolePaginator := iam.NewListRolesPaginator(client, &iam.ListRolesInput{})
	for rolePaginator.HasMorePages() {
		page, err := rolePaginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list roles: %w", err)
		}
		logging.GetMetrics().RecordAPICall("ListRoles", true, nil)

		for _, role := range page.Roles {
			if role.Arn == nil || role.RoleName == nil {
				continue
			}
			roleArn := awssdk.ToString(role.Arn)
			if strings.HasPrefix(roleArn, "arn:aws:iam::aws:role/") {
				continue
			}

			node := &domain.Node{
				Arn:         roleArn,
				TrustPolicy: ParseDocument(awssdk.ToString(role.AssumeRolePolicyDocument)),
			}

			policies, err := collectRolePolicies(ctx, client, awssdk.ToString(role.RoleName))
			if err != nil {
				logging.LogWarn("Failed to collect policies for role", map[string]interface{}{
					"role":  roleArn,
					"error": err.Error(),
				})
			}
			node.Policies = policies
			node.IsAdmin = classifyAdmin(policies)

			nodes = append(nodes, node)
		}
	}

	userPaginator := iam.NewListUsersPaginator(client, &iam.ListUsersInput{})
	for userPaginator.HasMorePages() {
		page, err := userPaginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		logging.GetMetrics().RecordAPICall("ListUsers", true, nil)

		for _, user := range page.Users {
			if user.Arn == nil || user.UserName == nil {
				continue
			}

			node := &domain.Node{Arn: awssdk.ToString(user.Arn)}

			policies, err := collectUserPolicies(ctx, client, awssdk.ToString(user.UserName))
			if err != nil {
				logging.LogWarn("Failed to collect policies for user", map[string]interface{}{
					"user":  node.Arn,
					"error": err.Error(),
				})
			}
			node.Policies = policies
			node.IsAdmin = classifyAdmin(policies)

			nodes = append(nodes, node)
		}
	}

	logging.LogInfo("Principal inventory collected", map[string]interface{}{
		"principals": len(nodes),
	})
	return nodes, nil
}

func collectRolePolicies(ctx context.Context, client IAMClient, roleName string) ([]domain.AttachedPolicy, error) {
	policies := make([]domain.AttachedPolicy, 0)

	attachedOut, err := client.ListAttachedRolePolicies(ctx, &iam.ListAttachedRolePoliciesInput{
		RoleName: awssdk.String(roleName),
	})
	if err != nil {
		return policies, fmt.Errorf("failed to list attached policies: %w", err)
	}
	for _, attached := range attachedOut.AttachedPolicies {
		managed, err := fetchManagedPolicy(ctx, client, awssdk.ToString(attached.PolicyArn), awssdk.ToString(attached.PolicyName))
		if err != nil {
			logging.LogWarn("Failed to fetch managed policy", map[string]interface{}{
				"policy": awssdk.ToString(attached.PolicyArn),
				"error":  err.Error(),
			})
			continue
		}
		policies = append(policies, managed)
	}

	inlineOut, err := client.ListRolePolicies(ctx, &iam.ListRolePoliciesInput{
		RoleName: awssdk.String(roleName),
	})
	if err != nil {
		return policies, fmt.Errorf("failed to list inline policies: %w", err)
	}
	for _, policyName := range inlineOut.PolicyNames {
		policyOut, err := client.GetRolePolicy(ctx, &iam.GetRolePolicyInput{
			RoleName:   awssdk.String(roleName),
			PolicyName: awssdk.String(policyName),
		})
		if err != nil {
			continue
		}
		policies = append(policies, domain.AttachedPolicy{
			Name:     policyName,
			Document: ParseDocument(awssdk.ToString(policyOut.PolicyDocument)),
		})
	}

	return policies, nil
}

func collectUserPolicies(ctx context.Context, client IAMClient, userName string) ([]domain.AttachedPolicy, error) {
	policies := make([]domain.AttachedPolicy, 0)

	attachedOut, err := client.ListAttachedUserPolicies(ctx, &iam.ListAttachedUserPoliciesInput{
		UserName: awssdk.String(userName),
	})
	if err != nil {
		return policies, fmt.Errorf("failed to list attached policies: %w", err)
	}
	for _, attached := range attachedOut.AttachedPolicies {
		managed, err := fetchManagedPolicy(ctx, client, awssdk.ToString(attached.PolicyArn), awssdk.ToString(attached.PolicyName))
		if err != nil {
			logging.LogWarn("Failed to fetch managed policy", map[string]interface{}{
				"policy": awssdk.ToString(attached.PolicyArn),
				"error":  err.Error(),
			})
			continue
		}
		policies = append(policies, managed)
	}

	inlineOut, err := client.ListUserPolicies(ctx, &iam.ListUserPoliciesInput{
		UserName: awssdk.String(userName),
	})
	if err != nil {
		return policies, fmt.Errorf("failed to list inline policies: %w", err)
	}
	for _, policyName := range inlineOut.PolicyNames {
		policyOut, err := client.GetUserPolicy(ctx, &iam.GetUserPolicyInput{
			UserName:   awssdk.String(userName),
			PolicyName: awssdk.String(policyName),
		})
		if err != nil {
			continue
		}
		policies = append(policies, domain.AttachedPolicy{
			Name:     policyName,
			Document: ParseDocument(awssdk.ToString(policyOut.PolicyDocument)),
		})
	}

	return policies, nil
}

func fetchManagedPolicy(ctx context.Context, client IAMClient, policyArn, policyName string) (domain.AttachedPolicy, error) {
	policyOut, err := client.GetPolicy(ctx, &iam.GetPolicyInput{
		PolicyArn: awssdk.String(policyArn),
	})
	if err != nil {
		return domain.AttachedPolicy{}, err
	}

	versionOut, err := client.GetPolicyVersion(ctx, &iam.GetPolicyVersionInput{
		PolicyArn: policyOut.Policy.Arn,
		VersionId: policyOut.Policy.DefaultVersionId,
	})
	if err != nil {
		return domain.AttachedPolicy{}, err
	}

	return domain.AttachedPolicy{
		Arn:      policyArn,
		Name:     policyName,
		Document: ParseDocument(awssdk.ToString(versionOut.PolicyVersion.Document)),
	}, nil
}

// ParseDocument decodes an IAM policy document as returned by the API.
// Documents arrive URL-encoded; plain JSON is accepted too. Returns nil for
// anything that does not decode, so misparsed policies suppress rather than
// fabricate authorizations.
func ParseDocument(raw string) domain.PolicyDocument {
	if raw == "" {
		return nil
	}

	docStr := raw
	if !strings.HasPrefix(docStr, "{") {
		if decoded, err := url.QueryUnescape(docStr); err == nil {
			docStr = decoded
		}
	}

	var doc domain.PolicyDocument
	if err := json.Unmarshal([]byte(docStr), &doc); err != nil {
		return nil
	}
	return doc
}

// classifyAdmin reports whether a principal's policies grant unconstrained
// account access: the AdministratorAccess managed policy, or any allow
// statement of "*" (or "iam:*") on every resource.
func classifyAdmin(policies []domain.AttachedPolicy) bool {
	for _, attached := range policies {
		if attached.Arn == administratorAccessArn {
			return true
		}

		for _, stmt := range attached.Document.Statements() {
			if effect, ok := stmt["Effect"].(string); !ok || effect != "Allow" {
				continue
			}

			hasFullAction := false
			for _, action := range policy.NormalizeToList(stmt["Action"]) {
				if action == "*" || action == "iam:*" {
					hasFullAction = true
					break
				}
			}
			if !hasFullAction {
				continue
			}

			for _, resource := range policy.NormalizeToList(stmt["Resource"]) {
				if resource == "*" {
					return true
				}
			}
		}
	}
	return false
}
