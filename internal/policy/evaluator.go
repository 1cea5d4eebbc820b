// Package policy evaluates IAM policy documents locally: resource-policy
// authorization for service principals and identity-policy authorization for
// principals, without calling the live IAM simulation API.
package policy

import (
	"fmt"

	"privmap/internal/domain"
	"privmap/internal/logging"
)

// ResourcePolicyVerdict is the outcome of checking a resource-based policy
// for a specific service principal. Deny always overrides allow, so the
// distinction between "no statement matched" and "a deny matched" is kept
// explicit instead of collapsing to a boolean.
type ResourcePolicyVerdict int

const (
	VerdictNoMatch ResourcePolicyVerdict = iota
	VerdictExplicitDeny
	VerdictServiceMatch
)

func (v ResourcePolicyVerdict) String() string {
	switch v {
	case VerdictNoMatch:
		return "NO_MATCH"
	case VerdictExplicitDeny:
		return "EXPLICIT_DENY"
	case VerdictServiceMatch:
		return "SERVICE_MATCH"
	default:
		return fmt.Sprintf("ResourcePolicyVerdict(%d)", int(v))
	}
}

// Evaluator is the policy evaluation port consumed by the edge checkers.
type Evaluator interface {
	// ResourcePolicyAuthorization checks whether a resource-based policy
	// authorizes the given service principal to perform an action against a
	// resource. A nil or statement-less document yields VerdictNoMatch.
	ResourcePolicyAuthorization(servicePrincipal, callerAccountID string, doc domain.PolicyDocument,
		action, resourceArn string, condition map[string]string, debug bool) (ResourcePolicyVerdict, error)

	// LocalCheckAuthorization checks whether a principal's own identity-based
	// policies authorize an action on a resource under the given request
	// context. Resource-based policies are not consulted.
	LocalCheckAuthorization(node *domain.Node, action, resourceArn string,
		condition map[string]string, debug bool) (bool, error)
}

// LocalEvaluator evaluates policies from the documents already gathered
// during inventory. It is stateless and safe for concurrent use.
type LocalEvaluator struct{}

// NewLocalEvaluator returns the offline-capable evaluator.
func NewLocalEvaluator() *LocalEvaluator {
	return &LocalEvaluator{}
}

// ResourcePolicyAuthorization implements Evaluator.
func (e *LocalEvaluator) ResourcePolicyAuthorization(servicePrincipal, callerAccountID string, doc domain.PolicyDocument,
	action, resourceArn string, condition map[string]string, debug bool) (ResourcePolicyVerdict, error) {

	statements := doc.Statements()
	if len(statements) == 0 {
		return VerdictNoMatch, nil
	}

	matchedAllow := false

	for _, stmt := range statements {
		effect, ok := stmt["Effect"].(string)
		if !ok {
			return VerdictNoMatch, fmt.Errorf("policy statement has missing or non-string Effect")
		}
		if effect != "Allow" && effect != "Deny" {
			return VerdictNoMatch, fmt.Errorf("policy statement has invalid Effect %q", effect)
		}

		if !servicePrincipalMatches(stmt["Principal"], servicePrincipal) {
			continue
		}
		if !actionMatches(stmt["Action"], action) {
			continue
		}
		if !resourceMatches(stmt["Resource"], resourceArn, true) {
			continue
		}
		if !conditionMatches(stmt["Condition"], condition) {
			continue
		}

		if debug {
			logging.LogDebug("Resource policy statement matched", map[string]interface{}{
				"service_principal": servicePrincipal,
				"action":            action,
				"resource":          resourceArn,
				"effect":            effect,
			})
		}

		if effect == "Deny" {
			return VerdictExplicitDeny, nil
		}
		matchedAllow = true
	}

	if matchedAllow {
		return VerdictServiceMatch, nil
	}
	return VerdictNoMatch, nil
}

// LocalCheckAuthorization implements Evaluator.
func (e *LocalEvaluator) LocalCheckAuthorization(node *domain.Node, action, resourceArn string,
	condition map[string]string, debug bool) (bool, error) {

	allowed := false

	for _, attached := range node.Policies {
		for _, stmt := range attached.Document.Statements() {
			effect, ok := stmt["Effect"].(string)
			if !ok {
				return false, fmt.Errorf("policy %s: statement has missing or non-string Effect", attached.Name)
			}
			if effect != "Allow" && effect != "Deny" {
				return false, fmt.Errorf("policy %s: statement has invalid Effect %q", attached.Name, effect)
			}

			if !actionMatches(stmt["Action"], action) {
				continue
			}
			if !resourceMatches(stmt["Resource"], resourceArn, false) {
				continue
			}
			if !conditionMatches(stmt["Condition"], condition) {
				continue
			}

			if debug {
				logging.LogDebug("Identity policy statement matched", map[string]interface{}{
					"principal": node.Arn,
					"policy":    attached.Name,
					"action":    action,
					"resource":  resourceArn,
					"effect":    effect,
				})
			}

			if effect == "Deny" {
				return false, nil
			}
			allowed = true
		}
	}

	return allowed, nil
}
