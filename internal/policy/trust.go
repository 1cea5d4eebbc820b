package policy

import (
	"fmt"

	"privmap/internal/domain"
)

// PrincipalTrustAuthorization checks whether a trust policy authorizes the
// given IAM principal (rather than a service principal) to perform an action.
// Principal entries naming the account root or bare account ID count as a
// match, since those delegate the decision to the principal's own identity
// policies, which callers verify separately. Deny overrides allow; a nil or
// statement-less document yields VerdictNoMatch.
func PrincipalTrustAuthorization(doc domain.PolicyDocument, principalArn, accountID, action string) (ResourcePolicyVerdict, error) {
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

		if !awsPrincipalMatches(stmt["Principal"], principalArn, accountID) {
			continue
		}
		if !actionMatches(stmt["Action"], action) {
			continue
		}
		if !conditionMatches(stmt["Condition"], nil) {
			continue
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

func awsPrincipalMatches(principalValue interface{}, principalArn, accountID string) bool {
	switch p := principalValue.(type) {
	case string:
		return p == "*"
	case map[string]interface{}:
		for _, entry := range NormalizeToList(p["AWS"]) {
			if entry == "*" {
				return true
			}
			if matchPattern(entry, principalArn) {
				return true
			}
			if entry == accountID || entry == "arn:aws:iam::"+accountID+":root" {
				return true
			}
		}
		return false
	default:
		return false
	}
}
