package policy

import (
	"regexp"
	"strings"
)

// NormalizeToList coerces the string-or-list values IAM allows for Action,
// Resource, and Principal entries into a string slice.
func NormalizeToList(value interface{}) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []interface{}:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	default:
		return []string{}
	}
}

// matchPattern matches a candidate string against an IAM-style pattern where
// '*' matches any sequence and '?' matches a single character. Matching is
// case-insensitive, as IAM action matching is.
func matchPattern(pattern, candidate string) bool {
	if pattern == "*" {
		return true
	}
	if strings.EqualFold(pattern, candidate) {
		return true
	}
	if !strings.ContainsAny(pattern, "*?") {
		return false
	}

	escaped := regexp.QuoteMeta(pattern)
	escaped = strings.ReplaceAll(escaped, `\*`, ".*")
	escaped = strings.ReplaceAll(escaped, `\?`, ".")
	matched, err := regexp.MatchString("(?i)^"+escaped+"$", candidate)
	if err != nil {
		return false
	}
	return matched
}

// actionMatches checks a statement's Action entry against the requested
// action. Statements using NotAction are skipped rather than inverted, which
// can only suppress findings, never invent them.
func actionMatches(actionValue interface{}, action string) bool {
	if actionValue == nil {
		return false
	}
	for _, pattern := range NormalizeToList(actionValue) {
		if matchPattern(pattern, action) {
			return true
		}
	}
	return false
}

// resourceMatches checks a statement's Resource entry against the requested
// resource. Trust policies typically omit Resource entirely; for those the
// statement applies to the attached resource, so missingMatchesAll is true
// when evaluating resource-based policies.
func resourceMatches(resourceValue interface{}, resourceArn string, missingMatchesAll bool) bool {
	if resourceValue == nil {
		return missingMatchesAll
	}
	for _, pattern := range NormalizeToList(resourceValue) {
		if matchPattern(pattern, resourceArn) {
			return true
		}
	}
	return false
}

// servicePrincipalMatches checks whether a statement's Principal entry names
// the given service principal, either via the Service key or a bare "*".
func servicePrincipalMatches(principalValue interface{}, servicePrincipal string) bool {
	switch p := principalValue.(type) {
	case string:
		return p == "*"
	case map[string]interface{}:
		for _, entry := range NormalizeToList(p["Service"]) {
			if matchPattern(entry, servicePrincipal) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// conditionMatches checks a statement's Condition block against the request
// context. Only StringEquals and StringLike operators are evaluated; a
// statement carrying any other operator does not match, so unresolvable
// conditions suppress edges instead of fabricating them.
func conditionMatches(conditionValue interface{}, requestContext map[string]string) bool {
	if conditionValue == nil {
		return true
	}
	conditions, ok := conditionValue.(map[string]interface{})
	if !ok {
		return false
	}

	for operator, operatorValue := range conditions {
		entries, ok := operatorValue.(map[string]interface{})
		if !ok {
			return false
		}

		like := false
		switch {
		case strings.EqualFold(operator, "StringEquals"):
		case strings.EqualFold(operator, "StringLike"):
			like = true
		default:
			return false
		}

		for key, expected := range entries {
			actual, present := lookupContextKey(requestContext, key)
			if !present {
				return false
			}

			satisfied := false
			for _, candidate := range NormalizeToList(expected) {
				if like && matchPattern(candidate, actual) {
					satisfied = true
					break
				}
				if !like && strings.EqualFold(candidate, actual) {
					satisfied = true
					break
				}
			}
			if !satisfied {
				return false
			}
		}
	}

	return true
}

// lookupContextKey finds a request-context value by case-insensitive key,
// matching IAM's treatment of condition key names.
func lookupContextKey(requestContext map[string]string, key string) (string, bool) {
	if v, ok := requestContext[key]; ok {
		return v, true
	}
	for k, v := range requestContext {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}
