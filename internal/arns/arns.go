// Package arns provides helpers for picking apart AWS ARNs.
package arns

import "strings"

// AccountID extracts the account ID from an ARN
func AccountID(arn string) string {
	parts := strings.Split(arn, ":")
	if len(parts) >= 5 {
		return parts[4]
	}
	return ""
}

// IsRole reports whether an ARN identifies an IAM role.
func IsRole(arn string) bool {
	return strings.Contains(arn, ":role/")
}

// ResourceName returns the final path segment of an ARN's resource part,
// e.g. the role name of a role ARN or the function name of a function ARN.
func ResourceName(arn string) string {
	// The resource part may itself contain colons (lambda function ARNs).
	parts := strings.SplitN(arn, ":", 6)
	resource := parts[len(parts)-1]
	if idx := strings.LastIndex(resource, "/"); idx >= 0 && idx < len(resource)-1 {
		return resource[idx+1:]
	}
	return resource
}
