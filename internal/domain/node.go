package domain

import "strings"

// Node represents an IAM principal (user or role) in the account being mapped.
// Nodes are built once during identity inventory and are read-only afterwards.
type Node struct {
	Arn string `json:"arn"`

	// IsAdmin is computed upstream during inventory; admin principals can
	// already reach everything, so checkers never report edges out of them.
	IsAdmin bool `json:"is_admin"`

	// TrustPolicy is the assume-role policy document. Only role principals
	// carry one; nil for users.
	TrustPolicy PolicyDocument `json:"trust_policy,omitempty"`

	// Policies are the principal's identity-based policies (inline and
	// attached), used for local authorization checks.
	Policies []AttachedPolicy `json:"policies,omitempty"`
}

// AttachedPolicy pairs a policy identifier with its parsed document.
type AttachedPolicy struct {
	Arn      string         `json:"arn"`
	Name     string         `json:"name"`
	Document PolicyDocument `json:"document"`
}

// IsRole reports whether the node is an IAM role. Identifiers that do not
// parse as role ARNs classify as non-role, which only suppresses potential
// edges and never fabricates one.
func (n *Node) IsRole() bool {
	return strings.Contains(n.Arn, ":role/")
}

// Name returns the trailing resource name of the node's ARN.
func (n *Node) Name() string {
	idx := strings.LastIndex(n.Arn, "/")
	if idx < 0 || idx == len(n.Arn)-1 {
		return n.Arn
	}
	return n.Arn[idx+1:]
}
