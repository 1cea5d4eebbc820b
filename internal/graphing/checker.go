// Package graphing discovers privilege-escalation edges between IAM
// principals. Each attack vector is implemented as an EdgeChecker; the
// discovery pass runs every registered checker over the full principal set
// and concatenates the proven edges.
package graphing

import (
	"context"
	"io"

	"privmap/internal/domain"
	"privmap/internal/inventory"
	"privmap/internal/policy"
)

// CheckerContext bundles the collaborators an edge checker needs for one
// discovery pass. A nil Evaluator means no authorization proofs are possible
// and checkers return no edges; a nil Functions source means no live function
// inventory is available (offline mode) and only local-only mechanisms run.
type CheckerContext struct {
	Evaluator policy.Evaluator
	Functions inventory.FunctionSource

	// Output is the append-only diagnostic sink. One line is written per
	// discovered edge and per skipped pair.
	Output io.Writer

	// Debug is forwarded to the policy evaluator for verbose evaluation.
	Debug bool
}

// EdgeChecker proves escalation edges for a single attack vector. Checkers
// are stateless between calls: each FindEdges invocation is an independent
// pass over the given principal set, must not mutate the nodes, and must
// produce deterministic output order for a fixed input.
type EdgeChecker interface {
	// Name identifies the vector in logs and reports.
	Name() string

	// FindEdges examines every ordered pair of distinct principals and
	// returns the edges this vector can prove. Failures scoped to a single
	// pair are reported to the diagnostic sink and skipped; a returned error
	// means the whole pass for this vector produced no usable result.
	FindEdges(ctx context.Context, nodes []*domain.Node, cc CheckerContext) ([]domain.Edge, error)
}
