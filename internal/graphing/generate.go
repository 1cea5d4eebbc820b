package graphing

import (
	"context"
	"fmt"
	"time"

	"privmap/internal/domain"
	"privmap/internal/logging"
)

// GenerateEdges runs every checker over the principal set and concatenates
// the proven edges. A checker that fails contributes nothing but does not
// abort the pass; its failure is reported to the diagnostic sink.
func GenerateEdges(ctx context.Context, nodes []*domain.Node, checkers []EdgeChecker, cc CheckerContext) []domain.Edge {
	edges := make([]domain.Edge, 0)

	for _, checker := range checkers {
		startTime := time.Now()
		checkerEdges, err := checker.FindEdges(ctx, nodes, cc)
		if err != nil {
			fmt.Fprintf(cc.Output, "Edge checker %s failed: %v\n", checker.Name(), err)
			logging.LogError(fmt.Sprintf("Edge checker %s failed", checker.Name()), err)
			continue
		}

		logging.GetMetrics().RecordEdges(checker.Name(), len(checkerEdges))
		logging.LogInfo("Edge checker completed", map[string]interface{}{
			"checker":     checker.Name(),
			"edges_found": len(checkerEdges),
			"duration_ms": time.Since(startTime).Milliseconds(),
		})
		edges = append(edges, checkerEdges...)
	}

	return edges
}
