// Package inventory collects deployed Lambda functions across regions and
// exposes them to the edge checkers as an already-materialized collection.
package inventory

import (
	"context"

	"privmap/internal/domain"
)

// FunctionSource supplies the set of deployed Lambda functions. The edge
// checkers treat the result as a finite read-only collection; pagination and
// region merging happen behind this interface.
type FunctionSource interface {
	ListFunctions(ctx context.Context) ([]domain.FunctionInfo, error)
}

// StaticSource serves a fixed function list, used for offline snapshots and
// in tests.
type StaticSource []domain.FunctionInfo

// ListFunctions implements FunctionSource.
func (s StaticSource) ListFunctions(ctx context.Context) ([]domain.FunctionInfo, error) {
	return []domain.FunctionInfo(s), nil
}
