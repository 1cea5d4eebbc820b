// Package report renders discovery results for humans and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"privmap/internal/domain"
)

// edgeRecord is the JSON shape of one edge.
type edgeRecord struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Reason      string `json:"reason"`
}

// WriteJSON writes the edge list as a JSON array.
func WriteJSON(w io.Writer, edges []domain.Edge) error {
	records := make([]edgeRecord, 0, len(edges))
	for _, edge := range edges {
		records = append(records, edgeRecord{
			Source:      edge.Source.Arn,
			Destination: edge.Destination.Arn,
			Reason:      edge.Reason,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}

// WriteText writes a human-readable summary: admin principals first, then
// one line per proven edge.
func WriteText(w io.Writer, nodes []*domain.Node, edges []domain.Edge) {
	admins := 0
	for _, node := range nodes {
		if node.IsAdmin {
			admins++
			fmt.Fprintf(w, "admin: %s\n", node.Arn)
		}
	}

	fmt.Fprintf(w, "\n%d principals, %d admins, %d edges\n\n", len(nodes), admins, len(edges))
	for _, edge := range edges {
		fmt.Fprintf(w, "  %s\n", edge.Describe())
	}
}
