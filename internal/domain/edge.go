package domain

import "fmt"

// Edge is a proven one-directional escalation fact: Source can act as
// Destination, for the mechanism named in Reason. Edges are created only
// after an edge checker fully discharges the proof and are immutable.
type Edge struct {
	Source      *Node  `json:"source"`
	Destination *Node  `json:"destination"`
	Reason      string `json:"reason"`
}

// Describe renders the edge as a single human-readable line for reports and
// the diagnostic sink.
func (e Edge) Describe() string {
	return fmt.Sprintf("%s %s %s", e.Source.Arn, e.Reason, e.Destination.Arn)
}
