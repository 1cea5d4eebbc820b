package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"privmap/internal/domain"
)

func sampleGraph() ([]*domain.Node, []domain.Edge) {
	admin := &domain.Node{Arn: "arn:aws:iam::123456789012:user/admin", IsAdmin: true}
	alice := &domain.Node{Arn: "arn:aws:iam::123456789012:user/alice"}
	role := &domain.Node{Arn: "arn:aws:iam::123456789012:role/RoleR"}
	edges := []domain.Edge{
		{Source: alice, Destination: role, Reason: "can access via sts:AssumeRole"},
	}
	return []*domain.Node{admin, alice, role}, edges
}

func TestWriteText(t *testing.T) {
	nodes, edges := sampleGraph()

	var buf bytes.Buffer
	WriteText(&buf, nodes, edges)
	out := buf.String()

	if !strings.Contains(out, "admin: arn:aws:iam::123456789012:user/admin") {
		t.Errorf("missing admin line in %q", out)
	}
	if !strings.Contains(out, "3 principals, 1 admins, 1 edges") {
		t.Errorf("missing summary line in %q", out)
	}
	if !strings.Contains(out, "can access via sts:AssumeRole") {
		t.Errorf("missing edge line in %q", out)
	}
}

func TestWriteJSON(t *testing.T) {
	_, edges := sampleGraph()

	var buf bytes.Buffer
	if err := WriteJSON(&buf, edges); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var records []map[string]string
	if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0]["source"] != "arn:aws:iam::123456789012:user/alice" {
		t.Errorf("unexpected source %q", records[0]["source"])
	}
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected empty array, got %q", buf.String())
	}
}
