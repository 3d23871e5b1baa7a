package network

import (
	"reflect"
	"testing"
)

func TestReactionsReversesInfluences(t *testing.T) {
	// IRF4 -> NFATC3, MAF -> {IRF4, NFATC3, STAT3}, STAT3 -> IRF4
	net := New(map[string][]string{
		"IRF4":   {"NFATC3"},
		"MAF":    {"IRF4", "NFATC3", "STAT3"},
		"NFATC3": {},
		"STAT3":  {"IRF4"},
	})

	names := net.Names()
	expectedNames := []string{"IRF4", "MAF", "NFATC3", "STAT3"}
	if !reflect.DeepEqual(names, expectedNames) {
		t.Fatalf("Expected names %v, got %v", expectedNames, names)
	}

	rm := net.Reactions(true)
	// IRF4(0) <- MAF(1), STAT3(3); MAF(1) unregulated -> corrected to all;
	// NFATC3(2) <- IRF4(0), MAF(1); STAT3(3) <- MAF(1)
	expected := [][]int{
		{1, 3},
		{0, 1, 2, 3},
		{0, 1},
		{1},
	}
	for i, set := range expected {
		if !reflect.DeepEqual(rm.Set(i), set) {
			t.Errorf("Node %d: expected regulators %v, got %v", i, set, rm.Set(i))
		}
	}
	if rm.EdgeCount() != 9 {
		t.Errorf("Expected 9 edges, got %d", rm.EdgeCount())
	}
}

func TestCorrectionGivesFullSetToUnregulatedNodes(t *testing.T) {
	// A has no incoming edges; with correction its regulator set becomes
	// the full node set {A, B, C}.
	net := New(map[string][]string{
		"A": {"B"},
		"B": {},
		"C": {"B", "C"},
	})

	rm := net.Reactions(true)
	expectedA := []int{0, 1, 2}
	if !reflect.DeepEqual(rm.Set(0), expectedA) {
		t.Errorf("Expected corrected set %v for A, got %v", expectedA, rm.Set(0))
	}

	uncorrected := net.Reactions(false)
	if len(uncorrected.Set(0)) != 0 {
		t.Errorf("Expected empty set for A without correction, got %v", uncorrected.Set(0))
	}
}

func TestTargetOnlyNodesArePresent(t *testing.T) {
	net := New(map[string][]string{"A": {"B"}})
	if net.NumNodes() != 2 {
		t.Fatalf("Expected 2 nodes, got %d", net.NumNodes())
	}
	rm := net.Reactions(false)
	if !reflect.DeepEqual(rm.Set(1), []int{0}) {
		t.Errorf("Expected B regulated by A, got %v", rm.Set(1))
	}
}

func TestWithoutEdge(t *testing.T) {
	rm := NewReactionMap([][]int{{2}, {0, 2, 3}, {0, 1, 2, 3}, {0}})
	reduced := rm.WithoutEdge(1, 1)

	if !reflect.DeepEqual(reduced.Set(1), []int{0, 3}) {
		t.Errorf("Expected {0,3}, got %v", reduced.Set(1))
	}
	// original untouched
	if !reflect.DeepEqual(rm.Set(1), []int{0, 2, 3}) {
		t.Errorf("Original map modified: %v", rm.Set(1))
	}
	if reduced.EdgeCount() != rm.EdgeCount()-1 {
		t.Errorf("Expected edge count %d, got %d", rm.EdgeCount()-1, reduced.EdgeCount())
	}
}
