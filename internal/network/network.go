package network

import (
	"fmt"
	"sort"
	"strings"
)

// Network is a directed regulatory network: for each node, the set of nodes
// it has influence on. Node identity is by name; names are kept in sorted
// order so that the id of a node is stable across the whole run.
type Network struct {
	names   []string
	targets map[string]map[string]bool
}

// New builds a Network from an influence map (node -> nodes it regulates).
// Nodes that only appear as targets are added with an empty influence set.
func New(influences map[string][]string) *Network {
	targets := make(map[string]map[string]bool)
	for source, regulated := range influences {
		if targets[source] == nil {
			targets[source] = make(map[string]bool)
		}
		for _, target := range regulated {
			targets[source][target] = true
			if targets[target] == nil {
				targets[target] = make(map[string]bool)
			}
		}
	}

	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Network{names: names, targets: targets}
}

// Names returns the node names in sorted (id) order.
func (n *Network) Names() []string {
	return append([]string{}, n.names...)
}

// NumNodes returns the number of nodes in the network.
func (n *Network) NumNodes() int {
	return len(n.names)
}

// Reactions derives the reversed reaction map: for each node, the set of
// nodes that regulate it, keyed by id. With correction enabled, every node
// with an empty regulator set receives the full node set (itself included);
// this is the fix-up for nodes whose regulators are simply unknown.
func (n *Network) Reactions(correction bool) *ReactionMap {
	ids := make(map[string]int, len(n.names))
	for i, name := range n.names {
		ids[name] = i
	}

	sets := make([][]int, len(n.names))
	for i := range sets {
		sets[i] = []int{}
	}
	for source, regulated := range n.targets {
		for target := range regulated {
			sets[ids[target]] = append(sets[ids[target]], ids[source])
		}
	}
	for i := range sets {
		sort.Ints(sets[i])
	}

	if correction {
		all := make([]int, len(n.names))
		for i := range all {
			all[i] = i
		}
		for i, set := range sets {
			if len(set) == 0 {
				sets[i] = append([]int{}, all...)
			}
		}
	}

	return &ReactionMap{sets: sets}
}

func (n *Network) String() string {
	var b strings.Builder
	b.WriteString("== Network ==\n")
	b.WriteString(strings.Join(n.names, ", "))
	b.WriteString("\n")
	reactions := n.Reactions(false)
	for i, name := range n.names {
		regs := make([]string, 0, len(reactions.Set(i)))
		for _, id := range reactions.Set(i) {
			regs = append(regs, n.names[id])
		}
		fmt.Fprintf(&b, "%s <-- %s\n", name, strings.Join(regs, ", "))
	}
	return b.String()
}

// ReactionMap holds, for each node id, the sorted set of regulator ids.
// It is the per-round view of the network the optimization runs against:
// pruning rounds produce successively smaller copies of it.
type ReactionMap struct {
	sets [][]int
}

// NewReactionMap builds a ReactionMap directly from per-node regulator sets.
// Sets are copied and sorted.
func NewReactionMap(sets [][]int) *ReactionMap {
	owned := make([][]int, len(sets))
	for i, set := range sets {
		owned[i] = append([]int{}, set...)
		sort.Ints(owned[i])
	}
	return &ReactionMap{sets: owned}
}

// NumNodes returns the number of nodes covered by the map.
func (rm *ReactionMap) NumNodes() int {
	return len(rm.sets)
}

// Set returns the regulator ids of node i. The slice must not be modified.
func (rm *ReactionMap) Set(i int) []int {
	return rm.sets[i]
}

// EdgeCount returns the total number of edges over all nodes.
func (rm *ReactionMap) EdgeCount() int {
	count := 0
	for _, set := range rm.sets {
		count += len(set)
	}
	return count
}

// Clone returns a deep copy of the map.
func (rm *ReactionMap) Clone() *ReactionMap {
	return NewReactionMap(rm.sets)
}

// WithoutEdge returns a copy of the map with the j-th regulator of node i
// removed.
func (rm *ReactionMap) WithoutEdge(node, pos int) *ReactionMap {
	clone := rm.Clone()
	set := clone.sets[node]
	clone.sets[node] = append(set[:pos:pos], set[pos+1:]...)
	return clone
}

func (rm *ReactionMap) String() string {
	var b strings.Builder
	for i, set := range rm.sets {
		fmt.Fprintf(&b, "%d <-- %v\n", i, set)
	}
	return b.String()
}
