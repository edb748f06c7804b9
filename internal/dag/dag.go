package dag

import (
	"fmt"
	"sync"
)

// node is a single vertex with its adjacency sets.
type node struct {
	id         string
	deps       map[string]*node
	dependents map[string]*node
}

// Graph is a directed graph of string-identified nodes.
type Graph struct {
	mutex sync.RWMutex
	nodes map[string]*node
	order []string
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	g.nodes[id] = &node{
		id:         id,
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
	g.order = append(g.order, id)
}

// AddEdge creates a directed edge from the `fromID` node to the `toID`
// node, meaning `toID` depends on `fromID`. An error is returned if either
// node does not exist or if the edge would be a self-reference.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	toNode.deps[fromID] = fromNode
	fromNode.dependents[toID] = toNode

	return nil
}

// Sort returns a topological ordering of the graph. Ties are broken by
// declaration order, so a graph without edges sorts to exactly the order
// its nodes were added in. A cycle is reported as an error naming one node
// on it.
func (g *Graph) Sort() ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	remaining := make(map[string]int, len(g.nodes))
	for id, n := range g.nodes {
		remaining[id] = len(n.deps)
	}

	var sorted []string
	done := make(map[string]bool, len(g.nodes))

	for len(sorted) < len(g.nodes) {
		progressed := false
		// Scan in declaration order and take the first ready node.
		for _, id := range g.order {
			if done[id] || remaining[id] != 0 {
				continue
			}
			sorted = append(sorted, id)
			done[id] = true
			progressed = true
			for depID := range g.nodes[id].dependents {
				remaining[depID]--
			}
			break
		}
		if !progressed {
			for _, id := range g.order {
				if !done[id] {
					return nil, fmt.Errorf("requirement cycle detected involving node '%s'", id)
				}
			}
		}
	}
	return sorted, nil
}

// Dependencies returns the IDs the given node depends on.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}

	deps := make([]string, 0, len(n.deps))
	for depID := range n.deps {
		deps = append(deps, depID)
	}
	return deps, nil
}
