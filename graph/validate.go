package graph

import "fmt"

// validateSubgraph checks edge endpoints and start-to-finish reachability.
// Reachability is a plain breadth-first walk over the adjacency structure;
// predicates are runtime data and play no part here. Nested subgraphs were
// validated when they were built.
func validateSubgraph(sub *Subgraph) error {
	for from, edges := range sub.out {
		if _, ok := sub.nodes[from]; !ok {
			return &ConstructionError{Graph: sub.name, Message: fmt.Sprintf("edge from unknown node %q", from)}
		}
		if from == FinishNodeID {
			return &ConstructionError{Graph: sub.name, Message: "finish sentinel must not have outgoing edges"}
		}
		for _, e := range edges {
			if _, ok := sub.nodes[e.To]; !ok {
				return &ConstructionError{Graph: sub.name, Message: fmt.Sprintf("edge from %q to unknown node %q", from, e.To)}
			}
			if e.To == StartNodeID {
				return &ConstructionError{Graph: sub.name, Message: "start sentinel must not have incoming edges"}
			}
		}
	}

	if !reachesFinish(sub) {
		return &ConstructionError{Graph: sub.name, Message: "finish is not reachable from start"}
	}
	return nil
}

func reachesFinish(sub *Subgraph) bool {
	seen := map[string]bool{StartNodeID: true}
	queue := []string{StartNodeID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == FinishNodeID {
			return true
		}
		for _, e := range sub.out[id] {
			if !seen[e.To] {
				seen[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}
	return false
}
