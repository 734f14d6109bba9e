package compile

import (
	"github.com/constellation-run/constellation/cerrors"
	"github.com/constellation-run/constellation/ir"
)

// node identifies one vertex in the bipartite data/module graph used only
// for acyclicity checking: data and module nodes share an id namespace
// (a module node's id equals the id of the data node it produces), so
// each is tagged by kind to keep them distinct.
type node struct {
	id     ir.ID
	module bool
}

// checkAcyclic runs Kahn's algorithm over the DAG's data and module
// vertices (mirrors the topological-levels idiom used for level-parallel
// execution, generalized here to a bipartite graph purely to detect
// cycles at compile time).
func checkAcyclic(d *DAG) *cerrors.CompileError {
	inDegree := make(map[node]int)
	dependents := make(map[node][]node)

	addNode := func(n node) {
		if _, ok := inDegree[n]; !ok {
			inDegree[n] = 0
		}
	}
	for id := range d.Data {
		addNode(node{id, false})
	}
	for id := range d.Modules {
		addNode(node{id, true})
	}

	addEdge := func(from, to node) {
		inDegree[to]++
		dependents[from] = append(dependents[from], to)
	}
	for _, e := range d.InEdges {
		addEdge(node{e.Data, false}, node{e.Module, true})
	}
	for _, e := range d.OutEdges {
		addEdge(node{e.Module, true}, node{e.Data, false})
	}

	var queue []node
	for n, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, n)
		}
	}

	visited := 0
	for len(queue) > 0 {
		visited += len(queue)
		var next []node
		for _, n := range queue {
			for _, dep := range dependents[n] {
				inDegree[dep]--
				if inDegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		queue = next
	}

	if visited != len(inDegree) {
		var stuck []string
		for n, deg := range inDegree {
			if deg > 0 {
				stuck = append(stuck, string(n.id))
			}
		}
		return cerrors.CycleDetected(cerrors.Span{}, stuck)
	}
	return nil
}
