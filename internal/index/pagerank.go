package index

import (
	"errors"
	"sort"

	"github.com/dominikbraun/graph"

	"github.com/mvp-joe/codeindex/internal/store"
)

// pageRankIterations and pageRankDamping are the hardcoded defaults, used
// when Settings doesn't override them (see DefaultSettings).
const (
	pageRankIterations = 20
	pageRankDamping    = 0.85
)

// pageRank runs the damped power-iteration PageRank over the full symbol/edge
// graph and returns one Ranking per symbol id. No normalization step runs
// afterward; the dangling-node redistribution keeps the vector stochastic
// within floating-point error.
func pageRank(symbolIDs []int64, edges []store.Edge, iterations int, damping float64) []store.Ranking {
	n := len(symbolIDs)
	if n == 0 {
		return nil
	}

	g := graph.New(func(id int64) int64 { return id }, graph.Directed())
	for _, id := range symbolIDs {
		if err := g.AddVertex(id); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			continue
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(e.FromID, e.ToID); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
			continue
		}
	}

	adjacency, err := g.AdjacencyMap()
	if err != nil {
		adjacency = map[int64]map[int64]graph.Edge[int64]{}
	}
	predecessors, err := g.PredecessorMap()
	if err != nil {
		predecessors = map[int64]map[int64]graph.Edge[int64]{}
	}

	ids := make([]int64, n)
	copy(ids, symbolIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	index := make(map[int64]int, n)
	for i, id := range ids {
		index[id] = i
	}

	outEdges := make([][]int, n)
	outDeg := make([]int, n)
	inDeg := make([]int, n)

	for id, targets := range adjacency {
		i, ok := index[id]
		if !ok {
			continue
		}
		for target := range targets {
			if j, ok := index[target]; ok {
				outEdges[i] = append(outEdges[i], j)
			}
		}
		outDeg[i] = len(outEdges[i])
	}
	for id, preds := range predecessors {
		if i, ok := index[id]; ok {
			inDeg[i] = len(preds)
		}
	}

	rank := make([]float64, n)
	for i := range rank {
		rank[i] = 1.0 / float64(n)
	}

	base := (1 - damping) / float64(n)
	for iter := 0; iter < iterations; iter++ {
		next := make([]float64, n)
		for i := range next {
			next[i] = base
		}

		dangling := 0.0
		for i := 0; i < n; i++ {
			if outDeg[i] == 0 {
				dangling += damping * rank[i] / float64(n)
				continue
			}
			share := damping * rank[i] / float64(outDeg[i])
			for _, j := range outEdges[i] {
				next[j] += share
			}
		}
		if dangling != 0 {
			for i := range next {
				next[i] += dangling
			}
		}

		rank = next
	}

	rankings := make([]store.Ranking, n)
	for i, id := range ids {
		rankings[i] = store.Ranking{
			SymbolID:  id,
			Rank:      rank[i],
			InDegree:  inDeg[i],
			OutDegree: outDeg[i],
		}
	}
	return rankings
}
