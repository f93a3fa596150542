package gen

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"sqljob-generator/internal/joins"
	"sqljob-generator/internal/sqltext"
)

// topoSort returns indices in dependency order.
//
// depsFn(i) yields indices that must come before i. When multiple nodes are
// available the smallest index wins, so an input without dependencies keeps
// its order. If a cycle exists, an error is returned.
func topoSort(n int, depsFn func(i int) []int) ([]int, error) {
	if n <= 0 {
		return nil, nil
	}

	indeg := make([]int, n)
	out := make([][]int, n)

	for i := 0; i < n; i++ {
		deps := depsFn(i)
		for _, d := range deps {
			if d < 0 || d >= n {
				return nil, fmt.Errorf("dependency index out of range: %d depends on %d", i, d)
			}

			indeg[i]++
			out[d] = append(out[d], i)
		}
	}

	for i := range out {
		sort.Ints(out[i])
	}

	var ready []int

	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]int, 0, n)

	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]

		order = append(order, i)
		for _, j := range out[i] {
			indeg[j]--
			if indeg[j] == 0 {
				k := sort.SearchInts(ready, j)
				ready = append(ready, 0)
				copy(ready[k+1:], ready[k:])
				ready[k] = j
			}
		}
	}

	if len(order) != n {
		return nil, errors.New("cycle detected")
	}

	return order, nil
}

// orderJoins moves a join after the joins whose aliases its ON condition
// reads. Discovery order is kept otherwise, and entirely when the joins
// reference each other in a cycle.
func orderJoins(edges []joins.Edge) []joins.Edge {
	byAlias := make(map[string]int, len(edges))
	for i, e := range edges {
		byAlias[strings.ToLower(e.Alias)] = i
	}

	order, err := topoSort(len(edges), func(i int) []int {
		var deps []int

		seen := map[int]struct{}{}

		for _, r := range sqltext.References(edges[i].On) {
			j, ok := byAlias[strings.ToLower(r.Qualifier)]
			if !ok || j == i {
				continue
			}

			if _, dup := seen[j]; dup {
				continue
			}

			seen[j] = struct{}{}
			deps = append(deps, j)
		}

		return deps
	})
	if err != nil {
		return edges
	}

	out := make([]joins.Edge, 0, len(edges))
	for _, i := range order {
		out = append(out, edges[i])
	}

	return out
}
