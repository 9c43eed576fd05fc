package main

import (
	"container/heap"
	"context"
	"fmt"
)

// ctxCheckInterval is how many expansions run between context checks
const ctxCheckInterval = 64

// Path is one partial route on the A* frontier. Paths share their prefix
// through the previous pointer, so pushing a child never copies the route.
type Path struct {
	location         *Location
	previous         *Path   // nil for the start of the route
	distanceTraveled float64 // cost accumulated from the start
	cost             float64 // distanceTraveled + heuristic to the goal
	seq              uint64  // insertion order, breaks cost ties
	index            int     // index in the heap
}

// names returns the visited locations from start to this path's location
func (p *Path) names() []string {
	n := 0
	for node := p; node != nil; node = node.previous {
		n++
	}
	names := make([]string, n)
	for node := p; node != nil; node = node.previous {
		n--
		names[n] = node.location.Name
	}
	return names
}

// frontier implements heap.Interface ordered by cost, then insertion order
type frontier []*Path

func (pq frontier) Len() int { return len(pq) }

func (pq frontier) Less(i, j int) bool {
	if pq[i].cost != pq[j].cost {
		return pq[i].cost < pq[j].cost
	}
	return pq[i].seq < pq[j].seq
}

func (pq frontier) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *frontier) Push(x interface{}) {
	n := len(*pq)
	path := x.(*Path)
	path.index = n
	*pq = append(*pq, path)
}

func (pq *frontier) Pop() interface{} {
	old := *pq
	n := len(old)
	path := old[n-1]
	old[n-1] = nil
	path.index = -1
	*pq = old[0 : n-1]
	return path
}

// Route is the result of a successful search
type Route struct {
	Locations []string `json:"locations"`
	Cost      float64  `json:"cost"`
	Expanded  int      `json:"expanded"` // frontier pops that produced children
}

// SearchOptions tune a single ShortestPath call
type SearchOptions struct {
	ConsiderSpeed bool // weight edge cost by speed
	MaxExpansions int  // 0 means unlimited
}

// SearchOption configures a ShortestPath call
type SearchOption func(*SearchOptions)

// WithConsiderSpeed toggles speed-weighted edge costs
func WithConsiderSpeed(considerSpeed bool) SearchOption {
	return func(o *SearchOptions) { o.ConsiderSpeed = considerSpeed }
}

// WithMaxExpansions caps the number of expanded paths; hitting the cap fails
// the search with ErrNoPath.
func WithMaxExpansions(n int) SearchOption {
	return func(o *SearchOptions) { o.MaxExpansions = n }
}

// ShortestPath computes a minimum-cost route from start to finish with A*,
// using the straight-line distance to finish as heuristic.
//
// Every call owns its frontier, so concurrent calls on one Graph are safe.
// A child path never steps straight back to the location it came from, and is
// only queued when it reaches its location more cheaply than any earlier
// queued path did. Equal-cost paths leave the frontier in insertion order.
func (g *Graph) ShortestPath(ctx context.Context, start, finish string, opts ...SearchOption) (*Route, error) {
	var o SearchOptions
	for _, opt := range opts {
		opt(&o)
	}

	startLoc, err := g.registry.Lookup(start)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	goal, err := g.registry.Lookup(finish)
	if err != nil {
		return nil, fmt.Errorf("finish: %w", err)
	}

	if startLoc == goal {
		return &Route{Locations: []string{start}}, nil
	}

	openSet := &frontier{}
	heap.Init(openSet)

	var seq uint64
	push := func(p *Path) {
		p.seq = seq
		seq++
		heap.Push(openSet, p)
	}

	best := map[string]float64{startLoc.Name: 0}
	push(&Path{
		location: startLoc,
		cost:     straightLine(startLoc, goal),
	})

	expanded := 0
	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*Path)

		// Check if we reached the goal
		if current.location == goal {
			return &Route{
				Locations: current.names(),
				Cost:      current.distanceTraveled,
				Expanded:  expanded,
			}, nil
		}

		// A cheaper path to this location was queued after this one
		if current.distanceTraveled > best[current.location.Name] {
			continue
		}

		if o.MaxExpansions > 0 && expanded >= o.MaxExpansions {
			return nil, fmt.Errorf("%w from %q to %q: %w", ErrNoPath, start, finish, errSearchBudget)
		}
		if expanded%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("%w from %q to %q: %w", ErrNoPath, start, finish, err)
			}
		}
		expanded++

		var cameFrom *Location
		if current.previous != nil {
			cameFrom = current.previous.location
		}

		for _, edge := range current.location.edges {
			next := g.registry.locations[edge.To]
			if next == cameFrom {
				continue
			}

			traveled := current.distanceTraveled + edge.Cost(o.ConsiderSpeed)
			if known, ok := best[next.Name]; ok && traveled >= known {
				continue
			}
			best[next.Name] = traveled

			push(&Path{
				location:         next,
				previous:         current,
				distanceTraveled: traveled,
				cost:             traveled + straightLine(next, goal),
			})
		}
	}

	return nil, fmt.Errorf("%w from %q to %q", ErrNoPath, start, finish)
}
