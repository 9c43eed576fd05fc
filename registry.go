package main

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Record is one parsed input row: a location and the raw names of its neighbors
type Record struct {
	Name      string   `json:"name"`
	X         int      `json:"x"`
	Y         int      `json:"y"`
	Neighbors []string `json:"neighbors,omitempty"`
}

// Location is a named node of the road network
type Location struct {
	Name string
	X    int
	Y    int

	neighbors []string // raw names as supplied, resolved during synthesis
	edges     []Edge   // outgoing edges, set once by SynthesizeEdges
}

// Point returns the location as a planar point
func (l *Location) Point() orb.Point {
	return orb.Point{float64(l.X), float64(l.Y)}
}

// Edges returns a copy of the location's outgoing edges
func (l *Location) Edges() []Edge {
	out := make([]Edge, len(l.edges))
	copy(out, l.edges)
	return out
}

// Registry holds locations keyed by name and remembers registration order.
// Locations are never removed.
type Registry struct {
	locations map[string]*Location
	order     []string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		locations: make(map[string]*Location),
	}
}

// Register inserts a new location. Neighbor names may refer to locations that
// are registered later; they are only resolved by SynthesizeEdges.
func (r *Registry) Register(name string, x, y int, neighbors []string) (*Location, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty location name", ErrMalformedRecord)
	}
	if _, exists := r.locations[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateLocation, name)
	}

	loc := &Location{
		Name:      name,
		X:         x,
		Y:         y,
		neighbors: append([]string(nil), neighbors...),
	}
	r.locations[name] = loc
	r.order = append(r.order, name)
	return loc, nil
}

// Lookup returns the location registered under name
func (r *Registry) Lookup(name string) (*Location, error) {
	loc, ok := r.locations[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLocation, name)
	}
	return loc, nil
}

// Len returns the number of registered locations
func (r *Registry) Len() int { return len(r.order) }

// Names returns location names in registration order
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// all returns the locations in registration order
func (r *Registry) all() []*Location {
	locs := make([]*Location, 0, len(r.order))
	for _, name := range r.order {
		locs = append(locs, r.locations[name])
	}
	return locs
}
