package main

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Graph is the road network: an arena of locations keyed by name together
// with their synthesized outgoing edges. A Graph is immutable once built and
// safe for concurrent queries.
type Graph struct {
	registry  *Registry
	index     *LocationIndex
	synth     SynthesizerConfig
	edgeCount int
	bound     orb.Bound
}

// BuildGraph registers every record and then synthesizes the edges.
// Construction is all-or-nothing: on any error no graph is returned.
func BuildGraph(records []Record, cfg SynthesizerConfig) (*Graph, error) {
	startTime := time.Now()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reg := NewRegistry()
	for i, rec := range records {
		if _, err := reg.Register(rec.Name, rec.X, rec.Y, rec.Neighbors); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
	}

	edgeCount, err := SynthesizeEdges(reg, cfg)
	if err != nil {
		return nil, err
	}

	locs := reg.all()
	g := &Graph{
		registry:  reg,
		index:     NewLocationIndex(locs),
		synth:     cfg,
		edgeCount: edgeCount,
		bound:     boundOf(locs),
	}

	logger.Info().
		Int("locations", reg.Len()).
		Int("edges", edgeCount).
		Dur("elapsed", time.Since(startTime)).
		Msg("Graph built")

	return g, nil
}

// Len returns the number of locations
func (g *Graph) Len() int { return g.registry.Len() }

// EdgeCount returns the number of directed edges
func (g *Graph) EdgeCount() int { return g.edgeCount }

// Names returns location names in input order
func (g *Graph) Names() []string { return g.registry.Names() }

// Bound returns the bounding box of all locations
func (g *Graph) Bound() orb.Bound { return g.bound }

// Synthesizer returns the speed configuration the edges were built with
func (g *Graph) Synthesizer() SynthesizerConfig { return g.synth }

// Location returns a copy of the named location
func (g *Graph) Location(name string) (Location, error) {
	loc, err := g.registry.Lookup(name)
	if err != nil {
		return Location{}, err
	}
	return *loc, nil
}

// NeighborsOf returns the outgoing edges of the named location
func (g *Graph) NeighborsOf(name string) ([]Edge, error) {
	loc, err := g.registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	return loc.Edges(), nil
}

// FindNearest returns the location lying strictly within radius of (x, y),
// preferring the closest one.
func (g *Graph) FindNearest(x, y, radius float64) (string, bool) {
	return g.index.Nearest(x, y, radius)
}

// EdgeLines returns the edges as GeoJSON line features for rendering.
// A connection declared in both directions is emitted once.
func (g *Graph) EdgeLines() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	// Use a map to avoid duplicate lines for two-way connections
	seen := make(map[[2]string]bool)

	for _, loc := range g.registry.all() {
		for _, edge := range loc.edges {
			key := [2]string{loc.Name, edge.To}
			if edge.To < loc.Name {
				key = [2]string{edge.To, loc.Name}
			}
			if seen[key] {
				continue
			}
			seen[key] = true

			other := g.registry.locations[edge.To]
			feature := geojson.NewFeature(segment(loc, other))
			feature.Properties["from"] = loc.Name
			feature.Properties["to"] = edge.To
			feature.Properties["distance"] = edge.Distance
			feature.Properties["speed"] = edge.Speed
			fc.Append(feature)
		}
	}

	return fc
}
