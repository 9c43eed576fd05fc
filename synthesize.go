package main

import (
	"fmt"
	"math"
)

// Edge is a directed connection to another location. It refers to its
// destination by name, the key into the graph's location arena.
type Edge struct {
	To        string  `json:"to"`
	Distance  float64 `json:"distance"`  // straight-line length
	Speed     float64 `json:"speed"`     // synthesized speed limit
	SpeedCost float64 `json:"speedCost"` // length scaled by maxSpeed/speed, never below Distance
}

// Cost returns the search cost of the edge. With considerSpeed off it is the
// straight-line length; with it on, slower edges cost proportionally more.
func (e Edge) Cost(considerSpeed bool) float64 {
	if considerSpeed {
		return e.SpeedCost
	}
	return e.Distance
}

// SynthesizerConfig bounds the synthesized per-edge speed
type SynthesizerConfig struct {
	MinSpeed float64 `yaml:"minSpeed"`
	MaxSpeed float64 `yaml:"maxSpeed"`

	// IntegerRatio truncates (xDiff-yDiff)/(xDiff+yDiff) toward zero before
	// scaling, so every speed is one of 0, 50 or 100 before clamping.
	IntegerRatio bool `yaml:"integerRatio"`
}

// DefaultSynthesizerConfig returns the standard 10..100 speed range
func DefaultSynthesizerConfig() SynthesizerConfig {
	return SynthesizerConfig{
		MinSpeed: 10,
		MaxSpeed: 100,
	}
}

// Validate checks that the speed range is usable. A positive MinSpeed keeps
// SpeedCost finite and MinSpeed <= MaxSpeed keeps SpeedCost >= Distance, which
// the A* heuristic relies on.
func (c SynthesizerConfig) Validate() error {
	if c.MinSpeed <= 0 || math.IsNaN(c.MinSpeed) {
		return fmt.Errorf("%w: minSpeed must be positive, got %v", ErrInvalidConfig, c.MinSpeed)
	}
	if c.MaxSpeed < c.MinSpeed || math.IsInf(c.MaxSpeed, 0) {
		return fmt.Errorf("%w: maxSpeed %v must be finite and >= minSpeed %v", ErrInvalidConfig, c.MaxSpeed, c.MinSpeed)
	}
	return nil
}

// Speed computes the fictional speed limit between two locations:
//
//	speed = 50 + 50 * (xDiff - yDiff) / (xDiff + yDiff)
//
// clamped to [MinSpeed, MaxSpeed].
func (c SynthesizerConfig) Speed(a, b *Location) (float64, error) {
	if a.X == b.X && a.Y == b.Y {
		return 0, fmt.Errorf("%w: %q and %q share coordinates (%d, %d)",
			ErrDegenerateEdge, a.Name, b.Name, a.X, a.Y)
	}

	// Float differences avoid integer overflow on extreme coordinates
	xDiff := math.Abs(float64(a.X) - float64(b.X))
	yDiff := math.Abs(float64(a.Y) - float64(b.Y))

	ratio := 0.0
	if sum := xDiff + yDiff; sum > 0 {
		ratio = (xDiff - yDiff) / sum
	}
	if c.IntegerRatio {
		ratio = math.Trunc(ratio)
	}

	speed := 50 + 50*ratio
	speed = math.Min(speed, c.MaxSpeed)
	speed = math.Max(speed, c.MinSpeed)
	return speed, nil
}

// SynthesizeEdges resolves every location's raw neighbor names and creates one
// directed edge per non-empty name, in neighbor-list order. Duplicated names
// yield duplicated edges. Edges are staged and only attached once every
// location succeeded, so a failure leaves the registry without edges.
// Returns the number of edges created.
func SynthesizeEdges(reg *Registry, cfg SynthesizerConfig) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}

	staged := make(map[string][]Edge, reg.Len())
	edgeCount := 0

	for _, loc := range reg.all() {
		edges := make([]Edge, 0, len(loc.neighbors))
		for _, name := range loc.neighbors {
			if name == "" {
				continue
			}

			other, err := reg.Lookup(name)
			if err != nil {
				return 0, fmt.Errorf("neighbor of %q: %w", loc.Name, err)
			}

			speed, err := cfg.Speed(loc, other)
			if err != nil {
				return 0, err
			}

			distance := straightLine(loc, other)
			edges = append(edges, Edge{
				To:        other.Name,
				Distance:  distance,
				Speed:     speed,
				SpeedCost: distance * (cfg.MaxSpeed / speed),
			})
		}
		staged[loc.Name] = edges
		edgeCount += len(edges)
	}

	for name, edges := range staged {
		reg.locations[name].edges = edges
	}

	logger.Debug().
		Int("locations", reg.Len()).
		Int("edges", edgeCount).
		Msg("Edges synthesized")

	return edgeCount, nil
}
