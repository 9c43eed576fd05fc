package main

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpeed_Directions(t *testing.T) {
	cfg := DefaultSynthesizerConfig()
	origin := &Location{Name: "O", X: 0, Y: 0}

	tests := []struct {
		name string
		x, y int
		want float64
	}{
		{"horizontal", 10, 0, 100},
		{"vertical clamps to min", 0, 10, 10},
		{"diagonal", 10, 10, 50},
		{"mostly horizontal", 3, 1, 75},
		{"mostly vertical", -1, -3, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			speed, err := cfg.Speed(origin, &Location{Name: "P", X: tt.x, Y: tt.y})
			require.NoError(t, err)
			assert.InDelta(t, tt.want, speed, 1e-9)
		})
	}
}

func TestSpeed_IntegerRatio(t *testing.T) {
	cfg := DefaultSynthesizerConfig()
	cfg.IntegerRatio = true
	origin := &Location{Name: "O", X: 0, Y: 0}

	speed, err := cfg.Speed(origin, &Location{Name: "P", X: 3, Y: 1})
	require.NoError(t, err)
	assert.Equal(t, 50.0, speed, "ratio 0.5 truncates to 0")

	speed, err = cfg.Speed(origin, &Location{Name: "P", X: 7, Y: 0})
	require.NoError(t, err)
	assert.Equal(t, 100.0, speed)
}

func TestSpeed_ClampRange(t *testing.T) {
	cfg := DefaultSynthesizerConfig()
	rng := rand.New(rand.NewSource(7))

	coord := func() int {
		switch rng.Intn(3) {
		case 0:
			return rng.Intn(21) - 10
		case 1:
			return rng.Intn(2_000_001) - 1_000_000
		default:
			if rng.Intn(2) == 0 {
				return math.MaxInt64 - rng.Intn(10)
			}
			return math.MinInt64 + rng.Intn(10)
		}
	}

	for i := 0; i < 2000; i++ {
		a := &Location{Name: "A", X: coord(), Y: coord()}
		b := &Location{Name: "B", X: coord(), Y: coord()}
		speed, err := cfg.Speed(a, b)
		if a.X == b.X && a.Y == b.Y {
			require.ErrorIs(t, err, ErrDegenerateEdge)
			continue
		}
		require.NoError(t, err)
		require.GreaterOrEqual(t, speed, 10.0, "a=%+v b=%+v", a, b)
		require.LessOrEqual(t, speed, 100.0, "a=%+v b=%+v", a, b)
	}
}

func TestSpeed_Degenerate(t *testing.T) {
	cfg := DefaultSynthesizerConfig()
	_, err := cfg.Speed(&Location{Name: "A", X: 4, Y: 4}, &Location{Name: "B", X: 4, Y: 4})
	require.ErrorIs(t, err, ErrDegenerateEdge)
}

func TestSynthesizerConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultSynthesizerConfig().Validate())
	assert.ErrorIs(t, SynthesizerConfig{MinSpeed: 0, MaxSpeed: 100}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, SynthesizerConfig{MinSpeed: 50, MaxSpeed: 40}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, SynthesizerConfig{MinSpeed: 10, MaxSpeed: math.Inf(1)}.Validate(), ErrInvalidConfig)
}

func TestSynthesizeEdges_OrderAndDuplicates(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Register("A", 0, 0, []string{"C", "", "B", "B"})
	require.NoError(t, err)
	_, err = reg.Register("B", 3, 4, nil)
	require.NoError(t, err)
	_, err = reg.Register("C", 0, 8, nil)
	require.NoError(t, err)

	n, err := SynthesizeEdges(reg, DefaultSynthesizerConfig())
	require.NoError(t, err)
	assert.Equal(t, 3, n, "empty names are skipped, repeated names are not merged")

	a, _ := reg.Lookup("A")
	edges := a.Edges()
	require.Len(t, edges, 3)
	assert.Equal(t, "C", edges[0].To)
	assert.Equal(t, "B", edges[1].To)
	assert.Equal(t, "B", edges[2].To)
	assert.InDelta(t, 5.0, edges[1].Distance, 1e-12)
	assert.InDelta(t, 8.0, edges[0].Distance, 1e-12)
}

func TestSynthesizeEdges_SpeedCostNeverBelowDistance(t *testing.T) {
	reg := NewRegistry()
	reg.Register("A", 0, 0, []string{"B", "C", "D"})
	reg.Register("B", 10, 0, nil)
	reg.Register("C", 0, 10, nil)
	reg.Register("D", 7, 3, nil)

	_, err := SynthesizeEdges(reg, DefaultSynthesizerConfig())
	require.NoError(t, err)

	a, _ := reg.Lookup("A")
	for _, e := range a.Edges() {
		assert.GreaterOrEqual(t, e.SpeedCost, e.Distance, "edge to %s", e.To)
		assert.Equal(t, e.Distance, e.Cost(false))
		assert.Equal(t, e.SpeedCost, e.Cost(true))
	}
	// Vertical edge runs at min speed: ten times the length
	assert.InDelta(t, 100.0, a.Edges()[1].SpeedCost, 1e-9)
}

func TestSynthesizeEdges_UnknownNeighborLeavesNoEdges(t *testing.T) {
	reg := NewRegistry()
	reg.Register("A", 0, 0, []string{"B"})
	reg.Register("B", 5, 0, []string{"Nowhere"})

	_, err := SynthesizeEdges(reg, DefaultSynthesizerConfig())
	require.ErrorIs(t, err, ErrUnknownLocation)
	assert.Contains(t, err.Error(), "Nowhere")

	a, _ := reg.Lookup("A")
	assert.Empty(t, a.Edges())
}

func TestSynthesizeEdges_Idempotent(t *testing.T) {
	reg := NewRegistry()
	reg.Register("A", 0, 0, []string{"B"})
	reg.Register("B", 5, 2, []string{"A"})

	cfg := DefaultSynthesizerConfig()
	_, err := SynthesizeEdges(reg, cfg)
	require.NoError(t, err)
	n, err := SynthesizeEdges(reg, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	a, _ := reg.Lookup("A")
	assert.Len(t, a.Edges(), 1)
}
