package main

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGraph_Triangle(t *testing.T) {
	g := mustBuild(t, triangleRecords())

	assert.Equal(t, 3, g.Len())
	assert.Equal(t, 4, g.EdgeCount())
	assert.Equal(t, []string{"A", "B", "C"}, g.Names())
	assert.Equal(t, orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}}, g.Bound())

	edges, err := g.NeighborsOf("B")
	require.NoError(t, err)
	require.Len(t, edges, 2)
	assert.Equal(t, "A", edges[0].To)
	assert.Equal(t, "C", edges[1].To)
	assert.Equal(t, 100.0, edges[0].Speed)
	assert.Equal(t, 10.0, edges[1].Speed)
	assert.InDelta(t, 10.0, edges[1].Cost(false), 1e-12)
	assert.InDelta(t, 100.0, edges[1].Cost(true), 1e-12)

	_, err = g.NeighborsOf("D")
	require.ErrorIs(t, err, ErrUnknownLocation)
}

func TestBuildGraph_Failures(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		want    error
	}{
		{
			name: "duplicate",
			records: []Record{
				{Name: "A", X: 0, Y: 0},
				{Name: "A", X: 1, Y: 1},
			},
			want: ErrDuplicateLocation,
		},
		{
			name: "dangling neighbor",
			records: []Record{
				{Name: "A", X: 0, Y: 0, Neighbors: []string{"B"}},
			},
			want: ErrUnknownLocation,
		},
		{
			name: "identical coordinates",
			records: []Record{
				{Name: "A", X: 5, Y: 5, Neighbors: []string{"B"}},
				{Name: "B", X: 5, Y: 5},
			},
			want: ErrDegenerateEdge,
		},
		{
			name: "self loop",
			records: []Record{
				{Name: "A", X: 5, Y: 5, Neighbors: []string{"A"}},
			},
			want: ErrDegenerateEdge,
		},
		{
			name: "empty name",
			records: []Record{
				{Name: "", X: 0, Y: 0},
			},
			want: ErrMalformedRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := BuildGraph(tt.records, DefaultSynthesizerConfig())
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, g)
		})
	}
}

func TestBuildGraph_SameCoordinatesWithoutConnection(t *testing.T) {
	g, err := BuildGraph([]Record{
		{Name: "A", X: 5, Y: 5},
		{Name: "B", X: 5, Y: 5},
	}, DefaultSynthesizerConfig())
	require.NoError(t, err)
	assert.Equal(t, 0, g.EdgeCount())
}

func TestBuildGraph_InvalidConfig(t *testing.T) {
	_, err := BuildGraph(triangleRecords(), SynthesizerConfig{MinSpeed: -1, MaxSpeed: 100})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestBuildGraph_Deterministic(t *testing.T) {
	records := []Record{
		{Name: "A", X: 0, Y: 0, Neighbors: []string{"B", "C", "D"}},
		{Name: "B", X: 13, Y: 7, Neighbors: []string{"A", "D"}},
		{Name: "C", X: -4, Y: 19, Neighbors: []string{"A"}},
		{Name: "D", X: 21, Y: -9, Neighbors: []string{"B", "C"}},
	}
	first := mustBuild(t, records)
	second := mustBuild(t, records)

	for _, name := range first.Names() {
		a, err := first.NeighborsOf(name)
		require.NoError(t, err)
		b, err := second.NeighborsOf(name)
		require.NoError(t, err)
		assert.Equal(t, a, b, "edges of %s", name)
	}
}

func TestGraph_LocationIsACopy(t *testing.T) {
	g := mustBuild(t, triangleRecords())

	loc, err := g.Location("A")
	require.NoError(t, err)
	loc.X = 999

	again, _ := g.Location("A")
	assert.Equal(t, 0, again.X)

	edges, _ := g.NeighborsOf("A")
	edges[0].To = "C"
	edges, _ = g.NeighborsOf("A")
	assert.Equal(t, "B", edges[0].To)
}

func TestGraph_FindNearest(t *testing.T) {
	g := mustBuild(t, triangleRecords())

	name, ok := g.FindNearest(9, 1, 5)
	require.True(t, ok)
	assert.Equal(t, "B", name)

	name, ok = g.FindNearest(9.5, 9, 5)
	require.True(t, ok)
	assert.Equal(t, "C", name)

	_, ok = g.FindNearest(5, 5, 5)
	assert.False(t, ok, "closest location is ~7.07 away")

	_, ok = g.FindNearest(15, 0, 5)
	assert.False(t, ok, "exactly on the radius does not count")
}

func TestGraph_EdgeLines(t *testing.T) {
	g := mustBuild(t, append(triangleRecords(), Record{Name: "D", X: 0, Y: 10, Neighbors: []string{"C"}}))

	fc := g.EdgeLines()
	// A-B and B-C are two-way, D->C is one-way
	require.Len(t, fc.Features, 3)

	first := fc.Features[0]
	assert.Equal(t, orb.LineString{{0, 0}, {10, 0}}, first.Geometry)
	assert.Equal(t, "A", first.Properties["from"])
	assert.Equal(t, "B", first.Properties["to"])
	assert.Equal(t, 100.0, first.Properties["speed"])
}
