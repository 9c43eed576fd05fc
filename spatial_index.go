package main

import (
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// pointTolerance is the half-width of the box a location occupies in the tree
const pointTolerance = 0.01

// locationEntry wraps a location for R-tree storage
type locationEntry struct {
	name  string
	point orb.Point
}

// Bounds implements rtreego.Spatial interface
func (e *locationEntry) Bounds() rtreego.Rect {
	return rtreego.Point{e.point.X(), e.point.Y()}.ToRect(pointTolerance)
}

// LocationIndex answers nearest-location queries for click selection
type LocationIndex struct {
	tree *rtreego.Rtree
	size int
}

// NewLocationIndex creates a new spatial index over the given locations
func NewLocationIndex(locs []*Location) *LocationIndex {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	for _, loc := range locs {
		tree.Insert(&locationEntry{
			name:  loc.Name,
			point: loc.Point(),
		})
	}

	return &LocationIndex{tree: tree, size: len(locs)}
}

// Nearest returns the name of the location closest to (x, y) if it lies
// strictly within radius of that point.
func (li *LocationIndex) Nearest(x, y, radius float64) (string, bool) {
	if li.size == 0 || radius <= 0 {
		return "", false
	}

	hit := li.tree.NearestNeighbor(rtreego.Point{x, y})
	if hit == nil {
		return "", false
	}

	entry := hit.(*locationEntry)
	if planar.Distance(orb.Point{x, y}, entry.point) >= radius {
		return "", false
	}
	return entry.name, true
}
