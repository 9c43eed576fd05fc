package main

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// straightLine calculates the Euclidean distance between two locations
func straightLine(a, b *Location) float64 {
	return planar.Distance(a.Point(), b.Point())
}

// boundOf returns the bounding box of a set of locations
func boundOf(locs []*Location) orb.Bound {
	if len(locs) == 0 {
		return orb.Bound{}
	}
	points := make(orb.MultiPoint, 0, len(locs))
	for _, loc := range locs {
		points = append(points, loc.Point())
	}
	return points.Bound()
}

// segment returns the line between two locations
func segment(a, b *Location) orb.LineString {
	return orb.LineString{a.Point(), b.Point()}
}
