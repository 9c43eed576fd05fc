package main

import "errors"

// Error kinds surfaced by graph construction and route queries. Callers match
// them with errors.Is; the wrapped message names the offending location.
var (
	// ErrDuplicateLocation is returned when a location name is registered twice.
	ErrDuplicateLocation = errors.New("duplicate location")

	// ErrUnknownLocation is returned when a name does not resolve to a
	// registered location, either as a query endpoint or as a neighbor.
	ErrUnknownLocation = errors.New("unknown location")

	// ErrDegenerateEdge is returned when a declared connection joins two
	// locations with identical coordinates.
	ErrDegenerateEdge = errors.New("degenerate edge")

	// ErrNoPath is returned when no route connects the requested endpoints,
	// including when the search is cut short by its budget or its context.
	ErrNoPath = errors.New("no path")

	// ErrMalformedRecord is returned by the loaders for unparsable input.
	ErrMalformedRecord = errors.New("malformed location record")

	// ErrInvalidConfig is returned when configuration values are out of range.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// errSearchBudget marks a search stopped by its expansion cap.
var errSearchBudget = errors.New("search expansion budget exhausted")
