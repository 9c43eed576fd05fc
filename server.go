package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type RouteRequest struct {
	Start         string `json:"start"`
	Finish        string `json:"finish"`
	ConsiderSpeed *bool  `json:"considerSpeed,omitempty"` // falls back to the configured default
}

type Waypoint struct {
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

type RouteResponse struct {
	RequestID string     `json:"requestId,omitempty"`
	Success   bool       `json:"success"`
	Message   string     `json:"message,omitempty"`
	Path      []string   `json:"path,omitempty"`
	Waypoints []Waypoint `json:"waypoints,omitempty"`
	Cost      float64    `json:"cost"`
	Expanded  int        `json:"expanded,omitempty"`
}

type BatchRouteRequest struct {
	Routes []RouteRequest `json:"routes"`
}

type BatchRouteResponse struct {
	RequestID string          `json:"requestId"`
	Results   []RouteResponse `json:"results"`
}

type NeighborResponse struct {
	Name     string  `json:"name"`
	Cost     float64 `json:"cost"`
	Distance float64 `json:"distance"`
	Speed    float64 `json:"speed"`
}

// Server serves route queries over the currently loaded graph
type Server struct {
	cfg *Config

	mu    sync.RWMutex
	graph *Graph
}

// NewServer creates a server without a graph; call Reload or SetGraph
func NewServer(cfg *Config) *Server {
	return &Server{cfg: cfg}
}

// SetGraph swaps the served graph
func (s *Server) SetGraph(g *Graph) {
	s.mu.Lock()
	s.graph = g
	s.mu.Unlock()
}

func (s *Server) currentGraph() *Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph
}

// Reload rebuilds the graph from the configured data file. The served graph
// is only replaced when the new one was built completely.
func (s *Server) Reload() (*Graph, error) {
	records, err := LoadRecordsFile(s.cfg.DataFile)
	if err != nil {
		return nil, err
	}
	g, err := BuildGraph(records, s.cfg.Synthesizer)
	if err != nil {
		return nil, err
	}
	s.SetGraph(g)
	return g, nil
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(requestLogger, corsMiddleware)

	r.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/locations", s.locationsHandler).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/locations/{name}/neighbors", s.neighborsHandler).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/nearest", s.nearestHandler).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/route", s.routeHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/routes", s.batchRouteHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/graph/lines", s.graphLinesHandler).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/graph/reload", s.reloadHandler).Methods(http.MethodPost, http.MethodOptions)

	return r
}

type ctxKey int

const requestIDKey ctxKey = iota

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// requestLogger tags every request with an id and logs its outcome
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))

		var ev *zerolog.Event
		if rec.status >= http.StatusInternalServerError {
			ev = logger.Error()
		} else {
			ev = logger.Info()
		}
		ev.Str("request", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("Request handled")
	})
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   msg,
	})
}

// requireGraph writes a 503 and returns nil when no graph is loaded
func (s *Server) requireGraph(w http.ResponseWriter) *Graph {
	g := s.currentGraph()
	if g == nil {
		writeError(w, http.StatusServiceUnavailable, "graph not loaded. Call /graph/reload first")
	}
	return g
}

// GET /health - Health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	g := s.currentGraph()

	resp := map[string]interface{}{
		"status":   "ready",
		"hasGraph": g != nil,
	}
	if g == nil {
		resp["status"] = "waiting for graph"
	} else {
		b := g.Bound()
		resp["numLocations"] = g.Len()
		resp["numEdges"] = g.EdgeCount()
		resp["boundingBox"] = map[string]float64{
			"minX": b.Min.X(),
			"minY": b.Min.Y(),
			"maxX": b.Max.X(),
			"maxY": b.Max.Y(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /locations - Location names in input order, for the selectors
func (s *Server) locationsHandler(w http.ResponseWriter, r *http.Request) {
	g := s.requireGraph(w)
	if g == nil {
		return
	}

	names := g.Names()
	waypoints := make([]Waypoint, 0, len(names))
	for _, name := range names {
		loc, err := g.Location(name)
		if err != nil {
			continue
		}
		waypoints = append(waypoints, Waypoint{Name: loc.Name, X: loc.X, Y: loc.Y})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"locations": waypoints,
		"count":     len(waypoints),
	})
}

// GET /locations/{name}/neighbors - Outgoing edges of a location
func (s *Server) neighborsHandler(w http.ResponseWriter, r *http.Request) {
	g := s.requireGraph(w)
	if g == nil {
		return
	}

	name := mux.Vars(r)["name"]
	edges, err := g.NeighborsOf(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	considerSpeed := s.cfg.ConsiderSpeed
	if v := r.URL.Query().Get("considerSpeed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid considerSpeed")
			return
		}
		considerSpeed = b
	}

	neighbors := make([]NeighborResponse, 0, len(edges))
	for _, e := range edges {
		neighbors = append(neighbors, NeighborResponse{
			Name:     e.To,
			Cost:     e.Cost(considerSpeed),
			Distance: e.Distance,
			Speed:    e.Speed,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":      name,
		"neighbors": neighbors,
	})
}

// GET /nearest?x=&y=&radius= - Location under a click
func (s *Server) nearestHandler(w http.ResponseWriter, r *http.Request) {
	g := s.requireGraph(w)
	if g == nil {
		return
	}

	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		writeError(w, http.StatusBadRequest, "x and y must be numbers")
		return
	}
	radius := s.cfg.ClickRadius
	if v := q.Get("radius"); v != "" {
		rad, err := strconv.ParseFloat(v, 64)
		if err != nil || rad < 0 {
			writeError(w, http.StatusBadRequest, "radius must be a non-negative number")
			return
		}
		radius = rad
	}

	name, ok := g.FindNearest(x, y, radius)
	if !ok {
		writeError(w, http.StatusNotFound, "no location within radius")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"name":    name,
	})
}

// POST /route - Compute the shortest route between two locations
func (s *Server) routeHandler(w http.ResponseWriter, r *http.Request) {
	id := requestIDFrom(r.Context())

	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn().Str("request", id).Err(err).Msg("Invalid request body")
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	g := s.requireGraph(w)
	if g == nil {
		return
	}

	resp, err := s.route(r.Context(), g, req)
	resp.RequestID = id
	switch {
	case errors.Is(err, ErrUnknownLocation):
		resp.Message = err.Error()
		writeJSON(w, http.StatusNotFound, resp)
	case err != nil && !errors.Is(err, ErrNoPath):
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

// POST /routes - Compute several routes concurrently
func (s *Server) batchRouteHandler(w http.ResponseWriter, r *http.Request) {
	id := requestIDFrom(r.Context())

	var req BatchRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn().Str("request", id).Err(err).Msg("Invalid request body")
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	g := s.requireGraph(w)
	if g == nil {
		return
	}

	results := make([]RouteResponse, len(req.Routes))
	eg, ctx := errgroup.WithContext(r.Context())
	eg.SetLimit(s.cfg.BatchWorkers)

	for i, rr := range req.Routes {
		i, rr := i, rr
		eg.Go(func() error {
			// Per-route failures are reported in the result, not the group
			results[i], _ = s.route(ctx, g, rr)
			return nil
		})
	}
	_ = eg.Wait()

	logger.Info().Str("request", id).Int("routes", len(req.Routes)).Msg("Batch routed")
	writeJSON(w, http.StatusOK, BatchRouteResponse{
		RequestID: id,
		Results:   results,
	})
}

// route runs one query and shapes it into a response. The returned error is
// the search error, already reflected in the response message.
func (s *Server) route(ctx context.Context, g *Graph, req RouteRequest) (RouteResponse, error) {
	considerSpeed := s.cfg.ConsiderSpeed
	if req.ConsiderSpeed != nil {
		considerSpeed = *req.ConsiderSpeed
	}

	if s.cfg.SearchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.SearchTimeout)
		defer cancel()
	}

	route, err := g.ShortestPath(ctx, req.Start, req.Finish,
		WithConsiderSpeed(considerSpeed),
		WithMaxExpansions(s.cfg.MaxExpansions),
	)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, ErrNoPath) {
			msg = "no route found"
		}
		logger.Debug().
			Str("start", req.Start).
			Str("finish", req.Finish).
			Err(err).
			Msg("Route failed")
		return RouteResponse{Success: false, Message: msg}, err
	}

	waypoints := make([]Waypoint, 0, len(route.Locations))
	for _, name := range route.Locations {
		loc, err := g.Location(name)
		if err != nil {
			return RouteResponse{Success: false, Message: err.Error()}, err
		}
		waypoints = append(waypoints, Waypoint{Name: loc.Name, X: loc.X, Y: loc.Y})
	}

	logger.Debug().
		Str("start", req.Start).
		Str("finish", req.Finish).
		Int("hops", len(route.Locations)-1).
		Float64("cost", route.Cost).
		Int("expanded", route.Expanded).
		Msg("Route found")

	return RouteResponse{
		Success:   true,
		Path:      route.Locations,
		Waypoints: waypoints,
		Cost:      route.Cost,
		Expanded:  route.Expanded,
	}, nil
}

// GET /graph/lines - Graph edges as GeoJSON for visualization
func (s *Server) graphLinesHandler(w http.ResponseWriter, r *http.Request) {
	g := s.requireGraph(w)
	if g == nil {
		return
	}

	data, err := g.EdgeLines().MarshalJSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data)
}

// POST /graph/reload - Rebuild the graph from the data file
func (s *Server) reloadHandler(w http.ResponseWriter, r *http.Request) {
	g, err := s.Reload()
	if err != nil {
		logger.Error().Str("request", requestIDFrom(r.Context())).Err(err).Msg("Reload failed")
		status := http.StatusInternalServerError
		if errors.Is(err, ErrMalformedRecord) || errors.Is(err, ErrDuplicateLocation) ||
			errors.Is(err, ErrUnknownLocation) || errors.Is(err, ErrDegenerateEdge) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"numLocations": g.Len(),
		"numEdges":     g.EdgeCount(),
	})
}
