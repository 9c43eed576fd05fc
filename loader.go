package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LoadRecords parses comma-separated location lines of the form
//
//	name,x,y,neighbor1,neighbor2,...
//
// Fields are trimmed of surrounding whitespace. Empty neighbor fields are kept
// in the record and skipped during edge synthesis.
func LoadRecords(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var records []Record
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}

		line, _ := cr.FieldPos(0)
		rec, err := parseRecord(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRecord(fields []string) (Record, error) {
	if len(fields) < 3 {
		return Record{}, fmt.Errorf("%w: want name,x,y got %d fields", ErrMalformedRecord, len(fields))
	}

	name := strings.TrimSpace(fields[0])
	if name == "" {
		return Record{}, fmt.Errorf("%w: empty location name", ErrMalformedRecord)
	}
	x, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return Record{}, fmt.Errorf("%w: %q: bad x: %v", ErrMalformedRecord, name, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return Record{}, fmt.Errorf("%w: %q: bad y: %v", ErrMalformedRecord, name, err)
	}

	neighbors := make([]string, 0, len(fields)-3)
	for _, f := range fields[3:] {
		neighbors = append(neighbors, strings.TrimSpace(f))
	}

	return Record{Name: name, X: x, Y: y, Neighbors: neighbors}, nil
}

// LoadGeoJSON parses a FeatureCollection of Point features carrying a "name"
// property and an optional "neighbors" array of names.
func LoadGeoJSON(data []byte) ([]Record, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	records := make([]Record, 0, len(fc.Features))
	for i, feature := range fc.Features {
		rec, err := parseFeature(feature)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseFeature(feature *geojson.Feature) (Record, error) {
	name := strings.TrimSpace(feature.Properties.MustString("name", ""))
	if name == "" {
		return Record{}, fmt.Errorf("%w: missing name property", ErrMalformedRecord)
	}

	point, ok := feature.Geometry.(orb.Point)
	if !ok {
		return Record{}, fmt.Errorf("%w: %q: geometry must be a Point", ErrMalformedRecord, name)
	}
	if point.X() != math.Trunc(point.X()) || point.Y() != math.Trunc(point.Y()) {
		return Record{}, fmt.Errorf("%w: %q: coordinates must be integers, got %v", ErrMalformedRecord, name, point)
	}

	var neighbors []string
	if raw, ok := feature.Properties["neighbors"]; ok {
		list, ok := raw.([]interface{})
		if !ok {
			return Record{}, fmt.Errorf("%w: %q: neighbors must be an array", ErrMalformedRecord, name)
		}
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return Record{}, fmt.Errorf("%w: %q: neighbor names must be strings", ErrMalformedRecord, name)
			}
			neighbors = append(neighbors, strings.TrimSpace(s))
		}
	}

	return Record{
		Name:      name,
		X:         int(point.X()),
		Y:         int(point.Y()),
		Neighbors: neighbors,
	}, nil
}

// LoadRecordsFile loads records from a CSV or GeoJSON file, or from every
// such file in a directory (in name order).
func LoadRecordsFile(path string) ([]Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return loadOneFile(path)
	}

	var files []string
	for _, pattern := range []string{"*.csv", "*.geojson"} {
		matches, err := filepath.Glob(filepath.Join(path, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	logger.Info().Str("dir", path).Int("files", len(files)).Msg("Loading locations")

	var all []Record
	for _, file := range files {
		records, err := loadOneFile(file)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	return all, nil
}

func loadOneFile(path string) ([]Record, error) {
	var (
		records []Record
		err     error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		records, err = LoadGeoJSON(data)
	default:
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		records, err = LoadRecords(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	logger.Info().
		Str("file", filepath.Base(path)).
		Int("records", len(records)).
		Msg("Loaded locations")
	return records, nil
}
