// Package datasource provides reference city coordinates: an embedded list,
// CSV files, and OpenStreetMap place nodes fetched from the Overpass API.
package datasource

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/reversejp/assets"
)

// City is a named point used as a lookup probe.
type City struct {
	Name string
	Lon  float64
	Lat  float64
}

func (c City) String() string {
	return fmt.Sprintf("%s (%.4f,%.4f)", c.Name, c.Lon, c.Lat)
}

// ReferenceCities returns the embedded list of major Japanese cities.
func ReferenceCities() ([]City, error) {
	return ParseCitiesCSV(bytes.NewReader(assets.JPCitiesCSV))
}

// ParseCitiesCSV reads name,lon,lat rows. A header row is required; its column
// order decides where each field is read from. Extra columns are ignored.
func ParseCitiesCSV(r io.Reader) ([]City, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty cities file")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	nameCol, lonCol, latCol := -1, -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name":
			nameCol = i
		case "lon", "lng", "longitude":
			lonCol = i
		case "lat", "latitude":
			latCol = i
		}
	}
	if lonCol < 0 || latCol < 0 {
		return nil, fmt.Errorf("header must contain lon and lat columns, got %v", header)
	}

	var cities []City
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) <= lonCol || len(rec) <= latCol {
			return nil, fmt.Errorf("line %d: expected at least %d fields, got %d", line, max(lonCol, latCol)+1, len(rec))
		}

		lon, err := strconv.ParseFloat(strings.TrimSpace(rec[lonCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid lon %q: %w", line, rec[lonCol], err)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(rec[latCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid lat %q: %w", line, rec[latCol], err)
		}

		c := City{Lon: lon, Lat: lat}
		if nameCol >= 0 && nameCol < len(rec) {
			c.Name = rec[nameCol]
		}
		cities = append(cities, c)
	}

	return cities, nil
}
