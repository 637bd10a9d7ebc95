// Package spatialquery implements the proximity and bounding-box scan
// filters. Queries are prefix scans over the ordered key store plus a
// filter step; this package holds the filter/format logic while the
// top-level db drives the actual PrefixScan.
package spatialquery

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sitan2008/spatiolite/internal/geo"
)

// EncodePointValue formats "{lat},{lon}" as stored by insert_point.
func EncodePointValue(lat, lon float64) string {
	return fmt.Sprintf("%s,%s", formatCoord(lat), formatCoord(lon))
}

// ParsePointValue parses a "{lat},{lon}" value back into coordinates.
// Trajectory-style "{lat},{lon},{ts}" values also parse fine here since
// only the first two of the (at most three) SplitN fields are parsed.
func ParsePointValue(value string) (lat, lon float64, err error) {
	parts := strings.SplitN(value, ",", 3)
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("spatialquery: malformed point value %q", value)
	}
	lat, err = strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("spatialquery: bad lat: %w", err)
	}
	lon, err = strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("spatialquery: bad lon: %w", err)
	}
	return lat, lon, nil
}

// NearbyResult is one hit from FindNearby, sorted ascending by Distance.
type NearbyResult struct {
	Key          []byte
	Lat, Lon     float64
	Value        []byte
	DistanceM    float64
	BearingDeg   float64
}

// WithinRadius reports whether a point at (lat, lon) lies within
// radiusM meters of (centerLat, centerLon), returning the distance.
func WithinRadius(centerLat, centerLon, lat, lon, radiusM float64) (float64, bool) {
	d := geo.HaversineMeters(centerLat, centerLon, lat, lon)
	return d, d <= radiusM
}

// SortByDistance sorts results ascending by DistanceM, the order
// FindNearby promises.
func SortByDistance(results []NearbyResult) {
	sort.Slice(results, func(i, j int) bool { return results[i].DistanceM < results[j].DistanceM })
}

// Limit truncates results to at most n entries (n <= 0 means unbounded).
func Limit(results []NearbyResult, n int) []NearbyResult {
	if n <= 0 || n >= len(results) {
		return results
	}
	return results[:n]
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
