// Package trajectory implements the key/value codec for timestamped
// per-object point series. It holds no state and touches no store --
// the top-level db drives the prefix scan and atomic multi-sample
// insert using these pure helpers.
package trajectory

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sitan2008/spatiolite/internal/geocodec"
)

// FineGeohashPrecision is the geohash precision embedded in every
// trajectory key, chosen for sub-3m locality at the tie-breaker level.
const FineGeohashPrecision = 12

// Sample is one decoded trajectory point.
type Sample struct {
	Lat, Lon float64
	Ts       uint64
}

// BuildKey returns the storage key for one trajectory sample:
// "{object_id}:{timestamp}:{fine_geohash}". The timestamp is
// zero-padded to 20 decimal digits (the width of the largest uint64)
// so that lexicographic key order matches numeric timestamp order --
// otherwise "9" would sort after "10", breaking range scans over
// "object_id:" that must yield timestamp-ordered points.
func BuildKey(objectID string, ts uint64, lat, lon float64) (string, error) {
	hash, err := geocodec.EncodeGeohash(lat, lon, FineGeohashPrecision)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%020d:%s", objectID, ts, hash), nil
}

// EncodeValue formats "{lat},{lon},{ts}" as stored in the value.
func EncodeValue(lat, lon float64, ts uint64) string {
	return fmt.Sprintf("%s,%s,%d", formatCoord(lat), formatCoord(lon), ts)
}

// DecodeValue parses a trajectory value back into its sample.
func DecodeValue(value string) (Sample, error) {
	parts := strings.SplitN(value, ",", 3)
	if len(parts) != 3 {
		return Sample{}, fmt.Errorf("trajectory: malformed value %q", value)
	}
	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Sample{}, fmt.Errorf("trajectory: bad lat: %w", err)
	}
	lon, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Sample{}, fmt.Errorf("trajectory: bad lon: %w", err)
	}
	ts, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return Sample{}, fmt.Errorf("trajectory: bad timestamp: %w", err)
	}
	return Sample{Lat: lat, Lon: lon, Ts: ts}, nil
}

// Prefix returns the "{object_id}:" prefix used to scan all samples
// for an object.
func Prefix(objectID string) string {
	return objectID + ":"
}

// InRange reports whether ts falls in the closed interval [start, end].
func InRange(ts, start, end uint64) bool {
	return ts >= start && ts <= end
}

// SortByTimestamp sorts samples ascending by timestamp, the contract
// query_trajectory promises regardless of how the caller gathered them.
func SortByTimestamp(samples []Sample) {
	sort.Slice(samples, func(i, j int) bool { return samples[i].Ts < samples[j].Ts })
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
