package spatiolite

// Point is a geographic coordinate in decimal degrees, WGS84.
type Point struct {
	Lat float64
	Lon float64
}

// TrajectorySample pairs a point with the Unix-seconds timestamp it
// was recorded at, the unit insert_trajectory/query_trajectory trade in.
type TrajectorySample struct {
	Point Point
	Ts    uint64
}

// NearbyResult is one hit from FindNearby: the stored point, its raw
// value, and its great-circle distance from the query center.
type NearbyResult struct {
	Key        []byte
	Point      Point
	Value      []byte
	DistanceM  float64
	BearingDeg float64
}

// BoundsResult is one hit from FindWithinBounds.
type BoundsResult struct {
	Key   []byte
	Point Point
	Value []byte
}
