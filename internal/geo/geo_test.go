package geo

import (
	"math"
	"testing"
)

func TestHaversineMetersZeroForSamePoint(t *testing.T) {
	d := HaversineMeters(48.8566, 2.3522, 48.8566, 2.3522)
	if d != 0 {
		t.Fatalf("expected 0 distance for identical points, got %f", d)
	}
}

func TestHaversineMetersKnownDistance(t *testing.T) {
	// Paris to London, roughly 344 km great-circle.
	d := HaversineMeters(48.8566, 2.3522, 51.5074, -0.1278)
	const want = 343_000.0
	if math.Abs(d-want) > 10_000 {
		t.Fatalf("expected approx %f meters, got %f", want, d)
	}
}

func TestBearingDegreesNorthIsZero(t *testing.T) {
	b := BearingDegrees(0, 0, 1, 0)
	if math.Abs(b-0) > 0.01 {
		t.Fatalf("expected bearing ~0 degrees due north, got %f", b)
	}
}

func TestBearingDegreesEastIsNinety(t *testing.T) {
	b := BearingDegrees(0, 0, 0, 1)
	if math.Abs(b-90) > 0.01 {
		t.Fatalf("expected bearing ~90 degrees due east, got %f", b)
	}
}

func TestBearingDegreesAlwaysInRange(t *testing.T) {
	b := BearingDegrees(10, 10, -10, -170)
	if b < 0 || b >= 360 {
		t.Fatalf("bearing out of [0,360) range: %f", b)
	}
}

func TestWithinBounds(t *testing.T) {
	if !WithinBounds(10, 10, 0, 0, 20, 20) {
		t.Fatal("expected point inside the bounding box")
	}
	if WithinBounds(30, 10, 0, 0, 20, 20) {
		t.Fatal("expected point outside the bounding box")
	}
}
