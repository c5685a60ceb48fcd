package geo

import (
	"math"
	"testing"
)

// Jakarta office reference point used across the tests.
const (
	officeLat = -6.200000
	officeLon = 106.816666
)

func TestDistanceKm(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantKm                 float64
		tolerance              float64
	}{
		{"same point", officeLat, officeLon, officeLat, officeLon, 0, 0.000001},
		// One degree of latitude is ~111.19 km on a 6371 km sphere.
		{"one degree latitude", 0, 0, 1, 0, 111.19, 0.1},
		{"jakarta to bandung", -6.200000, 106.816666, -6.914744, 107.609810, 116.9, 2.0},
	}

	for _, c := range cases {
		got := DistanceKm(c.lat1, c.lon1, c.lat2, c.lon2)
		if math.Abs(got-c.wantKm) > c.tolerance {
			t.Errorf("%s: DistanceKm = %f, want %f (±%f)", c.name, got, c.wantKm, c.tolerance)
		}
	}
}

func TestClassify(t *testing.T) {
	// ~0.1 km north of the office.
	nearLat := officeLat + 0.1/111.19

	if got := Classify(nearLat, officeLon, officeLat, officeLon, 0.5); got != ModeOnSite {
		t.Errorf("Classify(near) = %s, want %s", got, ModeOnSite)
	}

	// ~5 km north of the office.
	farLat := officeLat + 5.0/111.19
	if got := Classify(farLat, officeLon, officeLat, officeLon, 0.5); got != ModeRemote {
		t.Errorf("Classify(far) = %s, want %s", got, ModeRemote)
	}
}

func TestClassifyBoundaryInclusive(t *testing.T) {
	// Place the point at exactly the radius distance, then classify with
	// that distance as the radius. The boundary must be on_site.
	lat, lon := officeLat+0.3/111.19, officeLon
	d := DistanceKm(lat, lon, officeLat, officeLon)

	if got := Classify(lat, lon, officeLat, officeLon, d); got != ModeOnSite {
		t.Errorf("Classify(at exact radius) = %s, want %s", got, ModeOnSite)
	}
}

func TestClassifyNaNIsRemote(t *testing.T) {
	if got := Classify(math.NaN(), officeLon, officeLat, officeLon, 0.5); got != ModeRemote {
		t.Errorf("Classify(NaN) = %s, want %s", got, ModeRemote)
	}
}

func TestValidCoordinate(t *testing.T) {
	valid := [][2]float64{{0, 0}, {-90, 180}, {90, -180}, {officeLat, officeLon}}
	invalid := [][2]float64{{91, 0}, {-91, 0}, {0, 181}, {0, -181}, {math.NaN(), 0}, {0, math.NaN()}}

	for _, p := range valid {
		if !ValidCoordinate(p[0], p[1]) {
			t.Errorf("ValidCoordinate(%f, %f) = false, want true", p[0], p[1])
		}
	}
	for _, p := range invalid {
		if ValidCoordinate(p[0], p[1]) {
			t.Errorf("ValidCoordinate(%f, %f) = true, want false", p[0], p[1])
		}
	}
}
