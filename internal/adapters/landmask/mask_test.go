package landmask

import "testing"

func TestIsLand_Continents(t *testing.T) {
	m := New()

	land := []struct {
		name     string
		lat, lon float64
	}{
		{"kansas", 38, -98},
		{"mexico", 19.4, -99},
		{"brazil", -10, -55},
		{"germany", 50, 10},
		{"bilbao", 43.3, -2.9},
		{"sahara", 23, 13},
		{"siberia", 62, 100},
		{"india", 20, 78},
		{"australia", -24, 134},
		{"antarctica", -80, 20},
	}
	for _, c := range land {
		if !m.IsLand(c.lat, c.lon) {
			t.Errorf("%s (%.1f, %.1f): expected land", c.name, c.lat, c.lon)
		}
	}

	ocean := []struct {
		name     string
		lat, lon float64
	}{
		{"mid pacific", 0, -140},
		{"mid atlantic", 40, -40},
		{"south indian", -40, 90},
		{"south atlantic", -30, -20},
	}
	for _, c := range ocean {
		if m.IsLand(c.lat, c.lon) {
			t.Errorf("%s (%.1f, %.1f): expected ocean", c.name, c.lat, c.lon)
		}
	}
}

func TestRegionFor(t *testing.T) {
	m := New()

	cases := []struct {
		lat, lon float64
		want     string
	}{
		{38, -98, "North America"},
		{-10, -55, "South America"},
		{50, 10, "Europe"},
		{23, 13, "Africa"},
		{62, 100, "Asia"},
		{-24, 134, "Oceania"},
		{-80, 20, "Antarctica"},
		{0, -140, "Unknown"},
	}
	for _, c := range cases {
		if got := m.RegionFor(c.lat, c.lon); got != c.want {
			t.Errorf("RegionFor(%.1f, %.1f) = %q, want %q", c.lat, c.lon, got, c.want)
		}
	}
}

func TestIsLand_Deterministic(t *testing.T) {
	m := New()
	first := m.IsLand(43.3, -2.9)
	for i := 0; i < 100; i++ {
		if m.IsLand(43.3, -2.9) != first {
			t.Fatal("mask lookup is not deterministic")
		}
	}
}
