package transit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridehub.org/transit/internal/models"
)

func TestStationsByName(t *testing.T) {
	n, _ := newTestNormalizer(t)

	stations, class, err := n.Stations(models.ReadFixture(t, "efa_stopfinder_bozen.json"), nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, class.Outcome)
	require.Len(t, stations, 1, "a single wrapped point is a one-element list")

	s := stations[0]
	assert.Equal(t, "66000123", s.ID)
	assert.Equal(t, "Bozen", s.Name)
	assert.Equal(t, "Bozen", s.Locality)
	assert.Equal(t, "stop", s.Type)
	require.NotNil(t, s.Coords)
	assert.InDelta(t, 46.4969, s.Coords.Lat, 1e-9)
	assert.InDelta(t, 11.3582, s.Coords.Lon, 1e-9)
	assert.Nil(t, s.DistanceMeters)
	assert.Empty(t, s.Direction)
}

func TestStationsNearby(t *testing.T) {
	n, _ := newTestNormalizer(t)
	origin := &models.GeoPoint{Lat: 46.4983, Lon: 11.3548}

	stations, _, err := n.Stations(models.ReadFixture(t, "efa_stopfinder_nearby.json"), origin)
	require.NoError(t, err)
	require.Len(t, stations, 4)

	names := make([]string, 0, len(stations))
	for _, s := range stations {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"Bozen, Verdiplatz",
		"Bozen, Waltherplatz",
		"Bozen, Bahnhof",
		"Haltestelle ohne Koordinaten",
	}, names)

	t.Run("distance computed from the search point", func(t *testing.T) {
		s := stations[0]
		require.NotNil(t, s.DistanceMeters)
		assert.InDelta(t, 94.5, *s.DistanceMeters, 2)
		assert.Equal(t, "66000555", s.ID)
		assert.Equal(t, "stop", s.Type)
		assert.Equal(t, "E", s.Direction)
	})

	t.Run("provider distances kept", func(t *testing.T) {
		require.NotNil(t, stations[1].DistanceMeters)
		assert.Equal(t, 150.0, *stations[1].DistanceMeters)
		require.NotNil(t, stations[2].DistanceMeters)
		assert.Equal(t, 420.0, *stations[2].DistanceMeters)
	})

	t.Run("unlocated station last with a generated id", func(t *testing.T) {
		s := stations[3]
		assert.Nil(t, s.DistanceMeters)
		assert.Nil(t, s.Coords)
		assert.Equal(t, generatedStationID("Haltestelle ohne Koordinaten", "Bozen"), s.ID)
		assert.Regexp(t, `^gen-[0-9a-f]{12}$`, s.ID)
	})

	for i := 1; i < 3; i++ {
		assert.LessOrEqual(t, *stations[i-1].DistanceMeters, *stations[i].DistanceMeters)
	}
}

func TestStationsEmptyResult(t *testing.T) {
	n, _ := newTestNormalizer(t)

	for _, body := range []string{`{"stopFinder":{"points":null}}`, `{"stopFinder":{}}`, `{}`} {
		stations, class, err := n.Stations([]byte(body), nil)
		require.NoError(t, err)
		assert.Equal(t, OutcomeSuccess, class.Outcome)
		assert.NotNil(t, stations)
		assert.Empty(t, stations)
	}
}

func TestBuildStationDefaults(t *testing.T) {
	s := buildStation(pointEntry{}, nil)

	assert.Equal(t, models.UnknownValue, s.Name)
	assert.Equal(t, models.UnknownValue, s.Locality)
	assert.Equal(t, "stop", s.Type)
	assert.Equal(t, generatedStationID(models.UnknownValue, models.UnknownValue), s.ID)
}

func TestGeneratedStationIDIsStable(t *testing.T) {
	a := generatedStationID("Bozen, Bahnhof", "Bozen")
	b := generatedStationID("bozen, bahnhof", "BOZEN")
	c := generatedStationID("Meran, Bahnhof", "Meran")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, len("gen-")+12)
}

func TestSortByDistanceNeedsLeadingDistance(t *testing.T) {
	far, near := 900.0, 100.0
	stations := []models.Station{
		{Name: "first"},
		{Name: "far", DistanceMeters: &far},
		{Name: "near", DistanceMeters: &near},
	}

	sortByDistance(stations)

	assert.Equal(t, "first", stations[0].Name)
	assert.Equal(t, "far", stations[1].Name)
}
