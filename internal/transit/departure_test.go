package transit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridehub.org/transit/internal/models"
)

func TestDepartures(t *testing.T) {
	n, _ := newTestNormalizer(t)

	departures, class, err := n.Departures(models.ReadFixture(t, "efa_dm_bozen.json"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, class.Outcome)
	require.Len(t, departures, 4)

	t.Run("provider delay", func(t *testing.T) {
		d := departures[0]
		assert.Equal(t, "R", d.Line)
		assert.Equal(t, "Meran", d.Direction)
		assert.Equal(t, "3", d.Platform)
		assert.Equal(t, "2024-05-03T08:10", d.Scheduled)
		require.NotNil(t, d.Realtime)
		assert.Equal(t, "2024-05-03T08:13", *d.Realtime)
		assert.Equal(t, 3, d.DelayMinutes)
		assert.Equal(t, "Regionalzug", d.ServiceType)
	})

	t.Run("zero delay recomputed from realtime", func(t *testing.T) {
		d := departures[1]
		assert.Equal(t, "201", d.Line)
		assert.Equal(t, "B", d.Platform)
		require.NotNil(t, d.Realtime)
		assert.Equal(t, "2024-05-03T08:24", *d.Realtime)
		assert.Equal(t, 4, d.DelayMinutes)
		assert.Equal(t, "Regional bus", d.ServiceType)
	})

	t.Run("no realtime", func(t *testing.T) {
		d := departures[2]
		assert.Equal(t, "S 1", d.Line)
		assert.Nil(t, d.Realtime)
		assert.Equal(t, 0, d.DelayMinutes)
		assert.Equal(t, models.UnknownValue, d.ServiceType)
	})

	t.Run("realtime equal to schedule is omitted", func(t *testing.T) {
		d := departures[3]
		assert.Equal(t, "10A", d.Line)
		assert.Nil(t, d.Realtime)
		assert.Equal(t, 0, d.DelayMinutes)
		assert.Equal(t, "City bus", d.ServiceType)
	})
}

func TestDepartureDelay(t *testing.T) {
	n, _ := newTestNormalizer(t)
	sched := &Fragment{Year: "2024", Month: "5", Day: "3", Hour: "8", Minute: "10"}
	early := &Fragment{Year: "2024", Month: "5", Day: "3", Hour: "8", Minute: "8"}
	late := &Fragment{Year: "2024", Month: "5", Day: "3", Hour: "8", Minute: "15"}

	tests := []struct {
		name     string
		entry    departureEntry
		expected int
	}{
		{name: "early vehicle", entry: departureEntry{DateTime: sched, RealDateTime: early, ServingLine: servingLine{Delay: "0"}}, expected: 0},
		{name: "negative provider delay", entry: departureEntry{DateTime: sched, RealDateTime: early, ServingLine: servingLine{Delay: "-2"}}, expected: 0},
		{name: "provider delay wins", entry: departureEntry{DateTime: sched, RealDateTime: late, ServingLine: servingLine{Delay: "2"}}, expected: 2},
		{name: "missing schedule", entry: departureEntry{RealDateTime: late, ServingLine: servingLine{Delay: "0"}}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := n.departure(tt.entry)
			assert.GreaterOrEqual(t, d.DelayMinutes, 0)
			assert.Equal(t, tt.expected, d.DelayMinutes)
		})
	}
}

func TestDepartureWithoutSchedule(t *testing.T) {
	n, _ := newTestNormalizer(t)
	realtime := &Fragment{Year: "2024", Month: "5", Day: "3", Hour: "8", Minute: "15"}

	d := n.departure(departureEntry{RealDateTime: realtime})

	assert.Equal(t, models.NotAvailable, d.Scheduled)
	require.NotNil(t, d.Realtime)
	assert.Equal(t, "2024-05-03T08:15", *d.Realtime)
	assert.Equal(t, models.UnknownValue, d.Line)
	assert.Equal(t, models.UnknownValue, d.Direction)
}

func TestDeparturesStopNotFound(t *testing.T) {
	n, _ := newTestNormalizer(t)

	departures, class, err := n.Departures(models.ReadFixture(t, "efa_dm_unknown_stop.json"))
	require.NoError(t, err)
	assert.Nil(t, departures)
	assert.Equal(t, OutcomeStopNotFound, class.Outcome)
}
