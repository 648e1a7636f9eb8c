package loader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `NUMBER,LAP_NUMBER,LAP_TIME,S1_SECONDS,S2_SECONDS,S3_SECONDS,KPH,TOP_SPEED
13,1,1:36.000,32.0,32.0,32.0,121.5,185.2
13,2,96.2,32.1,32.0,32.1,121.3,184.9
13,32768,1:36.400,32.1,32.1,32.2,121.0,184.0
13,3,n/a,32.2,32.1,32.2,120.9,184.1
78,1,1:37.100,32.4,32.3,32.4,120.2,183.0
`

func TestParseLapRecords(t *testing.T) {
	laps, err := ParseLapRecords(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	// sentinel lap dropped, unparseable time kept without a time
	require.Len(t, laps, 4)

	assert.Equal(t, "13", laps[0].VehicleID)
	assert.Equal(t, 1, laps[0].LapNo)
	assert.True(t, laps[0].HasTime)
	assert.InDelta(t, 96.0, laps[0].LapTime, 1e-9)
	assert.InDelta(t, 121.5, laps[0].AvgSpeed, 1e-9)

	assert.True(t, laps[1].HasTime)
	assert.InDelta(t, 96.2, laps[1].LapTime, 1e-9)

	noTime := laps[2]
	assert.Equal(t, 3, noTime.LapNo)
	assert.False(t, noTime.HasTime)
	assert.InDelta(t, 32.2, noTime.S1, 1e-9)

	assert.Equal(t, "78", laps[3].VehicleID)
}

func TestParseLapRecordsMissingColumn(t *testing.T) {
	_, err := ParseLapRecords(strings.NewReader("NUMBER,LAP_NUMBER\n13,1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
}
