package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavepoll/airthings"
)

func reading(at time.Time) airthings.SensorValues {
	return airthings.SensorValues{
		Humidity:    25.0,
		RadonShort:  airthings.Radon{BqM3: 40, Valid: true},
		RadonLong:   airthings.Radon{BqM3: 45, Valid: true},
		Temperature: 25.00,
		AtmPressure: 1000.00,
		Co2Level:    800,
		VocLevel:    200,
		CapturedAt:  at,
	}
}

func TestPipeSinkEmitsOneFlushedLinePerReading(t *testing.T) {
	var buf bytes.Buffer
	sink := NewPipeSink(&buf)
	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	require.NoError(t, sink.Emit(reading(at)))

	// flushed immediately, header plus one data line
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Timestamp,Humidity,Radon ST avg,Radon LT avg,Temperature,Pressure,CO2 level,VOC level", lines[0])
	assert.Equal(t, "2026-03-14T12:00:00Z,25.0 %rH,40 Bq/m3,45 Bq/m3,25.00 degC,1000.00 hPa,800 ppm,200 ppb", lines[1])

	require.NoError(t, sink.Emit(reading(at.Add(5*time.Minute))))
	lines = strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3, "header written once")

	require.NoError(t, sink.Close())
}

func TestPipeSinkRendersUnavailableRadon(t *testing.T) {
	var buf bytes.Buffer
	sink := NewPipeSink(&buf)

	values := reading(time.Now())
	values.RadonShort = airthings.Radon{}
	values.RadonLong = airthings.Radon{}
	require.NoError(t, sink.Emit(values))

	assert.Contains(t, buf.String(), ",N/A,N/A,")
}

func TestTerminalSinkRedrawsInPlace(t *testing.T) {
	var buf bytes.Buffer
	sink := NewTerminalSink(&buf, "2930000001")
	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	require.NoError(t, sink.Emit(reading(at)))
	first := buf.String()
	assert.NotContains(t, first, "\x1b[", "first frame draws without cursor movement")
	assert.Contains(t, first, "2930000001")

	require.NoError(t, sink.Emit(reading(at.Add(5*time.Minute))))
	assert.Contains(t, buf.String()[len(first):], "\x1b[", "later frames move the cursor back up")

	require.NoError(t, sink.Close())
}

// Both sinks must render the same field values for the same reading,
// whatever the surrounding formatting.
func TestSinkEquivalence(t *testing.T) {
	values := reading(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))

	var pipeBuf, termBuf bytes.Buffer
	require.NoError(t, NewPipeSink(&pipeBuf).Emit(values))
	require.NoError(t, NewTerminalSink(&termBuf, "2930000001").Emit(values))

	for _, field := range formatValues(values) {
		assert.Contains(t, pipeBuf.String(), field)
		assert.Contains(t, termBuf.String(), field)
	}
}

func TestMetricsSink(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := NewMetricsSink(reg, "2930000001")

	require.NoError(t, sink.Emit(reading(time.Now())))
	assert.Equal(t, 25.0, testutil.ToFloat64(sink.humidity.WithLabelValues("2930000001")))
	assert.Equal(t, 40.0, testutil.ToFloat64(sink.radonShort.WithLabelValues("2930000001")))
	assert.Equal(t, 800.0, testutil.ToFloat64(sink.co2Level.WithLabelValues("2930000001")))

	// unavailable radon must drop the series rather than export a number
	values := reading(time.Now())
	values.RadonShort = airthings.Radon{}
	require.NoError(t, sink.Emit(values))
	assert.Equal(t, 0, testutil.CollectAndCount(sink.radonShort))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.radonLong))

	require.NoError(t, sink.Close())
}
