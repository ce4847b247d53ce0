package waveplus

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavepoll/airthings"
)

func payload(version, humidity byte, radonShort, radonLong, temperature, pressure, co2, voc uint16) []byte {
	p := make([]byte, payloadLen)
	p[0] = version
	p[1] = humidity
	binary.LittleEndian.PutUint16(p[4:6], radonShort)
	binary.LittleEndian.PutUint16(p[6:8], radonLong)
	binary.LittleEndian.PutUint16(p[8:10], temperature)
	binary.LittleEndian.PutUint16(p[10:12], pressure)
	binary.LittleEndian.PutUint16(p[12:14], co2)
	binary.LittleEndian.PutUint16(p[14:16], voc)
	return p
}

func TestDecode(t *testing.T) {
	proto := DefaultProtocol()
	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	values, err := proto.Decode(payload(1, 50, 40, 45, 2500, 50000, 800, 200), at)
	require.NoError(t, err)

	assert.Equal(t, float32(25.0), values.Humidity)
	assert.Equal(t, airthings.Radon{BqM3: 40, Valid: true}, values.RadonShort)
	assert.Equal(t, airthings.Radon{BqM3: 45, Valid: true}, values.RadonLong)
	assert.Equal(t, float32(25.00), values.Temperature)
	assert.Equal(t, float32(1000.00), values.AtmPressure)
	assert.Equal(t, float32(800), values.Co2Level)
	assert.Equal(t, float32(200), values.VocLevel)
	assert.Equal(t, at, values.CapturedAt)
}

func TestDecodeIsDeterministic(t *testing.T) {
	proto := DefaultProtocol()
	at := time.Now()
	raw := payload(1, 111, 16383, 0, 655, 45000, 1200, 88)

	first, err := proto.Decode(raw, at)
	require.NoError(t, err)
	second, err := proto.Decode(raw, at)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDecodeRadonSentinel(t *testing.T) {
	proto := DefaultProtocol()

	for _, raw := range []uint16{16384, 40000, 65535} {
		values, err := proto.Decode(payload(1, 50, raw, raw, 2500, 50000, 800, 200), time.Now())
		require.NoError(t, err)

		assert.False(t, values.RadonShort.Valid, "raw=%d", raw)
		assert.False(t, values.RadonLong.Valid, "raw=%d", raw)
		assert.Zero(t, values.RadonShort.BqM3, "sentinel must not leak as a measurement")
		assert.Zero(t, values.RadonLong.BqM3)
	}

	// highest valid raw is still a measurement
	values, err := proto.Decode(payload(1, 50, 16383, 0, 2500, 50000, 800, 200), time.Now())
	require.NoError(t, err)
	assert.Equal(t, airthings.Radon{BqM3: 16383, Valid: true}, values.RadonShort)
	assert.Equal(t, airthings.Radon{BqM3: 0, Valid: true}, values.RadonLong)
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	proto := DefaultProtocol()

	_, err := proto.Decode(payload(2, 50, 40, 45, 2500, 50000, 800, 200), time.Now())
	require.Error(t, err)
	assert.Equal(t, airthings.ErrUnsupportedFormat, errors.Cause(err))
}

func TestDecodeRejectsShortPayload(t *testing.T) {
	proto := DefaultProtocol()

	_, err := proto.Decode([]byte{1, 50, 0}, time.Now())
	require.Error(t, err)
	assert.Equal(t, airthings.ErrUnsupportedFormat, errors.Cause(err))
}

func TestConversions(t *testing.T) {
	assert.Equal(t, float32(25.0), convHumidity(50))
	assert.Equal(t, float32(25.00), convTemperature(2500))
	assert.Equal(t, float32(1000.00), convPressure(50000))
}
