package waveplus

import (
	"encoding/binary"
	"time"

	"github.com/pkg/errors"

	"wavepoll/airthings"
)

// Current-values payload, little-endian:
//
//	[0]     version byte
//	[1]     humidity (0.5 %rH steps)
//	[2:4]   unknown
//	[4:6]   radon short term avg (Bq/m3)
//	[6:8]   radon long term avg (Bq/m3)
//	[8:10]  temperature (0.01 degC steps)
//	[10:12] atmospheric pressure (0.02 hPa steps)
//	[12:14] co2 (ppm)
//	[14:16] voc (ppb)
//	[16:20] unknown
const payloadLen = 20

// Decode validates and unpacks one characteristic read. Pure: the
// same bytes always produce the same values.
func (p Protocol) Decode(raw []byte, at time.Time) (airthings.SensorValues, error) {
	if len(raw) < payloadLen {
		return airthings.SensorValues{}, errors.Wrapf(airthings.ErrUnsupportedFormat,
			"payload is %d bytes, want %d", len(raw), payloadLen)
	}
	if raw[0] != p.SensorVersion {
		return airthings.SensorValues{}, errors.Wrapf(airthings.ErrUnsupportedFormat,
			"version byte %d, want %d", raw[0], p.SensorVersion)
	}

	return airthings.SensorValues{
		Humidity:    convHumidity(raw[1]),
		RadonShort:  p.convRadon(binary.LittleEndian.Uint16(raw[4:6])),
		RadonLong:   p.convRadon(binary.LittleEndian.Uint16(raw[6:8])),
		Temperature: convTemperature(binary.LittleEndian.Uint16(raw[8:10])),
		AtmPressure: convPressure(binary.LittleEndian.Uint16(raw[10:12])),
		Co2Level:    float32(binary.LittleEndian.Uint16(raw[12:14])),
		VocLevel:    float32(binary.LittleEndian.Uint16(raw[14:16])),
		CapturedAt:  at,
	}, nil
}

func convHumidity(raw uint8) float32 {
	return float32(raw) / 2.0
}

func convTemperature(raw uint16) float32 {
	return float32(raw) / 100.0
}

func convPressure(raw uint16) float32 {
	return float32(raw) / 50.0
}

// convRadon maps reserved out-of-range raws to "not available"
// instead of letting the sentinel leak out as a measurement.
func (p Protocol) convRadon(raw uint16) airthings.Radon {
	if raw > p.RadonMax {
		return airthings.Radon{}
	}
	return airthings.Radon{BqM3: raw, Valid: true}
}
