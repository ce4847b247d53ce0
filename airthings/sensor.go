package airthings

import (
	"regexp"
	"time"

	"github.com/pkg/errors"
)

var serialNumberRe = regexp.MustCompile(`^[0-9]{10}$`)

// ValidateSerialNumber checks the externally supplied serial number
// format: exactly 10 digits, as printed under the device backplate.
// Called before any radio activity so a doomed invocation never costs
// a scan cycle.
func ValidateSerialNumber(serialNumber string) error {
	if !serialNumberRe.MatchString(serialNumber) {
		return errors.Errorf("invalid serial number %q: want exactly 10 digits", serialNumber)
	}
	return nil
}

// Radon is a rolling radon estimate that may not be available yet.
// The device reports a reserved raw value until enough measurement
// time has elapsed; Valid is false in that case and BqM3 is zero.
type Radon struct {
	// units: Bq/m3
	BqM3  uint16
	Valid bool
}

// SensorValues is one complete reading, produced atomically from a
// single characteristic read.
type SensorValues struct {
	// units: % of relative Humidity
	Humidity float32

	RadonShort Radon
	RadonLong  Radon

	// units: degrees Celsius
	Temperature float32

	// units: hPa
	AtmPressure float32

	// units: ppm
	Co2Level float32

	// units: ppb
	VocLevel float32

	CapturedAt time.Time
}
