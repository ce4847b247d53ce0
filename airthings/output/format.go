package output

import (
	"fmt"

	"wavepoll/airthings"
)

// Column order shared by both sinks so downstream consumers see the
// same fields in the same order regardless of mode.
var columns = []string{
	"Humidity",
	"Radon ST avg",
	"Radon LT avg",
	"Temperature",
	"Pressure",
	"CO2 level",
	"VOC level",
}

func formatValues(v airthings.SensorValues) []string {
	return []string{
		fmt.Sprintf("%.1f %%rH", v.Humidity),
		formatRadon(v.RadonShort),
		formatRadon(v.RadonLong),
		fmt.Sprintf("%.2f degC", v.Temperature),
		fmt.Sprintf("%.2f hPa", v.AtmPressure),
		fmt.Sprintf("%.0f ppm", v.Co2Level),
		fmt.Sprintf("%.0f ppb", v.VocLevel),
	}
}

func formatRadon(r airthings.Radon) string {
	if !r.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%d Bq/m3", r.BqM3)
}
