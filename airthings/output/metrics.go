package output

import (
	"github.com/prometheus/client_golang/prometheus"

	"wavepoll/airthings"
)

// MetricsSink exposes the latest reading as Prometheus gauges, one
// time series per serial number.
type MetricsSink struct {
	serialNumber string

	humidity    *prometheus.GaugeVec
	radonShort  *prometheus.GaugeVec
	radonLong   *prometheus.GaugeVec
	temperature *prometheus.GaugeVec
	atmPressure *prometheus.GaugeVec
	co2Level    *prometheus.GaugeVec
	vocLevel    *prometheus.GaugeVec
}

func NewMetricsSink(reg prometheus.Registerer, serialNumber string) *MetricsSink {
	s := &MetricsSink{
		serialNumber: serialNumber,
		humidity:     newGauge("air_humidity", "Humidity (units: % of relative Humidity)"),
		radonShort:   newGauge("air_radon_short", "Radon Short Term estimate (units: Bq/m3)"),
		radonLong:    newGauge("air_radon_long", "Radon Long Term estimate (units: Bq/m3)"),
		temperature:  newGauge("air_temperature", "Air Temperature (units: degrees Celsius)"),
		atmPressure:  newGauge("air_atm_pressure", "Atmospheric Pressure (units: hPa)"),
		co2Level:     newGauge("air_co2_level", "Air Carbon Dioxide level (units: ppm)"),
		vocLevel:     newGauge("air_voc_level", "Air Volatile Organic Compounds level (units: ppb)"),
	}
	reg.MustRegister(s.humidity, s.radonShort, s.radonLong, s.temperature, s.atmPressure, s.co2Level, s.vocLevel)
	return s
}

func newGauge(name string, help string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		[]string{"serial_number"},
	)
}

func (s *MetricsSink) Emit(values airthings.SensorValues) error {
	s.humidity.WithLabelValues(s.serialNumber).Set(float64(values.Humidity))
	s.setRadon(s.radonShort, values.RadonShort)
	s.setRadon(s.radonLong, values.RadonLong)
	s.temperature.WithLabelValues(s.serialNumber).Set(float64(values.Temperature))
	s.atmPressure.WithLabelValues(s.serialNumber).Set(float64(values.AtmPressure))
	s.co2Level.WithLabelValues(s.serialNumber).Set(float64(values.Co2Level))
	s.vocLevel.WithLabelValues(s.serialNumber).Set(float64(values.VocLevel))
	return nil
}

// setRadon drops the series while the estimate is unavailable instead
// of exporting the sentinel as a measurement.
func (s *MetricsSink) setRadon(g *prometheus.GaugeVec, r airthings.Radon) {
	if !r.Valid {
		g.DeleteLabelValues(s.serialNumber)
		return
	}
	g.WithLabelValues(s.serialNumber).Set(float64(r.BqM3))
}

func (s *MetricsSink) Close() error {
	return nil
}
