package waveplus

import "github.com/go-ble/ble"

const sensorServiceUuidStr = "b42e1c08ade711e489d3123b93f75cba"
const sensorCharacteristicUuidStr = "b42e2a68ade711e489d3123b93f75cba"

const (
	// Bluetooth SIG company identifier for Airthings AS, carried in
	// the first two bytes of manufacturer-specific data.
	companyId = 0x0334

	// format/version byte this decoder understands
	sensorVersion = 1

	// raw radon values above this are reserved and mean the estimate
	// is not available yet
	radonMax = 16383
)

// Protocol bundles the Wave Plus wire constants. One immutable value
// is built at startup and passed to the locator and transport; none
// of it is user-configurable.
type Protocol struct {
	ServiceUuid        ble.UUID
	CharacteristicUuid ble.UUID
	CompanyId          uint16
	SensorVersion      byte
	RadonMax           uint16
}

func DefaultProtocol() Protocol {
	return Protocol{
		ServiceUuid:        ble.MustParse(sensorServiceUuidStr),
		CharacteristicUuid: ble.MustParse(sensorCharacteristicUuidStr),
		CompanyId:          companyId,
		SensorVersion:      sensorVersion,
		RadonMax:           radonMax,
	}
}
