package waveplus

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-ble/ble"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"wavepoll/airthings"
)

type findFunc func(ctx context.Context, allowDup bool, f ble.AdvFilter) ([]ble.Advertisement, error)

// Locator resolves a serial number to a BLE address by listening for
// Wave Plus advertisements within a bounded scan window.
type Locator struct {
	Proto       Protocol
	ScanTimeout time.Duration

	find findFunc
}

func NewLocator(proto Protocol, scanTimeout time.Duration) *Locator {
	return &Locator{Proto: proto, ScanTimeout: scanTimeout, find: ble.Find}
}

// Locate scans until a matching advertisement shows up or the scan
// window closes.
func (l *Locator) Locate(ctx context.Context, serialNumber string) (string, error) {
	sctx, cancel := context.WithTimeout(ctx, l.ScanTimeout)
	defer cancel()

	log.Debugf("scanning for serial number %s", serialNumber)
	ads, err := l.find(sctx, false, func(a ble.Advertisement) bool {
		return l.matches(a, serialNumber)
	})
	if err != nil {
		switch errors.Cause(err) {
		case nil, context.DeadlineExceeded, context.Canceled:
		default:
			return "", errors.Wrap(err, "failed to scan for devices")
		}
	}
	if ctx.Err() != nil {
		return "", errors.Wrap(ctx.Err(), "scan cancelled")
	}
	if len(ads) == 0 {
		return "", errors.Wrapf(airthings.ErrDeviceNotFound,
			"no advertisement for serial number %s within %s", serialNumber, l.ScanTimeout)
	}

	addr := ads[0].Addr().String()
	log.Debugf("serial number %s advertises from %s", serialNumber, addr)
	return addr, nil
}

func (l *Locator) matches(a ble.Advertisement, serialNumber string) bool {
	if !a.Connectable() {
		return false
	}
	serial, ok := l.serialFromManufacturerData(a.ManufacturerData())
	return ok && serial == serialNumber
}

// serialFromManufacturerData extracts the serial number a Wave Plus
// embeds in its manufacturer-specific data: the Airthings company
// identifier in the first two bytes, the serial as a 32-bit integer
// in the next four.
func (l *Locator) serialFromManufacturerData(data []byte) (string, bool) {
	if len(data) < 6 {
		return "", false
	}
	if binary.LittleEndian.Uint16(data[0:2]) != l.Proto.CompanyId {
		return "", false
	}
	return fmt.Sprint(binary.LittleEndian.Uint32(data[2:6])), true
}
