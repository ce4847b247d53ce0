package waveplus

import (
	"context"
	"strings"
	"time"

	"github.com/go-ble/ble"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"wavepoll/airthings"
)

// Transport dials Wave Plus devices over go-ble. Implements
// airthings.Transport; expects the default ble device to be set up by
// the caller.
type Transport struct {
	Proto          Protocol
	ConnectTimeout time.Duration
}

func (t *Transport) Dial(ctx context.Context, addr string) (airthings.Link, error) {
	cctx, cancel := context.WithTimeout(ctx, t.ConnectTimeout)
	defer cancel()

	log.Debugf("connecting to %s", addr)
	cln, err := ble.Connect(cctx, func(a ble.Advertisement) bool {
		return strings.EqualFold(a.Addr().String(), addr)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't connect to %s", addr)
	}

	// The peripheral can drop the link on its own; watch for that so
	// closing the link does not block forever.
	done := make(chan struct{})
	go func() {
		<-cln.Disconnected()
		log.Debugf("device %s disconnected", addr)
		close(done)
	}()

	char, err := t.discoverSensorCharacteristic(cln)
	if err != nil {
		_ = cln.CancelConnection()
		<-done
		return nil, err
	}

	return &link{cln: cln, char: char, done: done}, nil
}

func (t *Transport) discoverSensorCharacteristic(cln ble.Client) (*ble.Characteristic, error) {
	log.Debugf("discovering services")
	services, err := cln.DiscoverServices([]ble.UUID{t.Proto.ServiceUuid})
	if err != nil {
		return nil, errors.Wrap(err, "couldn't discover services")
	}
	if len(services) == 0 {
		return nil, errors.New("did not find expected sensor service")
	}

	log.Debugf("discovering characteristics")
	characteristics, err := cln.DiscoverCharacteristics([]ble.UUID{t.Proto.CharacteristicUuid}, services[0])
	if err != nil {
		return nil, errors.Wrap(err, "couldn't discover characteristic")
	}
	if len(characteristics) == 0 {
		return nil, errors.New("did not find expected characteristic")
	}
	return characteristics[0], nil
}

// link caches the discovered characteristic for the lifetime of one
// connection.
type link struct {
	cln  ble.Client
	char *ble.Characteristic
	done chan struct{}
}

func (l *link) Read(ctx context.Context) ([]byte, error) {
	type result struct {
		raw []byte
		err error
	}
	ch := make(chan result, 1)
	go func() {
		raw, err := l.cln.ReadCharacteristic(l.char)
		ch <- result{raw, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.raw, errors.Wrap(res.err, "failed to read characteristic value")
	}
}

func (l *link) Close() error {
	err := l.cln.CancelConnection()
	<-l.done
	return err
}
