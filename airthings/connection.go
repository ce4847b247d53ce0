package airthings

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Link is one established BLE connection with the sensor
// characteristic already discovered.
type Link interface {
	Read(ctx context.Context) ([]byte, error)
	Close() error
}

// Transport establishes links to a device address. The real radio
// lives in the waveplus package; tests use deterministic fakes.
type Transport interface {
	Dial(ctx context.Context, addr string) (Link, error)
}

type ConnState int

const (
	Disconnected ConnState = iota
	Connecting
	Connected
	Failed
)

func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// ConnectionManager owns the exclusive BLE link to one device. All
// methods are driven from the single polling goroutine; nothing here
// is safe for concurrent use.
type ConnectionManager struct {
	transport Transport
	addr      string

	retries     int
	backoff     time.Duration
	readTimeout time.Duration

	state ConnState
	link  Link
}

func NewConnectionManager(t Transport, addr string, retries int, backoff, readTimeout time.Duration) *ConnectionManager {
	return &ConnectionManager{
		transport:   t,
		addr:        addr,
		retries:     retries,
		backoff:     backoff,
		readTimeout: readTimeout,
	}
}

func (m *ConnectionManager) State() ConnState {
	return m.state
}

// Connect establishes the link unless it is already up. The device is
// intermittently unreachable when asleep, out of range or held by
// another client, so attempts are spaced with exponential backoff.
func (m *ConnectionManager) Connect(ctx context.Context) error {
	if m.state == Connected {
		return nil
	}

	m.state = Connecting
	delay := m.backoff
	var lastErr error
	for i := 0; i < m.retries; i++ {
		if i > 0 {
			log.Debugf("retrying connect to %s in %s", m.addr, delay)
			select {
			case <-ctx.Done():
				m.state = Disconnected
				return errors.Wrap(ctx.Err(), "connect cancelled")
			case <-time.After(delay):
			}
			delay *= 2
		}

		link, err := m.transport.Dial(ctx, m.addr)
		if err == nil {
			m.link = link
			m.state = Connected
			return nil
		}
		lastErr = err
		log.Errorf("connect attempt %d/%d to %s failed: %s", i+1, m.retries, m.addr, err)
	}

	m.state = Failed
	return errors.Wrapf(ErrConnect, "connecting to %s, %d attempts, last error: %s", m.addr, m.retries, lastErr)
}

// Read returns one raw payload. A failed read drops the link and the
// manager reconnects once before retrying, so a single transient link
// drop is invisible to the caller; a second consecutive failure
// propagates.
func (m *ConnectionManager) Read(ctx context.Context) ([]byte, error) {
	if err := m.Connect(ctx); err != nil {
		return nil, err
	}

	raw, err := m.readOnce(ctx)
	if err == nil {
		return raw, nil
	}
	log.Warnf("read from %s failed, reconnecting once: %s", m.addr, err)

	m.Disconnect()
	if err := m.Connect(ctx); err != nil {
		return nil, err
	}
	raw, err = m.readOnce(ctx)
	if err != nil {
		m.Disconnect()
		return nil, err
	}
	return raw, nil
}

func (m *ConnectionManager) readOnce(ctx context.Context) ([]byte, error) {
	rctx, cancel := context.WithTimeout(ctx, m.readTimeout)
	defer cancel()

	raw, err := m.link.Read(rctx)
	if err == nil {
		return raw, nil
	}
	if rctx.Err() == context.DeadlineExceeded {
		return nil, errors.Wrapf(ErrReadTimeout, "no payload within %s", m.readTimeout)
	}
	return nil, errors.Wrapf(ErrRead, "%s", err)
}

// Disconnect releases the link unconditionally. Safe to call from any
// state, any number of times.
func (m *ConnectionManager) Disconnect() {
	if m.link != nil {
		if err := m.link.Close(); err != nil {
			log.Debugf("closing link to %s: %s", m.addr, err)
		}
		m.link = nil
	}
	m.state = Disconnected
}
