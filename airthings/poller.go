package airthings

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Connection is the subset of ConnectionManager the poller drives.
type Connection interface {
	Read(ctx context.Context) ([]byte, error)
	Disconnect()
}

// DecodeFunc turns one raw characteristic payload into sensor values.
type DecodeFunc func(raw []byte, at time.Time) (SensorValues, error)

// Poller runs the read-decode-emit loop at a fixed interval. A failed
// tick is logged and the loop carries on; an unsupported payload
// format is fatal because no later tick can succeed either.
type Poller struct {
	Conn     Connection
	Decode   DecodeFunc
	Sink     Sink
	Interval time.Duration
}

// Run polls until ctx is cancelled, then releases the connection and
// the sink. Returns nil on clean cancellation.
func (p *Poller) Run(ctx context.Context) error {
	defer p.Conn.Disconnect()
	defer func() {
		if err := p.Sink.Close(); err != nil {
			log.Errorf("closing sink: %s", err)
		}
	}()

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		if err := p.tick(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Cause(err) == ErrUnsupportedFormat {
				return err
			}
			log.Errorf("poll failed: %s", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (p *Poller) tick(ctx context.Context) error {
	raw, err := p.Conn.Read(ctx)
	if err != nil {
		return err
	}
	values, err := p.Decode(raw, time.Now())
	if err != nil {
		return err
	}
	return errors.Wrap(p.Sink.Emit(values), "emitting reading")
}
