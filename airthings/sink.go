package airthings

// Sink consumes the reading stream. Implementations hold at most one
// reading at a time.
type Sink interface {
	Emit(values SensorValues) error
	Close() error
}

// Fanout emits every reading to all sinks in order.
type Fanout []Sink

func (f Fanout) Emit(values SensorValues) error {
	var firstErr error
	for _, s := range f {
		if err := s.Emit(values); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f Fanout) Close() error {
	var firstErr error
	for _, s := range f {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
