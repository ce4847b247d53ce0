package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"

	"wavepoll/airthings"
)

// PipeSink appends one CSV line per reading and flushes it right
// away, so a consumer following the stream observes near-real-time
// data.
type PipeSink struct {
	w           *bufio.Writer
	wroteHeader bool
}

func NewPipeSink(w io.Writer) *PipeSink {
	return &PipeSink{w: bufio.NewWriter(w)}
}

func (s *PipeSink) Emit(values airthings.SensorValues) error {
	if !s.wroteHeader {
		header := append([]string{"Timestamp"}, columns...)
		if _, err := fmt.Fprintln(s.w, strings.Join(header, ",")); err != nil {
			return errors.Wrap(err, "writing header")
		}
		s.wroteHeader = true
	}

	row := append([]string{values.CapturedAt.Format(time.RFC3339)}, formatValues(values)...)
	if _, err := fmt.Fprintln(s.w, strings.Join(row, ",")); err != nil {
		return errors.Wrap(err, "writing reading")
	}
	return errors.Wrap(s.w.Flush(), "flushing reading")
}

func (s *PipeSink) Close() error {
	return errors.Wrap(s.w.Flush(), "flushing pipe sink")
}
