package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"

	"wavepoll/airthings"
)

const columnWidth = 14

// TerminalSink redraws a fixed-width table in place on every reading.
type TerminalSink struct {
	w            io.Writer
	serialNumber string
	lastHeight   int
}

func NewTerminalSink(w io.Writer, serialNumber string) *TerminalSink {
	return &TerminalSink{w: w, serialNumber: serialNumber}
}

func (s *TerminalSink) Emit(values airthings.SensorValues) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Width(columnWidth).Align(lipgloss.Center)
			if row == table.HeaderRow {
				style = style.Bold(true)
			}
			return style
		}).
		Headers(columns...).
		Row(formatValues(values)...)

	view := fmt.Sprintf("Device serial number: %s  last read %s\n%s\n",
		s.serialNumber, values.CapturedAt.Format("15:04:05"), t.Render())

	if s.lastHeight > 0 {
		// move back to the top of the previous frame and overwrite it
		fmt.Fprintf(s.w, "\x1b[%dA\r", s.lastHeight)
	}
	if _, err := io.WriteString(s.w, view); err != nil {
		return errors.Wrap(err, "writing table")
	}
	s.lastHeight = strings.Count(view, "\n")
	return nil
}

func (s *TerminalSink) Close() error {
	return nil
}
