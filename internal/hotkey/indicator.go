package hotkey

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

const indicatorText = " Recording "

// Indicator draws a small, easily-ignored terminal widget while the
// hotkey is held, centered horizontally and one-third up from the
// bottom of the terminal.
type Indicator struct {
	displayed bool
}

// NewIndicator constructs an Indicator. Show/Hide are no-ops when
// stdout is not a terminal.
func NewIndicator() *Indicator {
	return &Indicator{}
}

// Show draws the indicator if it is not already visible.
func (i *Indicator) Show() {
	if i.displayed {
		return
	}
	x, y, ok := i.position()
	if ok {
		fmt.Printf("\x1b[s\x1b[%d;%dH\x1b[37;100m%s\x1b[0m\x1b[u", y+1, x+1, indicatorText)
	}
	i.displayed = true
}

// Hide erases the indicator if visible.
func (i *Indicator) Hide() {
	if !i.displayed {
		return
	}
	x, y, ok := i.position()
	if ok {
		blank := make([]byte, len(indicatorText))
		for j := range blank {
			blank[j] = ' '
		}
		fmt.Printf("\x1b[s\x1b[%d;%dH%s\x1b[u", y+1, x+1, blank)
	}
	i.displayed = false
}

// position returns the terminal cell to draw at, one-third up from
// the bottom row and centered horizontally.
func (i *Indicator) position() (x, y int, ok bool) {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0, 0, false
	}
	x = (cols - len(indicatorText)) / 2
	if x < 0 {
		x = 0
	}
	y = rows * 2 / 3
	return x, y, true
}
