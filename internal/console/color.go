// Package console renders worker log lines the way the demos print them:
// "<name>: <message>" in the worker's colour, plus bare coloured dots that
// show a worker is still alive.
package console

import (
	"errors"
	"fmt"
	"strings"
)

// Color is a worker's display attribute: an ANSI foreground colour code.
// It is cosmetic only.
type Color int

const (
	None    Color = 0
	Red     Color = 31
	Green   Color = 32
	Yellow  Color = 33
	Blue    Color = 34
	Magenta Color = 35
	Cyan    Color = 36
)

// Palette is the rotation used when colouring a pool of workers.
var Palette = []Color{Green, Yellow, Red, Cyan}

// ErrUnknownColor is returned by ParseColor.
var ErrUnknownColor = errors.New("console: unknown color")

var colorNames = map[Color]string{
	None:    "none",
	Red:     "red",
	Green:   "green",
	Yellow:  "yellow",
	Blue:    "blue",
	Magenta: "magenta",
	Cyan:    "cyan",
}

func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("color(%d)", int(c))
}

// ParseColor maps a colour name to its Color.
func ParseColor(s string) (Color, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for c, name := range colorNames {
		if name == want {
			return c, nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownColor, s)
}

// At returns the palette colour for the i'th worker of a pool.
func At(i int) Color {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

// Wrap surrounds s with the escape sequences for c. None leaves s unchanged.
func (c Color) Wrap(s string) string {
	if c == None {
		return s
	}
	return fmt.Sprintf("\033[1;%dm%s\033[0m", int(c), s)
}
