package console

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// Field keys understood by Formatter.
const (
	WorkerKey = "worker"
	ColorKey  = "color"
	DotKey    = "dot"
)

// DefaultName labels entries that carry no worker field.
const DefaultName = "Main"

// Formatter is a logrus.Formatter producing one "<name>: <message>" line per
// entry, coloured by the entry's color field. Entries carrying the dot field
// render as a single coloured "." with no newline.
type Formatter struct {
	// DisableColors prints plain text.
	DisableColors bool
}

var _ logrus.Formatter = (*Formatter)(nil)

// Fields returns the logrus fields identifying a worker.
func Fields(name string, c Color) logrus.Fields {
	return logrus.Fields{WorkerKey: name, ColorKey: c}
}

// Format implements logrus.Formatter.
func (f *Formatter) Format(e *logrus.Entry) ([]byte, error) {
	c := f.color(e)

	if dot, _ := e.Data[DotKey].(bool); dot {
		return []byte(c.Wrap(".")), nil
	}

	name, _ := e.Data[WorkerKey].(string)
	if name == "" {
		name = DefaultName
	}

	var b bytes.Buffer
	b.WriteString(name)
	b.WriteString(": ")
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		switch k {
		case WorkerKey, ColorKey, DotKey:
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}

	return []byte(c.Wrap(b.String()) + "\n"), nil
}

func (f *Formatter) color(e *logrus.Entry) Color {
	if f.DisableColors {
		return None
	}
	if c, ok := e.Data[ColorKey].(Color); ok {
		return c
	}
	switch e.Level {
	case logrus.WarnLevel:
		return Yellow
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return Red
	}
	return None
}
