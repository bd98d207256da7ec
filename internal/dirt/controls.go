package dirt

import (
	"strings"

	"github.com/scgolang/osc"
)

// ControlSet is an insertion-ordered mapping from control name to value.
// Names are unique; setting an existing name replaces its value but keeps
// its position, so the wire argument order stays stable.
type ControlSet struct {
	names  []string
	values map[string]Value
}

// NewControlSet returns an empty control set.
func NewControlSet() *ControlSet {
	return &ControlSet{values: map[string]Value{}}
}

func (cs *ControlSet) put(name string, v Value) {
	if _, ok := cs.values[name]; !ok {
		cs.names = append(cs.names, name)
	}
	cs.values[name] = v
}

// Set stores a numeric control.
func (cs *ControlSet) Set(name string, f float64) {
	cs.put(name, Num(f))
}

// SetString stores a string control.
func (cs *ControlSet) SetString(name, s string) {
	cs.put(name, Str(s))
}

// Default stores a numeric control only if the name is absent.
func (cs *ControlSet) Default(name string, f float64) {
	if _, ok := cs.values[name]; !ok {
		cs.put(name, Num(f))
	}
}

// Get returns the value for name.
func (cs *ControlSet) Get(name string) (Value, bool) {
	v, ok := cs.values[name]
	return v, ok
}

// GetNumber returns the numeric value for name, if it is set and numeric.
func (cs *ControlSet) GetNumber(name string) (float64, bool) {
	v, ok := cs.values[name]
	if !ok {
		return 0, false
	}
	return v.Float()
}

// GetString returns the string value for name, if it is set and a string.
func (cs *ControlSet) GetString(name string) (string, bool) {
	v, ok := cs.values[name]
	if !ok {
		return "", false
	}
	return v.Text()
}

// Delete removes name from the set.
func (cs *ControlSet) Delete(name string) {
	if _, ok := cs.values[name]; !ok {
		return
	}
	delete(cs.values, name)
	for i, n := range cs.names {
		if n == name {
			cs.names = append(cs.names[:i], cs.names[i+1:]...)
			break
		}
	}
}

// Names returns the control names in insertion order.
func (cs *ControlSet) Names() []string {
	return append([]string(nil), cs.names...)
}

// Len returns the number of controls in the set.
func (cs *ControlSet) Len() int {
	return len(cs.names)
}

// Arguments renders the set as the flat alternating name/value argument
// sequence the playback engine expects. Numbers are tagged float, strings
// are tagged string.
func (cs *ControlSet) Arguments() osc.Arguments {
	args := make(osc.Arguments, 0, 2*len(cs.names))
	for _, name := range cs.names {
		args = append(args, osc.String(name))
		v := cs.values[name]
		if f, ok := v.Float(); ok {
			args = append(args, osc.Float(f))
		} else {
			args = append(args, osc.String(v.str))
		}
	}
	return args
}

// formatControls builds a human-readable one-line summary of a control set.
// Only called on the verbose logging path, never on the hot path.
func formatControls(cs *ControlSet) string {
	var b strings.Builder
	for i, name := range cs.names {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(cs.values[name].String())
	}
	return b.String()
}
