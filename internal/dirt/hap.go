package dirt

import "strconv"

// Value is a single control value: either a number or a string.
// These are the only two argument types the wire protocol carries.
type Value struct {
	str   string
	num   float64
	isStr bool
}

// Num makes a numeric Value.
func Num(f float64) Value {
	return Value{num: f}
}

// Str makes a string Value.
func Str(s string) Value {
	return Value{str: s, isStr: true}
}

// Float returns the numeric value, or false if the value is a string.
func (v Value) Float() (float64, bool) {
	if v.isStr {
		return 0, false
	}
	return v.num, true
}

// Text returns the string value, or false if the value is a number.
func (v Value) Text() (string, bool) {
	if !v.isStr {
		return "", false
	}
	return v.str, true
}

// String formats the value for diagnostics.
func (v Value) String() string {
	if v.isStr {
		return v.str
	}
	return strconv.FormatFloat(v.num, 'g', -1, 64)
}

// Hap is one scheduled pattern event as supplied by the pattern engine.
// Begin is the fractional cycle position and Duration the fractional cycle
// length (>= 0). The value map is never mutated by this package.
type Hap struct {
	Value    map[string]Value
	Begin    float64
	Duration float64
}
