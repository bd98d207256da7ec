package dirt

import (
	"math"
	"testing"
)

type fakeBanks struct {
	names   map[string]string
	pitched map[string]bool
}

func (fb fakeBanks) Resolve(alias string) (string, bool) {
	name, ok := fb.names[alias]
	return name, ok
}

func (fb fakeBanks) IsPitched(name string) bool {
	return fb.pitched[name]
}

func drumMachines() fakeBanks {
	return fakeBanks{
		names:   map[string]string{"tr909": "RolandTR909"},
		pitched: map[string]bool{},
	}
}

func wantNumber(t *testing.T, cs *ControlSet, name string, want float64) {
	t.Helper()
	got, ok := cs.GetNumber(name)
	if !ok {
		t.Fatalf("control %q missing or not numeric", name)
	}
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("control %q = %g, want %g", name, got, want)
	}
}

func wantString(t *testing.T, cs *ControlSet, name, want string) {
	t.Helper()
	got, ok := cs.GetString(name)
	if !ok {
		t.Fatalf("control %q missing or not a string", name)
	}
	if got != want {
		t.Errorf("control %q = %q, want %q", name, got, want)
	}
}

func wantAbsent(t *testing.T, cs *ControlSet, name string) {
	t.Helper()
	if v, ok := cs.Get(name); ok {
		t.Errorf("control %q = %v, want absent", name, v)
	}
}

// TestGainCurve verifies the inversion of the engine's amp = 0.4*a^4 curve
// and that the curve is strictly increasing.
func TestGainCurve(t *testing.T) {
	for _, g := range []float64{0.1, 0.4, 0.8, 1, 2} {
		want := math.Pow(g/0.4, 0.25)
		if got := gainCurve(g); got != want {
			t.Errorf("gainCurve(%g) = %g, want %g", g, got, want)
		}
	}
	prev := gainCurve(0.01)
	for g := 0.02; g < 4; g += 0.01 {
		cur := gainCurve(g)
		if cur <= prev {
			t.Fatalf("gainCurve not strictly increasing at %g: %g <= %g", g, cur, prev)
		}
		prev = cur
	}
}

// TestMapHapDefaults checks that an empty hap still produces every control
// the playback engine requires.
func TestMapHapDefaults(t *testing.T) {
	m := NewMapper(nil)
	cs := m.MapHap(Hap{Begin: 0.25, Duration: 0.5}, 2)

	wantNumber(t, cs, "cps", 2)
	wantNumber(t, cs, "cycle", 0.25)
	wantNumber(t, cs, "delta", 0.25)
	wantNumber(t, cs, "n", 0)
	wantNumber(t, cs, "speed", 1)
	wantNumber(t, cs, "orbit", 0)
	wantNumber(t, cs, "gain", gainCurve(0.8))
}

// TestMapHapComputedFieldsWin checks that event-supplied cps/cycle/delta
// cannot override the computed head fields.
func TestMapHapComputedFieldsWin(t *testing.T) {
	m := NewMapper(nil)
	h := Hap{
		Value:    map[string]Value{"cps": Num(99), "cycle": Num(99), "delta": Num(99)},
		Begin:    1,
		Duration: 1,
	}
	cs := m.MapHap(h, 2)
	wantNumber(t, cs, "cps", 2)
	wantNumber(t, cs, "cycle", 1)
	wantNumber(t, cs, "delta", 0.5)
}

// TestResolveADSR covers the envelope defaulting rules, including the
// implicit-gate heuristic for decay-without-sustain.
func TestResolveADSR(t *testing.T) {
	cases := []struct {
		name    string
		set     map[string]float64
		a, d, s, r float64
	}{
		{name: "nothing set", set: nil, a: 0.001, d: 0.001, s: 1.0, r: 0.01},
		{name: "sustain only", set: map[string]float64{"sustain": 0.5}, a: 0.001, d: 0.001, s: 0.5, r: 0.01},
		{name: "decay only implies decaying envelope", set: map[string]float64{"decay": 0.2}, a: 0.001, d: 0.2, s: 0.001, r: 0.01},
		{name: "attack only implies held note", set: map[string]float64{"attack": 0.1}, a: 0.1, d: 0.001, s: 1.0, r: 0.01},
		{name: "all set", set: map[string]float64{"attack": 0.1, "decay": 0.2, "sustain": 0.3, "release": 0.4}, a: 0.1, d: 0.2, s: 0.3, r: 0.4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cs := NewControlSet()
			for name, v := range tc.set {
				cs.Set(name, v)
			}
			a, d, s, r := resolveADSR(cs)
			if a != tc.a || d != tc.d || s != tc.s || r != tc.r {
				t.Errorf("resolveADSR = (%g, %g, %g, %g), want (%g, %g, %g, %g)",
					a, d, s, r, tc.a, tc.d, tc.s, tc.r)
			}
		})
	}
}

// TestBankResolution reproduces the end-to-end scenario: bd on a tr909 bank
// becomes RolandTR909_bd with all required controls present and no bank key.
func TestBankResolution(t *testing.T) {
	m := NewMapper(drumMachines())
	h := Hap{
		Value:    map[string]Value{"s": Str("bd"), "bank": Str("tr909")},
		Begin:    0,
		Duration: 1,
	}
	cs := m.MapHap(h, 1)

	wantString(t, cs, "s", "RolandTR909_bd")
	wantAbsent(t, cs, "bank")
	wantNumber(t, cs, "n", 0)
	wantNumber(t, cs, "speed", 1)
	wantNumber(t, cs, "orbit", 0)
	wantNumber(t, cs, "cycle", 0)
	wantNumber(t, cs, "delta", 1)
	wantNumber(t, cs, "gain", gainCurve(0.8))
}

// TestBankResolutionIdempotent checks that a sound name already carrying the
// canonical prefix is left alone, aside from removing the bank key.
func TestBankResolutionIdempotent(t *testing.T) {
	m := NewMapper(drumMachines())
	h := Hap{
		Value: map[string]Value{"s": Str("RolandTR909_bd"), "bank": Str("tr909")},
	}
	cs := m.MapHap(h, 1)
	wantString(t, cs, "s", "RolandTR909_bd")
	wantAbsent(t, cs, "bank")
}

// TestBankResolutionRewritesAliasPrefix checks that a sound name carrying
// the alias prefix gets only the prefix rewritten.
func TestBankResolutionRewritesAliasPrefix(t *testing.T) {
	m := NewMapper(drumMachines())
	h := Hap{
		Value: map[string]Value{"s": Str("tr909_bd"), "bank": Str("tr909")},
	}
	cs := m.MapHap(h, 1)
	wantString(t, cs, "s", "RolandTR909_bd")
}

// TestBankResolutionUnresolvedAlias checks that an unknown alias is used
// verbatim as the prefix.
func TestBankResolutionUnresolvedAlias(t *testing.T) {
	m := NewMapper(drumMachines())
	h := Hap{
		Value: map[string]Value{"s": Str("bd"), "bank": Str("linn")},
	}
	cs := m.MapHap(h, 1)
	wantString(t, cs, "s", "linn_bd")
	wantAbsent(t, cs, "bank")
}

// TestRoomsizeAlias checks the roomsize -> size rename.
func TestRoomsizeAlias(t *testing.T) {
	m := NewMapper(nil)
	cs := m.MapHap(Hap{Value: map[string]Value{"roomsize": Num(0.7)}}, 1)
	wantNumber(t, cs, "size", 0.7)
	wantAbsent(t, cs, "roomsize")
}

// TestUnitCycles checks that unit "c" rescales speed from cycles to absolute
// time and removes the unit key.
func TestUnitCycles(t *testing.T) {
	m := NewMapper(nil)
	h := Hap{Value: map[string]Value{"unit": Str("c"), "speed": Num(2)}}
	cs := m.MapHap(h, 0.5)
	wantNumber(t, cs, "speed", 4)
	wantAbsent(t, cs, "unit")
}

// TestTremoloSync checks the cycles -> Hz conversion and the depth default.
func TestTremoloSync(t *testing.T) {
	m := NewMapper(nil)
	cs := m.MapHap(Hap{Value: map[string]Value{"tremolosync": Num(2)}}, 0.5)
	wantNumber(t, cs, "tremolorate", 1)
	wantNumber(t, cs, "tremolodepth", 1)
	wantAbsent(t, cs, "tremolosync")
}

// TestTremoloHz checks the plain tremolo remap and that an explicit depth is
// kept.
func TestTremoloHz(t *testing.T) {
	m := NewMapper(nil)
	h := Hap{Value: map[string]Value{"tremolo": Num(3), "tremolodepth": Num(0.25)}}
	cs := m.MapHap(h, 1)
	wantNumber(t, cs, "tremolorate", 3)
	wantNumber(t, cs, "tremolodepth", 0.25)
	wantAbsent(t, cs, "tremolo")
}

// TestSoundfontPath checks the pitched-instrument path: sf-prefixed envelope
// controls, sfSustain equal to the note duration, no generic envelope keys,
// and the 0.3x gain compensation composed with the gain curve.
func TestSoundfontPath(t *testing.T) {
	banks := fakeBanks{
		names:   map[string]string{"epiano": "FenderRhodes"},
		pitched: map[string]bool{"FenderRhodes": true},
	}
	m := NewMapper(banks)
	h := Hap{
		Value: map[string]Value{
			"s":       Str("a4"),
			"bank":    Str("epiano"),
			"attack":  Num(0.05),
			"decay":   Num(0.2),
			"sustain": Num(0.5),
			"release": Num(0.3),
		},
		Begin:    0,
		Duration: 2,
	}
	cs := m.MapHap(h, 0.5)

	wantString(t, cs, "instrument", "sfplay")
	wantNumber(t, cs, "sfAttack", 0.05)
	wantNumber(t, cs, "sfRelease", 0.3)
	wantNumber(t, cs, "sfSustain", 4) // duration / cps
	wantAbsent(t, cs, "attack")
	wantAbsent(t, cs, "decay")
	wantAbsent(t, cs, "sustain")
	wantAbsent(t, cs, "release")
	wantNumber(t, cs, "gain", gainCurve(0.8*0.3))
}

// TestSoundfontPrefixDetection checks that a gm_ sound name is pitched even
// without bank metadata.
func TestSoundfontPrefixDetection(t *testing.T) {
	m := NewMapper(nil)
	cs := m.MapHap(Hap{Value: map[string]Value{"s": Str("gm_piano")}, Duration: 1}, 1)

	wantString(t, cs, "instrument", "sfplay")
	wantNumber(t, cs, "sfSustain", 1)
	wantNumber(t, cs, "sfAttack", 0.001)
	wantNumber(t, cs, "sfRelease", 0.01)
	wantNumber(t, cs, "gain", gainCurve(0.8*0.3))
}

// TestNonPitchedEnvelopePassthrough checks that one-shot samples keep their
// generic envelope keys untouched.
func TestNonPitchedEnvelopePassthrough(t *testing.T) {
	m := NewMapper(drumMachines())
	h := Hap{Value: map[string]Value{"s": Str("bd"), "attack": Num(0.1), "release": Num(0.2)}}
	cs := m.MapHap(h, 1)
	wantNumber(t, cs, "attack", 0.1)
	wantNumber(t, cs, "release", 0.2)
	wantAbsent(t, cs, "sfAttack")
	wantAbsent(t, cs, "instrument")
}
