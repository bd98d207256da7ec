package dirt

import (
	"math"
	"sort"
	"strings"
)

// BankResolver looks up instrument bank metadata. Implementations are
// supplied by the sample library layer; the mapper only reads from them.
type BankResolver interface {
	// Resolve maps a short bank alias to its canonical name.
	Resolve(alias string) (string, bool)

	// IsPitched reports whether the named bank plays pitched (soundfont
	// style) instruments rather than one-shot samples.
	IsPitched(name string) bool
}

const (
	// defaultGain is the pattern engine's linear gain when a hap sets none.
	defaultGain = 0.8

	// soundfontGainFactor compensates pitched-instrument banks, whose
	// samples are normalized louder than standard one-shot samples.
	soundfontGainFactor = 0.3

	// pitchedInstrument is the playback engine's soundfont player synth.
	pitchedInstrument = "sfplay"
)

// soundfontPrefixes mark bank names as pitched regardless of resolver
// metadata. gm_ is the General MIDI soundfont namespace.
var soundfontPrefixes = []string{"gm_"}

// Mapper transforms haps into wire-protocol control sets. It is stateless
// apart from the bank resolver and safe for concurrent use.
type Mapper struct {
	banks BankResolver
}

// NewMapper returns a mapper backed by banks, which may be nil when no bank
// metadata is available; aliases then pass through unresolved.
func NewMapper(banks BankResolver) *Mapper {
	return &Mapper{banks: banks}
}

// MapHap converts a hap and the current tempo into the full control set for
// one trigger message. It never fails: missing fields are defaulted, never
// rejected.
func (m *Mapper) MapHap(h Hap, cps float64) *ControlSet {
	cs := NewControlSet()
	cs.Set("cps", cps)
	cs.Set("cycle", h.Begin)
	delta := 0.0
	if cps != 0 {
		delta = h.Duration / cps
	}
	cs.Set("delta", delta)

	// Merge the raw event fields in sorted key order so the emitted
	// argument order is deterministic. The computed head fields win.
	names := make([]string, 0, len(h.Value))
	for name := range h.Value {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		switch name {
		case "cps", "cycle", "delta":
			continue
		}
		cs.put(name, h.Value[name])
	}

	// The playback engine requires these even when the pattern omits them.
	cs.Default("n", 0)
	cs.Default("speed", 1)
	cs.Default("orbit", 0)

	canonical := m.applyBank(cs)
	applyAliases(cs, cps)
	applyTremolo(cs, cps)
	pitched := m.applySoundfont(cs, canonical, delta)
	applyGain(cs, pitched)
	return cs
}

// applyBank resolves the bank alias, rewrites the sound name prefix and
// removes the bank key, which must never reach the wire. It returns the
// canonical bank name, or "" when the hap carries no bank.
func (m *Mapper) applyBank(cs *ControlSet) string {
	alias, ok := cs.GetString("bank")
	if !ok {
		cs.Delete("bank")
		return ""
	}
	cs.Delete("bank")

	canonical := alias
	if m.banks != nil {
		if name, found := m.banks.Resolve(alias); found {
			canonical = name
		}
	}
	s, ok := cs.GetString("s")
	if !ok {
		return canonical
	}
	switch {
	case s == canonical || strings.HasPrefix(s, canonical+"_"):
		// Already carries the canonical prefix.
	case s == alias:
		cs.SetString("s", canonical)
	case strings.HasPrefix(s, alias+"_"):
		cs.SetString("s", canonical+strings.TrimPrefix(s, alias))
	default:
		cs.SetString("s", canonical+"_"+s)
	}
	return canonical
}

// applyAliases rewrites control names that the pattern engine and the
// playback engine spell differently.
func applyAliases(cs *ControlSet, cps float64) {
	if v, ok := cs.GetNumber("roomsize"); ok {
		cs.Set("size", v)
		cs.Delete("roomsize")
	}
	if unit, ok := cs.GetString("unit"); ok && unit == "c" {
		// unit "c" means speed is expressed in cycles; convert it to
		// absolute time so the engine does not convert again.
		if speed, ok := cs.GetNumber("speed"); ok && cps != 0 {
			cs.Set("speed", speed/cps)
		}
		cs.Delete("unit")
	}
}

// applyTremolo remaps the pattern engine's tremolo controls onto the
// engine's rate/depth pair. tremolosync is expressed in cycles and converts
// to Hz; tremolo is already in Hz.
func applyTremolo(cs *ControlSet, cps float64) {
	if v, ok := cs.GetNumber("tremolosync"); ok {
		cs.Set("tremolorate", v*cps)
		cs.Delete("tremolosync")
	} else if v, ok := cs.GetNumber("tremolo"); ok {
		cs.Set("tremolorate", v)
		cs.Delete("tremolo")
	}
	if _, ok := cs.Get("tremolorate"); ok {
		// The engine's own default depth is 0.5; the pattern engine's
		// convention is full depth.
		cs.Default("tremolodepth", 1)
	}
}

// applySoundfont routes pitched banks through the soundfont player synth and
// translates the generic envelope into its sf-prefixed controls, so the
// engine's generic envelope does not double-apply. sfSustain is the note
// duration: the incoming sustain parameter is a level (0..1), never a
// duration, and must not be reused for timing. Reports whether the hap was
// pitched.
func (m *Mapper) applySoundfont(cs *ControlSet, canonical string, delta float64) bool {
	name := canonical
	if name == "" {
		name, _ = cs.GetString("s")
	}
	if name == "" {
		return false
	}
	pitched := hasSoundfontPrefix(name)
	if !pitched {
		if s, ok := cs.GetString("s"); ok {
			pitched = hasSoundfontPrefix(s)
		}
	}
	if !pitched && m.banks != nil {
		pitched = m.banks.IsPitched(name)
	}
	if !pitched {
		return false
	}

	attack, _, _, release := resolveADSR(cs)
	cs.SetString("instrument", pitchedInstrument)
	cs.Set("sfAttack", attack)
	cs.Set("sfRelease", release)
	cs.Set("sfSustain", delta)
	for _, key := range []string{"attack", "decay", "sustain", "release"} {
		cs.Delete(key)
	}
	return true
}

func hasSoundfontPrefix(name string) bool {
	for _, prefix := range soundfontPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// resolveADSR reads the envelope controls and fills in defaults. Supplying
// decay without an explicit sustain implies a decaying envelope (sustain
// level near zero); supplying only attack implies a held note.
func resolveADSR(cs *ControlSet) (attack, decay, sustain, release float64) {
	attack, hasAttack := cs.GetNumber("attack")
	decay, hasDecay := cs.GetNumber("decay")
	sustain, hasSustain := cs.GetNumber("sustain")
	release, hasRelease := cs.GetNumber("release")

	if !hasAttack {
		attack = 0.001
	}
	if !hasDecay {
		decay = 0.001
	}
	if !hasSustain {
		if hasDecay {
			sustain = 0.001
		} else {
			sustain = 1.0
		}
	}
	if !hasRelease {
		release = 0.01
	}
	return attack, decay, sustain, release
}

// applyGain converts the pattern engine's linear gain to the wire amplitude.
// Pitched haps are compensated before the curve; the curve then sees the
// compensated value, not the raw one.
func applyGain(cs *ControlSet, pitched bool) {
	gain := defaultGain
	if g, ok := cs.GetNumber("gain"); ok {
		gain = g
	}
	if pitched {
		gain *= soundfontGainFactor
	}
	cs.Set("gain", gainCurve(gain))
}

// gainCurve inverts the playback engine's amp = 0.4 * amplitude^4 curve so
// perceived loudness matches what the pattern engine intended.
func gainCurve(g float64) float64 {
	return math.Pow(g/0.4, 0.25)
}
