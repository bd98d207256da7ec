// Package dirt converts scheduled pattern events (haps) into timestamped
// OSC messages for a SuperDirt-style playback engine.
//
// The pipeline is: a Mapper turns a hap plus the current tempo into an
// ordered ControlSet, a Clock converts the hap's internal target time into
// wall-clock time, and a Dispatcher wraps the controls in an OSC bundle and
// fires it over UDP. Each hap is processed independently; delivery is
// best-effort and at-most-once, since pattern events repeat every cycle.
//
// The Dispatcher is the only stateful piece: it owns at most one UDP
// connection and a small Closed/Opening/Open state machine. Sends while the
// connection is not open are dropped, not queued.
package dirt
