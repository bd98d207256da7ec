package dirt

import (
	"context"
	"log"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/scgolang/osc"
)

// OSC addresses of the playback engine.
const (
	AddressPlay           = "/dirt/play"
	AddressHandshake      = "/dirt/handshake"
	AddressHandshakeReply = "/dirt/handshake/reply"
)

// ConnState is the dispatcher's connection state.
type ConnState int

// Connection states. Transitions: Closed -> Opening on Open, Opening -> Open
// once the transport is ready, Open/Opening -> Closed on Close or transport
// error. Sends in any state but Open are dropped.
const (
	StateClosed ConnState = iota
	StateOpening
	StateOpen
)

func (s ConnState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// sendCloser is the slice of the OSC connection the send path needs.
type sendCloser interface {
	Send(osc.Packet) error
	Close() error
}

type dialFunc func(ctx context.Context, laddr, raddr *net.UDPAddr) (sendCloser, error)

func dialUDP(ctx context.Context, laddr, raddr *net.UDPAddr) (sendCloser, error) {
	return osc.DialUDPContext(ctx, "udp", laddr, raddr)
}

// Config configures a Dispatcher.
type Config struct {
	// Banks supplies bank alias metadata. May be nil.
	Banks BankResolver

	// Logger receives diagnostics. Defaults to log.Default().
	Logger *log.Logger

	// Verbose enables per-message logging on the send path.
	Verbose bool
}

// Dispatcher owns one UDP connection to the playback engine and sends
// timestamped trigger messages over it. Construct one per session with
// NewDispatcher; the zero value is not usable.
type Dispatcher struct {
	mapper  *Mapper
	clock   *Clock
	logger  *log.Logger
	verbose bool
	dial    dialFunc

	mu    sync.Mutex
	state ConnState
	conn  sendCloser
	raddr *net.UDPAddr
}

// NewDispatcher creates a dispatcher in the Closed state.
func NewDispatcher(config Config) *Dispatcher {
	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{
		mapper:  NewMapper(config.Banks),
		clock:   NewClock(logger),
		logger:  logger,
		verbose: config.Verbose,
		dial:    dialUDP,
	}
}

// State returns the current connection state.
func (d *Dispatcher) State() ConnState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// SetClockOrigin records the wall-clock time corresponding to the pattern
// engine's internal time zero. The pattern engine supplies this once at
// session start.
func (d *Dispatcher) SetClockOrigin(wall float64) {
	d.clock.SetOrigin(wall)
}

// Open binds an OS-assigned local port and connects to the playback engine.
// On failure the dispatcher stays Closed.
func (d *Dispatcher) Open(ctx context.Context, host string, port int) error {
	d.mu.Lock()
	if d.state != StateClosed {
		state := d.state
		d.mu.Unlock()
		return errors.Errorf("opening connection: already %s", state)
	}
	d.state = StateOpening
	d.mu.Unlock()

	fail := func(err error, msg string) error {
		d.mu.Lock()
		d.state = StateClosed
		d.mu.Unlock()
		return errors.Wrap(err, msg)
	}
	laddr, err := net.ResolveUDPAddr("udp", "0.0.0.0:0")
	if err != nil {
		return fail(err, "resolving local address")
	}
	raddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return fail(err, "resolving remote address")
	}
	conn, err := d.dial(ctx, laddr, raddr)
	if err != nil {
		return fail(err, "dialing playback engine")
	}
	d.mu.Lock()
	d.conn = conn
	d.raddr = raddr
	d.state = StateOpen
	d.mu.Unlock()
	return nil
}

// Close releases the transport unconditionally. It is idempotent.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	conn := d.conn
	d.conn = nil
	d.raddr = nil
	d.state = StateClosed
	d.mu.Unlock()
	if conn == nil {
		return nil
	}
	return errors.Wrap(conn.Close(), "closing connection")
}

// Send maps the hap to a control set and transmits it in a bundle whose
// timetag is the hap's wall-clock deadline, letting the engine schedule
// playback on its own sample-accurate clock. The offset may already be in
// the past; the engine is expected to play immediately in that case.
//
// Send never blocks and never fails: it is a no-op unless the connection is
// Open, and transmission errors are logged and dropped, since pattern
// events repeat every cycle.
func (d *Dispatcher) Send(h Hap, targetInternal, cps float64) {
	d.mu.Lock()
	conn, state := d.conn, d.state
	d.mu.Unlock()
	if state != StateOpen {
		if d.verbose {
			d.logger.Printf("dirt: dropping event, connection is %s", state)
		}
		return
	}
	controls := d.mapper.MapHap(h, cps)
	wall := d.clock.ToWall(targetInternal)
	deadline := time.Unix(0, int64(wall*float64(time.Second)))
	if d.verbose {
		d.logger.Printf("dirt: play in %+.3fs: %s", time.Until(deadline).Seconds(), formatControls(controls))
	}
	d.transmit(conn, controls, deadline)
}

// SendTest transmits a minimal hard-coded hit for connectivity verification.
// No-op unless the connection is Open.
func (d *Dispatcher) SendTest() {
	d.mu.Lock()
	conn, state := d.conn, d.state
	d.mu.Unlock()
	if state != StateOpen {
		if d.verbose {
			d.logger.Printf("dirt: dropping test hit, connection is %s", state)
		}
		return
	}
	h := Hap{
		Value:    map[string]Value{"s": Str("bd")},
		Begin:    0,
		Duration: 1,
	}
	controls := d.mapper.MapHap(h, 1)
	d.transmit(conn, controls, time.Now())
}

func (d *Dispatcher) transmit(conn sendCloser, controls *ControlSet, deadline time.Time) {
	bundle := osc.Bundle{
		Timetag: osc.FromTime(deadline),
		Packets: []osc.Packet{
			osc.Message{
				Address:   AddressPlay,
				Arguments: controls.Arguments(),
			},
		},
	}
	if err := conn.Send(bundle); err != nil {
		d.logger.Printf("dirt: send failed: %v", err)
	}
}

// Handshake sends the engine's handshake request and waits for the reply,
// bounding the wait with ctx. It uses a short-lived listening connection so
// the reply does not race the trigger stream.
func (d *Dispatcher) Handshake(ctx context.Context) error {
	d.mu.Lock()
	raddr, state := d.raddr, d.state
	d.mu.Unlock()
	if state != StateOpen {
		return errors.Errorf("handshaking: connection is %s", state)
	}
	laddr, err := net.ResolveUDPAddr("udp", "0.0.0.0:0")
	if err != nil {
		return errors.Wrap(err, "resolving local address")
	}
	conn, err := osc.ListenUDPContext(ctx, "udp", laddr)
	if err != nil {
		return errors.Wrap(err, "creating reply listener")
	}
	defer func() { _ = conn.Close() }()

	var (
		once    sync.Once
		done    = make(chan struct{})
		errchan = make(chan error, 1)
	)
	go func() {
		if err := conn.Serve(1, osc.Dispatcher{
			AddressHandshakeReply: osc.Method(func(m osc.Message) error {
				once.Do(func() { close(done) })
				return nil
			}),
		}); err != nil {
			errchan <- err
		}
	}()
	if err := conn.SendTo(raddr, osc.Message{Address: AddressHandshake}); err != nil {
		return errors.Wrap(err, "sending handshake")
	}
	select {
	case <-done:
		return nil
	case err := <-errchan:
		return errors.Wrap(err, "serving handshake reply")
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for handshake reply")
	}
}
