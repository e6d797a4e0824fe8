package x11

import (
	"fmt"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgb/xtest"
)

// Display owns the single X11 connection kseqi uses for the process
// lifetime. Per spec.md §5, every call against it must originate from
// the thread that created it; kseqi's event loop is single-threaded
// so this is enforced by construction rather than a mutex.
//
// Design note §9 prefers an explicitly passed handle over a global,
// but allows a lazy global. Global() below records the most recently
// opened Display; no package calls it, and every package, the keysym
// allocator included, receives *Display explicitly.
type Display struct {
	conn *xgb.Conn
	root xproto.Window

	setup *xproto.SetupInfo

	xiOpcode    uint8
	xtestOpcode uint8

	minKeycode, maxKeycode byte
	keysymsPerKeycode      byte
	keyboardMapping        []uint32 // flattened, keysymsPerKeycode per keycode

	shiftKeycode byte
}

var (
	globalMu   sync.Mutex
	globalDisp *Display
)

// Open connects to the X11 display named by name (empty string means
// $DISPLAY), negotiates XInput 2.2 and XTEST, and queries the initial
// keyboard mapping. Both extensions are required; their absence is a
// start-up fatal error per spec.md §6.
func Open(name string) (*Display, error) {
	conn, err := xgb.NewConnDisplay(name)
	if err != nil {
		return nil, fmt.Errorf("opening X11 display %q: %w", name, err)
	}

	d := &Display{
		conn: conn,
		setup: xproto.Setup(conn),
	}
	d.root = d.setup.DefaultScreen(conn).Root
	d.minKeycode = byte(d.setup.MinKeycode)
	d.maxKeycode = byte(d.setup.MaxKeycode)

	if err := d.initXInput2(); err != nil {
		conn.Close()
		return nil, err
	}
	if err := d.initXTest(); err != nil {
		conn.Close()
		return nil, err
	}
	if err := d.RefreshKeyboardMapping(); err != nil {
		conn.Close()
		return nil, err
	}
	d.recomputeModifiers()

	globalMu.Lock()
	globalDisp = d
	globalMu.Unlock()

	return d, nil
}

// Global returns the most recently opened Display, or nil. It is for
// code that cannot carry the Display explicitly; the keysym
// allocator does not use it, since it holds its Display directly.
func Global() *Display {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalDisp
}

// Conn returns the underlying xgb connection, for packages (xtest.go,
// xinput2.go) that issue raw requests.
func (d *Display) Conn() *xgb.Conn { return d.conn }

// Root returns the root window of the default screen.
func (d *Display) Root() xproto.Window { return d.root }

// Sync flushes the connection and waits for the server to process all
// outstanding requests, by issuing a round-trip GetInputFocus. The
// keysym allocator relies on this after every mapping mutation so
// subsequently injected events are interpreted under the new mapping.
func (d *Display) Sync() error {
	_, err := xproto.GetInputFocus(d.conn).Reply()
	return err
}

// Close releases the extensions' grabbed resources and closes the
// connection. It does not revert keysym allocator mappings; callers
// must do that (via the allocator's own Close) before calling this.
func (d *Display) Close() {
	globalMu.Lock()
	if globalDisp == d {
		globalDisp = nil
	}
	globalMu.Unlock()
	d.conn.Close()
}

// initXTest verifies the XTEST extension is present, recording its
// major opcode. Its absence is fatal per spec.md §6: "missing it
// triggers printing the appropriate package name and aborting".
func (d *Display) initXTest() error {
	if err := xtest.Init(d.conn); err != nil {
		return fmt.Errorf("XTEST extension unavailable (install libxtst / the xorg-xtest package): %w", err)
	}
	reply, err := xtest.GetVersion(d.conn, 2, 2).Reply()
	if err != nil {
		return fmt.Errorf("querying XTEST version: %w", err)
	}
	d.xtestOpcode = d.conn.Extensions["XTEST"]
	_ = reply
	return nil
}
