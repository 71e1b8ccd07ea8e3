package rtc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jrockway/go-gpsd"
	"github.com/jrockway/segment-clock/control/timestamp"
	"golang.org/x/net/trace"
)

// ErrNoFix is returned by GPS.Now before gpsd has reported a time.
var ErrNoFix = errors.New("no time from gps yet")

// GPS keeps time from the TPV reports of a gpsd instance.  Between reports the time is advanced
// with the local monotonic clock, so reads never block on the receiver.
type GPS struct {
	loc *time.Location
	now func() time.Time

	mu     sync.Mutex
	ref    time.Time // time in the most recent report
	refAt  time.Time // local time the report arrived
	offset time.Duration

	readyOnce sync.Once
	ready     chan struct{}
}

// NewGPS returns a GPS clock that reports time in loc.  Call Watch to start receiving reports.
func NewGPS(loc *time.Location) *GPS {
	if loc == nil {
		loc = time.Local
	}
	return &GPS{loc: loc, now: time.Now, ready: make(chan struct{})}
}

func (g *GPS) String() string {
	return "gps via gpsd"
}

// Ready is closed when the first time report has been received.
func (g *GPS) Ready() <-chan struct{} {
	return g.ready
}

func (g *GPS) observe(t time.Time) {
	g.mu.Lock()
	g.ref = t
	g.refAt = g.now()
	g.mu.Unlock()
	g.readyOnce.Do(func() { close(g.ready) })
}

// Now returns the GPS time plus any offset set with Set.
func (g *GPS) Now() (timestamp.Timestamp, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ref.IsZero() {
		return timestamp.Timestamp{}, ErrNoFix
	}
	t := g.ref.Add(g.now().Sub(g.refAt)).Add(g.offset)
	return timestamp.FromTime(t.In(g.loc)), nil
}

// Set shifts the displayed time so that Now returns ts for the rest of the current second.  The
// fraction of a second already elapsed is kept, so the seconds keep ticking in step with the
// receiver.  The receiver is not affected.
func (g *GPS) Set(ts timestamp.Timestamp) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ref.IsZero() {
		return ErrNoFix
	}
	current := g.ref.Add(g.now().Sub(g.refAt))
	g.offset = ts.Time(g.loc).Sub(current.Truncate(time.Second))
	return nil
}

// Watch follows gpsd at addr until the context is cancelled, reconnecting when the connection dies
// or goes quiet.
func (g *GPS) Watch(ctx context.Context, addr string) error {
	l := trace.NewEventLog("source", "gpsd")
	defer l.Finish()
	for {
		if err := g.monitor(ctx, l, addr); err != nil {
			l.Errorf("monitor gpsd: %v", err)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("watch gpsd: %w", ctx.Err())
		case <-time.After(10 * time.Second):
		}
	}
}

func (g *GPS) monitor(ctx context.Context, l trace.EventLog, addr string) error {
	l.Printf("dial %s", addr)
	gps, err := gpsd.Dial(addr)
	if err != nil {
		return fmt.Errorf("dial gpsd: %w", err)
	}
	watchdog := make(chan struct{}, 1)
	gps.AddFilter("TPV", func(r interface{}) {
		tpv, ok := r.(*gpsd.TPVReport)
		if !ok {
			return
		}
		if tpv.Mode < gpsd.Mode2D || tpv.Time.IsZero() {
			l.Printf("tpv without a fix: mode %v", tpv.Mode)
			return
		}
		g.observe(tpv.Time)
		select {
		case watchdog <- struct{}{}:
		default:
		}
	})
	done := gps.Watch()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
			return errors.New("gpsd watch stopped")
		case <-time.After(time.Minute):
			return errors.New("gpsd hasn't sent a fix for 1 minute")
		case <-watchdog:
		}
	}
}
