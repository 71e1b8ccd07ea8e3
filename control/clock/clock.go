// Package clock runs the control loop: it polls the buttons, drives the mode machine, edits the
// time, and paints a frame on every tick.
package clock

import (
	"context"
	"fmt"
	"time"

	"github.com/jrockway/segment-clock/control/blink"
	"github.com/jrockway/segment-clock/control/edit"
	"github.com/jrockway/segment-clock/control/face"
	"github.com/jrockway/segment-clock/control/mode"
	"github.com/jrockway/segment-clock/control/timestamp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/net/trace"
)

var (
	gestureCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clock_gestures_total",
		Help: "button gestures handled by the control loop",
	}, []string{"event"})

	discardedGestureCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clock_discarded_gestures_total",
		Help: "button gestures ignored because an overlay was showing",
	})

	modeGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "clock_mode",
		Help: "the screen currently shown; 0 is the time",
	})

	editCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clock_edits_total",
		Help: "changes made to the time, date, or brightness",
	}, []string{"field"})

	overlayCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clock_overlays_total",
		Help: "overlays shown",
	}, []string{"kind"})

	portErrorCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clock_port_errors_total",
		Help: "errors talking to the clock source or the display",
	}, []string{"port"})

	stepDurationMetric = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "clock_step_duration_seconds",
		Help:    "time spent handling input and painting one frame",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	})
)

// Source is where the time comes from and where edits go.
type Source interface {
	Now() (timestamp.Timestamp, error)
	Set(timestamp.Timestamp) error
}

// Input reports the gestures completed since the last poll.
type Input interface {
	Poll(now time.Time) []mode.Event
}

// Options configures a Clock.  Zero values get defaults.
type Options struct {
	PollInterval    time.Duration // 10ms
	OverlayDuration time.Duration // 1s
	BlinkPeriod     time.Duration // 500ms
	Brightness      int           // 15
	Rules           edit.Rules
	ChargeText      string // "CHARGE"
}

const (
	DefaultPollInterval    = 10 * time.Millisecond
	DefaultOverlayDuration = time.Second
	DefaultChargeText      = "CHARGE"
)

func (o *Options) setDefaults() {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.OverlayDuration <= 0 {
		o.OverlayDuration = DefaultOverlayDuration
	}
	if o.BlinkPeriod <= 0 {
		o.BlinkPeriod = blink.DefaultPeriod
	}
	if o.Brightness == 0 {
		o.Brightness = edit.MaxBrightness
	}
	if o.ChargeText == "" {
		o.ChargeText = DefaultChargeText
	}
}

type overlay struct {
	kind  mode.ActionKind
	until time.Time
}

// Clock is the control loop.  It is not safe for concurrent use; Run or Step own it.
type Clock struct {
	opts    Options
	source  Source
	display face.Display
	input   Input
	machine *mode.Machine
	blink   *blink.Scheduler
	l       trace.EventLog

	start   time.Time
	overlay *overlay
}

// New returns a clock on the time screen.
func New(source Source, display face.Display, input Input, opts Options) *Clock {
	opts.setDefaults()
	return &Clock{
		opts:    opts,
		source:  source,
		display: display,
		input:   input,
		machine: mode.New(opts.Brightness, opts.Rules),
		blink:   blink.New(opts.BlinkPeriod),
	}
}

// Machine returns the mode machine, for inspection.
func (c *Clock) Machine() *mode.Machine {
	return c.machine
}

func (c *Clock) logf(format string, args ...interface{}) {
	if c.l != nil {
		c.l.Printf(format, args...)
	}
}

func (c *Clock) portError(port string, err error) {
	portErrorCounter.WithLabelValues(port).Inc()
	if c.l != nil {
		c.l.Errorf("%s: %v", port, err)
	}
}

// millis is the monotonic time since the loop started, as the blink scheduler wants it.
func (c *Clock) millis(now time.Time) uint32 {
	if c.start.IsZero() {
		c.start = now
	}
	return uint32(now.Sub(c.start) / time.Millisecond)
}

// Step runs one iteration of the loop at now: it handles input and paints a frame.  The returned
// error is the first port error encountered; the clock remains usable after an error.
func (c *Clock) Step(now time.Time) error {
	started := time.Now()
	defer func() { stepDurationMetric.Observe(time.Since(started).Seconds()) }()
	ms := c.millis(now)

	if c.overlay != nil && !now.Before(c.overlay.until) {
		c.logf("overlay %v done", c.overlay.kind)
		c.overlay = nil
	}

	var firstErr error
	for _, e := range c.input.Poll(now) {
		if c.overlay != nil {
			discardedGestureCounter.Inc()
			c.logf("discard %v during overlay", e)
			continue
		}
		if err := c.handle(now, e); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	ts, err := c.source.Now()
	if err != nil {
		err = fmt.Errorf("read clock: %w", err)
		c.portError("source", err)
		if firstErr == nil {
			firstErr = err
		}
		return firstErr
	}

	var frame face.Frame
	switch {
	case c.overlay != nil && c.overlay.kind == mode.ShowDate:
		frame = face.Date(ts, c.machine.Brightness())
	case c.overlay != nil:
		frame = face.Text(c.opts.ChargeText, c.machine.Brightness())
	default:
		if _, ok := c.machine.Selected(); ok {
			c.blink.Tick(ms)
		}
		frame = face.Render(face.State{
			Mode:       c.machine.Mode(),
			FieldIndex: c.machine.FieldIndex(),
			Time:       ts,
			Brightness: c.machine.Brightness(),
			Visible:    c.blink.Visible(),
		})
	}
	if err := face.Paint(c.display, frame); err != nil {
		err = fmt.Errorf("paint %q: %w", frame.String(), err)
		c.portError("display", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *Clock) handle(now time.Time, e mode.Event) error {
	gestureCounter.WithLabelValues(e.String()).Inc()
	before := c.machine.Mode()
	a := c.machine.Handle(e)
	if after := c.machine.Mode(); after != before {
		modeGauge.Set(float64(after))
		c.logf("mode %v -> %v", before, after)
	}
	switch a.Kind {
	case mode.ShowDate, mode.ShowCharge:
		overlayCounter.WithLabelValues(a.Kind.String()).Inc()
		c.overlay = &overlay{kind: a.Kind, until: now.Add(c.opts.OverlayDuration)}
		c.logf("overlay %v until %s", a.Kind, c.overlay.until.Format(time.StampMilli))
	case mode.SetBrightness:
		editCounter.WithLabelValues(a.Field.String()).Inc()
		c.logf("brightness %d", c.machine.Brightness())
	case mode.EditTimestamp:
		ts, err := c.source.Now()
		if err != nil {
			err = fmt.Errorf("read clock for %v: %w", e, err)
			c.portError("source", err)
			return err
		}
		edited := c.machine.Apply(ts, a)
		if err := c.source.Set(edited); err != nil {
			err = fmt.Errorf("write clock %v: %w", edited, err)
			c.portError("source", err)
			return err
		}
		editCounter.WithLabelValues(a.Field.String()).Inc()
		c.logf("%v %+d: %v -> %v", a.Field, a.Delta, ts, edited)
	}
	return nil
}

// Run steps the clock every poll interval until the context is cancelled.  Port errors are
// logged and counted but do not stop the loop.
func (c *Clock) Run(ctx context.Context) error {
	c.l = trace.NewEventLog("service", "clock")
	defer c.l.Finish()
	defer func() { c.l = nil }()

	t := time.NewTicker(c.opts.PollInterval)
	defer t.Stop()
	// Step has already counted and logged any error; the next tick retries.
	c.Step(time.Now())
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("clock loop: %w", ctx.Err())
		case now := <-t.C:
			c.Step(now)
		}
	}
}
