package rtc

import (
	"fmt"
	"net"
	"time"

	"github.com/facebookincubator/ntp/protocol/chrony"
	"github.com/jrockway/segment-clock/control/timestamp"
)

// leapUnsynchronized is chrony's leap status when it has never synchronized the clock.
const leapUnsynchronized = 3

// System reads the host's clock.  Setting it does not touch the host clock; instead the offset
// between the host clock and the requested time is remembered and applied to every later read.
type System struct {
	loc    *time.Location
	offset time.Duration
	now    func() time.Time

	// ChronyAddr, if set, is the chronyd command port (usually "localhost:323").  LostPower asks
	// chronyd whether the host clock has ever been synchronized.
	ChronyAddr string
}

// NewSystem returns the host clock as seen in loc.
func NewSystem(loc *time.Location) *System {
	if loc == nil {
		loc = time.Local
	}
	return &System{loc: loc, now: time.Now}
}

func (s *System) String() string {
	return fmt.Sprintf("system clock (%s, offset %s)", s.loc, s.offset)
}

// Now returns the host time plus any offset set with Set.
func (s *System) Now() (timestamp.Timestamp, error) {
	return timestamp.FromTime(s.now().Add(s.offset).In(s.loc)), nil
}

// Set makes Now return ts for the rest of the current second, keeping the host clock's sub-second
// phase.  Invalid dates are normalized.
func (s *System) Set(ts timestamp.Timestamp) error {
	s.offset = ts.Time(s.loc).Sub(s.now().Truncate(time.Second))
	return nil
}

// LostPower reports whether chronyd says the host clock is unsynchronized.  Without ChronyAddr the
// host clock is assumed to be fine.
func (s *System) LostPower() (bool, error) {
	if s.ChronyAddr == "" {
		return false, nil
	}
	leap, err := chronyLeapStatus(s.ChronyAddr)
	if err != nil {
		return false, fmt.Errorf("ask chronyd: %w", err)
	}
	return leap == leapUnsynchronized, nil
}

func chronyLeapStatus(addr string) (uint16, error) {
	conn, err := net.DialTimeout("udp", addr, time.Second)
	if err != nil {
		return 0, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()
	if err := conn.SetReadDeadline(time.Now().Add(time.Second)); err != nil {
		return 0, fmt.Errorf("set read deadline: %w", err)
	}
	c := chrony.Client{Sequence: 1, Connection: conn}
	res, err := c.Communicate(chrony.NewTrackingPacket())
	if err != nil {
		return 0, fmt.Errorf("get tracking info: communicate: %w", err)
	}
	tracking, ok := res.(*chrony.ReplyTracking)
	if !ok {
		return 0, fmt.Errorf("tracking reply was of unexpected type: %#v", res)
	}
	return tracking.LeapStatus, nil
}
