package position

import (
	"math"
	"time"
)

// Clock returns the current session time.
type Clock func() time.Duration

// Navigator moves in a straight line toward its destination at the commanded
// speed and continues with queued waypoints on arrival. Movement is integrated
// lazily whenever the position is observed or changed.
type Navigator struct {
	// clock supplies session time for integration.
	clock Clock
	// last is the session time of the previous integration step.
	last time.Duration
	// x, y, z is the current position.
	x, y, z float64
	// dest is the active destination.
	dest Waypoint
	// queue holds waypoints to follow after dest.
	queue []Waypoint
	// alarm holds the vehicle in place while set.
	alarm bool
}

// NewNavigator places a vehicle at start. It has no destination until one is set.
func NewNavigator(clock Clock, start Waypoint) *Navigator {
	return &Navigator{
		clock: clock,
		last:  clock(),
		x:     start.X,
		y:     start.Y,
		z:     start.Z,
		dest:  Waypoint{X: start.X, Y: start.Y, Z: start.Z},
	}
}

// X returns the current easting.
func (n *Navigator) X() float64 {
	n.advance()

	return n.x
}

// Y returns the current northing.
func (n *Navigator) Y() float64 {
	n.advance()

	return n.y
}

// Z returns the current depth.
func (n *Navigator) Z() float64 {
	n.advance()

	return n.z
}

// Speed returns the commanded speed.
func (n *Navigator) Speed() float64 {
	n.advance()

	return n.dest.Speed
}

// Destination returns the active destination.
func (n *Navigator) Destination() Waypoint {
	n.advance()

	return n.dest
}

// SetDestination replaces the active destination and keeps the queue.
func (n *Navigator) SetDestination(dest Waypoint) {
	n.advance()
	n.dest = dest
}

// AddDestination appends a waypoint to follow after the active one.
func (n *Navigator) AddDestination(wp Waypoint) {
	n.advance()
	n.queue = append(n.queue, wp)
}

// SetAlarm raises or clears the alarm flag.
func (n *Navigator) SetAlarm(on bool) {
	n.advance()
	n.alarm = on
}

// Alarm reports the alarm flag.
func (n *Navigator) Alarm() bool {
	return n.alarm
}

// advance integrates movement up to the current clock time.
func (n *Navigator) advance() {
	now := n.clock()
	budget := (now - n.last).Seconds()
	n.last = now

	for budget > 0 && !n.alarm && n.dest.Speed > 0 {
		dx, dy, dz := n.dest.X-n.x, n.dest.Y-n.y, n.dest.Z-n.z
		dist := math.Sqrt(dx*dx + dy*dy + dz*dz)
		travel := n.dest.Speed * budget

		if travel < dist {
			ratio := travel / dist
			n.x += dx * ratio
			n.y += dy * ratio
			n.z += dz * ratio

			return
		}

		n.x, n.y, n.z = n.dest.X, n.dest.Y, n.dest.Z

		if dist > 0 {
			budget -= dist / n.dest.Speed
		}

		if len(n.queue) == 0 {
			n.dest.Speed = 0

			return
		}

		n.dest = n.queue[0]
		n.queue = n.queue[1:]
	}
}
