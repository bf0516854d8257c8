package position

// Waypoint is a destination with the speed used to reach it.
type Waypoint struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Z     float64 `yaml:"z"`
	Speed float64 `yaml:"speed"`
}

// Controller is the motion capability the alarm state machine depends on.
type Controller interface {
	X() float64
	Y() float64
	Z() float64
	// Speed returns the commanded speed in m/s.
	Speed() float64
	// Destination returns the current destination and its speed.
	Destination() Waypoint
	// SetDestination replaces the current destination.
	SetDestination(dest Waypoint)
	// SetAlarm raises or clears the alarm flag. A raised flag holds the vehicle.
	SetAlarm(on bool)
	// Alarm reports the alarm flag.
	Alarm() bool
}
