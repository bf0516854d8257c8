package alarm

// Level is the graduated alarm signal owned by the state machine.
type Level int

const (
	// Clear means no incident is open and the vehicle moves freely.
	Clear Level = iota
	// Suspect means a gray-zone reading opened an incident and the vehicle is stopped.
	Suspect
	// Confirmed means the peer confirmed the incident; samples no longer change it.
	Confirmed
)

// String returns the lowercase level name used in logs and metrics labels.
func (l Level) String() string {
	switch l {
	case Clear:
		return "clear"
	case Suspect:
		return "suspect"
	case Confirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// Active reports whether an incident is open at this level.
func (l Level) Active() bool {
	return l == Suspect || l == Confirmed
}
