package session

import (
	"github.com/oshokin/auv-alarm/internal/config"
	"github.com/oshokin/auv-alarm/internal/position"
)

// OptionsFrom maps vehicle settings to session options.
func OptionsFrom(v config.Vehicle) Options {
	return Options{
		DropStale:             v.DropStalePackets,
		LoggingEnabled:        v.LoggingEnabled,
		TransmitPeriod:        v.TransmitPeriod,
		CruiseSpeed:           v.CruiseSpeed,
		TrueNegativeThreshold: v.TrueNegativeThreshold,
	}
}

// NewVehicle places a navigator at the configured start and loads the
// mission: the first waypoint becomes the destination, the rest are queued.
func NewVehicle(clock position.Clock, v config.Vehicle) *position.Navigator {
	nav := position.NewNavigator(clock, v.Start)

	for i, wp := range v.Waypoints {
		if i == 0 {
			nav.SetDestination(wp)

			continue
		}

		nav.AddDestination(wp)
	}

	return nav
}
