// Package position provides the motion capability the alarm logic drives:
// reading the vehicle coordinates and speed, and commanding stop/resume.
//
// Navigator is a waypoint-following kinematic model usable in simulation.
// Registry maps configured identifiers to Controller instances so that the
// session resolves its vehicle once, at construction time.
package position
