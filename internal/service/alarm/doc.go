// Package alarm implements the vehicle alarm state machine.
//
// The Machine owns the current alarm level and the open incident. Classified
// detector samples move it from Clear to Suspect and refresh the magnitude;
// acknowledgments from the controller peer that reference the incident anchor
// escalate it to Confirmed, keep it Suspect, or resolve it back to Clear.
// Opening and resolving an incident stop and resume the vehicle through its
// position.Controller.
package alarm
