// Package alarm contains core domain types for the vehicle alarm logic.
//
// It defines Level (the graduated alarm signal), Incident (the anchored alarm
// episode that exists while the level is not Clear), Disposition (the peer
// verdict carried by inbound packets) and Verdict (the true/false negative
// classification recorded when an incident resolves).
//
// Case is the controller-side record of an anchored incident.
package alarm
