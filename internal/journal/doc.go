// Package journal writes the append-only CSV logs of a monitoring session:
// position snapshots, incident phase transitions, incident ON/OFF records and
// true/false negative verdicts.
//
// Files are opened once when the session starts and written through buffered
// CSV writers; the session flushes once per tick and closes on shutdown.
package journal
