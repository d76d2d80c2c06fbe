// Package console hosts the interactive terminal front end of the demo
// session: a Bubble Tea model that maps keys to actions, renders the current
// screen and the tail of the journal, and shuts down on a crash.
package console
