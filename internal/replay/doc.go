// Package replay re-executes the actions recorded in a bug report against a
// fresh session and checks that the same failure happens again.
package replay
