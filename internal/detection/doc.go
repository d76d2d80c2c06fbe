// Package detection turns session observations into bug reasons. The crash
// detector watches errors and journal text; the hang detector watches for a
// snapshot that stops changing.
package detection
