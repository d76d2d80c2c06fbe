// Package chaos runs an adversarial agent against a fresh session. It cycles
// through fixed macros, watches the session with the crash and hang
// detectors and files a bug report for the first problem it finds.
package chaos
