// Package ui provides helpers for formatting human-readable console output.
//
// The helpers translate session journal lines and crash signals into concise
// messages so that the demo's observable log stays readable for CLI users
// while structured telemetry continues to flow through zap.
package ui
