// Package ui provides helpers for formatting human-readable console output.
//
// It translates command lifecycle events into concise log lines, writes
// progress text through a Reporter, and renders tabular summaries so that
// batch feedback stays readable while detailed telemetry continues to flow
// through structured loggers.
package ui
