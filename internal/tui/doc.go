// Package tui implements the interactive dashboard started by the -tui flag.
//
// The dashboard runs one aggregation at a time and renders every call of the
// batch as a row that flips from pending to ok or failed as settle events
// arrive. Below the table it shows a latency sparkline, system CPU and memory
// usage, and the aggregate once the run completes. Pressing r re-runs the
// same batch; q quits.
package tui
