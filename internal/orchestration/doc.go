// Package orchestration dispatches one request batch to several workers
// concurrently, waits for every call to settle and folds the settled outcomes
// into an aggregate under one of several failure policies. It decouples the
// fan-out machinery from presentation via the ProgressReporter and
// ResultPresenter interfaces.
package orchestration
