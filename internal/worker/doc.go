// Package worker defines the backend capability the orchestrator fans out to.
// A Worker performs one unit of request/response work per call and may fail;
// Service is the default implementation that simulates a remote backend with
// variable latency, and Failing, Static and Func cover the test doubles.
package worker
