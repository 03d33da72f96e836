// Package dispatch fans one operation out across many repositories with a
// bounded worker pool, collects per-repository outcomes, and classifies
// failures, timeouts, guard violations, and interruptions.
package dispatch
