// Package botrun hosts the samplebot process runtime.
//
// Run sets up per-run logging, takes the single-instance lock, opens the
// challenge store, builds the collaborators and command router, and serves
// Discord messages until the process receives SIGINT or SIGTERM. In-flight
// commands are allowed to finish before the store is closed.
package botrun
