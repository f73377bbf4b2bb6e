// Package cli implements the command-line interface for yeg-events.
//
// The cli package provides the Cobra-based CLI. The run command harvests every
// enabled source, pushes the combined events through the configured pipeline,
// saves a snapshot and reports what is new since the previous run. The
// process command runs the pipeline over events read from a JSON file,
// sources lists the configured sources, and show and results read back the
// last saved snapshot and per-source results.
package cli
