// Package event provides the normalized event record shared by every source and
// pipeline step.
//
// An Event describes one occurrence at one venue in the Edmonton area. Sources
// build events with New, the pipeline mutates them in place, and run snapshots
// track which events were already seen. Each event carries a deterministic
// SHA1-based ID derived from its source, title and start time so runs can be
// diffed against each other.
package event
