// Package pipeline runs post-fetch processing steps over harvested events.
//
// A Pipeline is an ordered, fixed list of Steps. Each step receives the
// previous step's output and returns a slice of the same or smaller length,
// mutating events in place where it needs to. Steps run sequentially on the
// calling goroutine and the first step error aborts the run.
//
// Three steps are provided: NormalizeText collapses whitespace in free-text
// fields, Dedupe keeps the first event per identity key, and EnrichGeocode
// fills missing coordinates through an injected Geocoder, memoizing results
// per venue or address.
package pipeline
