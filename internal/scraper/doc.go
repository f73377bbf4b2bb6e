// Package scraper fetches event listings from public Edmonton sources.
//
// Every source implements Source and yields normalized events. Three sources
// are provided: ExploreEdmonton reads the Explore Edmonton ICS calendar feed,
// Socrata pages through a City of Edmonton open-data dataset, and Eventbrite
// parses the public Edmonton listing pages. Run wraps a source so a failure
// is recorded on the Result instead of aborting the whole harvest.
package scraper
