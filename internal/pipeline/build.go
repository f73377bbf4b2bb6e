package pipeline

import (
	"errors"
	"fmt"
)

// Step names accepted by Build
const (
	StepNormalizeText = "normalize_text"
	StepDedupe        = "dedupe"
	StepEnrichGeocode = "enrich_geocode"
)

var (
	// ErrUnknownStep is returned by Build for a name it does not know
	ErrUnknownStep = errors.New("unknown pipeline step")
	// ErrNoGeocoder is returned when enrich_geocode is requested without a geocoder
	ErrNoGeocoder = errors.New("enrich_geocode requires a geocoder")
)

// DefaultSteps is the conventional order: normalize first so later steps
// compare cleaned text.
var DefaultSteps = []string{StepNormalizeText, StepDedupe, StepEnrichGeocode}

// Build creates fresh step instances for the given names, in order
func Build(names []string, geocoder Geocoder, opts ...GeocodeOption) ([]Step, error) {
	steps := make([]Step, 0, len(names))
	for _, name := range names {
		switch name {
		case StepNormalizeText:
			steps = append(steps, NewNormalizeText())
		case StepDedupe:
			steps = append(steps, NewDedupe())
		case StepEnrichGeocode:
			if geocoder == nil {
				return nil, ErrNoGeocoder
			}
			steps = append(steps, NewEnrichGeocode(geocoder, opts...))
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownStep, name)
		}
	}
	return steps, nil
}
