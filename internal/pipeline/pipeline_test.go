package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/yeg-events/internal/event"
)

type recordingObserver struct {
	steps []string
}

func (r *recordingObserver) ObserveStep(step string, in, out int, duration time.Duration) {
	r.steps = append(r.steps, step)
}

func sampleBatch() []*event.Event {
	a := newEvent(" Jazz  Night ", ts("2024-05-01T20:00"))
	a.Venue = str("Yardbird   Suite")
	b := newEvent("jazz night", ts("2024-05-01T20:00"))
	c := newEvent("Jazz\nNight", ts("2024-05-02T20:00"))
	c.Description = str("  ")
	return []*event.Event{a, b, c}
}

func TestPipeline_CompositionOrder(t *testing.T) {
	viaPipeline, err := New([]Step{NewNormalizeText(), NewDedupe()}).Run(sampleBatch())
	require.NoError(t, err)

	normalized, err := NewNormalizeText().Run(sampleBatch())
	require.NoError(t, err)
	manual, err := NewDedupe().Run(normalized)
	require.NoError(t, err)

	assert.Equal(t, manual, viaPipeline)
	assert.Equal(t, []string{"Jazz Night", "Jazz Night"}, titles(viaPipeline))
}

func TestPipeline_NoSteps(t *testing.T) {
	input := sampleBatch()

	out, err := New(nil).Run(input)
	require.NoError(t, err)

	assert.Equal(t, input, out)
	out[0] = nil
	assert.NotNil(t, input[0], "pipeline works on its own copy of the slice")
}

func TestPipeline_EmptyInput(t *testing.T) {
	calls := 0
	geocoder := func(evt *event.Event) (*Coordinates, error) {
		calls++
		return nil, nil
	}
	custom := func(e *event.Event) any {
		calls++
		return e.Title
	}

	steps := []Step{NewNormalizeText(), NewDedupe(WithKey(custom)), NewEnrichGeocode(geocoder)}
	for _, step := range steps {
		out, err := step.Run([]*event.Event{})
		require.NoError(t, err)
		assert.Empty(t, out, step.Name())
	}

	for _, input := range [][]*event.Event{nil, {}} {
		out, err := New(steps).Run(input)
		require.NoError(t, err)
		assert.NotNil(t, out)
		assert.Empty(t, out)
	}

	assert.Equal(t, 0, calls)
}

func TestPipeline_FailFast(t *testing.T) {
	boom := errors.New("lookup failed")
	ran := false

	p := New([]Step{
		NewNormalizeText(),
		StepFunc{StepName: "explode", Fn: func(events []*event.Event) ([]*event.Event, error) {
			return nil, boom
		}},
		StepFunc{StepName: "after", Fn: func(events []*event.Event) ([]*event.Event, error) {
			ran = true
			return events, nil
		}},
	})

	out, err := p.Run(sampleBatch())

	assert.Same(t, boom, err, "error is returned unwrapped")
	assert.Nil(t, out)
	assert.False(t, ran, "steps after a failure do not run")
}

func TestPipeline_GeocoderErrorPropagates(t *testing.T) {
	boom := errors.New("rate limited")
	batch := sampleBatch()

	_, err := New([]Step{NewEnrichGeocode(func(*event.Event) (*Coordinates, error) {
		return nil, boom
	})}).Run(batch)

	assert.Same(t, boom, err)
}

func TestPipeline_StepsAreFixedAtConstruction(t *testing.T) {
	steps := []Step{NewNormalizeText()}
	p := New(steps)
	steps[0] = NewDedupe()

	assert.Equal(t, []string{StepNormalizeText}, p.Steps())
}

func TestPipeline_ObserverAndFullRun(t *testing.T) {
	obs := &recordingObserver{}
	geocoder := func(evt *event.Event) (*Coordinates, error) {
		return &Coordinates{Latitude: 53.52, Longitude: -113.5}, nil
	}

	steps, err := Build(DefaultSteps, geocoder)
	require.NoError(t, err)

	out, err := New(steps, WithObserver(obs)).Run(sampleBatch())
	require.NoError(t, err)

	assert.Equal(t, DefaultSteps, obs.steps)
	require.Len(t, out, 2)
	assert.Equal(t, "Yardbird Suite", *out[0].Venue)
	assert.True(t, out[0].HasCoordinates())
	assert.False(t, out[1].HasCoordinates(), "no venue or address to look up")
	assert.Nil(t, out[1].Description)
}

func TestBuild(t *testing.T) {
	geocoder := func(*event.Event) (*Coordinates, error) { return nil, nil }

	steps, err := Build([]string{StepDedupe, StepNormalizeText}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{StepDedupe, StepNormalizeText}, New(steps).Steps())

	_, err = Build([]string{"sort"}, geocoder)
	assert.ErrorIs(t, err, ErrUnknownStep)

	_, err = Build([]string{StepEnrichGeocode}, nil)
	assert.ErrorIs(t, err, ErrNoGeocoder)
}
