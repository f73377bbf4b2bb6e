package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/yeg-events/internal/event"
)

func TestFormatStart(t *testing.T) {
	tests := []struct {
		name  string
		start *time.Time
		want  string
	}{
		{name: "missing", start: nil, want: "TBA"},
		{name: "floating after midnight", start: event.ParseTime("2024-05-04T00:30:00"), want: "2024-05-04 00:30"},
		{name: "socrata timestamp", start: event.ParseTime("2025-07-01T22:00:00.000"), want: "2025-07-01 22:00"},
		{name: "UTC instant", start: event.ParseTime("2025-06-07T01:00:00Z"), want: "2025-06-06 19:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt := event.New("Socrata", "Late show", tt.start)
			assert.Equal(t, tt.want, formatStart(evt))
		})
	}
}

func TestWriteText_LocalWallClock(t *testing.T) {
	evt := event.New("Socrata", "Canada Day Fireworks", event.ParseTime("2025-07-01T22:00:00.000"))
	result := &OutputResult{
		Sources:    []SourceSummary{{Name: "Socrata", Events: 1}},
		Events:     []*event.Event{evt},
		EventCount: 1,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteOutput(&buf, result, FormatText, false))
	assert.Contains(t, buf.String(), "2025-07-01 22:00")
	assert.NotContains(t, buf.String(), "16:00")
}
