// Package calendar reads iCalendar (.ics) feeds into per-event property maps.
//
// Feeds are parsed with golang-ical. Each VEVENT becomes a VEvent keyed by
// upper-case property name; parameters such as TZID are kept so times can be
// resolved in the zone the publisher meant. golang-ical decodes TEXT values,
// so the undecoded form of list properties is kept separately to split them
// on unescaped commas. Recurrence rules are not expanded.
package calendar

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"
	_ "time/tzdata"

	ics "github.com/arran4/golang-ical"
)

// RFC 5545 DATE-TIME and DATE forms
const (
	utcLayout   = "20060102T150405Z"
	localLayout = "20060102T150405"
	dateLayout  = "20060102"
)

// listProperties hold comma-separated TEXT values
var listProperties = map[string]bool{
	"CATEGORIES": true,
	"RESOURCES":  true,
}

// Property is one content line: its decoded value and parameters
type Property struct {
	Value  string
	Params map[string][]string
	// raw is the undecoded value, kept for list properties
	raw string
}

// Param returns the first value of a parameter, matched case-insensitively
func (p Property) Param(name string) string {
	for k, v := range p.Params {
		if strings.EqualFold(k, name) && len(v) > 0 {
			return strings.Trim(v[0], `"`)
		}
	}
	return ""
}

// VEvent holds the properties of one VEVENT, keyed by upper-case name.
// Repeated properties keep the last value.
type VEvent map[string]Property

// Parse reads every VEVENT in r
func Parse(r io.Reader) ([]VEvent, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading calendar: %w", err)
	}

	cal, err := ics.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing calendar: %w", err)
	}

	components := cal.Events()
	rawLists := rawListValues(data)
	if len(rawLists) != len(components) {
		rawLists = nil
	}

	events := make([]VEvent, 0, len(components))
	for i, component := range components {
		evt := make(VEvent, len(component.Properties))
		for _, prop := range component.Properties {
			name := strings.ToUpper(strings.TrimSpace(prop.IANAToken))
			if name == "" {
				continue
			}
			p := Property{
				Value:  strings.TrimSpace(prop.Value),
				Params: prop.ICalParameters,
			}
			if rawLists != nil {
				p.raw = rawLists[i][name]
			}
			evt[name] = p
		}
		events = append(events, evt)
	}

	return events, nil
}

// rawListValues returns, per VEVENT in feed order, the undecoded values of
// list properties. Lines are unfolded by golang-ical's stream reader.
func rawListValues(data []byte) []map[string]string {
	stream := ics.NewCalendarStream(bytes.NewReader(data))
	out := make([]map[string]string, 0)

	var current map[string]string
	depth := 0
	for {
		line, err := stream.ReadLine()
		if line != nil {
			text := strings.TrimSpace(string(*line))
			switch {
			case strings.EqualFold(text, "BEGIN:VEVENT"):
				current = make(map[string]string)
				depth = 0
			case current != nil && strings.HasPrefix(strings.ToUpper(text), "BEGIN:"):
				depth++
			case current != nil && strings.EqualFold(text, "END:VEVENT") && depth == 0:
				out = append(out, current)
				current = nil
			case current != nil && strings.HasPrefix(strings.ToUpper(text), "END:"):
				depth--
			case current != nil && depth == 0:
				if name, value, ok := splitContentLine(text); ok && listProperties[name] {
					current[name] = value
				}
			}
		}
		if err != nil {
			break
		}
	}
	return out
}

// splitContentLine returns the upper-case name and the value after the first
// colon outside a quoted parameter value
func splitContentLine(line string) (string, string, bool) {
	quoted := false
	nameEnd := -1
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			quoted = !quoted
		case ';':
			if nameEnd < 0 {
				nameEnd = i
			}
		case ':':
			if quoted {
				continue
			}
			if nameEnd < 0 {
				nameEnd = i
			}
			return strings.ToUpper(line[:nameEnd]), line[i+1:], true
		}
	}
	return "", "", false
}

// ParseString is Parse for an in-memory feed. Blank content has no events.
func ParseString(content string) ([]VEvent, error) {
	if strings.TrimSpace(content) == "" {
		return []VEvent{}, nil
	}
	return Parse(strings.NewReader(content))
}

// Get returns a property's decoded value, or "" when absent
func (v VEvent) Get(name string) string {
	return v[strings.ToUpper(name)].Value
}

// Param returns a parameter of a property, or "" when absent
func (v VEvent) Param(name, param string) string {
	return v[strings.ToUpper(name)].Param(param)
}

// List splits a multi-valued property such as CATEGORIES. Escaped commas
// stay inside their item.
func (v VEvent) List(name string) []string {
	prop := v[strings.ToUpper(name)]
	raw := prop.raw
	if raw == "" {
		raw = prop.Value
	}

	items := make([]string, 0)
	for _, part := range splitText(raw) {
		if item := strings.TrimSpace(unescapeText(part)); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Time resolves a DATE or DATE-TIME property. UTC values keep their instant,
// values with a known TZID use that zone and floating values use loc.
// It returns nil when the property is absent or not in RFC 5545 form.
func (v VEvent) Time(name string, loc *time.Location) *time.Time {
	prop, ok := v[strings.ToUpper(name)]
	if !ok || prop.Value == "" {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	if tzid := prop.Param("TZID"); tzid != "" {
		if tz, err := time.LoadLocation(tzid); err == nil {
			loc = tz
		}
	}

	var (
		t   time.Time
		err error
	)
	switch {
	case strings.HasSuffix(prop.Value, "Z"):
		t, err = time.Parse(utcLayout, prop.Value)
	case len(prop.Value) == len(dateLayout):
		t, err = time.ParseInLocation(dateLayout, prop.Value, loc)
	default:
		t, err = time.ParseInLocation(localLayout, prop.Value, loc)
	}
	if err != nil {
		return nil
	}
	return &t
}

// Raw converts the property values to a generic map for Event.Raw
func (v VEvent) Raw() map[string]any {
	raw := make(map[string]any, len(v))
	for k, prop := range v {
		raw[k] = prop.Value
	}
	return raw
}

// splitText splits on commas that are not escaped
func splitText(s string) []string {
	parts := make([]string, 0)
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case ',':
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// unescapeText reverses RFC 5545 TEXT escaping
func unescapeText(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n', 'N':
			b.WriteByte('\n')
		case ',', ';', '\\':
			b.WriteByte(s[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
