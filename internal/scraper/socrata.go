package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/pfrederiksen/yeg-events/internal/event"
)

const SocrataDomain = "https://data.edmonton.ca"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrMissingDataset is returned when a Socrata source has no dataset ID
var ErrMissingDataset = errors.New("socrata: dataset_id is required")

// DefaultFieldMap maps event fields to the column names of the City of
// Edmonton events datasets. An empty column disables the field.
var DefaultFieldMap = map[string]string{
	"title":       "event_name",
	"start":       "start_date",
	"end":         "end_date",
	"venue":       "location",
	"address":     "address",
	"latitude":    "latitude",
	"longitude":   "longitude",
	"categories":  "",
	"url":         "website",
	"cost":        "cost",
	"description": "description",
}

// SocrataConfig configures a Socrata source
type SocrataConfig struct {
	DatasetID string
	AppToken  string
	FieldMap  map[string]string // merged over DefaultFieldMap
	Where     string
	MaxPages  int
	PageSize  int
	BaseURL   string // defaults to SocrataDomain
}

// Socrata pages through an open-data events dataset
type Socrata struct {
	client   *Client
	cfg      SocrataConfig
	fieldMap map[string]string
	now      func() time.Time
}

// NewSocrata creates the source
func NewSocrata(client *Client, cfg SocrataConfig) (*Socrata, error) {
	if strings.TrimSpace(cfg.DatasetID) == "" {
		return nil, ErrMissingDataset
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 5
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = SocrataDomain
	}

	fieldMap := make(map[string]string, len(DefaultFieldMap))
	for k, v := range DefaultFieldMap {
		fieldMap[k] = v
	}
	for k, v := range cfg.FieldMap {
		fieldMap[k] = v
	}

	return &Socrata{
		client:   client,
		cfg:      cfg,
		fieldMap: fieldMap,
		now:      time.Now,
	}, nil
}

// Name returns the source name
func (s *Socrata) Name() string {
	return "Socrata"
}

// FetchEvents walks the dataset pages
func (s *Socrata) FetchEvents(ctx context.Context) ([]*event.Event, error) {
	return FetchPages(ctx, s.Name(), s.cfg.MaxPages, s.fetchPage)
}

// whereClause limits results to upcoming events plus the configured clause
func (s *Socrata) whereClause() string {
	clauses := make([]string, 0, 2)
	if startField := s.fieldMap["start"]; startField != "" {
		today := s.now().In(event.Location()).Format("2006-01-02")
		clauses = append(clauses, fmt.Sprintf("%s >= '%s'", startField, today))
	}
	if s.cfg.Where != "" {
		clauses = append(clauses, s.cfg.Where)
	}
	return strings.Join(clauses, " AND ")
}

func (s *Socrata) fetchPage(ctx context.Context, page int) ([]*event.Event, error) {
	params := url.Values{}
	params.Set("$limit", strconv.Itoa(s.cfg.PageSize))
	params.Set("$offset", strconv.Itoa((page-1)*s.cfg.PageSize))
	if where := s.whereClause(); where != "" {
		params.Set("$where", where)
	}

	headers := map[string]string{}
	if s.cfg.AppToken != "" {
		headers["X-App-Token"] = s.cfg.AppToken
	}

	endpoint := fmt.Sprintf("%s/resource/%s.json", strings.TrimRight(s.cfg.BaseURL, "/"), s.cfg.DatasetID)
	body, err := s.client.Get(ctx, endpoint, params, headers)
	if err != nil {
		return nil, err
	}

	return s.parseRows(body)
}

func (s *Socrata) parseRows(body []byte) ([]*event.Event, error) {
	var rows []map[string]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	events := make([]*event.Event, 0, len(rows))
	for _, row := range rows {
		title := event.CollapseWhitespace(s.field(row, "title"))
		if title == "" {
			continue
		}

		evt := event.New(s.Name(), title, event.ParseTime(s.field(row, "start")))
		evt.End = event.ParseTime(s.field(row, "end"))
		evt.Venue = event.CleanText(s.field(row, "venue"))
		evt.Address = event.CleanText(s.field(row, "address"))
		evt.Latitude = parseFloat(s.field(row, "latitude"))
		evt.Longitude = parseFloat(s.field(row, "longitude"))
		evt.Categories = s.categories(row)
		evt.URL = event.CleanText(s.field(row, "url"))
		evt.Cost = event.CleanText(s.field(row, "cost"))
		evt.Description = event.CleanText(s.field(row, "description"))
		evt.Raw = row

		events = append(events, evt)
	}

	return events, nil
}

// field returns the mapped column as text, or "" when unmapped or absent
func (s *Socrata) field(row map[string]any, name string) string {
	column := s.fieldMap[name]
	if column == "" {
		return ""
	}
	return stringValue(row[column])
}

func (s *Socrata) categories(row map[string]any) []string {
	column := s.fieldMap["categories"]
	if column == "" {
		return []string{}
	}

	switch v := row[column].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if text := strings.TrimSpace(stringValue(item)); text != "" {
				out = append(out, text)
			}
		}
		return out
	case string:
		return event.SplitList(v, ",")
	default:
		return []string{}
	}
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
