package query

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/adsb-tools/flighttracer/internal/app"
)

// DefaultBaseURL is the globe history root the trace locations are built on.
const DefaultBaseURL = "https://globe.adsbexchange.com/globe_history"

// Request - one source location to fetch for one aircraft.
type Request struct {
	URL  string
	ICAO string
}

// Builder generates the ordered list of trace locations for a set of
// aircraft. It is pure: no I/O happens after construction.
type Builder struct {
	AircraftIDs []string

	baseURL string
}

// New builds a Builder from an explicit identifier list.
func New(aircraftIDs []string) (*Builder, error) {
	ids := make([]string, 0, len(aircraftIDs))
	for _, id := range aircraftIDs {
		if n := NormalizeID(id); n != "" {
			ids = append(ids, n)
		}
	}
	if len(ids) == 0 {
		return nil, &app.ConfigurationError{Reason: "either aircraft ids or a meta URL must be provided"}
	}
	return &Builder{AircraftIDs: ids, baseURL: DefaultBaseURL}, nil
}

// NewFromMetaURL builds a Builder from an external JSON resource of aircraft
// objects, extracting and normalizing the "icao" field of each entry.
func NewFromMetaURL(ctx context.Context, client *http.Client, metaURL string) (*Builder, error) {
	if metaURL == "" {
		return nil, &app.ConfigurationError{Reason: "either aircraft ids or a meta URL must be provided"}
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, metaURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("meta URL returned status %d", resp.StatusCode)
	}

	var entries []struct {
		ICAO string `json:"icao"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("unable to parse aircraft list: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if n := NormalizeID(e.ICAO); n != "" {
			ids = append(ids, n)
		}
	}
	if len(ids) == 0 {
		return nil, &app.ConfigurationError{Reason: "aircraft list resource contains no icao entries"}
	}
	return &Builder{AircraftIDs: ids, baseURL: DefaultBaseURL}, nil
}

// SetBaseURL overrides the globe history root, mainly for tests.
func (b *Builder) SetBaseURL(u string) {
	b.baseURL = strings.TrimRight(u, "/")
}

// Range generates one location per aircraft per calendar day in
// [start, end] inclusive, grouped by aircraft then chronological.
func (b *Builder) Range(start, end time.Time) []Request {
	reqs := []Request{}
	for _, icao := range b.AircraftIDs {
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			url := fmt.Sprintf("%s/%04d/%02d/%02d/traces/%s/trace_full_%s.json",
				b.baseURL, d.Year(), int(d.Month()), d.Day(), pathSuffix(icao), icao)
			reqs = append(reqs, Request{URL: url, ICAO: icao})
		}
	}
	return reqs
}

// Recent generates exactly one location per aircraft, addressing the
// current trace endpoint.
func (b *Builder) Recent() []Request {
	reqs := make([]Request, 0, len(b.AircraftIDs))
	for _, icao := range b.AircraftIDs {
		url := fmt.Sprintf("%s/traces/%s/trace_full_%s.json", b.baseURL, pathSuffix(icao), icao)
		reqs = append(reqs, Request{URL: url, ICAO: icao})
	}
	return reqs
}

// pathSuffix is the 2-character location bucket derived from the last two
// characters of the identifier.
func pathSuffix(icao string) string {
	if len(icao) < 2 {
		return icao
	}
	return icao[len(icao)-2:]
}

// NormalizeID returns the canonical lower-cased trimmed form of an aircraft
// identifier.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
