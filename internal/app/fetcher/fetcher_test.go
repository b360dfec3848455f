package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/adsb-tools/flighttracer/internal/app/query"
	"github.com/sirupsen/logrus"
)

var testLog *logrus.Logger

func init() {
	testLog = logrus.New()
	testLog.Formatter = new(logrus.TextFormatter)
	testLog.Formatter.(*logrus.TextFormatter).DisableColors = true
	testLog.Formatter.(*logrus.TextFormatter).DisableTimestamp = true
	testLog.Level = logrus.ErrorLevel
	testLog.Out = os.Stdout
}

// One valid 14-column trace row plus metadata, anchored at Jan 1, 2021 UTC.
const tracePayloadBody = `{
	"timestamp": 1609459200,
	"r": "N145DK",
	"t": "B744",
	"desc": "BOEING 747-400",
	"trace": [
		[0, 34.0522, -118.2437, 10000, 250, 180, 0, 64, {"flight": "AF1 "}, "adsb_icao", 10250, null, null, null],
		[100.5, 34.1, -118.3, "ground", 0, 180, 0, 0, null, "adsb_icao", 0, null, null, null],
		["bogus", 34.2, -118.4, 11000, 250, 180, 0, 0, null, "adsb_icao", 11200, null, null, null]
	]
}`

func newTestFetcher(handler http.HandlerFunc) (*Fetcher, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewWithClient(testLog, srv.Client()), srv
}

func TestFetchParsesTrace(t *testing.T) {
	f, srv := newTestFetcher(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Referer"); got != "https://globe.adsbexchange.com/?icao=adfdf8" {
			t.Errorf("Referer = %q", got)
		}
		fmt.Fprint(w, tracePayloadBody)
	})
	defer srv.Close()

	points, err := f.Fetch(context.Background(), query.Request{URL: srv.URL, ICAO: "adfdf8"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	// The third row has a non-numeric offset and must be dropped.
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}

	p := points[0]
	if p.ICAO != "adfdf8" {
		t.Errorf("ICAO = %q", p.ICAO)
	}
	wantBase := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	if !p.BaseTime.Equal(wantBase) {
		t.Errorf("BaseTime = %v, want %v", p.BaseTime, wantBase)
	}
	if !p.PointTime().Equal(wantBase) {
		t.Errorf("PointTime = %v, want base for zero offset", p.PointTime())
	}
	if p.Lat != 34.0522 || p.Lon != -118.2437 {
		t.Errorf("coordinates = %f, %f", p.Lat, p.Lon)
	}
	if p.Altitude != 10000 || p.OnGround {
		t.Errorf("altitude = %f onGround=%v", p.Altitude, p.OnGround)
	}
	if p.GroundSpeed != 250 || p.Heading != 180 || p.GeomAlt != 10250 {
		t.Errorf("speed/heading/geomAlt = %f/%f/%f", p.GroundSpeed, p.Heading, p.GeomAlt)
	}
	if p.TailNumber != "N145DK" || p.Model != "B744" || p.Desc != "BOEING 747-400" {
		t.Errorf("payload metadata not attached: %+v", p)
	}
	if flight, _ := p.Details["flight"].(string); flight != "AF1 " {
		t.Errorf("details flight = %q", flight)
	}

	// Second row: ground sentinel and fractional offset.
	g := points[1]
	if !g.OnGround {
		t.Error("expected ground sentinel to mark point on ground")
	}
	wantTime := wantBase.Add(100*time.Second + 500*time.Millisecond)
	if !g.PointTime().Equal(wantTime) {
		t.Errorf("PointTime = %v, want %v", g.PointTime(), wantTime)
	}
}

func TestFetchMisses(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}},
		{"missing trace field", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"timestamp": 1609459200, "r": "N145DK"}`)
		}},
		{"empty trace array", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"timestamp": 1609459200, "trace": []}`)
		}},
		{"unparsable body", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `not json`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, srv := newTestFetcher(tt.handler)
			defer srv.Close()

			points, err := f.Fetch(context.Background(), query.Request{URL: srv.URL, ICAO: "adfdf8"})
			if err != nil {
				t.Fatalf("a miss must not be an error, got %v", err)
			}
			if points != nil {
				t.Errorf("expected no points, got %d", len(points))
			}
		})
	}
}

func TestFetchAllAggregatesAndSorts(t *testing.T) {
	// Two days of data served newest first; the aggregate must come back
	// sorted by base timestamp with the miss reported.
	day2 := `{"timestamp": 1609545600, "trace": [[0, 34.0, -118.0, 10000, 250, 180, 0, 0, null, "x", 0, null, null, null]]}`
	day1 := `{"timestamp": 1609459200, "trace": [[0, 33.0, -117.0, 9000, 240, 170, 0, 0, null, "x", 0, null, null, null]]}`

	mux := http.NewServeMux()
	mux.HandleFunc("/day2", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, day2) })
	mux.HandleFunc("/day1", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, day1) })
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) })
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewWithClient(testLog, srv.Client())
	reqs := []query.Request{
		{URL: srv.URL + "/day2", ICAO: "adfdf8"},
		{URL: srv.URL + "/missing", ICAO: "adfdf8"},
		{URL: srv.URL + "/day1", ICAO: "adfdf8"},
	}

	result, err := f.FetchAll(context.Background(), reqs)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(result.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(result.Points))
	}
	if !result.Points[0].BaseTime.Before(result.Points[1].BaseTime) {
		t.Error("aggregate not sorted by base timestamp")
	}
	if len(result.Misses) != 1 || result.Misses[0].URL != srv.URL+"/missing" {
		t.Errorf("misses = %+v", result.Misses)
	}
}

func TestFetchAllAllMisses(t *testing.T) {
	f, srv := newTestFetcher(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer srv.Close()

	reqs := []query.Request{
		{URL: srv.URL, ICAO: "0d086e"},
		{URL: srv.URL, ICAO: "adfdf8"},
	}
	result, err := f.FetchAll(context.Background(), reqs)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(result.Points) != 0 {
		t.Errorf("expected empty table, got %d points", len(result.Points))
	}
	if len(result.Misses) != 2 {
		t.Errorf("expected 2 misses, got %d", len(result.Misses))
	}
}
