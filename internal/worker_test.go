package internal

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/adsb-tools/flighttracer/config"
	"github.com/adsb-tools/flighttracer/internal/app"
	"github.com/adsb-tools/flighttracer/internal/app/query"
)

func testConf() config.Configuration {
	conf := config.Configuration{}
	conf.Flighttracer.Aircraft = "0d086e"
	conf.Flighttracer.Start = "2025-01-01"
	conf.Flighttracer.End = "2025-01-03"
	conf.Flighttracer.Gapthreshold = 3600
	return conf
}

func TestBuildRequestsRange(t *testing.T) {
	conf := testConf()
	builder, err := query.New([]string{conf.Flighttracer.Aircraft})
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}

	reqs, err := buildRequests(builder, conf)
	if err != nil {
		t.Fatalf("buildRequests: %v", err)
	}
	if len(reqs) != 3 {
		t.Errorf("expected 3 requests for a 3-day range, got %d", len(reqs))
	}
}

func TestBuildRequestsRecent(t *testing.T) {
	conf := testConf()
	conf.Flighttracer.Recent = true
	builder, _ := query.New([]string{"0d086e"})

	reqs, err := buildRequests(builder, conf)
	if err != nil {
		t.Fatalf("buildRequests: %v", err)
	}
	if len(reqs) != 1 {
		t.Errorf("expected 1 recent request, got %d", len(reqs))
	}
	if strings.Contains(reqs[0].URL, "2025") {
		t.Errorf("recent request carries a date path: %q", reqs[0].URL)
	}
}

func TestBuildRequestsBadDates(t *testing.T) {
	builder, _ := query.New([]string{"0d086e"})

	var confErr *app.ConfigurationError
	tests := []struct {
		name  string
		start string
		end   string
	}{
		{"unparsable start", "not-a-date", "2025-01-03"},
		{"unparsable end", "2025-01-01", "03/01/2025"},
		{"end before start", "2025-01-03", "2025-01-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := testConf()
			conf.Flighttracer.Start = tt.start
			conf.Flighttracer.End = tt.end
			if _, err := buildRequests(builder, conf); !errors.As(err, &confErr) {
				t.Errorf("expected ConfigurationError, got %v", err)
			}
		})
	}
}

func TestSegmentOptions(t *testing.T) {
	conf := testConf()
	conf.Flighttracer.Gapthreshold = 900
	conf.Flighttracer.Filterground = true
	conf.Flighttracer.Timezone = "America/Los_Angeles"
	conf.Flighttracer.Operators = map[string]string{"N950SP": "LAPD Air Support"}

	opts, err := segmentOptions(conf)
	if err != nil {
		t.Fatalf("segmentOptions: %v", err)
	}
	if opts.Threshold != 900*time.Second {
		t.Errorf("threshold = %v", opts.Threshold)
	}
	if !opts.FilterGround {
		t.Error("filter ground not carried")
	}
	if opts.Location == nil {
		t.Error("timezone not loaded")
	}
	if opts.Operators["N950SP"] != "LAPD Air Support" {
		t.Error("operators not carried")
	}
}

func TestSegmentOptionsBadTimezone(t *testing.T) {
	conf := testConf()
	conf.Flighttracer.Timezone = "Mars/Olympus_Mons"

	var confErr *app.ConfigurationError
	if _, err := segmentOptions(conf); !errors.As(err, &confErr) {
		t.Errorf("expected ConfigurationError for invalid timezone, got %v", err)
	}
}

func TestSplitIDs(t *testing.T) {
	if ids := splitIDs(" "); ids != nil {
		t.Errorf("splitIDs blank = %v, want nil", ids)
	}
	ids := splitIDs("0d086e,ADFDF8")
	if len(ids) != 2 {
		t.Fatalf("splitIDs = %v", ids)
	}
}
