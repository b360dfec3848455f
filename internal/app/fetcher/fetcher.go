package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/adsb-tools/flighttracer/internal/app"
	"github.com/adsb-tools/flighttracer/internal/app/query"
	"github.com/sirupsen/logrus"
)

// Positional layout of one trace row. The payload carries 14 fields per
// ping; the ones not named here are discarded.
const (
	colOffset      = 0
	colLat         = 1
	colLon         = 2
	colAltitude    = 3 //numeric feet or the "ground" sentinel
	colGroundSpeed = 4
	colHeading     = 5
	colDetails     = 8
	colGeomAlt     = 10

	traceColumns = 14
)

const refererBase = "https://globe.adsbexchange.com"

// Fetcher retrieves raw trace payloads and normalizes them into TracePoint
// records. A miss (non-200, missing or empty trace) yields no points and no
// error; no retries are performed.
type Fetcher struct {
	Log    *logrus.Logger
	client *http.Client
}

// Result - aggregation outcome over a list of requests. Misses records the
// pairs that yielded no data so the caller can report them.
type Result struct {
	Points []app.TracePoint
	Misses []query.Request
}

func New(log *logrus.Logger) *Fetcher {
	return NewWithClient(log, &http.Client{Timeout: 30 * time.Second})
}

func NewWithClient(log *logrus.Logger, client *http.Client) *Fetcher {
	return &Fetcher{Log: log, client: client}
}

// tracePayload mirrors the upstream JSON envelope.
type tracePayload struct {
	Timestamp    float64             `json:"timestamp"` //epoch seconds, trace anchor
	Trace        [][]json.RawMessage `json:"trace"`
	Registration string              `json:"r"`
	Model        string              `json:"t"`
	Desc         string              `json:"desc"`
}

// Fetch retrieves one source location. A nil, nil return means no usable
// data for this pair - the caller treats it as a miss, not a failure.
func (f *Fetcher) Fetch(ctx context.Context, req query.Request) ([]app.TracePoint, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Referer", fmt.Sprintf("%s/?icao=%s", refererBase, req.ICAO))

	resp, errGet := f.client.Do(httpReq)
	if errGet != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.Log.WithContext(ctx).WithFields(logrus.Fields{
			"url":   req.URL,
			"Error": errGet,
		}).Debug("Trace request failed")
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var payload tracePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		f.Log.WithContext(ctx).WithFields(logrus.Fields{
			"url":   req.URL,
			"Error": err,
		}).Debug("Unable to parse trace payload")
		return nil, nil
	}
	if len(payload.Trace) == 0 {
		return nil, nil
	}

	base := time.Unix(0, int64(payload.Timestamp*float64(time.Second))).UTC()
	points := make([]app.TracePoint, 0, len(payload.Trace))
	dropped := 0
	for _, row := range payload.Trace {
		p, ok := parseRow(row)
		if !ok {
			dropped++
			continue
		}
		p.ICAO = req.ICAO
		p.BaseTime = base
		p.TailNumber = payload.Registration
		p.Model = payload.Model
		p.Desc = payload.Desc
		points = append(points, p)
	}
	if dropped > 0 {
		f.Log.WithContext(ctx).WithFields(logrus.Fields{
			"icao":    req.ICAO,
			"dropped": dropped,
		}).Warn("Dropped unparsable trace rows")
	}
	if len(points) == 0 {
		return nil, nil
	}
	return points, nil
}

// FetchAll retrieves every pair, collects the non-empty results into one
// table and sorts it ascending by base timestamp. Pairs without data are
// reported in Result.Misses, never as errors.
func (f *Fetcher) FetchAll(ctx context.Context, reqs []query.Request) (Result, error) {
	result := Result{}
	for _, req := range reqs {
		points, err := f.Fetch(ctx, req)
		if err != nil {
			return Result{}, err
		}
		if len(points) == 0 {
			result.Misses = append(result.Misses, req)
			continue
		}
		f.Log.WithContext(ctx).WithFields(logrus.Fields{
			"icao":   req.ICAO,
			"date":   points[0].BaseTime.Format("2006-01-02"),
			"points": len(points),
		}).Info("Fetched trace")
		result.Points = append(result.Points, points...)
	}

	sort.SliceStable(result.Points, func(i, j int) bool {
		return result.Points[i].BaseTime.Before(result.Points[j].BaseTime)
	})
	return result, nil
}

// parseRow decodes one positional trace row. Rows with a non-numeric offset
// or unparsable coordinates are dropped, not fatal.
func parseRow(row []json.RawMessage) (app.TracePoint, bool) {
	var p app.TracePoint
	if len(row) < traceColumns {
		return p, false
	}

	offset, errOffset := asFloat(row[colOffset])
	lat, errLat := asFloat(row[colLat])
	lon, errLon := asFloat(row[colLon])
	if errOffset != nil || errLat != nil || errLon != nil {
		return p, false
	}
	p.Offset = offset
	p.Lat = lat
	p.Lon = lon

	if alt, err := asFloat(row[colAltitude]); err == nil {
		p.Altitude = alt
	} else {
		var s string
		if json.Unmarshal(row[colAltitude], &s) == nil && s == app.GroundAltitude {
			p.OnGround = true
		}
	}

	if gs, err := asFloat(row[colGroundSpeed]); err == nil {
		p.GroundSpeed = gs
	}
	if hd, err := asFloat(row[colHeading]); err == nil {
		p.Heading = hd
	}
	if ga, err := asFloat(row[colGeomAlt]); err == nil {
		p.GeomAlt = ga
	}

	var details map[string]interface{}
	if json.Unmarshal(row[colDetails], &details) == nil {
		p.Details = details
	}

	return p, true
}

func asFloat(raw json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, err
	}
	return f, nil
}
