package legs

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/adsb-tools/flighttracer/internal/app"
	"github.com/paulmach/orb"
)

// DefaultGapThreshold is the inter-ping gap above which a new leg starts.
// Tunable, not authoritative (an earlier revision of the pipeline used 900s).
const DefaultGapThreshold = 3600 * time.Second

// Options control one segmentation run.
type Options struct {
	// Threshold is the gap duration that starts a new leg when strictly
	// exceeded. Zero means DefaultGapThreshold.
	Threshold time.Duration

	// FilterGround drops on-ground points from the output. The filter is
	// applied after segmentation so it never fragments a leg.
	FilterGround bool

	// Operators is an optional call sign -> operator lookup, left-joined
	// onto the output. Unmapped call signs yield an empty operator.
	Operators map[string]string

	// Location is an optional display timezone for the local-time and
	// flight-date columns. Nil means UTC dates and no local-time column.
	Location *time.Location
}

// Result - segmentation outcome. The counters keep an empty output
// explainable: DroppedRows counts coercion drops, GroundFiltered counts
// points removed by the ground filter.
type Result struct {
	Points         []app.FlightPoint
	DroppedRows    int
	GroundFiltered int
}

// groupKey identifies one (aircraft, call sign) segmentation group.
type groupKey struct {
	icao     string
	callSign string
}

type groupState struct {
	lastTime time.Time
	legID    int
}

// Segment reconstructs flight legs from raw trace points.
//
// Processing order: canonical sort by (aircraft, base time, offset), point
// time computation, call sign forward fill, per-(aircraft, call sign) gap
// detection with 1-based leg numbering, leg key composition, optional
// operator join, ground filter last. Leg boundaries depend only on elapsed
// time, never on spatial distance.
func Segment(points []app.TracePoint, opts Options) (Result, error) {
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = DefaultGapThreshold
	}

	for _, p := range points {
		if p.ICAO == "" {
			return Result{}, &app.MissingColumnError{Column: "icao"}
		}
	}

	sorted := make([]app.TracePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.ICAO != b.ICAO {
			return a.ICAO < b.ICAO
		}
		if !a.BaseTime.Equal(b.BaseTime) {
			return a.BaseTime.Before(b.BaseTime)
		}
		return a.Offset < b.Offset
	})

	result := Result{}
	states := map[groupKey]*groupState{}
	lastCallSign := ""

	for _, p := range sorted {
		if math.IsNaN(p.Offset) || math.IsInf(p.Offset, 0) {
			result.DroppedRows++
			continue
		}
		pointTime := p.PointTime()

		// Forward fill: carry the last non-empty call sign seen in
		// processing order; before the first one the sentinel applies.
		callSign := extractCallSign(p)
		if callSign == "" {
			callSign = lastCallSign
		} else {
			lastCallSign = callSign
		}
		if callSign == "" {
			callSign = app.UnknownCallSign
		}

		key := groupKey{icao: p.ICAO, callSign: callSign}
		state, seen := states[key]
		if !seen {
			state = &groupState{legID: 1}
			states[key] = state
		} else if pointTime.Sub(state.lastTime) > threshold {
			state.legID++
		}
		state.lastTime = pointTime

		fp := app.FlightPoint{
			TracePoint: p,
			Time:       pointTime,
			CallSign:   callSign,
			LegID:      state.legID,
			FlightLeg:  callSign + "_leg" + strconv.Itoa(state.legID),
			Geometry:   orb.Point{p.Lon, p.Lat},
		}

		if opts.Location != nil {
			local := pointTime.In(opts.Location)
			fp.FlightDate = local.Format("2006-01-02")
			fp.LocalTime = local.Format("15:04:05")
		} else {
			fp.FlightDate = pointTime.UTC().Format("2006-01-02")
		}

		if opts.Operators != nil {
			fp.Operator = opts.Operators[callSign]
		}

		result.Points = append(result.Points, fp)
	}

	if opts.FilterGround {
		kept := result.Points[:0]
		for _, fp := range result.Points {
			if fp.OnGround {
				result.GroundFiltered++
				continue
			}
			kept = append(kept, fp)
		}
		result.Points = kept
	}

	return result, nil
}

// EmptyReason maps an empty segmentation result to its reason code.
func (r Result) EmptyReason() string {
	if len(r.Points) > 0 {
		return ""
	}
	if r.GroundFiltered > 0 {
		return app.ReasonGroundFiltered
	}
	return app.ReasonNoData
}

// extractCallSign pulls the trimmed call sign out of the per-ping details.
func extractCallSign(p app.TracePoint) string {
	if p.Details == nil {
		return ""
	}
	flight, ok := p.Details["flight"].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(flight)
}
