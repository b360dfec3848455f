package app

import (
	"context"
	"time"

	"github.com/paulmach/orb"
)

// GroundAltitude is the altitude sentinel the upstream source emits while an
// aircraft is on the ground, in place of a numeric value in feet.
const GroundAltitude = "ground"

// UnknownCallSign is assigned to pings observed before any call sign has been
// seen for their position in processing order.
const UnknownCallSign = "unknown"

// TracePoint - one observed ping from a trace_full payload.
// Points are immutable once parsed; everything downstream is derived.
type TracePoint struct {
	ICAO        string                 `json:"icao"`
	BaseTime    time.Time              `json:"timestamp"`     //anchor timestamp of the fetched payload
	Offset      float64                `json:"time"`          //seconds since BaseTime
	Lat         float64                `json:"lat"`
	Lon         float64                `json:"lon"`
	Altitude    float64                `json:"altitude"`      //barometric altitude in feet, 0 when OnGround
	OnGround    bool                   `json:"on_ground"`     //true when the source reported the "ground" sentinel
	GroundSpeed float64                `json:"ground_speed"`  //kts
	Heading     float64                `json:"heading"`       //degree
	GeomAlt     float64                `json:"alt_geom"`      //geometric altitude in feet
	TailNumber  string                 `json:"nnumber"`
	Model       string                 `json:"model"`
	Desc        string                 `json:"desc"`
	Details     map[string]interface{} `json:"details"`       //per-ping metadata, carries the call sign under "flight"
}

// PointTime - the continuous ping time, resolved from the payload anchor plus
// the per-ping offset. Non-decreasing within one payload, not across payloads.
func (p TracePoint) PointTime() time.Time {
	return p.BaseTime.Add(time.Duration(p.Offset * float64(time.Second)))
}

// FlightPoint - a TracePoint after leg segmentation, carrying the derived
// leg metadata and its WGS84 point geometry.
type FlightPoint struct {
	TracePoint

	Time       time.Time `json:"point_time"`
	CallSign   string    `json:"call_sign"`
	LegID      int       `json:"leg_id"`     //1-based, restarts per (icao, call sign)
	FlightLeg  string    `json:"flight_leg"` //call sign + "_leg" + leg id
	FlightDate string    `json:"flight_date"`
	LocalTime  string    `json:"local_time,omitempty"` //display only, set when a timezone is configured
	Operator   string    `json:"operator,omitempty"`

	Geometry orb.Point `json:"-"`
}

// FlightLeg - one reconstructed leg with its line geometry. A single-point
// leg keeps the bare point geometry instead of a degenerate line.
type FlightLeg struct {
	FlightLeg  string    `json:"flight_leg"`
	ICAO       string    `json:"icao"`
	CallSign   string    `json:"call_sign"`
	LegID      int       `json:"leg_id"`
	FlightDate string    `json:"flight_date"`
	Operator   string    `json:"operator,omitempty"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Points     int       `json:"points"`

	Geometry orb.Geometry `json:"-"`
}

// Sinker - output target for one processed run.
type Sinker interface {
	Init(ctx context.Context, params interface{}) error
	Sink(ctx context.Context, t time.Time, points []FlightPoint, legs []FlightLeg) error
}

// Service - search capability over previously sunk flight points.
type Service interface {
	Search(ctx context.Context, params interface{}, area string, altThresholdFeet int, fromTimeStamp, toTimeStamp time.Time) ([]FlightPoint, error)
}
