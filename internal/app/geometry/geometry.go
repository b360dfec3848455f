package geometry

import (
	"sort"

	"github.com/adsb-tools/flighttracer/internal/app"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// BuildLegs aggregates processed points into one ordered line geometry per
// flight leg. Points are sorted by point time within each leg; a leg of one
// point keeps its point geometry instead of a zero-length line.
// Representative scalar attributes come from the first row of the sorted
// group.
func BuildLegs(points []app.FlightPoint) ([]app.FlightLeg, error) {
	groups := map[string][]app.FlightPoint{}
	for _, p := range points {
		if p.FlightLeg == "" {
			return nil, &app.MissingColumnError{Column: "flight_leg"}
		}
		if p.Time.IsZero() {
			return nil, &app.MissingColumnError{Column: "point_time"}
		}
		groups[p.FlightLeg] = append(groups[p.FlightLeg], p)
	}

	legs := make([]app.FlightLeg, 0, len(groups))
	for key, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Time.Before(group[j].Time)
		})

		first := group[0]
		leg := app.FlightLeg{
			FlightLeg:  key,
			ICAO:       first.ICAO,
			CallSign:   first.CallSign,
			LegID:      first.LegID,
			FlightDate: first.FlightDate,
			Operator:   first.Operator,
			StartTime:  first.Time,
			EndTime:    group[len(group)-1].Time,
			Points:     len(group),
		}

		if len(group) == 1 {
			leg.Geometry = first.Geometry
		} else {
			line := make(orb.LineString, len(group))
			for i, p := range group {
				line[i] = p.Geometry
			}
			leg.Geometry = line
		}

		legs = append(legs, leg)
	}

	sort.SliceStable(legs, func(i, j int) bool {
		a, b := legs[i], legs[j]
		if a.ICAO != b.ICAO {
			return a.ICAO < b.ICAO
		}
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.Before(b.StartTime)
		}
		return a.FlightLeg < b.FlightLeg
	})

	return legs, nil
}

// PointCollection renders processed points as a GeoJSON FeatureCollection.
// Every feature carries the flight_leg grouping key for per-leg styling.
func PointCollection(points []app.FlightPoint) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range points {
		f := geojson.NewFeature(p.Geometry)
		f.Properties = geojson.Properties{
			"icao":         p.ICAO,
			"call_sign":    p.CallSign,
			"leg_id":       p.LegID,
			"flight_leg":   p.FlightLeg,
			"flight_date":  p.FlightDate,
			"point_time":   p.Time.UTC().Format("2006-01-02T15:04:05Z"),
			"ground_speed": p.GroundSpeed,
			"heading":      p.Heading,
		}
		if p.OnGround {
			f.Properties["altitude"] = app.GroundAltitude
		} else {
			f.Properties["altitude"] = p.Altitude
		}
		if p.LocalTime != "" {
			f.Properties["local_time"] = p.LocalTime
		}
		if p.Operator != "" {
			f.Properties["operator"] = p.Operator
		}
		fc.Append(f)
	}
	return fc
}

// LegCollection renders reconstructed legs as a GeoJSON FeatureCollection.
func LegCollection(legs []app.FlightLeg) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, leg := range legs {
		f := geojson.NewFeature(leg.Geometry)
		f.Properties = geojson.Properties{
			"icao":        leg.ICAO,
			"call_sign":   leg.CallSign,
			"leg_id":      leg.LegID,
			"flight_leg":  leg.FlightLeg,
			"flight_date": leg.FlightDate,
			"start_time":  leg.StartTime.UTC().Format("2006-01-02T15:04:05Z"),
			"end_time":    leg.EndTime.UTC().Format("2006-01-02T15:04:05Z"),
			"points":      leg.Points,
		}
		if leg.Operator != "" {
			f.Properties["operator"] = leg.Operator
		}
		fc.Append(f)
	}
	return fc
}
